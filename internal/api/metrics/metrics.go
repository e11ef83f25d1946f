// Package metrics defines and registers all custom Prometheus metrics for the
// auth system. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry at package init
// via promauto; the /metrics route exposes them.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "auth"

// LoginsTotal counts login attempts by outcome.
// Label:
//   - result: "success", "invalid_credentials", "disabled", "throttled", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, labelled by outcome.",
	},
	[]string{"result"},
)

// AccountsProvisionedTotal counts accounts created through the provisioning
// workflow.
// Label:
//   - role: the role of the created account ("client_admin", "organizer")
var AccountsProvisionedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "accounts_provisioned_total",
		Help:      "Total number of accounts created via provisioning, by role.",
	},
	[]string{"role"},
)

// NotificationsTotal counts credential notification deliveries.
// Label:
//   - result: "sent" or "failed"
var NotificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "notifications_total",
		Help:      "Total number of credential notification attempts, by result.",
	},
	[]string{"result"},
)

// NotificationQueueDepth tracks the number of notices waiting in each
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index ("0", "1", …)
var NotificationQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "notification_queue_depth",
		Help:      "Current number of credential notices pending per dispatcher worker.",
	},
	[]string{"worker_id"},
)
