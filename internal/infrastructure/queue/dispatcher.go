package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/archery/auth-system/internal/api/metrics"
	"github.com/archery/auth-system/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
)

// Dispatcher routes credential notices to a fixed set of workers using
// consistent hashing on the recipient address, so multiple notices to the
// same recipient are delivered in order. Delivery is best-effort: failures
// are logged by the worker and never reach the provisioning caller.
type Dispatcher struct {
	workers []chan ports.CredentialNotice
	sender  ports.NotificationSender
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sender ports.NotificationSender, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.CredentialNotice, numWorkers),
		sender:  sender,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.CredentialNotice, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue hands a notice to the worker responsible for its recipient. The
// call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(notice ports.CredentialNotice) {
	idx := d.shardIndex(notice.Recipient)
	d.workers[idx] <- notice
	metrics.NotificationQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
}

// shardIndex maps a recipient address deterministically to a worker index.
func (d *Dispatcher) shardIndex(recipient string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(recipient))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.CredentialNotice) {
	label := strconv.Itoa(id)
	for {
		select {
		case <-ctx.Done():
			return
		case notice, ok := <-ch:
			if !ok {
				return
			}
			metrics.NotificationQueueDepth.WithLabelValues(label).Set(float64(len(ch)))
			if err := d.sender.Send(ctx, notice); err != nil {
				metrics.NotificationsTotal.WithLabelValues("failed").Inc()
				d.log.Error().Err(err).
					Str("recipient", notice.Recipient).
					Int("worker_id", id).
					Msg("credential notification failed")
				continue
			}
			metrics.NotificationsTotal.WithLabelValues("sent").Inc()
			d.log.Info().
				Str("recipient", notice.Recipient).
				Str("role", string(notice.Role)).
				Msg("credential notification sent")
		}
	}
}
