package ports

import (
	"context"

	"github.com/archery/auth-system/internal/core/domain"
)

// CredentialNotice is the payload delivered to a freshly provisioned account.
type CredentialNotice struct {
	Recipient string // destination email address
	Username  string
	Password  string // the initial plaintext password chosen by the issuer
	Role      domain.Role
	// IssuerName is shown in the message body ("created by ...").
	IssuerName string
}

// NotificationSender attempts a single delivery of a credential notice.
// There is no retry queue; the caller logs and swallows errors.
type NotificationSender interface {
	Send(ctx context.Context, notice CredentialNotice) error
}

// NotificationEnqueuer is the fire-and-forget handoff used by the
// provisioning workflow. Enqueue must not block on delivery and must never
// surface delivery failures.
type NotificationEnqueuer interface {
	Enqueue(notice CredentialNotice)
}
