package ports

import (
	"context"

	"github.com/archery/auth-system/internal/core/domain"
)

// Actor identifies the authenticated caller of a privileged operation.
type Actor struct {
	ID       string
	Username string
	Role     domain.Role
}

// ProvisionInput carries all data needed to create an account on behalf of a
// new user.
type ProvisionInput struct {
	Username string
	Email    string
	Password string
	Role     domain.Role
	// ParentAdminID names the owning client admin when a super admin creates
	// an organizer directly. Ignored (overridden by the actor's own ID) when
	// the actor is a client admin.
	ParentAdminID string
}

// ListAccountsInput carries the parameters for the list endpoint.
type ListAccountsInput struct {
	Role  domain.Role // optional role filter
	Page  int
	Limit int
}

// AccountService is the privileged account-provisioning and lifecycle
// workflow. Every operation takes the acting account and routes its
// authorization decision through the domain role policy.
type AccountService interface {
	Provision(ctx context.Context, actor Actor, in ProvisionInput) (*domain.Account, error)
	List(ctx context.Context, actor Actor, in ListAccountsInput) ([]*domain.Account, error)
	Verify(ctx context.Context, actor Actor, accountID string) error
	Activate(ctx context.Context, actor Actor, accountID string) error
	Deactivate(ctx context.Context, actor Actor, accountID string) error
}
