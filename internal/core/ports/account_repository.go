package ports

import (
	"context"

	"github.com/archery/auth-system/internal/core/domain"
)

// ListAccountsFilter carries the query parameters for listing accounts.
// Scoping is decided by the service layer; the repository applies the filter
// verbatim.
type ListAccountsFilter struct {
	Role          domain.Role // empty = all roles
	ParentAdminID string      // non-empty = only organizers owned by this admin
	Page          int         // 1-based
	Limit         int         // capped at 100 by the service
}

// AccountRepository defines persistence operations for accounts. Create must
// be backed by unique indexes on username and email: the application-level
// existence checks in the service are a fast path only, and the insert is the
// authoritative guard against concurrent duplicates.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) (*domain.Account, error)
	FindByID(ctx context.Context, id string) (*domain.Account, error)
	FindByUsername(ctx context.Context, username string) (*domain.Account, error)
	FindByEmail(ctx context.Context, email string) (*domain.Account, error)
	List(ctx context.Context, filter ListAccountsFilter) ([]*domain.Account, error)
	// ExistsByRole reports whether any account with the given role exists.
	ExistsByRole(ctx context.Context, role domain.Role) (bool, error)
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	SetActive(ctx context.Context, id string, active bool) error
	SetVerified(ctx context.Context, id string) error
}
