package ports

import (
	"context"

	"github.com/archery/auth-system/internal/core/domain"
)

// AuthService authenticates credentials and issues session tokens.
type AuthService interface {
	// Login verifies a username/password pair and returns a signed session
	// token plus the authenticated account.
	Login(ctx context.Context, username, password string) (string, *domain.Account, error)
	// ChangePassword re-verifies the current password before accepting the
	// new one. Self-service only; actors change their own password.
	ChangePassword(ctx context.Context, username, currentPassword, newPassword string) error
}

// LoginThrottle bounds the rate of failed login attempts per username.
// Implementations fail open: an unavailable backend never blocks logins.
type LoginThrottle interface {
	// Allowed reports whether another attempt for username may proceed.
	Allowed(ctx context.Context, username string) (bool, error)
	// RecordFailure counts a failed attempt against username.
	RecordFailure(ctx context.Context, username string) error
	// Reset clears the failure count after a successful login.
	Reset(ctx context.Context, username string) error
}
