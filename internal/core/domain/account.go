package domain

import "time"

// Account models an authenticated actor in the system.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email,omitempty"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	Verified     bool      `json:"verified"`
	// ParentAdminID references the client admin that owns this account.
	// Set only for organizers.
	ParentAdminID string    `json:"parent_admin_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
