package handler

import (
	"time"

	"github.com/archery/auth-system/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token   string           `json:"token"`
	Account *accountResponse `json:"account"`
}

type createAccountRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Email    string `json:"email,omitempty" validate:"omitempty,email"`
	Password string `json:"password" validate:"required,min=8"`
	Role     string `json:"role"     validate:"required,oneof=client_admin organizer"`
	// ParentAdminID names the owning client admin; required when a super
	// admin creates an organizer, ignored for client admin actors.
	ParentAdminID string `json:"parent_admin_id,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=8"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// accountResponse is the transport view of an account. The password hash
// never appears here.
type accountResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email,omitempty"`
	Role          string    `json:"role"`
	Active        bool      `json:"active"`
	Verified      bool      `json:"verified"`
	ParentAdminID string    `json:"parent_admin_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type listAccountsResponse struct {
	Items []*accountResponse `json:"items"`
	Count int                `json:"count"`
}

func toAccountResponse(a *domain.Account) *accountResponse {
	if a == nil {
		return nil
	}
	return &accountResponse{
		ID:            a.ID,
		Username:      a.Username,
		Email:         a.Email,
		Role:          string(a.Role),
		Active:        a.Active,
		Verified:      a.Verified,
		ParentAdminID: a.ParentAdminID,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

func toAccountResponses(accounts []*domain.Account) []*accountResponse {
	out := make([]*accountResponse, 0, len(accounts))
	for _, a := range accounts {
		out = append(out, toAccountResponse(a))
	}
	return out
}
