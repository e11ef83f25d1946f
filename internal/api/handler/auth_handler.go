package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/archery/auth-system/internal/core/domain"
	"github.com/archery/auth-system/internal/core/ports"
)

// AuthHandler serves login, current-account lookup, and password changes.
type AuthHandler struct {
	authService ports.AuthService
	repo        ports.AccountRepository
}

func NewAuthHandler(authService ports.AuthService, repo ports.AccountRepository) *AuthHandler {
	return &AuthHandler{authService: authService, repo: repo}
}

// Login authenticates a username/password pair and returns a session token.
//
// @Summary      Login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  loginResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      429   {object}  errorResponse
// @Router       /v1/auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	tok, account, err := h.authService.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, loginResponse{Token: tok, Account: toAccountResponse(account)})
}

// Me returns the authenticated caller's own account.
//
// @Summary      Current account
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  accountResponse
// @Failure      401  {object}  errorResponse
// @Router       /v1/auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := ctxActor(c, h.repo)
	if err != nil {
		return err
	}

	account, err := h.repo.FindByUsername(c.Request().Context(), actor.Username)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAccountResponse(account))
}

// ChangePassword updates the caller's own password after re-verifying the
// current one.
//
// @Summary      Change own password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      401   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) error {
	actor, err := ctxActor(c, h.repo)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	if err := h.authService.ChangePassword(c.Request().Context(), actor.Username, req.CurrentPassword, req.NewPassword); err != nil {
		// A wrong current password on a change request is a bad request, not
		// a failed authentication of the session itself.
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusBadRequest, "current password is incorrect")
		}
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "password changed successfully"})
}
