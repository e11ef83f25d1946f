package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/archery/auth-system/internal/core/domain"
	"github.com/archery/auth-system/internal/core/ports"
)

// ctxActor resolves the authenticated actor behind a request. The auth
// middleware has already verified the token and injected the subject; this
// reloads the account so that deactivation takes effect immediately instead
// of at token expiry, and so the actor's ID is available for ownership rules.
func ctxActor(c echo.Context, repo ports.AccountRepository) (ports.Actor, error) {
	username, _ := c.Get("username").(string)
	if username == "" {
		return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	account, err := repo.FindByUsername(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, domain.ErrAccountNotFound) {
			// Token subject no longer exists; the token is operationally dead.
			return ports.Actor{}, echo.NewHTTPError(http.StatusUnauthorized, "unknown token subject")
		}
		return ports.Actor{}, err
	}
	if !account.Active {
		return ports.Actor{}, domain.ErrAccountDisabled
	}

	return ports.Actor{ID: account.ID, Username: account.Username, Role: account.Role}, nil
}
