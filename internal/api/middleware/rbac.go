package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/archery/auth-system/internal/core/domain"
)

// RBAC rejects requests whose token role is not in allowedRoles. This is a
// coarse route-level gate; the services re-check the role policy for
// decisions that depend on the target (who may create whom, list scoping).
func RBAC(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[string(r)] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(string)
			if _, ok := allowed[role]; !ok {
				return c.JSON(http.StatusForbidden, map[string]string{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
