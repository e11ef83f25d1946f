package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/archery/auth-system/internal/api/handler"
	"github.com/archery/auth-system/internal/api/middleware"
	"github.com/archery/auth-system/internal/core/domain"
	"github.com/archery/auth-system/internal/core/ports"
	"github.com/archery/auth-system/internal/core/token"
)

// Dependencies carries everything the router needs, constructed in main.
type Dependencies struct {
	AuthService    ports.AuthService
	AccountService ports.AccountService
	AccountRepo    ports.AccountRepository
	Codec          *token.Codec
	Mongo          *mongo.Database
	Redis          *redis.Client
	Logger         zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("auth"))

	authHandler := handler.NewAuthHandler(deps.AuthService, deps.AccountRepo)
	accountHandler := handler.NewAccountHandler(deps.AccountService, deps.AccountRepo)
	authMW := middleware.Auth(deps.Codec)

	// --- Auth routes ---
	e.POST("/v1/auth/login", authHandler.Login)
	e.GET("/v1/auth/me", authHandler.Me, authMW)
	e.POST("/v1/auth/change-password", authHandler.ChangePassword, authMW)

	// --- Account routes ---
	// Creation and listing are open to both admin roles at the route level;
	// the role policy in the service decides who may create or see whom.
	adminOnly := middleware.RBAC(domain.RoleSuperAdmin, domain.RoleClientAdmin)
	superOnly := middleware.RBAC(domain.RoleSuperAdmin)

	e.POST("/v1/accounts", accountHandler.Create, authMW, adminOnly)
	e.GET("/v1/accounts", accountHandler.List, authMW, adminOnly)
	e.POST("/v1/accounts/:id/verify", accountHandler.Verify, authMW, superOnly)
	e.POST("/v1/accounts/:id/activate", accountHandler.Activate, authMW, superOnly)
	e.POST("/v1/accounts/:id/deactivate", accountHandler.Deactivate, authMW, superOnly)

	// --- Health probes and metrics (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())

	return e
}
