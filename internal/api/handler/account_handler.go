package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/archery/auth-system/internal/core/domain"
	"github.com/archery/auth-system/internal/core/ports"
)

// AccountHandler serves the privileged provisioning and lifecycle routes.
type AccountHandler struct {
	accountService ports.AccountService
	repo           ports.AccountRepository
}

func NewAccountHandler(accountService ports.AccountService, repo ports.AccountRepository) *AccountHandler {
	return &AccountHandler{accountService: accountService, repo: repo}
}

// Create provisions a new account on behalf of the caller.
//
// @Summary      Provision an account
// @Tags         accounts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createAccountRequest  true  "Account details"
// @Success      201   {object}  accountResponse
// @Failure      401   {object}  errorResponse
// @Failure      403   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /v1/accounts [post]
func (h *AccountHandler) Create(c echo.Context) error {
	actor, err := ctxActor(c, h.repo)
	if err != nil {
		return err
	}

	var req createAccountRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}

	account, err := h.accountService.Provision(c.Request().Context(), actor, ports.ProvisionInput{
		Username:      req.Username,
		Email:         req.Email,
		Password:      req.Password,
		Role:          domain.Role(req.Role),
		ParentAdminID: req.ParentAdminID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toAccountResponse(account))
}

// List returns the accounts visible to the caller, optionally filtered by role.
//
// @Summary      List accounts
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        role   query     string  false  "Filter by role"
// @Param        page   query     int     false  "Page (1-based)"
// @Param        limit  query     int     false  "Page size (max 100)"
// @Success      200    {object}  listAccountsResponse
// @Failure      401    {object}  errorResponse
// @Failure      403    {object}  errorResponse
// @Router       /v1/accounts [get]
func (h *AccountHandler) List(c echo.Context) error {
	actor, err := ctxActor(c, h.repo)
	if err != nil {
		return err
	}

	roleFilter := domain.Role(c.QueryParam("role"))
	if roleFilter != "" && !roleFilter.IsValid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown role filter")
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	accounts, err := h.accountService.List(c.Request().Context(), actor, ports.ListAccountsInput{
		Role:  roleFilter,
		Page:  page,
		Limit: limit,
	})
	if err != nil {
		return err
	}

	items := toAccountResponses(accounts)
	return c.JSON(http.StatusOK, listAccountsResponse{Items: items, Count: len(items)})
}

// Verify marks an account as verified.
//
// @Summary      Verify an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Account ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/accounts/{id}/verify [post]
func (h *AccountHandler) Verify(c echo.Context) error {
	return h.mutate(c, "account verified successfully", h.accountService.Verify)
}

// Activate re-enables a deactivated account.
//
// @Summary      Activate an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Account ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/accounts/{id}/activate [post]
func (h *AccountHandler) Activate(c echo.Context) error {
	return h.mutate(c, "account activated successfully", h.accountService.Activate)
}

// Deactivate disables an account.
//
// @Summary      Deactivate an account
// @Tags         accounts
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Account ID"
// @Success      200  {object}  messageResponse
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /v1/accounts/{id}/deactivate [post]
func (h *AccountHandler) Deactivate(c echo.Context) error {
	return h.mutate(c, "account deactivated successfully", h.accountService.Deactivate)
}

// mutate factors the shared shape of the three state-transition routes.
func (h *AccountHandler) mutate(c echo.Context, message string, op func(ctx context.Context, actor ports.Actor, accountID string) error) error {
	actor, err := ctxActor(c, h.repo)
	if err != nil {
		return err
	}

	id := c.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing account id")
	}

	if err := op(c.Request().Context(), actor, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, messageResponse{Message: message})
}
