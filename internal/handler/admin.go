package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wqam/backend/internal/middleware"
	"github.com/wqam/backend/internal/model"
	"github.com/wqam/backend/internal/service"
)

// AdminHandler exposes the admin decision endpoints: listing pending
// accounts and approving or rejecting them. Every endpoint re-checks the
// admin gate on the resolved account in addition to the route middleware.
type AdminHandler struct {
	Accounts *service.AccountService
	Auth     *service.AuthService
}

func NewAdminHandler(accounts *service.AccountService, auth *service.AuthService) *AdminHandler {
	return &AdminHandler{Accounts: accounts, Auth: auth}
}

type decisionResp struct {
	ID     uint64 `json:"id"`
	Status string `json:"status"`
}

// Pending lists all accounts awaiting a decision as public views.
func (h *AdminHandler) Pending(c echo.Context) error {
	actor, ok := middleware.CurrentAccount(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Auth.RequireAdmin(actor); err != nil {
		return writeServiceError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	accounts, err := h.Accounts.ListPending(ctx)
	if err != nil {
		return writeServiceError(c, err)
	}
	views := make([]model.PublicView, 0, len(accounts))
	for _, a := range accounts {
		views = append(views, a.Public())
	}
	return c.JSON(http.StatusOK, views)
}

// Approve transitions the account at :id to approved.
func (h *AdminHandler) Approve(c echo.Context) error {
	return h.decide(c, h.Accounts.Approve)
}

// Reject transitions the account at :id to rejected.
func (h *AdminHandler) Reject(c echo.Context) error {
	return h.decide(c, h.Accounts.Reject)
}

func (h *AdminHandler) decide(c echo.Context, fn func(context.Context, string, uint64) (model.Account, error)) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid account id"})
	}
	actor, ok := middleware.CurrentAccount(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	if err := h.Auth.RequireAdmin(actor); err != nil {
		return writeServiceError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := fn(ctx, actor.Role, id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, decisionResp{ID: a.ID, Status: a.Status})
}
