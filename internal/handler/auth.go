package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/wqam/backend/internal/middleware"
	"github.com/wqam/backend/internal/model"
	"github.com/wqam/backend/internal/service"
)

// AuthHandler bundles dependencies for the registration and login endpoints.
type AuthHandler struct {
	Accounts *service.AccountService
	Auth     *service.AuthService
}

func NewAuthHandler(accounts *service.AccountService, auth *service.AuthService) *AuthHandler {
	return &AuthHandler{Accounts: accounts, Auth: auth}
}

// ----- DTOs -----

type registerReq struct {
	Name          string `json:"name"`
	Email         string `json:"email"`
	Password      string `json:"password"`
	Organisation  string `json:"organisation"`
	IndustryType  string `json:"industry_type"`
	ValidatorType string `json:"validator_type"`
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"` // optional expected role
}

type registerResp struct {
	ID     uint64 `json:"id"`
	Status string `json:"status"`
}

type tokenResp struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

// Register creates a pending account. The requested role comes from the
// ?role= query parameter, like the original clients send it.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	a, err := h.Accounts.Register(ctx, service.RegisterInput{
		Role:     c.QueryParam("role"),
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Profile: model.Profile{
			Organisation:  req.Organisation,
			IndustryType:  req.IndustryType,
			ValidatorType: req.ValidatorType,
		},
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, registerResp{ID: a.ID, Status: a.Status})
}

// Login verifies credentials and lifecycle state and returns an access token.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token, a, err := h.Auth.Login(ctx, req.Email, req.Password, req.Role)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResp{Token: token, Role: a.Role})
}

// AdminLogin is the admin-only login endpoint. Existing non-admin accounts
// are reported exactly like unknown emails.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email/password required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	token, a, err := h.Auth.AdminLogin(ctx, req.Email, req.Password)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, tokenResp{Token: token, Role: a.Role})
}

// Me returns the authenticated account's public view. The account in the
// context is the live record, so status changes show up immediately.
func (h *AuthHandler) Me(c echo.Context) error {
	a, ok := middleware.CurrentAccount(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, a.Public())
}
