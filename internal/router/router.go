package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/wqam/backend/internal/config"
	"github.com/wqam/backend/internal/handler"
	"github.com/wqam/backend/internal/middleware"
	"github.com/wqam/backend/internal/model"
	"github.com/wqam/backend/internal/service"
)

// Register wires every route of the service onto the provided Echo instance.
//
//	GET  /health              – liveness probe, no auth
//	POST /register?role=      – self-registration for users and validators
//	POST /auth/login          – role-scoped login
//	POST /auth/admin-login    – admin login, no existence leak for non-admins
//	GET  /admin/pending       – bearer(admin), cached pending list
//	POST /admin/approve/:id   – bearer(admin)
//	POST /admin/reject/:id    – bearer(admin)
//	GET  /me                  – bearer(any role)
func Register(e *echo.Echo, a *handler.AuthHandler, adm *handler.AdminHandler,
	authSvc *service.AuthService, cacheCfg config.CacheConfig, rdb *redis.Client) {

	e.GET("/health", handler.Health)
	e.POST("/register", a.Register)

	auth := e.Group("/auth")
	auth.POST("/login", a.Login)
	auth.POST("/admin-login", a.AdminLogin)

	// Protected endpoints re-load the live account on every request, so an
	// account rejected after its token was issued loses access immediately.
	me := e.Group("/me")
	me.Use(middleware.Authenticate(authSvc))
	me.GET("", a.Me)

	admin := e.Group("/admin")
	admin.Use(middleware.Authenticate(authSvc))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.GET("/pending", adm.Pending, middleware.ResponseCache(cacheCfg, rdb))
	admin.POST("/approve/:id", adm.Approve)
	admin.POST("/reject/:id", adm.Reject)
}
