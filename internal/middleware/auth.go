package middleware // middleware provides shared request processing for handlers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/wqam/backend/internal/model"
	"github.com/wqam/backend/internal/service"
)

// AccountKey is the context key under which Authenticate stores the
// resolved account.
const AccountKey = "account"

// Authenticate returns an Echo middleware that validates a Bearer access
// token and loads the live account it names into the request context.
// Handlers downstream read it via CurrentAccount. Because the account is
// re-loaded on every request, role and status changes take effect
// immediately even for tokens issued before the change.
func Authenticate(authSvc *service.AuthService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			a, err := authSvc.Resolve(c.Request().Context(), raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(AccountKey, a)
			return next(c)
		}
	}
}

// RequireRole enforces that the authenticated account holds one of the given
// roles. It assumes Authenticate ran earlier in the chain; requests without
// a resolved account or with a disallowed role get 403.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			a, ok := c.Get(AccountKey).(model.Account)
			if !ok || !allowed[a.Role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}

// CurrentAccount returns the account stored by Authenticate.
func CurrentAccount(c echo.Context) (model.Account, bool) {
	a, ok := c.Get(AccountKey).(model.Account)
	return a, ok
}
