package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/wqam/backend/internal/service"
)

// writeServiceError maps a service-layer error onto the HTTP taxonomy:
// 400 malformed input, 401 identity failures, 403 authorization failures,
// 404 unknown accounts, 409 duplicate email. Anything unmapped is a server
// fault and reported as 500 without leaking internals.
func writeServiceError(c echo.Context, err error) error {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": ve.Msg})
	case errors.Is(err, service.ErrDuplicateEmail):
		return c.JSON(http.StatusConflict, echo.Map{"error": service.ErrDuplicateEmail.Error()})
	case errors.Is(err, service.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": service.ErrNotFound.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": service.ErrInvalidCredentials.Error()})
	case errors.Is(err, service.ErrUnauthorized):
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": service.ErrUnauthorized.Error()})
	case errors.Is(err, service.ErrRoleMismatch):
		return c.JSON(http.StatusForbidden, echo.Map{"error": service.ErrRoleMismatch.Error()})
	case errors.Is(err, service.ErrApprovalPending):
		return c.JSON(http.StatusForbidden, echo.Map{"error": service.ErrApprovalPending.Error()})
	case errors.Is(err, service.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": service.ErrForbidden.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
