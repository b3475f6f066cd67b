package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront_gateway/internal/backend"
)

// errorJSON emits the frontend error contract: {"error": "<message>"}.
func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"error": msg})
}

// backendError surfaces the backend's own status and message when it
// answered, 503 when the breaker is open and 502 for transport failures.
func backendError(c echo.Context, err error) error {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return errorJSON(c, apiErr.Status, apiErr.Message)
	}
	if backend.IsUnavailable(err) {
		return errorJSON(c, http.StatusServiceUnavailable, "backend unavailable")
	}
	return errorJSON(c, http.StatusBadGateway, "backend unavailable")
}
