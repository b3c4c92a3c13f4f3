package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthChecker reports backend availability. *database.Connection
// satisfies it.
type HealthChecker interface {
	IsHealthy() bool
}

// Health handles GET /health.
func Health(checker HealthChecker) echo.HandlerFunc {
	return func(c echo.Context) error {
		if checker != nil && !checker.IsHealthy() {
			return c.JSON(http.StatusServiceUnavailable, ErrorResponse{Code: "unhealthy", Message: "database unavailable"})
		}
		return c.String(http.StatusOK, "OK")
	}
}
