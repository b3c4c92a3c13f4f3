package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// apiRequestsPerSecond bounds JSON API reads per signed-in user.
const apiRequestsPerSecond = 10

// APIRateLimiter limits requests per session username, falling back to the
// client IP. It must run after RequireSession to see the username.
func APIRateLimiter() echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStore(apiRequestsPerSecond),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			if username := Username(c); username != "" {
				return "user:" + username, nil
			}
			return "ip:" + c.RealIP(), nil
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return c.JSON(http.StatusTooManyRequests, map[string]string{"error": "Too many requests. Please try again later."})
		},
	})
}
