package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/livechat/internal/session"
)

// UsernameContextKey holds the signed-in username on the echo context.
const UsernameContextKey = "username"

// RequireSession rejects requests without a session username. Page requests
// are redirected to the gate, htmx and API requests get 401.
func RequireSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			username, ok := session.FromEcho(c).Load()
			if !ok {
				if c.Request().Header.Get("HX-Request") == "true" || c.Request().Header.Get(echo.HeaderAccept) == echo.MIMEApplicationJSON {
					return echo.NewHTTPError(http.StatusUnauthorized, "not signed in")
				}
				return c.Redirect(http.StatusSeeOther, "/")
			}
			c.Set(UsernameContextKey, username)
			return next(c)
		}
	}
}

// Username returns the username stored by RequireSession.
func Username(c echo.Context) string {
	username, _ := c.Get(UsernameContextKey).(string)
	return username
}
