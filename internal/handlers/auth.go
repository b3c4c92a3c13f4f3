package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/livechat/internal/auth"
	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/internal/middleware"
	"github.com/nfrund/livechat/internal/session"
	"github.com/nfrund/livechat/internal/view"
)

const (
	msgAuthFailed = "Authentication failed"
	msgLoggedOut  = "Logged out successfully"
)

// Authenticator signs a user in and stores the session. *auth.Gateway
// satisfies it.
type Authenticator interface {
	SignIn(ctx context.Context, store session.Store, mode auth.Mode, username, password string) (string, error)
}

// AuthHandler handles the gate form and logout.
type AuthHandler struct {
	gateway Authenticator
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(gateway Authenticator) *AuthHandler {
	return &AuthHandler{gateway: gateway}
}

// AuthPost handles POST /auth for both modes. Every outcome redirects to /
// with a toast; failures keep the selected mode.
func (h *AuthHandler) AuthPost(c echo.Context) error {
	var req AuthRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid form")
	}

	mode, err := auth.ParseMode(req.Mode)
	if err != nil {
		view.SetFlashError(c, msgAuthFailed)
		return c.Redirect(http.StatusSeeOther, "/")
	}

	ctx := c.Request().Context()
	if _, err := h.gateway.SignIn(ctx, session.FromEcho(c), mode, req.Username, req.Password); err != nil {
		middleware.FromContext(ctx).InfoContext(ctx, "Authentication failed", "event", "auth_failure", "mode", mode, "error", err)
		view.SetFlashError(c, domain.Describe(err, msgAuthFailed))
		return c.Redirect(http.StatusSeeOther, "/?mode="+string(mode))
	}

	view.SetFlashSuccess(c, mode.SuccessMessage())
	return c.Redirect(http.StatusSeeOther, "/")
}

// Logout handles POST /logout by clearing the session.
func (h *AuthHandler) Logout(c echo.Context) error {
	if err := session.FromEcho(c).Clear(); err != nil {
		return err
	}
	view.SetFlashSuccess(c, msgLoggedOut)
	return c.Redirect(http.StatusSeeOther, "/")
}
