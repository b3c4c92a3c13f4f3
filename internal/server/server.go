package server

import (
	"context"
	"log/slog"

	echosession "github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/nfrund/livechat/internal/config"
	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/internal/handlers"
	appmiddleware "github.com/nfrund/livechat/internal/middleware"
	"github.com/nfrund/livechat/internal/messagesync"
	"github.com/nfrund/livechat/internal/module"
	"github.com/nfrund/livechat/internal/rendering"
	"github.com/nfrund/livechat/internal/session"
)

// Dependencies holds the services the HTTP server is built from.
type Dependencies struct {
	Config   config.Provider
	Gateway  handlers.Authenticator
	Messages domain.MessageRepository
	// Feed delivers message changes to live views, usually a
	// messagesync.BusFeed fed by the relay module.
	Feed    messagesync.Feed
	Health  handlers.HealthChecker
	Modules []module.Module
	// InsecureWebSocket disables the websocket origin check.
	InsecureWebSocket bool
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	E        *echo.Echo
	Cfg      config.Provider
	deps     Dependencies
	renderer *rendering.UniversalRenderer
	booted   []module.Module
}

// New creates a Server with middleware and routes registered.
func New(deps Dependencies) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	renderer := rendering.NewUniversalRenderer()
	e.Renderer = renderer
	e.Validator = handlers.NewValidator()
	setupErrorHandling(e)

	e.Use(middleware.RequestID())
	e.Use(appmiddleware.Logger)
	e.Use(middleware.Recover())
	e.Use(echosession.Middleware(session.NewCookieBackend(deps.Config.GetSessionSecret(), false)))

	s := &Server{
		E:        e,
		Cfg:      deps.Config,
		deps:     deps,
		renderer: renderer,
	}
	s.RegisterRoutes()
	return s
}

// BootModules boots every module on the root group. A module that fails to
// boot is logged and skipped.
func (s *Server) BootModules(ctx context.Context) {
	group := s.E.Group("")
	for _, m := range s.deps.Modules {
		if err := m.Boot(ctx, group); err != nil {
			slog.ErrorContext(ctx, "Failed to boot module", "event", "module_boot_failure", "module", m.Name(), "error", err)
			continue
		}
		slog.InfoContext(ctx, "Module booted", "event", "module_booted", "module", m.Name())
		s.booted = append(s.booted, m)
	}
}

// ShutdownModules stops booted modules in reverse boot order.
func (s *Server) ShutdownModules(ctx context.Context) {
	for i := len(s.booted) - 1; i >= 0; i-- {
		m := s.booted[i]
		if err := m.Shutdown(ctx); err != nil {
			slog.ErrorContext(ctx, "Failed to shut down module", "event", "module_shutdown_failure", "module", m.Name(), "error", err)
		}
	}
	s.booted = nil
}
