package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"
)

const shutdownTimeout = 10 * time.Second

// Start boots the modules and serves on the configured address until ctx is
// done or the process is signalled, then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := shutdownContext(ctx)
	defer stop()

	s.BootModules(ctx)

	addr := s.Cfg.GetAppAddr()
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "event", "server_started", "addr", addr)
		if err := s.E.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	slog.Info("Shutting down HTTP server", "event", "server_stopping")
	if err := s.E.Shutdown(shutdownCtx); err != nil && serveErr == nil {
		serveErr = err
	}
	s.ShutdownModules(shutdownCtx)
	return serveErr
}
