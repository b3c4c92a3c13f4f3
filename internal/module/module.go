package module

import (
	"context"

	"github.com/labstack/echo/v4"
)

// Module is a self-contained background feature of the server.
type Module interface {
	// Name returns a unique identifier for the module.
	Name() string

	// Boot is called once the server's dependencies are ready. This is the
	// phase for mounting routes and starting background processes.
	Boot(ctx context.Context, router *echo.Group) error

	// Shutdown is called during graceful shutdown to stop background work.
	Shutdown(ctx context.Context) error
}

// BaseModule provides default no-op implementations for Module methods.
type BaseModule struct{}

func (m *BaseModule) Boot(ctx context.Context, router *echo.Group) error { return nil }
func (m *BaseModule) Shutdown(ctx context.Context) error                 { return nil }
