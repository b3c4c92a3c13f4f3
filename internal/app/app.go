// Package app wires the process-wide services into a dependency container.
// Services are built lazily, so a CLI command that only sends a message
// never opens a bus connection.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/nfrund/livechat/internal/auth"
	"github.com/nfrund/livechat/internal/config"
	"github.com/nfrund/livechat/internal/database"
	"github.com/nfrund/livechat/internal/module"
	"github.com/nfrund/livechat/internal/pubsub"
	"github.com/nfrund/livechat/internal/server"
	"github.com/samber/do/v2"
)

// App is the container plus the shutdown hooks of the services it built.
type App struct {
	injector do.Injector

	mu      sync.Mutex
	closers []func(context.Context) error
}

// New registers every service provider. ctx bounds the database connect.
func New(ctx context.Context, cfg config.Provider) *App {
	a := &App{injector: do.New()}
	i := a.injector

	do.ProvideValue[config.Provider](i, cfg)

	do.Provide(i, func(i do.Injector) (*database.Connection, error) {
		conn := database.NewConnection(do.MustInvoke[config.Provider](i))
		if err := conn.Connect(ctx); err != nil {
			return nil, err
		}
		a.onClose(conn.Close)
		if err := database.EnsureSchema(ctx, conn); err != nil {
			return nil, err
		}
		conn.StartMonitoring()
		return conn, nil
	})

	do.Provide(i, func(i do.Injector) (*database.SurrealUserStore, error) {
		return database.NewSurrealUserStore(do.MustInvoke[*database.Connection](i)), nil
	})

	do.Provide(i, func(i do.Injector) (*database.SurrealMessageStore, error) {
		return database.NewSurrealMessageStore(do.MustInvoke[*database.Connection](i)), nil
	})

	do.Provide(i, func(i do.Injector) (database.LiveQueryService, error) {
		return database.NewSurrealLiveQueryService(do.MustInvoke[*database.Connection](i)), nil
	})

	do.Provide(i, func(i do.Injector) (pubsub.Bus, error) {
		bus, err := pubsub.New(do.MustInvoke[config.Provider](i))
		if err != nil {
			return nil, err
		}
		a.onClose(func(context.Context) error { return bus.Close() })
		return bus, nil
	})

	do.Provide(i, func(i do.Injector) (*auth.Gateway, error) {
		return auth.NewGateway(do.MustInvoke[*database.SurrealUserStore](i), slog.Default()), nil
	})

	do.Provide(i, func(i do.Injector) (Dependencies, error) {
		return Dependencies{
			LiveQueryService: do.MustInvoke[database.LiveQueryService](i),
			Publisher:        do.MustInvoke[pubsub.Bus](i),
			Logger:           slog.Default(),
			RelayEnabled:     do.MustInvoke[config.Provider](i).GetRelayEnabled(),
			Origin:           uuid.NewString(),
		}, nil
	})

	do.Provide(i, func(i do.Injector) ([]module.Module, error) {
		return NewModules(do.MustInvoke[Dependencies](i)), nil
	})

	do.Provide(i, func(i do.Injector) (*server.Server, error) {
		conn := do.MustInvoke[*database.Connection](i)
		return server.New(server.Dependencies{
			Config:   do.MustInvoke[config.Provider](i),
			Gateway:  do.MustInvoke[*auth.Gateway](i),
			Messages: do.MustInvoke[*database.SurrealMessageStore](i),
			Feed:     LiveViewFeed(do.MustInvoke[Dependencies](i), do.MustInvoke[pubsub.Bus](i)),
			Health:   conn,
			Modules:  do.MustInvoke[[]module.Module](i),
		}), nil
	})

	return a
}

func (a *App) onClose(fn func(context.Context) error) {
	a.mu.Lock()
	a.closers = append(a.closers, fn)
	a.mu.Unlock()
}

// Config returns the configuration.
func (a *App) Config() config.Provider {
	return do.MustInvoke[config.Provider](a.injector)
}

// Gateway returns the auth gateway, connecting to the database on first use.
func (a *App) Gateway() (*auth.Gateway, error) {
	return invoke[*auth.Gateway](a, "auth gateway")
}

// Messages returns the message store.
func (a *App) Messages() (*database.SurrealMessageStore, error) {
	return invoke[*database.SurrealMessageStore](a, "message store")
}

// LiveQueries returns the live query service.
func (a *App) LiveQueries() (database.LiveQueryService, error) {
	return invoke[database.LiveQueryService](a, "live query service")
}

// Server returns the HTTP server with its modules.
func (a *App) Server() (*server.Server, error) {
	return invoke[*server.Server](a, "server")
}

// Close shuts the built services down in reverse build order.
func (a *App) Close(ctx context.Context) error {
	a.mu.Lock()
	closers := a.closers
	a.closers = nil
	a.mu.Unlock()

	var errs []error
	for i := len(closers) - 1; i >= 0; i-- {
		if err := closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// invoke resolves a service. Panics from MustInvoke inside providers are
// turned into errors by do.Invoke.
func invoke[T any](a *App, name string) (T, error) {
	svc, err := do.Invoke[T](a.injector)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("build %s: %w", name, err)
	}
	return svc, nil
}
