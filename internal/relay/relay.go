// Package relay runs one live query on the messages table per process and
// republishes every change on the bus, so each connected client subscribes
// to the bus instead of opening its own live query.
package relay

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/livechat/internal/messagesync"
	"github.com/nfrund/livechat/internal/module"
	"github.com/nfrund/livechat/internal/pubsub"
)

// Module is the relay as a server module.
type Module struct {
	module.BaseModule
	source    messagesync.Feed
	publisher pubsub.Publisher
	origin    string
	logger    *slog.Logger

	mu        sync.Mutex
	cancel    func()
	published atomic.Int64
	failed    atomic.Int64
}

// Dependencies holds the services required by the relay. Source is usually
// a messagesync.LiveFeed. Origin tags every published change so that
// messagesync.BusFeed can ignore changes relayed by other processes.
type Dependencies struct {
	Source    messagesync.Feed
	Publisher pubsub.Publisher
	Origin    string
	Logger    *slog.Logger
}

// New creates a relay Module.
func New(deps Dependencies) *Module {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Module{source: deps.Source, publisher: deps.Publisher, origin: deps.Origin, logger: logger}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "relay"
}

// Boot subscribes to the source and mounts GET /relay/status on router.
func (m *Module) Boot(ctx context.Context, router *echo.Group) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cancel != nil {
		return nil
	}

	// publishing must outlive the boot context
	cancel, err := m.source.Subscribe(context.WithoutCancel(ctx), m.forward)
	if err != nil {
		m.logger.ErrorContext(ctx, "Relay failed to subscribe to message changes", "event", "relay_subscribe_failure", "error", err)
		return err
	}
	m.cancel = cancel
	m.logger.InfoContext(ctx, "Relay publishing message changes", "event", "relay_started", "topic", messagesync.ChangesEvent.Name())

	if router != nil {
		router.GET("/relay/status", m.status)
	}
	return nil
}

// Shutdown stops the subscription.
func (m *Module) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	cancel := m.cancel
	m.cancel = nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		m.logger.InfoContext(ctx, "Relay stopped", "event", "relay_stopped", "published", m.published.Load())
	}
	return nil
}

// Active reports whether the relay is subscribed.
func (m *Module) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancel != nil
}

func (m *Module) forward(change messagesync.Change) {
	ctx := context.Background()
	var metadata map[string]string
	if m.origin != "" {
		metadata = map[string]string{pubsub.MetaKeyOrigin: m.origin}
	}
	if err := pubsub.PublishWithMetadata(ctx, m.publisher, messagesync.ChangesEvent, change, metadata); err != nil {
		m.failed.Add(1)
		m.logger.Error("Relay failed to publish change", "event", "relay_publish_failure", "kind", change.Kind, "id", change.Message.ID, "error", err)
		return
	}
	m.published.Add(1)
	m.logger.Debug("Relay published change", "kind", change.Kind, "id", change.Message.ID)
}

type statusResponse struct {
	Active    bool  `json:"active"`
	Published int64 `json:"published"`
	Failed    int64 `json:"failed"`
}

func (m *Module) status(c echo.Context) error {
	return c.JSON(http.StatusOK, statusResponse{
		Active:    m.Active(),
		Published: m.published.Load(),
		Failed:    m.failed.Load(),
	})
}
