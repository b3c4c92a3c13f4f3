// Package websocket serves the live view: each connection runs its own
// message synchronizer and receives every new state as htmx out-of-band
// fragments.
package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/livechat/internal/messagesync"
	"github.com/nfrund/livechat/internal/middleware"
	"github.com/nfrund/livechat/internal/notify"
	"github.com/nfrund/livechat/internal/rendering"
	"github.com/nfrund/livechat/internal/view"
	"github.com/nfrund/livechat/web/src/templates/partials"
	"maragu.dev/gomponents"
)

// LiveDependencies holds what a live connection needs.
type LiveDependencies struct {
	Fetcher  messagesync.Fetcher
	Feed     messagesync.Feed
	Renderer rendering.Renderer
	Interval time.Duration
	Limit    int
	Logger   *slog.Logger
	// InsecureSkipVerify disables the origin check, for tests and local use.
	InsecureSkipVerify bool
}

// LiveHandler upgrades GET /ws requests.
type LiveHandler struct {
	deps LiveDependencies
}

// NewLiveHandler creates a LiveHandler.
func NewLiveHandler(deps LiveDependencies) *LiveHandler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Renderer == nil {
		deps.Renderer = rendering.NewUniversalRenderer()
	}
	return &LiveHandler{deps: deps}
}

// Serve runs one live connection until the client disconnects. It must be
// mounted behind middleware.RequireSession.
func (h *LiveHandler) Serve(c echo.Context) error {
	username := middleware.Username(c)
	if username == "" {
		return c.String(http.StatusUnauthorized, "not signed in")
	}

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		InsecureSkipVerify: h.deps.InsecureSkipVerify,
	})
	if err != nil {
		h.deps.Logger.Error("Failed to upgrade connection to WebSocket", "error", err)
		return nil
	}

	client := newClient(conn, username, h.deps.Logger)
	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	synchronizer := messagesync.New(h.deps.Fetcher, h.deps.Feed,
		messagesync.WithInterval(h.deps.Interval),
		messagesync.WithLimit(h.deps.Limit),
		messagesync.WithLogger(client.logger),
		messagesync.WithNotifier(h.notifier(ctx, client)),
		messagesync.WithListener(h.listener(ctx, client)),
	)

	go client.writePump()
	if err := synchronizer.Start(ctx); err != nil {
		client.Close()
		return nil
	}
	client.logger.Info("Live view connected", "event", "live_connected")

	client.readPump(ctx)

	cancel()
	synchronizer.Stop()
	client.Close()
	client.logger.Info("Live view disconnected", "event", "live_disconnected")
	return nil
}

// listener pushes the message list on every state. The first state that is
// no longer loading also replaces the composer, which the page renders
// disabled while loading. Later frames leave it alone so typed text survives.
func (h *LiveHandler) listener(ctx context.Context, client *Client) messagesync.Listener {
	enabled := false
	return func(st messagesync.State) {
		frame := gomponents.Group{partials.MessageListOOB(st.Messages, st.Loading)}
		if !st.Loading && !enabled {
			frame = append(frame, partials.ComposerOOB(partials.ComposerData{}))
			enabled = true
		}
		h.push(ctx, client, frame)
	}
}

func (h *LiveHandler) notifier(ctx context.Context, client *Client) notify.Notifier {
	return notify.Func(func(_ context.Context, n notify.Notice) {
		h.push(ctx, client, partials.ToastsOOB(view.FlashFromNotices([]notify.Notice{n})))
	})
}

func (h *LiveHandler) push(ctx context.Context, client *Client, component any) {
	frame, err := h.deps.Renderer.RenderComponent(ctx, component)
	if err != nil {
		client.logger.Error("Failed to render live frame", "error", err)
		return
	}
	client.SendMessage(frame)
}
