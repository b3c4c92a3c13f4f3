package websocket

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/labstack/echo/v4"
	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/internal/messagesync"
	"github.com/nfrund/livechat/internal/middleware"
	"github.com/nfrund/livechat/internal/pubsub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	mu       sync.Mutex
	messages []domain.Message
	err      error
}

func (f *stubFetcher) Latest(context.Context, int) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.messages, f.err
}

func newLiveServer(t *testing.T, fetcher messagesync.Fetcher, bus pubsub.Bus) string {
	t.Helper()

	h := NewLiveHandler(LiveDependencies{
		Fetcher:            fetcher,
		Feed:               messagesync.NewBusFeed(bus, ""),
		Interval:           time.Hour,
		InsecureSkipVerify: true,
	})

	e := echo.New()
	e.GET("/ws", h.Serve, func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set(middleware.UsernameContextKey, "alice")
			return next(c)
		}
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func readFrame(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	return string(data)
}

func TestLiveHandlerPushesStates(t *testing.T) {
	bus := pubsub.NewWatermillBridge()
	t.Cleanup(func() { _ = bus.Close() })

	fetcher := &stubFetcher{messages: []domain.Message{{ID: "messages:1", Content: "first", UserName: "bob"}}}
	url := newLiveServer(t, fetcher, bus)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	initial := readFrame(t, conn)
	assert.Contains(t, initial, `id="message-list"`)
	assert.Contains(t, initial, "first")
	assert.Contains(t, initial, `id="composer"`, "the first loaded frame enables the composer")

	change := messagesync.Change{Kind: messagesync.ChangeInsert, Message: domain.Message{ID: "messages:2", Content: "second", UserName: "carol"}}
	require.NoError(t, pubsub.Publish(ctx, bus, messagesync.ChangesEvent, change))

	pushed := readFrame(t, conn)
	assert.Less(t, strings.Index(pushed, "second"), strings.Index(pushed, "first"))
	assert.NotContains(t, pushed, `id="composer"`)

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "done"))
}

type gatedFetcher struct {
	called  chan struct{}
	release chan struct{}
	once    sync.Once
}

func (f *gatedFetcher) Latest(ctx context.Context, _ int) ([]domain.Message, error) {
	f.once.Do(func() { close(f.called) })
	select {
	case <-f.release:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return []domain.Message{{ID: "messages:1", Content: "first", UserName: "bob"}}, nil
}

func TestLiveHandlerEnablesComposerWhenLoadingEnds(t *testing.T) {
	bus := pubsub.NewWatermillBridge()
	t.Cleanup(func() { _ = bus.Close() })

	fetcher := &gatedFetcher{called: make(chan struct{}), release: make(chan struct{})}
	url := newLiveServer(t, fetcher, bus)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	select {
	case <-fetcher.called:
	case <-ctx.Done():
		t.Fatal("first fetch never started")
	}

	change := messagesync.Change{Kind: messagesync.ChangeInsert, Message: domain.Message{ID: "messages:2", Content: "early", UserName: "carol"}}
	require.NoError(t, pubsub.Publish(ctx, bus, messagesync.ChangesEvent, change))

	early := readFrame(t, conn)
	assert.Contains(t, early, "skeleton")
	assert.NotContains(t, early, `id="composer"`, "a loading frame leaves the composer alone")

	close(fetcher.release)

	loaded := readFrame(t, conn)
	assert.Contains(t, loaded, "first")
	assert.Contains(t, loaded, `id="composer"`)
	assert.NotContains(t, loaded, "disabled")

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, "done"))
}

func TestLiveHandlerPushesLoadFailure(t *testing.T) {
	bus := pubsub.NewWatermillBridge()
	t.Cleanup(func() { _ = bus.Close() })

	url := newLiveServer(t, &stubFetcher{err: errors.New("db down")}, bus)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	toast := readFrame(t, conn)
	assert.Contains(t, toast, "Failed to load messages")
	assert.Contains(t, toast, `hx-swap-oob="beforeend"`)

	list := readFrame(t, conn)
	assert.Contains(t, list, "No messages yet")
}

func TestClientSendAfterClose(t *testing.T) {
	c := &Client{send: make(chan []byte, 1)}
	c.logger = testLogger()

	assert.True(t, c.SendMessage([]byte("a")))
	assert.False(t, c.SendMessage([]byte("b")), "full buffer drops")

	c.Close()
	c.Close()
	assert.False(t, c.SendMessage([]byte("c")))
}
