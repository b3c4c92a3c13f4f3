package websocket

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
)

const (
	sendBuffer   = 256
	writeTimeout = 10 * time.Second
)

// Client is one connected browser tab.
type Client struct {
	ID       string
	Username string

	conn   *websocket.Conn
	logger *slog.Logger

	mu     sync.RWMutex
	send   chan []byte
	closed bool
}

func newClient(conn *websocket.Conn, username string, logger *slog.Logger) *Client {
	id := uuid.New().String()
	return &Client{
		ID:       id,
		Username: username,
		conn:     conn,
		logger:   logger.With("clientID", id, "username", username),
		send:     make(chan []byte, sendBuffer),
	}
}

// SendMessage queues a frame. It never blocks: a full buffer drops the
// frame, and the next state push supersedes it anyway.
func (c *Client) SendMessage(msg []byte) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		c.logger.Warn("Client send channel full, dropping frame")
		return false
	}
}

// Close stops the write pump after the queued frames are flushed.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump discards incoming frames and returns when the peer goes away.
func (c *Client) readPump(ctx context.Context) {
	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			status := websocket.CloseStatus(err)
			switch {
			case status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway:
				c.logger.Debug("WebSocket closed by client")
			case errors.Is(err, context.Canceled):
			default:
				c.logger.Debug("WebSocket read ended", "error", err)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	defer c.conn.Close(websocket.StatusNormalClosure, "server closing")

	for message := range c.send {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		err := c.conn.Write(ctx, websocket.MessageText, message)
		cancel()
		if err != nil {
			c.logger.Warn("WebSocket write error", "error", err)
			return
		}
	}
}
