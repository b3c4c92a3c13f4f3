// Package compose validates and submits new chat messages.
package compose

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/internal/notify"
)

// MsgSendFailed is the notification shown when the backend rejects a write.
const MsgSendFailed = "Failed to send message"

// Writer stores a new message. domain.MessageRepository satisfies it.
type Writer interface {
	Create(ctx context.Context, msg *domain.Message) (*domain.Message, error)
}

// Composer sends messages on behalf of one signed-in user. It never touches
// the local message list; the new message arrives through the synchronizer.
type Composer struct {
	writer   Writer
	username string
	notifier notify.Notifier
	logger   *slog.Logger
}

// New creates a Composer for username. A nil notifier discards notices.
func New(writer Writer, username string, notifier notify.Notifier, logger *slog.Logger) *Composer {
	if notifier == nil {
		notifier = notify.Discard
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{writer: writer, username: username, notifier: notifier, logger: logger}
}

// Send writes content as a new message by the composer's user. Blank content
// returns domain.ErrEmptyMessage without contacting the backend. Content is
// stored exactly as typed. Concurrent calls are independent.
func (c *Composer) Send(ctx context.Context, content string) (*domain.Message, error) {
	msg, err := domain.NewMessage(c.username, content)
	if err != nil {
		return nil, err
	}

	created, err := c.writer.Create(ctx, msg)
	if err != nil {
		c.logger.ErrorContext(ctx, "Failed to send message", "event", "compose_send_failure", "username", c.username, "error", err)
		c.notifier.Notify(ctx, notify.Error(MsgSendFailed))
		return nil, fmt.Errorf("send message: %w", err)
	}

	c.logger.DebugContext(ctx, "Message sent", "event", "compose_send", "username", c.username, "id", created.ID)
	return created, nil
}
