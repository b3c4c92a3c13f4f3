package pubsub

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// NatsBridge implements Bus on a NATS server so that several livechat
// processes share one stream of changes.
type NatsBridge struct {
	conn *nats.Conn
}

// NewNatsBridge connects to the NATS server at url.
func NewNatsBridge(url string, opts ...nats.Option) (*NatsBridge, error) {
	defaults := []nats.Option{
		nats.Name("livechat"),
		nats.Timeout(5 * time.Second),
		nats.ReconnectWait(2 * time.Second),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("NATS disconnected", "event", "nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("NATS reconnected", "event", "nats_reconnected", "url", nc.ConnectedUrlRedacted())
		}),
		nats.DrainTimeout(10 * time.Second),
	}

	nc, err := nats.Connect(url, append(defaults, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}
	return &NatsBridge{conn: nc}, nil
}

// Publish implements the Publisher interface.
func (nb *NatsBridge) Publish(_ context.Context, msg Message) error {
	return nb.conn.PublishMsg(mapToNatsMessage(msg))
}

// Subscribe implements the Subscriber interface. The NATS client invokes
// the callback of one subscription sequentially.
func (nb *NatsBridge) Subscribe(ctx context.Context, topic string, handler Handler) error {
	sub, err := nb.conn.Subscribe(topic, func(m *nats.Msg) {
		if err := handler(ctx, mapFromNatsMessage(m)); err != nil {
			slog.Error("Failed to handle message", "topic", topic, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	go func() {
		<-ctx.Done()
		if err := sub.Unsubscribe(); err != nil && nb.conn.IsConnected() {
			slog.Debug("NATS unsubscribe failed", "topic", topic, "error", err)
		}
	}()
	return nil
}

// Close drains pending messages and closes the connection.
func (nb *NatsBridge) Close() error {
	return nb.conn.Drain()
}

func mapToNatsMessage(msg Message) *nats.Msg {
	m := nats.NewMsg(msg.Topic)
	m.Data = msg.Payload
	if msg.UserID != "" {
		m.Header.Set(metaKeyUserID, msg.UserID)
	}
	for k, v := range msg.Metadata {
		m.Header.Set(k, v)
	}
	return m
}

func mapFromNatsMessage(m *nats.Msg) Message {
	metadata := make(map[string]string, len(m.Header))
	for k := range m.Header {
		if k == metaKeyUserID {
			continue
		}
		metadata[k] = m.Header.Get(k)
	}
	return Message{
		Topic:    m.Subject,
		UserID:   m.Header.Get(metaKeyUserID),
		Payload:  m.Data,
		Metadata: metadata,
	}
}
