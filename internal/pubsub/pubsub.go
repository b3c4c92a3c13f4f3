package pubsub

import (
	"context"
)

// Message is the structure passed between components on the bus.
type Message struct {
	// Topic identifies the channel the message belongs to (e.g. "messages.changed").
	Topic string
	// UserID identifies the user who initiated the message, when known.
	UserID string
	// Payload contains the raw message data, usually JSON.
	Payload []byte
	// Metadata can contain arbitrary key-value pairs for context.
	Metadata map[string]string
}

// Handler defines the function signature for processing a received message.
type Handler func(ctx context.Context, msg Message) error

// Publisher defines the contract for sending messages to the Pub/Sub system.
type Publisher interface {
	Publish(ctx context.Context, msg Message) error
	Close() error
}

// Subscriber defines the contract for receiving messages from the Pub/Sub system.
type Subscriber interface {
	// Subscribe starts delivering messages for topic to handler in the
	// background and returns once the subscription is active. Delivery stops
	// when ctx is cancelled. Messages of one subscription are handled one at
	// a time, in publish order.
	Subscribe(ctx context.Context, topic string, handler Handler) error
	Close() error
}

// Bus is a Publisher and Subscriber backed by the same transport.
type Bus interface {
	Publisher
	Subscriber
}

const (
	// Metadata keys used to carry Message fields through the transports.
	metaKeyUserID = "user_id"
	metaKeyTopic  = "topic"

	// MetaKeyOrigin names the process that published a message.
	MetaKeyOrigin = "origin"
)
