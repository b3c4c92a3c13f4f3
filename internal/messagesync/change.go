package messagesync

import (
	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/internal/pubsub"
)

// ChangeKind is the kind of an incremental change.
type ChangeKind string

const (
	ChangeInsert ChangeKind = "insert"
	ChangeDelete ChangeKind = "delete"
)

// Change is one incremental update pushed by the backend. For deletes only
// Message.ID is guaranteed to be set.
type Change struct {
	Kind    ChangeKind     `json:"kind"`
	Message domain.Message `json:"message"`
}

// ChangesEvent is the bus topic on which changes to the messages table are
// republished.
var ChangesEvent = pubsub.NewEvent[Change]("messages.changed")
