package messagesync

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nfrund/livechat/internal/database"
	"github.com/nfrund/livechat/internal/pubsub"
)

// Feed is a source of pushed changes. handle is called sequentially in
// arrival order until the returned cancel function is called or ctx ends.
type Feed interface {
	Subscribe(ctx context.Context, handle func(Change)) (cancel func(), err error)
}

// LiveFeed reads changes directly from a backend live query on the
// messages table.
type LiveFeed struct {
	live   database.LiveQueryService
	logger *slog.Logger
}

// NewLiveFeed creates a LiveFeed.
func NewLiveFeed(live database.LiveQueryService, logger *slog.Logger) *LiveFeed {
	if logger == nil {
		logger = slog.Default()
	}
	return &LiveFeed{live: live, logger: logger}
}

// Subscribe implements Feed.
func (f *LiveFeed) Subscribe(ctx context.Context, handle func(Change)) (func(), error) {
	sub, err := f.live.Subscribe(ctx, database.MessagesTable, func(ctx context.Context, action database.LiveQueryAction, data any) {
		change, ok, err := ChangeFromLive(action, data)
		if err != nil {
			f.logger.WarnContext(ctx, "Dropping undecodable live notification", "action", action, "error", err)
			return
		}
		if ok {
			handle(change)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("subscribe to %s: %w", database.MessagesTable, err)
	}
	return func() {
		if err := f.live.Unsubscribe(sub.ID); err != nil {
			f.logger.Warn("Failed to stop live query", "subID", sub.ID, "error", err)
		}
	}, nil
}

// ChangeFromLive maps a live notification to a Change. Updates are not
// part of the chat model and yield ok == false.
func ChangeFromLive(action database.LiveQueryAction, data any) (Change, bool, error) {
	var kind ChangeKind
	switch action {
	case database.ActionCreate:
		kind = ChangeInsert
	case database.ActionDelete:
		kind = ChangeDelete
	default:
		return Change{}, false, nil
	}

	msg, err := database.DecodeMessage(data)
	if err != nil {
		return Change{}, false, err
	}
	return Change{Kind: kind, Message: msg}, true, nil
}

// BusFeed reads changes republished on the bus under ChangesEvent.
type BusFeed struct {
	sub    pubsub.Subscriber
	origin string
}

// NewBusFeed creates a BusFeed. When origin is set, only changes published
// with that pubsub.MetaKeyOrigin are delivered. Every process runs its own
// relay over the same backend, so on a shared transport the copies relayed
// by other processes would duplicate each change.
func NewBusFeed(sub pubsub.Subscriber, origin string) *BusFeed {
	return &BusFeed{sub: sub, origin: origin}
}

// Subscribe implements Feed.
func (f *BusFeed) Subscribe(ctx context.Context, handle func(Change)) (func(), error) {
	subCtx, cancel := context.WithCancel(ctx)
	err := f.sub.Subscribe(subCtx, ChangesEvent.Name(), func(_ context.Context, msg pubsub.Message) error {
		if f.origin != "" && msg.Metadata[pubsub.MetaKeyOrigin] != f.origin {
			return nil
		}
		change, err := pubsub.Decode(ChangesEvent, msg)
		if err != nil {
			return err
		}
		handle(change)
		return nil
	})
	if err != nil {
		cancel()
		return nil, fmt.Errorf("subscribe to %s: %w", ChangesEvent.Name(), err)
	}
	return cancel, nil
}
