package app

import (
	"log/slog"

	"github.com/nfrund/livechat/internal/database"
	"github.com/nfrund/livechat/internal/messagesync"
	"github.com/nfrund/livechat/internal/pubsub"
	"github.com/nfrund/livechat/internal/relay"
)

// Dependencies holds the core services required by the server modules.
// Origin identifies this process on the bus.
type Dependencies struct {
	LiveQueryService database.LiveQueryService
	Publisher        pubsub.Publisher
	Logger           *slog.Logger
	RelayEnabled     bool
	Origin           string
}

// relayDeps creates the dependency struct for the relay module.
func relayDeps(deps Dependencies) relay.Dependencies {
	return relay.Dependencies{
		Source:    messagesync.NewLiveFeed(deps.LiveQueryService, deps.Logger),
		Publisher: deps.Publisher,
		Origin:    deps.Origin,
		Logger:    deps.Logger,
	}
}

// LiveViewFeed returns the feed of the web live views. With the relay
// running they read its changes from the bus; without it every live view
// opens its own live query.
func LiveViewFeed(deps Dependencies, sub pubsub.Subscriber) messagesync.Feed {
	if deps.RelayEnabled {
		return messagesync.NewBusFeed(sub, deps.Origin)
	}
	return messagesync.NewLiveFeed(deps.LiveQueryService, deps.Logger)
}
