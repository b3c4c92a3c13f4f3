package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/connection"
	"github.com/surrealdb/surrealdb.go/pkg/models"
)

// LiveQueryAction represents the type of change in a live query update.
type LiveQueryAction string

const (
	ActionCreate LiveQueryAction = "CREATE"
	ActionUpdate LiveQueryAction = "UPDATE"
	ActionDelete LiveQueryAction = "DELETE"
)

// LiveQueryHandler is called for every notification of a subscription, one
// at a time and in the order the backend delivered them.
type LiveQueryHandler func(ctx context.Context, action LiveQueryAction, data any)

// Subscription represents an active live query subscription.
type Subscription struct {
	ID    string
	Table string
}

// LiveQueryService provides real-time table subscriptions.
type LiveQueryService interface {
	Subscribe(ctx context.Context, table string, handler LiveQueryHandler) (*Subscription, error)
	Unsubscribe(subID string) error
}

// SurrealLiveQueryService implements LiveQueryService with SurrealDB
// LIVE SELECT queries.
type SurrealLiveQueryService struct {
	conn DBConnection

	subscriptions sync.Map // map[string]*subscriptionState
}

type subscriptionState struct {
	id          string
	table       string
	handler     LiveQueryHandler
	cancel      context.CancelFunc
	liveQueryID string
	done        chan struct{}
}

// NewSurrealLiveQueryService creates a new live query service.
func NewSurrealLiveQueryService(conn DBConnection) *SurrealLiveQueryService {
	return &SurrealLiveQueryService{conn: conn}
}

// Subscribe starts LIVE SELECT * FROM table and routes its notifications to
// handler until Unsubscribe is called.
func (s *SurrealLiveQueryService) Subscribe(ctx context.Context, table string, handler LiveQueryHandler) (*Subscription, error) {
	if handler == nil {
		return nil, errors.New("handler cannot be nil")
	}
	if !isIdentifier(table) {
		return nil, NewDBError(ErrInvalidInput, fmt.Sprintf("invalid table name %q", table))
	}

	query := "LIVE SELECT * FROM " + table
	subID := uuid.New().String()

	subCtx, cancel := context.WithCancel(context.Background())
	state := &subscriptionState{
		id:      subID,
		table:   table,
		handler: handler,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		slog.InfoContext(ctx, "Creating live query subscription", "subID", subID, "table", table)

		results, err := surrealdb.Query[any](ctx, db, query, nil)
		if err != nil {
			return fmt.Errorf("failed to execute live query: %w", err)
		}
		if results == nil || len(*results) == 0 {
			return errors.New("live query returned no results")
		}

		result := (*results)[0]
		if result.Status != "OK" {
			return fmt.Errorf("live query failed with status: %s", result.Status)
		}

		liveQueryID, err := liveQueryIDFrom(result.Result)
		if err != nil {
			return err
		}
		state.liveQueryID = liveQueryID

		notifications, err := db.LiveNotifications(liveQueryID)
		if err != nil {
			return fmt.Errorf("failed to get notification channel: %w", err)
		}

		slog.InfoContext(ctx, "Live query established", "subID", subID, "liveQueryID", liveQueryID)

		go s.listen(subCtx, state, notifications)
		go s.cleanupOnCancel(subCtx, state, db)
		return nil
	})
	if err != nil {
		cancel()
		return nil, WrapError(err, "start live query")
	}

	s.subscriptions.Store(subID, state)
	return &Subscription{ID: subID, Table: table}, nil
}

// Unsubscribe stops a subscription and waits for its handler to return.
// Unknown ids are ignored.
func (s *SurrealLiveQueryService) Unsubscribe(subID string) error {
	value, ok := s.subscriptions.LoadAndDelete(subID)
	if !ok {
		return nil
	}
	state := value.(*subscriptionState)
	state.cancel()
	<-state.done
	slog.Info("Live query subscription removed", "subID", subID)
	return nil
}

// listen delivers notifications to the handler inline so that the handler
// observes them in arrival order.
func (s *SurrealLiveQueryService) listen(ctx context.Context, state *subscriptionState, notifications <-chan connection.Notification) {
	defer close(state.done)

	for {
		select {
		case <-ctx.Done():
			return

		case notification, ok := <-notifications:
			if !ok {
				slog.Debug("Live query notification channel closed", "subID", state.id)
				return
			}

			action, known := mapAction(notification)
			if !known {
				slog.Warn("Unknown notification action", "subID", state.id, "action", notification.Action)
				continue
			}

			s.dispatch(ctx, state, action, notification.Result)
		}
	}
}

func (s *SurrealLiveQueryService) dispatch(ctx context.Context, state *subscriptionState, action LiveQueryAction, data any) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Panic in live query handler", "subID", state.id, "panic", r)
		}
	}()
	state.handler(ctx, action, data)
}

func (s *SurrealLiveQueryService) cleanupOnCancel(ctx context.Context, state *subscriptionState, db *surrealdb.DB) {
	<-ctx.Done()

	cleanupCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.CloseLiveNotifications(state.liveQueryID); err != nil {
		slog.Warn("Failed to close live notifications", "error", err, "liveQueryID", state.liveQueryID)
	}

	params := map[string]any{"liveQueryID": state.liveQueryID}
	if _, err := surrealdb.Query[any](cleanupCtx, db, "KILL $liveQueryID", params); err != nil {
		slog.Warn("Failed to kill live query", "error", err, "liveQueryID", state.liveQueryID)
		return
	}
	slog.Debug("Killed live query", "liveQueryID", state.liveQueryID)
}

func mapAction(n connection.Notification) (LiveQueryAction, bool) {
	switch n.Action {
	case connection.CreateAction:
		return ActionCreate, true
	case connection.UpdateAction:
		return ActionUpdate, true
	case connection.DeleteAction:
		return ActionDelete, true
	default:
		return "", false
	}
}

// liveQueryIDFrom extracts the live query UUID, which the driver may return
// as a string, a models.UUID or a map holding an "id" field.
func liveQueryIDFrom(result any) (string, error) {
	var id string
	switch v := result.(type) {
	case string:
		id = v
	case models.UUID:
		id = v.String()
	case map[string]any:
		switch inner := v["id"].(type) {
		case string:
			id = inner
		case models.UUID:
			id = inner.String()
		default:
			return "", fmt.Errorf("live query result map does not contain 'id' field: %+v", v)
		}
	case nil:
		return "", errors.New("live query returned nil result")
	default:
		return "", fmt.Errorf("unexpected live query result type: %T", result)
	}
	if id == "" {
		return "", errors.New("live query returned empty UUID")
	}
	return id, nil
}

func isIdentifier(name string) bool {
	if name == "" {
		return false
	}
	return strings.IndexFunc(name, func(r rune) bool {
		return !(r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9')
	}) == -1
}
