package database

import (
	"context"
	"fmt"
	"time"

	"github.com/nfrund/livechat/internal/domain"
	"github.com/surrealdb/surrealdb.go"
	surrealmodels "github.com/surrealdb/surrealdb.go/pkg/models"
)

// MessagesTable is the table holding chat messages.
const MessagesTable = "messages"

// messageRecord is the row shape of the messages table.
type messageRecord struct {
	ID        *surrealmodels.RecordID       `json:"id,omitempty"`
	Content   string                        `json:"content"`
	UserName  string                        `json:"user_name"`
	AvatarURL string                        `json:"avatar_url"`
	CreatedAt *surrealmodels.CustomDateTime `json:"created_at,omitempty"`
}

func (r messageRecord) toDomain() domain.Message {
	msg := domain.Message{
		ID:        recordIDString(r.ID),
		Content:   r.Content,
		UserName:  r.UserName,
		AvatarURL: r.AvatarURL,
	}
	if r.CreatedAt != nil {
		msg.CreatedAt = r.CreatedAt.Time
	}
	return msg
}

// recordIDString renders a record id as "table:key".
func recordIDString(id *surrealmodels.RecordID) string {
	if id == nil {
		return ""
	}
	return fmt.Sprintf("%s:%v", id.Table, id.ID)
}

// SurrealMessageStore reads and writes the messages table.
type SurrealMessageStore struct {
	conn DBConnection
}

// NewSurrealMessageStore creates a new SurrealMessageStore.
func NewSurrealMessageStore(conn DBConnection) *SurrealMessageStore {
	return &SurrealMessageStore{conn: conn}
}

// Latest returns at most limit messages ordered newest first.
func (s *SurrealMessageStore) Latest(ctx context.Context, limit int) ([]domain.Message, error) {
	if limit <= 0 {
		return nil, NewDBError(ErrInvalidInput, "limit must be positive")
	}

	ctx, cancel := getTimeoutFromContext(ctx, s.conn.GetDBQueryTimeout(), ContextKeyQueryTimeout)
	defer cancel()

	query := "SELECT * FROM messages ORDER BY created_at DESC LIMIT $limit"
	params := map[string]any{"limit": limit}

	var rows []messageRecord
	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		var err error
		rows, err = Query[messageRecord](ctx, db, query, params)
		return err
	})
	if err != nil {
		return nil, WrapError(err, "list latest messages")
	}

	messages := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, row.toDomain())
	}
	return messages, nil
}

// Create inserts msg. The backend assigns the id and the timestamp.
func (s *SurrealMessageStore) Create(ctx context.Context, msg *domain.Message) (*domain.Message, error) {
	if msg == nil {
		return nil, NewDBError(ErrInvalidInput, "message cannot be nil")
	}
	if err := msg.Validate(); err != nil {
		return nil, NewDBError(fmt.Errorf("%w: %w", ErrInvalidInput, err), "validate message")
	}

	ctx, cancel := getTimeoutFromContext(ctx, s.conn.GetDBExecuteTimeout(), ContextKeyExecuteTimeout)
	defer cancel()

	query := "CREATE messages CONTENT { content: $content, user_name: $user_name, avatar_url: $avatar_url, created_at: time::now() }"
	params := map[string]any{
		"content":    msg.Content,
		"user_name":  msg.UserName,
		"avatar_url": msg.AvatarURL,
	}

	var created *messageRecord
	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		var err error
		created, err = QueryOne[messageRecord](ctx, db, query, params)
		return err
	})
	if err != nil {
		return nil, WrapError(err, "create message")
	}
	if created == nil {
		return nil, NewDBError(ErrEmptyResult, "create message")
	}

	out := created.toDomain()
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	return &out, nil
}

// Delete removes a message by its "messages:key" id.
func (s *SurrealMessageStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return NewDBError(ErrInvalidInput, "id cannot be empty")
	}

	ctx, cancel := getTimeoutFromContext(ctx, s.conn.GetDBExecuteTimeout(), ContextKeyExecuteTimeout)
	defer cancel()

	query := "DELETE type::thing($id)"
	params := map[string]any{"id": id}

	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		return Execute(ctx, db, query, params)
	})
	return WrapError(err, "delete message")
}
