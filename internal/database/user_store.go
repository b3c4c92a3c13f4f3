package database

import (
	"context"
	"strings"

	"github.com/nfrund/livechat/internal/domain"
	"github.com/surrealdb/surrealdb.go"
)

// SurrealUserStore reads and writes the users table.
//
// Credentials are stored and compared verbatim. This mirrors the existing
// data set and is a known security defect: nothing here hashes passwords.
type SurrealUserStore struct {
	conn DBConnection
}

// NewSurrealUserStore creates a new SurrealUserStore.
func NewSurrealUserStore(conn DBConnection) *SurrealUserStore {
	return &SurrealUserStore{conn: conn}
}

// FindByCredentials returns the user matching both fields, or nil.
func (s *SurrealUserStore) FindByCredentials(ctx context.Context, username, password string) (*domain.User, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.conn.GetDBQueryTimeout(), ContextKeyQueryTimeout)
	defer cancel()

	query := "SELECT * FROM users WHERE username = $username AND password_hash = $password LIMIT 1"
	params := map[string]any{"username": username, "password": password}

	var user *domain.User
	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		var err error
		user, err = QueryOne[domain.User](ctx, db, query, params)
		return err
	})
	if err != nil {
		return nil, WrapError(err, "find user by credentials")
	}
	return user, nil
}

// FindByUsername returns the user with the given name, or nil.
func (s *SurrealUserStore) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := getTimeoutFromContext(ctx, s.conn.GetDBQueryTimeout(), ContextKeyQueryTimeout)
	defer cancel()

	query := "SELECT * FROM users WHERE username = $username"
	params := map[string]any{"username": username}

	var user *domain.User
	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		var err error
		user, err = QueryOne[domain.User](ctx, db, query, params)
		return err
	})
	if err != nil {
		return nil, WrapError(err, "find user by username")
	}
	return user, nil
}

// Create inserts a user. A unique index violation on username is reported
// as domain.ErrUsernameTaken.
func (s *SurrealUserStore) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, NewDBError(ErrInvalidInput, "user cannot be nil")
	}

	ctx, cancel := getTimeoutFromContext(ctx, s.conn.GetDBExecuteTimeout(), ContextKeyExecuteTimeout)
	defer cancel()

	query := "CREATE users CONTENT { username: $username, password_hash: $password_hash, created_at: time::now() }"
	params := map[string]any{
		"username":      user.Username,
		"password_hash": user.PasswordHash,
	}

	var created *domain.User
	err := s.conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		var err error
		created, err = QueryOne[domain.User](ctx, db, query, params)
		return err
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrUsernameTaken
		}
		return nil, WrapError(err, "create user")
	}
	if created == nil {
		return nil, NewDBError(ErrEmptyResult, "create user")
	}
	return created, nil
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "already contains") || strings.Contains(msg, "already exists")
}
