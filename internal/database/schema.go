package database

import (
	"context"
	"log/slog"

	"github.com/surrealdb/surrealdb.go"
)

// schemaStatements define the two tables the chat relies on. Every statement
// is idempotent so EnsureSchema can run at each start.
var schemaStatements = []string{
	"DEFINE TABLE IF NOT EXISTS users SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS users_username ON TABLE users FIELDS username UNIQUE",
	"DEFINE TABLE IF NOT EXISTS messages SCHEMALESS",
	"DEFINE INDEX IF NOT EXISTS messages_created_at ON TABLE messages FIELDS created_at",
}

// EnsureSchema creates the tables and indexes when they are missing. The
// unique username index makes concurrent signups of the same name fail on
// insert instead of producing duplicates.
func EnsureSchema(ctx context.Context, conn DBConnection) error {
	ctx, cancel := getTimeoutFromContext(ctx, conn.GetDBExecuteTimeout(), ContextKeyExecuteTimeout)
	defer cancel()

	err := conn.WithConnection(ctx, func(db *surrealdb.DB) error {
		for _, stmt := range schemaStatements {
			if err := Execute(ctx, db, stmt, nil); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return WrapError(err, "ensure schema")
	}

	slog.DebugContext(ctx, "Database schema ensured", "event", "db_schema_ensured", "version", "1.0")
	return nil
}
