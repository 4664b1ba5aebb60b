package db

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Store defines the database operations an export needs.
// Implementations own exactly one connection.
type Store interface {
	Connect(ctx context.Context) error
	Close() error
	// CountRows runs a single-value COUNT query.
	CountRows(ctx context.Context, sql string, args ...any) (int64, error)
	// DeclareCursor opens a server-side cursor over sql.
	DeclareCursor(ctx context.Context, sql string, args ...any) (Cursor, error)
}

// Cursor is a forward-only, non-restartable server-side result stream.
type Cursor interface {
	// FetchBatch returns the next at most n rows of the single text column.
	// An empty batch means the stream is exhausted.
	FetchBatch(ctx context.Context, n int) ([]pgtype.Text, error)
	// Close releases the cursor and its transaction. It is safe to call
	// more than once.
	Close(ctx context.Context) error
}
