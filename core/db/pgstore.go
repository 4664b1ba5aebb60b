package db

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/fbz-tec/pggeojson/internal/logger"
	"github.com/jackc/pgx/v5"
)

// ConnectTimeout bounds connection establishment and the initial ping.
const ConnectTimeout = 10 * time.Second

// SessionOptions are run-time parameters applied to every new connection.
type SessionOptions struct {
	ApplicationName  string
	StatementTimeout time.Duration
}

// PgStore represents a PostgreSQL database store connection.
type PgStore struct {
	dsn     string
	session SessionOptions
	conn    *pgx.Conn
}

// NewPgStore creates a new PostgreSQL store instance with the given DSN.
func NewPgStore(dsn string, session SessionOptions) *PgStore {
	return &PgStore{dsn: dsn, session: session}
}

// Connect establishes a connection to the PostgreSQL database.
// Returns an error if the connection fails or if ping fails.
func (s *PgStore) Connect(ctx context.Context) error {
	if s.conn != nil {
		return nil // already connected
	}

	cfg, err := pgx.ParseConfig(s.dsn)
	if err != nil {
		return fmt.Errorf("invalid connection string: %w", err)
	}
	if s.session.ApplicationName != "" {
		cfg.RuntimeParams["application_name"] = s.session.ApplicationName
	}
	if s.session.StatementTimeout > 0 {
		cfg.RuntimeParams["statement_timeout"] = strconv.FormatInt(s.session.StatementTimeout.Milliseconds(), 10)
	}

	ctx, cancel := context.WithTimeout(ctx, ConnectTimeout)
	defer cancel()

	logger.Debug("Connection timeout: %v", ConnectTimeout)
	logger.Debug("Attempting to connect to database host: %s", sanitizeDSN(s.dsn))

	conn, err := pgx.ConnectConfig(ctx, cfg)
	if err != nil {
		return fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		conn.Close(context.Background())
		return fmt.Errorf("unable to ping database: %w", err)
	}

	logger.Debug("Database ping successful")
	s.conn = conn
	return nil
}

// Close closes the database connection.
func (s *PgStore) Close() error {
	if s.conn == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := s.conn.Close(ctx)
	s.conn = nil
	if err != nil {
		logger.Debug("Error closing database connection: %v", err)
	} else {
		logger.Debug("Database connection closed")
	}
	return err
}

// CountRows executes a query returning a single integer.
func (s *PgStore) CountRows(ctx context.Context, sql string, args ...any) (int64, error) {
	if s.conn == nil {
		return 0, fmt.Errorf("database not connected")
	}

	logger.Debug("Count query: %s", sql)

	start := time.Now()
	var n int64
	if err := s.conn.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count query failed: %w", err)
	}
	logger.Debug("Count query returned %d in %v", n, time.Since(start))
	return n, nil
}

// DeclareCursor begins a read-only transaction and declares a uniquely
// named cursor bound to sql and args.
func (s *PgStore) DeclareCursor(ctx context.Context, sql string, args ...any) (Cursor, error) {
	if s.conn == nil {
		return nil, fmt.Errorf("database not connected")
	}

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{AccessMode: pgx.ReadOnly})
	if err != nil {
		return nil, fmt.Errorf("unable to begin transaction: %w", err)
	}

	name := newCursorName()
	logger.Debug("Declaring cursor %s", name)

	start := time.Now()
	declare := "DECLARE " + pgx.Identifier{name}.Sanitize() + " NO SCROLL CURSOR FOR " + sql
	if _, err := tx.Exec(ctx, declare, args...); err != nil {
		_ = tx.Rollback(context.Background())
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	logger.Debug("Cursor declared in %v", time.Since(start))

	return &pgCursor{tx: tx, name: name}, nil
}

// sanitizeDSN masks the password inside a PostgreSQL DSN before logging.
func sanitizeDSN(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil {
		return "<invalid-dsn>"
	}

	var userInfo string
	if u.User != nil {
		username := u.User.Username()
		if _, hasPwd := u.User.Password(); hasPwd {
			userInfo = fmt.Sprintf("%s:***@", username)
		} else {
			userInfo = fmt.Sprintf("%s@", username)
		}
	}

	path := u.Path
	if path == "" {
		path = "/"
	}

	return fmt.Sprintf("%s://%s%s%s", u.Scheme, userInfo, u.Host, path)
}
