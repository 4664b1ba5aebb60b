package exporters

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/fbz-tec/pggeojson/core/db"
	"github.com/jackc/pgx/v5/pgtype"
)

// fakeStore serves a fixed list of feature texts through fakeCursor.
type fakeStore struct {
	mu sync.Mutex

	rows       []pgtype.Text
	count      int64
	countErr   error
	declareErr error
	// fetchErrAt fails the n-th FetchBatch call (1-based) with fetchErr.
	fetchErrAt int
	fetchErr   error

	countCalls   int
	declaredSQL  string
	declaredArgs []any
	cursor       *fakeCursor
	closed       bool
}

func (s *fakeStore) Connect(ctx context.Context) error { return nil }

func (s *fakeStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *fakeStore) CountRows(ctx context.Context, sql string, args ...any) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.countCalls++
	if s.countErr != nil {
		return 0, s.countErr
	}
	return s.count, nil
}

func (s *fakeStore) DeclareCursor(ctx context.Context, sql string, args ...any) (db.Cursor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.declaredSQL = sql
	s.declaredArgs = args
	if s.declareErr != nil {
		return nil, s.declareErr
	}
	s.cursor = &fakeCursor{store: s}
	return s.cursor, nil
}

type fakeCursor struct {
	store   *fakeStore
	pos     int
	fetches []int
	closes  int
}

func (c *fakeCursor) FetchBatch(ctx context.Context, n int) ([]pgtype.Text, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	c.fetches = append(c.fetches, n)
	if c.store.fetchErrAt > 0 && len(c.fetches) == c.store.fetchErrAt {
		return nil, c.store.fetchErr
	}
	end := min(c.pos+n, len(c.store.rows))
	batch := c.store.rows[c.pos:end]
	c.pos = end
	return batch, nil
}

func (c *fakeCursor) Close(ctx context.Context) error {
	c.closes++
	return nil
}

// fakeTables hands out a fresh store per connection, keyed by table name.
type fakeTables struct {
	rows     map[string][]pgtype.Text
	failing  map[string]error
	connects atomic.Int32

	mu     sync.Mutex
	stores []*fakeStore
}

func (f *fakeTables) connector() Connector {
	return func(ctx context.Context) (db.Store, error) {
		f.connects.Add(1)
		return &tableStore{tables: f}, nil
	}
}

// tableStore picks its rows from the table named in the declared SQL.
type tableStore struct {
	tables *fakeTables
	fakeStore
}

func (s *tableStore) DeclareCursor(ctx context.Context, sql string, args ...any) (db.Cursor, error) {
	for name, err := range s.tables.failing {
		if containsTable(sql, name) {
			return nil, err
		}
	}
	for name, rows := range s.tables.rows {
		if containsTable(sql, name) {
			s.rows = rows
		}
	}
	s.tables.mu.Lock()
	s.tables.stores = append(s.tables.stores, &s.fakeStore)
	s.tables.mu.Unlock()
	return s.fakeStore.DeclareCursor(ctx, sql, args...)
}

func containsTable(sql, name string) bool {
	return strings.Contains(sql, fmt.Sprintf(`."%s" AS`, name))
}

func text(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func pointFeature(id int) string {
	return fmt.Sprintf(`{"type":"Feature","geometry":{"type":"Point","coordinates":[%d,%d]},"properties":{"id":%d}}`, id, id+1, id)
}

func pointRows(n int) []pgtype.Text {
	rows := make([]pgtype.Text, n)
	for i := range rows {
		rows[i] = text(pointFeature(i + 1))
	}
	return rows
}
