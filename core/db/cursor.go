package db

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fbz-tec/pggeojson/internal/logger"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type pgCursor struct {
	tx     pgx.Tx
	name   string
	closed bool
}

// newCursorName returns a cursor name unique within the session and well
// under the identifier length limit regardless of table name length.
func newCursorName() string {
	return "geojson_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

func (c *pgCursor) FetchBatch(ctx context.Context, n int) ([]pgtype.Text, error) {
	if c.closed {
		return nil, fmt.Errorf("cursor %s is closed", c.name)
	}
	if n < 1 {
		return nil, fmt.Errorf("batch size must be at least 1, got %d", n)
	}

	start := time.Now()
	fetch := "FETCH FORWARD " + strconv.Itoa(n) + " FROM " + pgx.Identifier{c.name}.Sanitize()
	rows, err := c.tx.Query(ctx, fetch)
	if err != nil {
		return nil, fmt.Errorf("fetch from cursor failed: %w", err)
	}

	batch, err := pgx.CollectRows(rows, pgx.RowTo[pgtype.Text])
	if err != nil {
		return nil, fmt.Errorf("error reading batch: %w", err)
	}
	logger.Debug("Fetched %d rows in %v", len(batch), time.Since(start))
	return batch, nil
}

// Close closes the cursor and ends the read-only transaction. Both steps
// are attempted even when the context is already done.
func (c *pgCursor) Close(ctx context.Context) error {
	if c.closed {
		return nil
	}
	c.closed = true

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	var err error
	if _, cerr := c.tx.Exec(ctx, "CLOSE "+pgx.Identifier{c.name}.Sanitize()); cerr != nil {
		// an aborted transaction rejects CLOSE; rollback below releases it anyway
		logger.Debug("Error closing cursor %s: %v", c.name, cerr)
	}
	if rerr := c.tx.Rollback(ctx); rerr != nil && !errors.Is(rerr, pgx.ErrTxClosed) {
		err = fmt.Errorf("error ending cursor transaction: %w", rerr)
	}
	logger.Debug("Cursor %s closed", c.name)
	return err
}
