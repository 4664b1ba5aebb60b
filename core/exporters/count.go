package exporters

import (
	"context"
	"time"

	"github.com/fbz-tec/pggeojson/core/db"
	"github.com/fbz-tec/pggeojson/core/query"
	"github.com/fbz-tec/pggeojson/internal/logger"
)

// estimateTotal runs the advisory row count. It never fails: any error is
// logged and reported as an unknown total.
func estimateTotal(ctx context.Context, store db.Store, t query.Table, label string) (int64, bool) {
	stmt, err := query.Count(t)
	if err != nil {
		logger.Warn("Row count for %s unavailable: %v", label, err)
		return 0, false
	}

	start := time.Now()
	total, err := store.CountRows(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		logger.Warn("Row count for %s unavailable, progress will show counts only: %v", label, err)
		return 0, false
	}

	logger.Debug("Estimated %d rows for %s in %v", total, label, time.Since(start))
	return total, true
}
