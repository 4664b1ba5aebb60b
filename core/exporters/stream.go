package exporters

import (
	"context"
	"fmt"

	"github.com/fbz-tec/pggeojson/core/db"
	"github.com/fbz-tec/pggeojson/internal/logger"
)

// streamFeatures pulls batches from cur until it is exhausted and hands
// every non-null feature text to fw. At most one batch is held at a time.
// It returns the number of null rows skipped.
func streamFeatures(ctx context.Context, cur db.Cursor, batchSize int, fw FeatureWriter, progress Reporter) (int64, error) {
	var skipped int64
	batches := 0

	for {
		batch, err := cur.FetchBatch(ctx, batchSize)
		if err != nil {
			return skipped, fmt.Errorf("error fetching batch %d: %w", batches+1, err)
		}
		if len(batch) == 0 {
			logger.Debug("Cursor exhausted after %d batches", batches)
			return skipped, nil
		}
		batches++

		for _, row := range batch {
			if !row.Valid {
				skipped++
				continue
			}
			if err := fw.WriteFeature(row.String); err != nil {
				return skipped, err
			}
			progress.Update(fw.Count())
		}

		logger.Debug("Batch %d: %d rows, %d features written", batches, len(batch), fw.Count())
	}
}
