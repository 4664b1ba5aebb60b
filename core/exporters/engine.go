package exporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fbz-tec/pggeojson/core/config"
	"github.com/fbz-tec/pggeojson/core/db"
	"github.com/fbz-tec/pggeojson/core/metrics"
	"github.com/fbz-tec/pggeojson/core/output"
	"github.com/fbz-tec/pggeojson/core/query"
	"github.com/fbz-tec/pggeojson/internal/logger"
)

// ErrNoFeatures is returned when FailOnEmpty is set and an export produced
// no feature.
var ErrNoFeatures = errors.New("export produced no features")

// Connector opens a dedicated, connected store for one export. The export
// closes it when done.
type Connector func(ctx context.Context) (db.Store, error)

// PgConnector returns a Connector dialing PostgreSQL at dsn.
func PgConnector(dsn string, session db.SessionOptions) Connector {
	return func(ctx context.Context) (db.Store, error) {
		store := db.NewPgStore(dsn, session)
		if err := store.Connect(ctx); err != nil {
			return nil, err
		}
		return store, nil
	}
}

// Exporter runs table exports against connections from Connect.
type Exporter struct {
	Defaults config.Defaults
	Connect  Connector

	// Diagnostics receives progress lines. Nil means os.Stderr.
	Diagnostics io.Writer
	// ProgressBar draws a bar instead of progress lines.
	ProgressBar bool
	FailOnEmpty bool
	// Metrics may be nil.
	Metrics *metrics.Recorder
}

// Result summarizes one export.
type Result struct {
	Label string
	// Path is the committed file, empty when the export failed.
	Path       string
	Written    int64
	Skipped    int64
	Total      int64
	TotalKnown bool
	Duration   time.Duration
}

// Export streams one table into its output file. The file appears at its
// final path only if every feature was written; on any error nothing is
// left behind and the connection and cursor are released.
func (e *Exporter) Export(ctx context.Context, spec ExportSpec) (res Result, err error) {
	start := time.Now()
	res.Label = spec.Label(e.Defaults)
	defer func() {
		res.Duration = time.Since(start)
		if err != nil {
			res.Path = ""
			e.Metrics.ObserveFailure(res.Label, res.Duration)
			return
		}
		e.Metrics.ObserveSuccess(res.Label, res.Written, res.Skipped, res.Duration)
	}()

	if err := e.Defaults.Validate(); err != nil {
		return res, invalid(err)
	}
	table, err := spec.Resolve(e.Defaults)
	if err != nil {
		return res, err
	}
	stmt, err := query.Features(table)
	if err != nil {
		return res, invalid(err)
	}
	ext, err := Extension(spec.Format)
	if err != nil {
		return res, invalid(err)
	}

	logger.Debug("Feature query for %s: %s", res.Label, stmt.SQL)
	if len(stmt.Args) > 0 {
		logger.Debug("Bind parameters: %v", stmt.Args)
	}

	store, err := e.Connect(ctx)
	if err != nil {
		return res, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("Closing connection for %s: %v", res.Label, cerr)
		}
	}()

	if e.Defaults.ShowProgress {
		res.Total, res.TotalKnown = estimateTotal(ctx, store, table, res.Label)
	}

	cur, err := store.DeclareCursor(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return res, err
	}
	defer cur.Close(ctx)

	out, err := output.Create(output.OutputConfig{
		Path:        spec.Output,
		Compression: spec.Compression,
		Extension:   ext,
	})
	if err != nil {
		return res, err
	}
	defer out.Abort()

	fw, err := NewWriter(spec.Format, out)
	if err != nil {
		return res, invalid(err)
	}
	progress := e.reporter(res, e.Defaults.BatchSize)

	if err := fw.Begin(); err != nil {
		return res, err
	}
	res.Skipped, err = streamFeatures(ctx, cur, e.Defaults.BatchSize, fw, progress)
	res.Written = fw.Count()
	if err != nil {
		return res, err
	}
	if err := fw.End(); err != nil {
		return res, err
	}
	if res.Skipped > 0 {
		logger.Warn("%s: skipped %d rows with a null feature", res.Label, res.Skipped)
	}
	if e.FailOnEmpty && res.Written == 0 {
		return res, fmt.Errorf("%s: %w", res.Label, ErrNoFeatures)
	}

	if err := cur.Close(ctx); err != nil {
		return res, err
	}
	if err := out.Commit(); err != nil {
		return res, err
	}
	progress.Done(res.Written)
	res.Path = out.Path()
	return res, nil
}

func (e *Exporter) reporter(res Result, every int) Reporter {
	if !e.Defaults.ShowProgress {
		return noopReporter{}
	}
	out := e.diagnostics()
	if e.ProgressBar {
		return newBarReporter(out, res.Label, res.Total, res.TotalKnown, every)
	}
	return newLineReporter(out, res.Label, res.Total, res.TotalKnown, every)
}
