package exporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/fbz-tec/pggeojson/internal/logger"
	"golang.org/x/sync/errgroup"
)

// BatchOptions is the failure and concurrency policy of RunBatch.
type BatchOptions struct {
	// ContinueOnError runs every spec even after a failure. When false the
	// first failure stops the batch.
	ContinueOnError bool
	// Parallelism is the number of exports run at once. Values below 2 run
	// the batch sequentially in spec order.
	Parallelism int
}

// Outcome is the fate of one spec in a batch.
type Outcome struct {
	Spec   ExportSpec
	Result Result
	Err    error
	// Ran is false for specs never started because the batch stopped.
	Ran bool
}

// BatchResult lists one Outcome per spec, in spec order.
type BatchResult struct {
	Outcomes []Outcome
}

func (r BatchResult) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Ran && o.Err == nil {
			n++
		}
	}
	return n
}

func (r BatchResult) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Err != nil {
			n++
		}
	}
	return n
}

// NotRun counts specs skipped after an earlier failure.
func (r BatchResult) NotRun() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Ran {
			n++
		}
	}
	return n
}

// RunBatch exports every spec with e. Each export opens its own connection
// and writes its own file. The returned error joins every failure.
func (e *Exporter) RunBatch(ctx context.Context, specs []ExportSpec, opts BatchOptions) (BatchResult, error) {
	res := BatchResult{Outcomes: make([]Outcome, len(specs))}
	for i, spec := range specs {
		res.Outcomes[i].Spec = spec
	}

	if opts.Parallelism > 1 && len(specs) > 1 {
		e.runParallel(ctx, res.Outcomes, opts)
	} else {
		e.runSequential(ctx, res.Outcomes, opts)
	}

	var errs []error
	for _, o := range res.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	logger.Debug("Batch finished: %d succeeded, %d failed, %d not run",
		res.Succeeded(), res.Failed(), res.NotRun())
	return res, errors.Join(errs...)
}

func (e *Exporter) runSequential(ctx context.Context, outcomes []Outcome, opts BatchOptions) {
	for i := range outcomes {
		if err := ctx.Err(); err != nil {
			return
		}
		e.runOne(ctx, e, &outcomes[i], i, len(outcomes))
		if outcomes[i].Err != nil && !opts.ContinueOnError {
			return
		}
	}
}

func (e *Exporter) runParallel(ctx context.Context, outcomes []Outcome, opts BatchOptions) {
	// Bars from concurrent exports would overwrite each other, and the
	// diagnostic writer is shared.
	worker := *e
	worker.ProgressBar = false
	worker.Diagnostics = &syncWriter{w: e.diagnostics()}

	var g *errgroup.Group
	gctx := ctx
	if opts.ContinueOnError {
		g = &errgroup.Group{}
	} else {
		g, gctx = errgroup.WithContext(ctx)
	}
	g.SetLimit(opts.Parallelism)

	for i := range outcomes {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			e.runOne(gctx, &worker, &outcomes[i], i, len(outcomes))
			return outcomes[i].Err
		})
	}
	g.Wait()
}

func (e *Exporter) runOne(ctx context.Context, ex *Exporter, o *Outcome, i, n int) {
	label := o.Spec.Label(e.Defaults)
	logger.Info("[%d/%d] Exporting %s to %s", i+1, n, label, o.Spec.Output)

	o.Ran = true
	o.Result, o.Err = ex.Export(ctx, o.Spec)
	if o.Err != nil {
		o.Err = fmt.Errorf("export %s: %w", label, o.Err)
		logger.Error("%v", o.Err)
		return
	}
	logger.Success("[%d/%d] %s: %d features written to %s in %v",
		i+1, n, label, o.Result.Written, o.Result.Path, o.Result.Duration)
}

func (e *Exporter) diagnostics() io.Writer {
	if e.Diagnostics == nil {
		return os.Stderr
	}
	return e.Diagnostics
}

type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}
