package exporters

import (
	"fmt"
	"io"

	"github.com/fbz-tec/pggeojson/internal/ui"
	"github.com/schollz/progressbar/v3"
)

// Reporter receives the running feature count of one export.
type Reporter interface {
	// Update is called after every written feature.
	Update(written int64)
	// Done is called once after the last feature.
	Done(written int64)
}

type noopReporter struct{}

func (noopReporter) Update(int64) {}
func (noopReporter) Done(int64)   {}

// lineReporter prints "[label] written/total (pct%)" each time written
// reaches a multiple of every. Nothing is printed mid-stream when the total
// is unknown or zero.
type lineReporter struct {
	out   io.Writer
	label string
	total int64
	known bool
	every int64
}

func newLineReporter(out io.Writer, label string, total int64, known bool, every int) *lineReporter {
	if every < 1 {
		every = 1
	}
	return &lineReporter{out: out, label: label, total: total, known: known, every: int64(every)}
}

func (r *lineReporter) Update(written int64) {
	if !r.known || r.total <= 0 || written%r.every != 0 {
		return
	}
	fmt.Fprintf(r.out, "[%s] %d/%d (%.1f%%)\n", r.label, written, r.total, percent(written, r.total))
}

func (r *lineReporter) Done(written int64) {
	if r.known {
		fmt.Fprintf(r.out, "[%s] done: %d/%d (100%%)\n", r.label, written, r.total)
		return
	}
	fmt.Fprintf(r.out, "[%s] done: %d features\n", r.label, written)
}

// percent is clamped to 100; the count includes null-geometry rows and
// may also be stale by the time the cursor runs.
func percent(written, total int64) float64 {
	p := float64(written) / float64(total) * 100
	if p > 100 {
		return 100
	}
	return p
}

// barReporter draws a progress bar, or a spinner when the total is unknown,
// and finishes with the same done line as lineReporter.
type barReporter struct {
	bar   *progressbar.ProgressBar
	line  *lineReporter
	every int64
}

func newBarReporter(out io.Writer, label string, total int64, known bool, every int) *barReporter {
	if !known {
		total = -1
	}
	line := newLineReporter(out, label, total, known, every)
	return &barReporter{
		bar:   ui.NewProgressBar(out, label, total),
		line:  line,
		every: line.every,
	}
}

func (r *barReporter) Update(written int64) {
	if written%r.every == 0 {
		r.bar.Set64(written)
	}
}

func (r *barReporter) Done(written int64) {
	r.bar.Set64(written)
	r.bar.Finish()
	r.line.Done(written)
}
