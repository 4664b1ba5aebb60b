package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorder_ObserveSuccess(t *testing.T) {
	r := NewRecorder(prometheus.NewRegistry())

	r.ObserveSuccess("public.roads", 120, 2, 1500*time.Millisecond)
	r.ObserveSuccess("public.roads", 30, 0, time.Second)
	r.ObserveSuccess("aero.runways", 5, 0, time.Second)

	if got := testutil.ToFloat64(r.featuresWritten.WithLabelValues("public.roads")); got != 150 {
		t.Errorf("features_written_total{public.roads} = %v, want 150", got)
	}
	if got := testutil.ToFloat64(r.rowsSkipped.WithLabelValues("public.roads")); got != 2 {
		t.Errorf("rows_skipped_total{public.roads} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(r.featuresWritten.WithLabelValues("aero.runways")); got != 5 {
		t.Errorf("features_written_total{aero.runways} = %v, want 5", got)
	}
	if got := testutil.ToFloat64(r.lastSuccess.WithLabelValues("public.roads")); got <= 0 {
		t.Errorf("last success timestamp = %v, want > 0", got)
	}
	if got := testutil.CollectAndCount(r.duration); got != 2 {
		t.Errorf("duration series = %d, want 2", got)
	}
}

func TestRecorder_ObserveFailure(t *testing.T) {
	r := NewRecorder(nil)

	r.ObserveFailure("public.roads", time.Second)
	r.ObserveFailure("public.roads", 2*time.Second)

	if got := testutil.ToFloat64(r.failures.WithLabelValues("public.roads")); got != 2 {
		t.Errorf("export_failures_total = %v, want 2", got)
	}
	if got := testutil.CollectAndCount(r.featuresWritten); got != 0 {
		t.Errorf("failed exports must not create feature series, got %d", got)
	}
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder

	r.ObserveSuccess("t", 1, 0, time.Second)
	r.ObserveFailure("t", time.Second)
	if r.Registry() != nil {
		t.Error("nil recorder should have no registry")
	}
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")); err != nil {
		t.Errorf("WriteTextfile() on nil recorder error = %v", err)
	}
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := NewRecorder(nil)
	r.ObserveSuccess("public.roads", 3, 0, time.Second)

	path := filepath.Join(t.TempDir(), "pggeojson.prom")
	if err := r.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile() error = %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		`pggeojson_features_written_total{table="public.roads"} 3`,
		"# TYPE pggeojson_export_duration_seconds histogram",
	} {
		if !strings.Contains(string(content), want) {
			t.Errorf("textfile missing %q:\n%s", want, content)
		}
	}
}

func TestRecorder_WriteTextfileMissingDir(t *testing.T) {
	r := NewRecorder(nil)
	if err := r.WriteTextfile(filepath.Join(t.TempDir(), "missing", "m.prom")); err == nil {
		t.Error("WriteTextfile() into missing directory should fail")
	}
}
