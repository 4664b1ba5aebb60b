package exporters

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/fbz-tec/pggeojson/core/config"
	"github.com/fbz-tec/pggeojson/core/db"
	"github.com/jackc/pgx/v5"
)

// setupTestTable creates a PostGIS table with three rows, the second
// without geometry. Skipped unless DB_TEST_URL is set.
func setupTestTable(t *testing.T) string {
	t.Helper()
	testURL := os.Getenv("DB_TEST_URL")
	if testURL == "" {
		t.Skip("Skipping integration test: DB_TEST_URL not set")
	}

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, testURL)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	t.Cleanup(func() { conn.Close(context.Background()) })

	if _, err := conn.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS postgis"); err != nil {
		t.Skipf("Skipping integration test: PostGIS unavailable: %v", err)
	}

	stmts := []string{
		`DROP TABLE IF EXISTS pggeojson_sites`,
		`CREATE TABLE pggeojson_sites (id int PRIMARY KEY, name text, status text, shape geometry(Point, 4326))`,
		`INSERT INTO pggeojson_sites VALUES
			(1, 'A', 'open', ST_SetSRID(ST_MakePoint(1, 2), 4326)),
			(2, 'B', 'open', NULL),
			(3, 'C', 'closed', ST_SetSRID(ST_MakePoint(3.123456789123, 4), 4326))`,
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			t.Fatalf("setup %q: %v", stmt, err)
		}
	}
	t.Cleanup(func() {
		conn.Exec(context.Background(), `DROP TABLE IF EXISTS pggeojson_sites`)
	})
	return testURL
}

type decodedCollection struct {
	Type     string `json:"type"`
	Features []struct {
		Type     string          `json:"type"`
		ID       any             `json:"id"`
		Geometry json.RawMessage `json:"geometry"`
		// Raw keeps property key order for inspection
		Properties json.RawMessage `json:"properties"`
	} `json:"features"`
}

func exportIntegration(t *testing.T, testURL string, batchSize int, spec ExportSpec) decodedCollection {
	t.Helper()
	d := config.DefaultExportDefaults()
	d.BatchSize = batchSize
	d.GeometryColumn = "shape"
	exp := &Exporter{Defaults: d, Connect: PgConnector(testURL, db.SessionOptions{ApplicationName: "pggeojson-test"})}

	if spec.Table == "" {
		spec.Table = "pggeojson_sites"
	}
	spec.Output = filepath.Join(t.TempDir(), "sites.geojson")
	res, err := exp.Export(context.Background(), spec)
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	content, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	var fc decodedCollection
	if err := json.Unmarshal(content, &fc); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, content)
	}
	if fc.Type != "FeatureCollection" {
		t.Errorf("type = %q", fc.Type)
	}
	if strings.Contains(string(content), `"crs"`) {
		t.Errorf("output must not carry a crs member: %s", content)
	}
	return fc
}

func TestExportIntegration_NullGeometryAndOrder(t *testing.T) {
	testURL := setupTestTable(t)

	fc := exportIntegration(t, testURL, 10, ExportSpec{Columns: Columns{"id", "name"}, OrderBy: "id ASC"})
	if len(fc.Features) != 2 {
		t.Fatalf("features = %d, want 2 (null geometry dropped)", len(fc.Features))
	}
	if got := string(fc.Features[0].Properties); got != `{"id":1,"name":"A"}` {
		t.Errorf("first properties = %s", got)
	}
	if got := string(fc.Features[1].Properties); got != `{"id":3,"name":"C"}` {
		t.Errorf("second properties = %s", got)
	}

	var geom struct {
		Type        string    `json:"type"`
		Coordinates []float64 `json:"coordinates"`
	}
	if err := json.Unmarshal(fc.Features[0].Geometry, &geom); err != nil {
		t.Fatal(err)
	}
	if geom.Type != "Point" || !reflect.DeepEqual(geom.Coordinates, []float64{1, 2}) {
		t.Errorf("geometry = %+v", geom)
	}
}

func TestExportIntegration_AllColumnsExcludeGeometry(t *testing.T) {
	testURL := setupTestTable(t)

	fc := exportIntegration(t, testURL, 1, ExportSpec{OrderBy: "id"})
	for _, f := range fc.Features {
		var props map[string]any
		if err := json.Unmarshal(f.Properties, &props); err != nil {
			t.Fatal(err)
		}
		if _, ok := props["shape"]; ok {
			t.Errorf("geometry column leaked into properties: %s", f.Properties)
		}
		if _, ok := props["status"]; !ok {
			t.Errorf("all-columns export lost a column: %s", f.Properties)
		}
	}
}

func TestExportIntegration_FilterIDAndPrecision(t *testing.T) {
	testURL := setupTestTable(t)
	prec := 2

	fc := exportIntegration(t, testURL, 100, ExportSpec{
		Columns:      Columns{"name"},
		Filter:       "status = $1",
		FilterParams: []any{"closed"},
		IDColumn:     "id",
		Precision:    &prec,
	})
	if len(fc.Features) != 1 {
		t.Fatalf("features = %d, want 1", len(fc.Features))
	}
	if id, ok := fc.Features[0].ID.(float64); !ok || id != 3 {
		t.Errorf("id = %v, want 3", fc.Features[0].ID)
	}
	if !strings.Contains(string(fc.Features[0].Geometry), "3.12") || strings.Contains(string(fc.Features[0].Geometry), "3.123") {
		t.Errorf("precision not applied: %s", fc.Features[0].Geometry)
	}
}

func TestExportIntegration_MissingColumn(t *testing.T) {
	testURL := setupTestTable(t)
	d := config.DefaultExportDefaults()
	exp := &Exporter{Defaults: d, Connect: PgConnector(testURL, db.SessionOptions{})}

	dir := t.TempDir()
	_, err := exp.Export(context.Background(), ExportSpec{Table: "pggeojson_sites", Output: filepath.Join(dir, "x.geojson")})
	if err == nil || !strings.Contains(err.Error(), "geom") {
		t.Fatalf("Export() error = %v, want missing column error", err)
	}
	assertNoFile(t, dir)
}

func TestExportIntegration_ColumnsNamedLikeAliases(t *testing.T) {
	testURL := setupTestTable(t)

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, testURL)
	if err != nil {
		t.Fatalf("Failed to connect: %v", err)
	}
	defer conn.Close(ctx)

	stmts := []string{
		`DROP TABLE IF EXISTS pggeojson_shadow`,
		`CREATE TABLE pggeojson_shadow (id int, t text, r text, shape geometry(Point, 4326))`,
		`INSERT INTO pggeojson_shadow VALUES (1, 'tee', 'arr', ST_SetSRID(ST_MakePoint(1, 2), 4326))`,
	}
	for _, stmt := range stmts {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			t.Fatalf("setup %q: %v", stmt, err)
		}
	}
	t.Cleanup(func() {
		conn.Exec(context.Background(), `DROP TABLE IF EXISTS pggeojson_shadow`)
	})

	tests := []struct {
		name    string
		columns Columns
		want    map[string]any
		raw     string
	}{
		{"all columns", nil, map[string]any{"id": float64(1), "t": "tee", "r": "arr"}, ""},
		{"explicit list", Columns{"id", "r", "t"}, map[string]any{"id": float64(1), "r": "arr", "t": "tee"}, `{"id":1,"r":"arr","t":"tee"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fc := exportIntegration(t, testURL, 10, ExportSpec{Table: "pggeojson_shadow", Columns: tt.columns})
			if len(fc.Features) != 1 {
				t.Fatalf("features = %d, want 1", len(fc.Features))
			}

			var props map[string]any
			if err := json.Unmarshal(fc.Features[0].Properties, &props); err != nil {
				t.Fatalf("properties is not an object: %s", fc.Features[0].Properties)
			}
			if !reflect.DeepEqual(props, tt.want) {
				t.Errorf("properties = %v, want %v", props, tt.want)
			}
			if tt.raw != "" && string(fc.Features[0].Properties) != tt.raw {
				t.Errorf("properties = %s, want %s", fc.Features[0].Properties, tt.raw)
			}
		})
	}
}
