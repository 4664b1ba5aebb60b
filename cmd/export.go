package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/fbz-tec/pggeojson/core/exporters"
	"github.com/fbz-tec/pggeojson/core/output"
	"github.com/fbz-tec/pggeojson/internal/logger"
	"github.com/spf13/cobra"
)

var (
	tableName    string
	outputPath   string
	columns      string
	filter       string
	filterParams []string
	orderBy      string
	targetSRID   int
	tableSchema  string
	tableGeom    string
	idColumn     string
	precision    int
	compression  string
	format       string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export one table to a GeoJSON file",
	Example: `  # Whole table, all columns as properties
  pggeojson export -t roads -o roads.geojson

  # Selected properties, filtered and ordered, reprojected to WGS84
  pggeojson export -t tblcircuits -o circuits.geojson \
    -c circuit_id,name,status -w 'status = $1 AND length_m > $2' \
    --param active --param 100 --order-by 'circuit_id ASC' --srid 4326

  # Newline-delimited output, gzip compressed, with a feature id
  pggeojson export -t parcels -o parcels.geojsonl -f geojsonl -z gzip --id-column parcel_id`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

func init() {
	flags := exportCmd.Flags()
	flags.SortFlags = false

	// WHAT to export
	flags.StringVarP(&tableName, "table", "t", "", "Table to export (required)")
	flags.StringVar(&tableSchema, "table-schema", "", "Schema of the table (defaults to --schema)")
	flags.StringVarP(&columns, "columns", "c", "", "Comma-separated property columns, in output order (default all but geometry)")
	flags.StringVarP(&filter, "where", "w", "", "SQL filter predicate using $1..$n placeholders")
	flags.StringArrayVar(&filterParams, "param", nil, "Value bound to the next filter placeholder (repeatable)")
	flags.StringVar(&orderBy, "order-by", "", "SQL ORDER BY expression")
	flags.StringVar(&tableGeom, "geom", "", "Geometry column of the table (defaults to --geometry-column)")
	flags.StringVar(&idColumn, "id-column", "", "Column written as the Feature id member")

	// HOW to serialize
	flags.IntVar(&targetSRID, "srid", 0, "Reproject geometries to this SRID (0 keeps the stored SRID)")
	flags.IntVar(&precision, "precision", 0, "Maximum decimal digits of coordinates (default 9)")

	// OUTPUT DESTINATION
	flags.StringVarP(&outputPath, "output", "o", "", "Output file path (required)")
	flags.StringVarP(&format, "format", "f", exporters.FormatGeoJSON,
		fmt.Sprintf("Output format (%s)", strings.Join(exporters.List(), ", ")))
	flags.StringVarP(&compression, "compression", "z", output.None,
		fmt.Sprintf("Compression to apply to the output file (%s)", strings.Join(output.Compressions(), ", ")))

	exportCmd.MarkFlagRequired("table")
	exportCmd.MarkFlagRequired("output")
}

func runExport(cmd *cobra.Command, args []string) error {
	spec := exporters.ExportSpec{
		Table:          tableName,
		Output:         outputPath,
		Columns:        exporters.ParseColumns(columns),
		Filter:         filter,
		OrderBy:        orderBy,
		TargetSRID:     targetSRID,
		Schema:         tableSchema,
		GeometryColumn: tableGeom,
		IDColumn:       idColumn,
		Compression:    compression,
		Format:         format,
	}
	// Parameters are sent as text; PostgreSQL infers their type from the
	// placeholder's context, or from an explicit cast such as $1::date.
	for _, p := range filterParams {
		spec.FilterParams = append(spec.FilterParams, p)
	}
	if cmd.Flags().Changed("precision") {
		spec.Precision = &precision
	}

	logger.Debug("Validating export parameters")
	if err := spec.Validate(); err != nil {
		return err
	}
	logger.Debug("Export parameters validated successfully")

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	rec := newRecorder()
	exporter := newExporter(cfg, rec)
	res, err := exporter.Export(cmd.Context(), spec)
	writeMetrics(rec)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}

	return handleExportResult(res)
}

func handleExportResult(res exporters.Result) error {
	if res.Written == 0 {
		logger.Warn("%s matched no rows with a geometry. File created at %s with an empty collection", res.Label, res.Path)
		return nil
	}
	logger.Success("Export completed: %d features -> %s (%v)", res.Written, res.Path, res.Duration.Round(time.Millisecond))
	return nil
}
