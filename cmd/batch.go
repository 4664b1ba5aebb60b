package cmd

import (
	"fmt"

	"github.com/fbz-tec/pggeojson/core/exporters"
	"github.com/fbz-tec/pggeojson/internal/logger"
	"github.com/spf13/cobra"
)

var (
	jobFile         string
	continueOnError bool
	parallel        int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Export every table listed in a YAML job file",
	Example: `  # jobs.yaml
  defaults:
    schema: aero
  exports:
    - table: runways
      output: out/runways.geojson
      columns: [ident, surface, length_ft]
      order_by: ident
    - table: airspace
      output: out/airspace.geojson.gz
      compression: gzip
      filter: class = $1
      filter_params: [C]

  pggeojson batch -F jobs.yaml --continue-on-error`,
	Args: cobra.NoArgs,
	RunE: runBatch,
}

func init() {
	flags := batchCmd.Flags()
	flags.StringVarP(&jobFile, "file", "F", "", "YAML job file (required)")
	flags.BoolVar(&continueOnError, "continue-on-error", false, "Keep exporting the remaining tables after a failure")
	flags.IntVar(&parallel, "parallel", 1, "Number of tables exported at once, each on its own connection")

	batchCmd.MarkFlagRequired("file")
}

func runBatch(cmd *cobra.Command, args []string) error {
	if parallel < 1 {
		return fmt.Errorf("error: --parallel must be at least 1")
	}

	job, err := exporters.LoadJobFile(jobFile)
	if err != nil {
		return err
	}
	logger.Debug("Loaded %d exports from %s", len(job.Exports), jobFile)

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Defaults = job.Defaults.Apply(cfg.Defaults)
	if err := cfg.Defaults.Validate(); err != nil {
		return fmt.Errorf("%s: defaults: %w", jobFile, err)
	}

	// Validate every spec up front so a typo in the last entry does not
	// surface after the first tables were already exported.
	for i, spec := range job.Exports {
		if _, err := spec.Resolve(cfg.Defaults); err != nil {
			return fmt.Errorf("%s: exports[%d]: %w", jobFile, i, err)
		}
	}

	rec := newRecorder()
	exporter := newExporter(cfg, rec)
	res, err := exporter.RunBatch(cmd.Context(), job.Exports, exporters.BatchOptions{
		ContinueOnError: continueOnError,
		Parallelism:     parallel,
	})
	writeMetrics(rec)

	summary := fmt.Sprintf("%d succeeded, %d failed, %d not run", res.Succeeded(), res.Failed(), res.NotRun())
	if err != nil {
		return fmt.Errorf("batch failed (%s): %w", summary, err)
	}
	logger.Success("Batch completed: %s", summary)
	return nil
}
