package exporters

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fbz-tec/pggeojson/core/config"
	"gopkg.in/yaml.v3"
)

// JobFile is a batch of exports read from YAML:
//
//	defaults:
//	  schema: aero
//	  batch_size: 5000
//	exports:
//	  - table: runways
//	    output: runways.geojson
//	    columns: [ident, length_ft]
type JobFile struct {
	Defaults JobDefaults  `yaml:"defaults"`
	Exports  []ExportSpec `yaml:"exports"`
}

// JobDefaults override the process defaults for every export of a job
// file. Unset fields keep the process value.
type JobDefaults struct {
	Schema         *string `yaml:"schema"`
	GeometryColumn *string `yaml:"geometry_column"`
	BatchSize      *int    `yaml:"batch_size"`
	ShowProgress   *bool   `yaml:"show_progress"`
}

// Apply returns base with the job-level overrides applied.
func (d JobDefaults) Apply(base config.Defaults) config.Defaults {
	if d.Schema != nil {
		base.Schema = *d.Schema
	}
	if d.GeometryColumn != nil {
		base.GeometryColumn = *d.GeometryColumn
	}
	if d.BatchSize != nil {
		base.BatchSize = *d.BatchSize
	}
	if d.ShowProgress != nil {
		base.ShowProgress = *d.ShowProgress
	}
	return base
}

// LoadJobFile reads and parses the job file at path.
func LoadJobFile(path string) (*JobFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading job file: %w", err)
	}
	job, err := ParseJobFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return job, nil
}

// ParseJobFile decodes a job file. Unknown keys are rejected so that a
// misspelled option does not silently fall back to its default.
func ParseJobFile(r io.Reader) (*JobFile, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var job JobFile
	if err := dec.Decode(&job); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, invalid(errors.New("job file is empty"))
		}
		return nil, invalid(err)
	}
	if len(job.Exports) == 0 {
		return nil, invalid(errors.New("job file lists no exports"))
	}
	return &job, nil
}
