package exporters

import (
	"errors"
	"fmt"
	"strings"

	"github.com/fbz-tec/pggeojson/core/config"
	"github.com/fbz-tec/pggeojson/core/output"
	"github.com/fbz-tec/pggeojson/core/query"
	"github.com/fbz-tec/pggeojson/core/validation"
	"gopkg.in/yaml.v3"
)

// ErrInvalidSpec marks configuration errors found before any query runs.
var ErrInvalidSpec = errors.New("invalid export spec")

// ExportSpec is one table export request. Empty optional fields fall back
// to the process-wide defaults at Resolve time.
type ExportSpec struct {
	Table  string `yaml:"table"`
	Output string `yaml:"output"`

	Columns      Columns `yaml:"columns,omitempty"`
	Filter       string  `yaml:"filter,omitempty"`
	FilterParams []any   `yaml:"filter_params,omitempty"`
	OrderBy      string  `yaml:"order_by,omitempty"`
	TargetSRID   int     `yaml:"target_srid,omitempty"`

	Schema         string `yaml:"schema,omitempty"`
	GeometryColumn string `yaml:"geometry_column,omitempty"`
	IDColumn       string `yaml:"id_column,omitempty"`
	Precision      *int   `yaml:"precision,omitempty"`

	Compression string `yaml:"compression,omitempty"`
	Format      string `yaml:"format,omitempty"`
}

// Columns is an ordered property column list. In YAML it may be written
// as a sequence, a comma-separated string, or "*".
type Columns []string

func (c *Columns) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*c = ParseColumns(s)
		return nil
	case yaml.SequenceNode:
		var list []string
		if err := value.Decode(&list); err != nil {
			return err
		}
		*c = list
		return nil
	default:
		return fmt.Errorf("line %d: columns must be a list or a comma-separated string", value.Line)
	}
}

// ParseColumns splits a comma-separated column list. Blank input yields nil.
func ParseColumns(s string) Columns {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	cols := make(Columns, 0, len(parts))
	for _, p := range parts {
		cols = append(cols, strings.TrimSpace(p))
	}
	return cols
}

// Label names the exported relation as schema.table.
func (s ExportSpec) Label(d config.Defaults) string {
	return firstNonEmpty(s.Schema, d.Schema) + "." + s.Table
}

// Validate checks the fields that do not depend on defaults.
func (s ExportSpec) Validate() error {
	if strings.TrimSpace(s.Table) == "" {
		return invalid(errors.New("table is required"))
	}
	if err := validation.ValidateIdentifier("table", s.Table); err != nil {
		return invalid(err)
	}
	if err := validation.ValidateOutputPath(s.Output); err != nil {
		return invalid(err)
	}
	if s.Schema != "" {
		if err := validation.ValidateIdentifier("schema", s.Schema); err != nil {
			return invalid(err)
		}
	}
	if s.GeometryColumn != "" {
		if err := validation.ValidateIdentifier("geometry_column", s.GeometryColumn); err != nil {
			return invalid(err)
		}
	}
	if s.IDColumn != "" {
		if err := validation.ValidateIdentifier("id_column", s.IDColumn); err != nil {
			return invalid(err)
		}
	}
	if _, err := validation.NormalizeColumns(s.Columns); err != nil {
		return invalid(err)
	}
	if err := validation.ValidateSRID(s.TargetSRID); err != nil {
		return invalid(err)
	}
	if err := validation.ValidatePrecision(s.Precision); err != nil {
		return invalid(err)
	}
	if strings.TrimSpace(s.Filter) == "" && len(s.FilterParams) > 0 {
		return invalid(fmt.Errorf("%d filter_params given without a filter", len(s.FilterParams)))
	}
	if _, err := output.ResolvePath(output.OutputConfig{Path: s.Output, Compression: s.Compression}); err != nil {
		return invalid(err)
	}
	if _, err := Extension(s.Format); err != nil {
		return invalid(err)
	}
	return nil
}

// Resolve validates s and merges it over d into the query description.
func (s ExportSpec) Resolve(d config.Defaults) (query.Table, error) {
	if err := s.Validate(); err != nil {
		return query.Table{}, err
	}

	schema := firstNonEmpty(s.Schema, d.Schema)
	if err := validation.ValidateIdentifier("schema", schema); err != nil {
		return query.Table{}, invalid(err)
	}
	geom := firstNonEmpty(s.GeometryColumn, d.GeometryColumn)
	if err := validation.ValidateIdentifier("geometry_column", geom); err != nil {
		return query.Table{}, invalid(err)
	}
	columns, _ := validation.NormalizeColumns(s.Columns)

	return query.Table{
		Schema:         schema,
		Name:           s.Table,
		GeometryColumn: geom,
		Columns:        columns,
		IDColumn:       s.IDColumn,
		TargetSRID:     s.TargetSRID,
		Precision:      s.Precision,
		Filter:         s.Filter,
		FilterParams:   s.FilterParams,
		OrderBy:        s.OrderBy,
	}, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidSpec, err)
}

func firstNonEmpty(override, fallback string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return fallback
}
