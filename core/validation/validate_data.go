package validation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/elliotchance/orderedmap/v3"
	"github.com/fbz-tec/pggeojson/core/query"
	"github.com/fbz-tec/pggeojson/core/sqlbuild"
)

// AllColumns is the sentinel selecting every non-geometry column.
const AllColumns = "*"

// ValidateIdentifier checks that name can be quoted as a single SQL
// identifier. field names the setting in the error message.
func ValidateIdentifier(field, name string) error {
	if err := sqlbuild.ValidateIdentifier(name); err != nil {
		return fmt.Errorf("%s: %w", field, err)
	}
	return nil
}

// NormalizeColumns validates a property column list and returns it in
// caller order. A nil/empty list, or one made only of "*", selects all
// columns and is returned as nil. Duplicates are rejected because they
// would produce duplicate JSON keys.
func NormalizeColumns(columns []string) ([]string, error) {
	if len(columns) == 0 || (len(columns) == 1 && strings.TrimSpace(columns[0]) == AllColumns) {
		return nil, nil
	}

	set := orderedmap.NewOrderedMap[string, int]()
	for i, c := range columns {
		c = strings.TrimSpace(c)
		if c == AllColumns {
			return nil, fmt.Errorf("columns: %q cannot be combined with explicit columns", AllColumns)
		}
		if err := ValidateIdentifier(fmt.Sprintf("columns[%d]", i), c); err != nil {
			return nil, err
		}
		if first, dup := set.Get(c); dup {
			return nil, fmt.Errorf("columns: %q listed twice (positions %d and %d)", c, first, i)
		}
		set.Set(c, i)
	}

	out := make([]string, 0, set.Len())
	for c := range set.AllFromFront() {
		out = append(out, c)
	}
	return out, nil
}

// ValidateSRID accepts zero (no reprojection) or a PostGIS SRID.
func ValidateSRID(srid int) error {
	if srid < 0 || srid > query.MaxSRID {
		return fmt.Errorf("target SRID %d out of range (1-%d, or 0 for none)", srid, query.MaxSRID)
	}
	return nil
}

// ValidatePrecision accepts nil or a decimal digit count ST_AsGeoJSON supports.
func ValidatePrecision(precision *int) error {
	if precision == nil {
		return nil
	}
	if *precision < 0 || *precision > query.MaxPrecision {
		return fmt.Errorf("precision %d out of range (0-%d)", *precision, query.MaxPrecision)
	}
	return nil
}

// ValidateOutputPath checks that path names a file in an existing directory.
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("output path cannot be empty")
	}
	if strings.HasSuffix(path, string(filepath.Separator)) {
		return fmt.Errorf("output path %q is a directory", path)
	}
	dir := filepath.Dir(path)
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("output directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output directory %q is not a directory", dir)
	}
	return nil
}
