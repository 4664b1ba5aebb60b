// Package query assembles the statements run by a GeoJSON export: the
// feature stream itself and the advisory row count.
package query

import (
	"fmt"
	"strings"

	"github.com/fbz-tec/pggeojson/core/sqlbuild"
)

// Table describes what to read for one export. All names are plain,
// unquoted identifiers; quoting happens during assembly.
type Table struct {
	Schema         string
	Name           string
	GeometryColumn string
	// Columns is the explicit property list. Empty means all columns.
	Columns  []string
	IDColumn string

	TargetSRID int
	Precision  *int

	// Filter is a trusted boolean SQL expression using $1..$n placeholders
	// for FilterParams. OrderBy is a trusted ORDER BY fragment.
	Filter       string
	FilterParams []any
	OrderBy      string
}

func (t Table) hasFilter() bool {
	return strings.TrimSpace(t.Filter) != ""
}

func (t Table) source() sqlbuild.Fragment {
	return sqlbuild.Seq{
		sqlbuild.Raw(" FROM "), sqlbuild.Ident(t.Schema, t.Name),
		sqlbuild.Raw(" AS "), sqlbuild.Ident(RowAlias),
	}
}

// Features returns the statement producing one column, feature, holding
// the serialized Feature text of every row with a non-null geometry that
// matches the filter.
func Features(t Table) (sqlbuild.Statement, error) {
	if err := checkParams(t); err != nil {
		return sqlbuild.Statement{}, err
	}

	geometry, err := GeometryExpr(t.GeometryColumn, t.TargetSRID, t.Precision)
	if err != nil {
		return sqlbuild.Statement{}, err
	}
	properties := PropertiesExpr(t.Columns, t.GeometryColumn)

	q := sqlbuild.Seq{
		sqlbuild.Raw("SELECT "),
		FeatureExpr(geometry, properties, t.IDColumn),
		sqlbuild.Raw(" AS feature"),
		t.source(),
		sqlbuild.Raw(" WHERE "), sqlbuild.Ident(RowAlias, t.GeometryColumn), sqlbuild.Raw(" IS NOT NULL"),
	}
	if t.hasFilter() {
		q = append(q, sqlbuild.Raw(" AND ("+t.Filter+")"))
	}
	if strings.TrimSpace(t.OrderBy) != "" {
		q = append(q, sqlbuild.Raw(" ORDER BY "+t.OrderBy))
	}

	return sqlbuild.Build(q, t.FilterParams...)
}

// Count returns the statement counting rows that match the filter. The
// geometry guard is deliberately absent, so the count can overstate the
// number of features by the rows whose geometry is null.
func Count(t Table) (sqlbuild.Statement, error) {
	if err := checkParams(t); err != nil {
		return sqlbuild.Statement{}, err
	}

	q := sqlbuild.Seq{sqlbuild.Raw("SELECT COUNT(*)"), t.source()}
	if t.hasFilter() {
		q = append(q, sqlbuild.Raw(" WHERE ("+t.Filter+")"))
	}
	return sqlbuild.Build(q, t.FilterParams...)
}

func checkParams(t Table) error {
	if !t.hasFilter() && len(t.FilterParams) > 0 {
		return fmt.Errorf("%d filter parameters given without a filter", len(t.FilterParams))
	}
	return nil
}
