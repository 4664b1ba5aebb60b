package query

import (
	"fmt"

	"github.com/fbz-tec/pggeojson/core/sqlbuild"
)

// RowAlias is the alias given to the exported table in every statement.
const RowAlias = "t"

const (
	// MaxSRID is the largest SRID PostGIS accepts in spatial_ref_sys.
	MaxSRID = 998999

	// DefaultPrecision is the maxdecimaldigits PostGIS uses when none is given.
	DefaultPrecision = 9
	MaxPrecision     = 15
)

// geojsonOptions is the ST_AsGeoJSON options bitmask. Zero disables the bbox
// and the short/long CRS members PostGIS would otherwise add for non-4326
// geometries; RFC 7946 output carries no crs.
const geojsonOptions = 0

// GeometryExpr returns the JSON expression serializing column as a GeoJSON
// geometry. A positive srid reprojects first; precision caps the number of
// decimal digits (nil means DefaultPrecision).
func GeometryExpr(column string, srid int, precision *int) (sqlbuild.Fragment, error) {
	if srid < 0 || srid > MaxSRID {
		return nil, fmt.Errorf("target SRID %d out of range (1-%d)", srid, MaxSRID)
	}
	digits := DefaultPrecision
	if precision != nil {
		digits = *precision
	}
	if digits < 0 || digits > MaxPrecision {
		return nil, fmt.Errorf("precision %d out of range (0-%d)", digits, MaxPrecision)
	}

	var geom sqlbuild.Fragment = sqlbuild.Ident(RowAlias, column)
	if srid > 0 {
		geom = sqlbuild.Seq{
			sqlbuild.Raw("ST_Transform("), geom, sqlbuild.Raw(", "), sqlbuild.Int(srid), sqlbuild.Raw(")"),
		}
	}

	return sqlbuild.Seq{
		sqlbuild.Raw("ST_AsGeoJSON("), geom,
		sqlbuild.Raw(", "), sqlbuild.Int(digits),
		sqlbuild.Raw(", "), sqlbuild.Int(geojsonOptions),
		sqlbuild.Raw(")::json"),
	}, nil
}

// PropertiesExpr returns the JSON object expression for Feature.properties.
//
// The row is always referenced as alias.* because a bare alias resolves to
// a column of the same name before the whole row.
//
// With no columns every column of the row except geomColumn is included, so
// columns added to the table later show up without configuration changes.
// With an explicit list exactly those columns are included, in that order;
// geomColumn is dropped from the list if present.
func PropertiesExpr(columns []string, geomColumn string) sqlbuild.Fragment {
	if len(columns) == 0 {
		return sqlbuild.Seq{
			sqlbuild.Raw("(to_jsonb("), sqlbuild.Ident(RowAlias),
			sqlbuild.Raw(".*) - "), sqlbuild.TypedParam(geomColumn, "text"),
			sqlbuild.Raw(")::json"),
		}
	}

	cols := make([]sqlbuild.Fragment, 0, len(columns))
	for _, c := range columns {
		if c == geomColumn {
			continue
		}
		cols = append(cols, sqlbuild.Ident(RowAlias, c))
	}
	if len(cols) == 0 {
		return sqlbuild.Raw("'{}'::json")
	}

	return sqlbuild.Seq{
		sqlbuild.Raw("(SELECT to_json(r.*) FROM (SELECT "),
		sqlbuild.Join(", ", cols...),
		sqlbuild.Raw(") r)"),
	}
}

// FeatureExpr returns the text expression of one serialized GeoJSON Feature.
// properties is never JSON null: an all-null selection becomes {}.
func FeatureExpr(geometry, properties sqlbuild.Fragment, idColumn string) sqlbuild.Fragment {
	var id sqlbuild.Fragment
	if idColumn != "" {
		id = sqlbuild.Seq{sqlbuild.Raw("'id', "), sqlbuild.Ident(RowAlias, idColumn), sqlbuild.Raw(", ")}
	}
	return sqlbuild.Seq{
		sqlbuild.Raw("json_build_object('type', 'Feature', "),
		id,
		sqlbuild.Raw("'geometry', "), geometry,
		sqlbuild.Raw(", 'properties', COALESCE("), properties, sqlbuild.Raw(", '{}'::json))::text"),
	}
}
