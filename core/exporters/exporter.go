package exporters

import "io"

const (
	FormatGeoJSON  = "geojson"
	FormatGeoJSONL = "geojsonl"
)

// FeatureWriter serializes a stream of GeoJSON Feature texts into one
// output document. Features are copied verbatim and never re-parsed.
type FeatureWriter interface {
	// Begin writes whatever precedes the first feature.
	Begin() error
	WriteFeature(feature string) error
	// End terminates the document. The output is complete only after End
	// returns nil.
	End() error
	// Count returns the number of features written so far.
	Count() int64
}

// Factory builds a FeatureWriter over w.
type Factory func(w io.Writer) FeatureWriter
