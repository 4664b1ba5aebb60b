package exporters

import (
	"fmt"
	"io"
	"strings"
)

// Raw line breaks can only be insignificant whitespace in valid JSON, for
// instance inside a json column copied verbatim. Folding them into spaces
// keeps one feature per line without changing the value.
var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// lineWriter emits newline-delimited GeoJSON: one Feature per line with no
// enclosing collection.
type lineWriter struct {
	w     io.Writer
	count int64
}

func newLineWriter(w io.Writer) FeatureWriter {
	return &lineWriter{w: w}
}

func (l *lineWriter) Begin() error { return nil }

func (l *lineWriter) WriteFeature(feature string) error {
	if strings.ContainsAny(feature, "\r\n") {
		feature = lineBreaks.Replace(feature)
	}
	if _, err := io.WriteString(l.w, feature); err != nil {
		return fmt.Errorf("error writing feature %d: %w", l.count+1, err)
	}
	if _, err := io.WriteString(l.w, "\n"); err != nil {
		return fmt.Errorf("error terminating feature %d: %w", l.count+1, err)
	}
	l.count++
	return nil
}

func (l *lineWriter) End() error { return nil }

func (l *lineWriter) Count() int64 {
	return l.count
}

func init() {
	MustRegister(FormatGeoJSONL, ".geojsonl", newLineWriter)
}
