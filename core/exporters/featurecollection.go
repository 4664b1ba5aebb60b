package exporters

import (
	"fmt"
	"io"
)

const (
	collectionPrefix = `{"type":"FeatureCollection","features":[`
	collectionSuffix = `]}`
)

// featureCollectionWriter emits a single FeatureCollection object. Features
// are separated by a comma and nothing else, so a collection with zero
// features is exactly prefix+suffix.
type featureCollectionWriter struct {
	w     io.Writer
	count int64
}

func newFeatureCollectionWriter(w io.Writer) FeatureWriter {
	return &featureCollectionWriter{w: w}
}

func (fc *featureCollectionWriter) Begin() error {
	if _, err := io.WriteString(fc.w, collectionPrefix); err != nil {
		return fmt.Errorf("error writing start of FeatureCollection: %w", err)
	}
	return nil
}

func (fc *featureCollectionWriter) WriteFeature(feature string) error {
	if fc.count > 0 {
		if _, err := io.WriteString(fc.w, ","); err != nil {
			return fmt.Errorf("error writing separator before feature %d: %w", fc.count+1, err)
		}
	}
	if _, err := io.WriteString(fc.w, feature); err != nil {
		return fmt.Errorf("error writing feature %d: %w", fc.count+1, err)
	}
	fc.count++
	return nil
}

func (fc *featureCollectionWriter) End() error {
	if _, err := io.WriteString(fc.w, collectionSuffix); err != nil {
		return fmt.Errorf("error writing end of FeatureCollection: %w", err)
	}
	return nil
}

func (fc *featureCollectionWriter) Count() int64 {
	return fc.count
}

func init() {
	MustRegister(FormatGeoJSON, ".geojson", newFeatureCollectionWriter)
}
