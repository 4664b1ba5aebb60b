package exporters

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

type format struct {
	extension string
	factory   Factory
}

var registry = map[string]format{}

// Register adds an output format. extension is the uncompressed file
// extension, including the dot.
func Register(name, extension string, factory Factory) error {
	name = normalizeFormat(name)
	if _, exists := registry[name]; exists {
		return fmt.Errorf("exporter: format %q already registered", name)
	}
	registry[name] = format{extension: extension, factory: factory}
	return nil
}

func MustRegister(name, extension string, factory Factory) {
	if err := Register(name, extension, factory); err != nil {
		panic(err)
	}
}

// NewWriter returns the writer registered for name over w.
func NewWriter(name string, w io.Writer) (FeatureWriter, error) {
	f, err := lookup(name)
	if err != nil {
		return nil, err
	}
	return f.factory(w), nil
}

// Extension returns the file extension of a registered format.
func Extension(name string) (string, error) {
	f, err := lookup(name)
	if err != nil {
		return "", err
	}
	return f.extension, nil
}

func List() []string {
	formats := make([]string, 0, len(registry))
	for name := range registry {
		formats = append(formats, name)
	}
	sort.Strings(formats)
	return formats
}

func lookup(name string) (format, error) {
	f, ok := registry[normalizeFormat(name)]
	if !ok {
		return format{}, fmt.Errorf("unsupported format: %q (available: %s)",
			name, strings.Join(List(), ", "))
	}
	return f, nil
}

// normalizeFormat maps the empty name to the default format.
func normalizeFormat(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return FormatGeoJSON
	}
	return name
}
