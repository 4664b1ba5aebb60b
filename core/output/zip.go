package output

import (
	"archive/zip"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/fbz-tec/pggeojson/internal/logger"
)

// newZipWriter returns a writer for the single entry of a new archive.
// Closing it finalizes the archive's central directory.
func newZipWriter(dst io.Writer, entryName string) (io.WriteCloser, error) {
	zipWriter := zip.NewWriter(dst)
	logger.Debug("Creating zip entry: %s", entryName)
	entryWriter, err := zipWriter.Create(entryName)
	if err != nil {
		zipWriter.Close()
		return nil, fmt.Errorf("error creating zip entry: %w", err)
	}
	return &compositeWriteCloser{Writer: entryWriter, closeFunc: zipWriter.Close}, nil
}

// determineZipEntryName derives the archive entry name from the output
// path, making sure it ends with the format extension.
func determineZipEntryName(outputPath, ext string) string {
	base := filepath.Base(outputPath)
	if strings.EqualFold(filepath.Ext(base), ".zip") {
		base = base[:len(base)-len(".zip")]
	}

	if base == "" || base == "." || base == string(filepath.Separator) {
		base = "export"
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(base), strings.ToLower(ext)) {
		base += ext
	}

	return base
}

func fixExtension(path, extension string) string {
	ext := filepath.Ext(path)

	if strings.ToLower(ext) != extension {
		path = path[:len(path)-len(ext)] + extension
	}
	return path
}
