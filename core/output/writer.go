package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fbz-tec/pggeojson/internal/logger"
)

const (
	None = "none"
	GZIP = "gzip"
	ZIP  = "zip"
	ZSTD = "zstd"
	LZ4  = "lz4"
)

// bufferSize gives optimal throughput for large exports.
const bufferSize = 256 * 1024

// Compressions lists the supported compression names.
func Compressions() []string {
	return []string{None, GZIP, ZIP, ZSTD, LZ4}
}

// OutputConfig holds configuration for output file creation.
type OutputConfig struct {
	Path        string
	Compression string
	// Extension is the uncompressed file extension (".geojson"), used to
	// name zip entries.
	Extension string
}

// ErrFinalized is returned when Commit is called on a file that was
// already committed or aborted.
var ErrFinalized = errors.New("output already finalized")

// File is an output written to a temporary file next to its destination.
// Nothing appears at Path until Commit succeeds; Abort discards the data.
type File struct {
	io.Writer
	path    string
	tmp     *os.File
	stream  io.WriteCloser
	start   time.Time
	settled bool
}

// ResolvePath returns the destination path for cfg after compression
// extensions are applied.
func ResolvePath(cfg OutputConfig) (string, error) {
	path := cfg.Path
	switch normalize(cfg.Compression) {
	case None:
		return path, nil
	case GZIP:
		return withSuffix(path, ".gz"), nil
	case ZIP:
		return fixExtension(path, ".zip"), nil
	case ZSTD:
		return withSuffix(path, ".zst"), nil
	case LZ4:
		return withSuffix(path, ".lz4"), nil
	default:
		return "", fmt.Errorf("unsupported compression type %q", cfg.Compression)
	}
}

// Create opens a temporary file in the destination directory and layers
// the configured compression over it.
func Create(cfg OutputConfig) (*File, error) {
	if strings.TrimSpace(cfg.Path) == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}
	path, err := ResolvePath(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	tmp, err := os.CreateTemp(dir, "."+base+".*.tmp")
	if err != nil {
		return nil, fmt.Errorf("error creating file: %w", err)
	}
	logger.Debug("Writing %s output to temporary file %s", normalize(cfg.Compression), tmp.Name())

	stream, err := newStream(tmp, cfg)
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, err
	}

	return &File{Writer: stream, path: path, tmp: tmp, stream: stream, start: start}, nil
}

func newStream(tmp *os.File, cfg OutputConfig) (io.WriteCloser, error) {
	switch normalize(cfg.Compression) {
	case GZIP:
		return newGzipWriter(tmp)
	case ZIP:
		return newZipWriter(tmp, determineZipEntryName(cfg.Path, cfg.Extension))
	case ZSTD:
		return newZstdWriter(tmp)
	case LZ4:
		return newLz4Writer(tmp)
	default:
		// tmp is closed by File itself; the buffer must not close it twice
		return newBufferedWriteCloser(struct{ io.Writer }{tmp}, bufferSize), nil
	}
}

// Path returns the final destination path.
func (f *File) Path() string {
	return f.path
}

// Commit finalizes compression, closes the temporary file and renames it
// to the destination, replacing any existing file.
func (f *File) Commit() error {
	if f.settled {
		return ErrFinalized
	}
	f.settled = true

	err := f.stream.Close()
	if err == nil {
		err = f.tmp.Chmod(0o644)
	}
	if cerr := f.tmp.Close(); cerr != nil && err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(f.tmp.Name(), f.path)
	}
	if err != nil {
		os.Remove(f.tmp.Name())
		return fmt.Errorf("error finalizing %s: %w", f.path, err)
	}

	logger.Debug("Output committed to %s in %v", f.path, time.Since(f.start))
	return nil
}

// Abort closes and removes the temporary file. It is a no-op after Commit.
func (f *File) Abort() error {
	if f.settled {
		return nil
	}
	f.settled = true

	f.stream.Close()
	f.tmp.Close()
	if err := os.Remove(f.tmp.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("error removing temporary file: %w", err)
	}
	logger.Debug("Discarded temporary output for %s", f.path)
	return nil
}

func normalize(compression string) string {
	c := strings.ToLower(strings.TrimSpace(compression))
	if c == "" {
		return None
	}
	return c
}

func withSuffix(path, suffix string) string {
	if strings.HasSuffix(strings.ToLower(path), suffix) {
		return path
	}
	return path + suffix
}
