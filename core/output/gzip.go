package output

import (
	"compress/gzip"
	"io"
)

func newGzipWriter(dst io.Writer) (io.WriteCloser, error) {
	return gzip.NewWriter(dst), nil
}
