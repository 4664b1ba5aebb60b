package output

import (
	"io"

	"github.com/pierrec/lz4/v4"
)

func newLz4Writer(dst io.Writer) (io.WriteCloser, error) {
	return lz4.NewWriter(dst), nil
}
