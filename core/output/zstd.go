package output

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
)

func newZstdWriter(dst io.Writer) (io.WriteCloser, error) {
	w, err := zstd.NewWriter(dst)
	if err != nil {
		return nil, fmt.Errorf("error creating zstd writer: %w", err)
	}
	return w, nil
}
