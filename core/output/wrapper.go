package output

import (
	"bufio"
	"fmt"
	"io"
)

// bufferedWriteCloser wraps a writer with buffered I/O
type bufferedWriteCloser struct {
	*bufio.Writer
	underlying io.Writer
}

// Close flushes the buffer and closes the underlying writer if it is a Closer.
func (bwc *bufferedWriteCloser) Close() error {
	if err := bwc.Writer.Flush(); err != nil {
		return fmt.Errorf("error flushing buffer: %w", err)
	}
	if c, ok := bwc.underlying.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// newBufferedWriteCloser creates a buffered writer with specified buffer size
func newBufferedWriteCloser(w io.Writer, size int) io.WriteCloser {
	return &bufferedWriteCloser{
		Writer:     bufio.NewWriterSize(w, size),
		underlying: w,
	}
}

type compositeWriteCloser struct {
	io.Writer
	closeFunc func() error
}

// Close implements io.WriteCloser.
func (c *compositeWriteCloser) Close() error {
	if c.closeFunc == nil {
		return nil
	}
	return c.closeFunc()
}
