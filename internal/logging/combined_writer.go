package logging

import (
	"io"

	"go.uber.org/multierr"
)

// combinedWriter fans each write out to all writers. A failing writer does not
// stop the others; its error is combined into the returned one.
type combinedWriter struct {
	writers []io.Writer
}

func newCombinedWriter(writers ...io.Writer) *combinedWriter {
	return &combinedWriter{
		writers: writers,
	}
}

func (cw *combinedWriter) Write(p []byte) (int, error) {
	var err error
	written := 0
	for _, w := range cw.writers {
		if _, werr := w.Write(p); werr != nil {
			err = multierr.Append(err, werr)
			continue
		}
		written = len(p)
	}
	return written, err
}
