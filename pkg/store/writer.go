package store

import (
	"context"
	"fmt"
	"io"

	"meshconf/pkg/model"
)

// WriterSink prints every output to W under a "### <name>.conf" banner. It
// backs dry runs.
type WriterSink struct {
	W   io.Writer
	Sep string
}

func (s WriterSink) Write(_ context.Context, outputs []model.Output) error {
	sep := s.Sep
	if sep == "" {
		sep = DefaultSeparator
	}
	for i, o := range outputs {
		if i > 0 {
			if _, err := io.WriteString(s.W, "\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(s.W, "### %s%s\n%s", o.Name(sep), confExt, o.Text); err != nil {
			return err
		}
	}
	return nil
}
