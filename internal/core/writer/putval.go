package writer

import (
	"context"
	"io"
	"os"

	"collectd.org/api"
	"collectd.org/format"
)

// putvalSink writes PUTVAL lines, which is what the collectd exec plugin
// reads from the stdout of the programs it runs
type putvalSink struct {
	putval *format.Putval
}

func newPutvalSink(w io.Writer) *putvalSink {
	if w == nil {
		w = os.Stdout
	}
	return &putvalSink{putval: format.NewPutval(w)}
}

func (s *putvalSink) Write(ctx context.Context, vl *api.ValueList) error {
	return s.putval.Write(ctx, vl)
}

func (s *putvalSink) Flush(ctx context.Context) error {
	return nil
}

func (s *putvalSink) Close() error {
	return nil
}
