// Package writer contains the dispatch writer.  The writer receives every
// value list the collector produces and hands it to each configured sink.
package writer

import (
	"context"
	"fmt"

	"collectd.org/api"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/signalfx/docker-stats-agent/internal/core/config"
	"github.com/signalfx/docker-stats-agent/internal/monitors/types"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithFields(log.Fields{"component": "writer"})

// sink is one backend that value lists are written to.  Sinks that buffer
// send their buffer on Flush.
type sink interface {
	Write(ctx context.Context, vl *api.ValueList) error
	Flush(ctx context.Context) error
	Close() error
}

type namedSink struct {
	name string
	sink
}

// Writer fans value lists out to its sinks
type Writer struct {
	sinks []namedSink
}

var _ types.Output = &Writer{}

// New creates a writer with one sink per config
func New(confs []config.WriterConfig) (*Writer, error) {
	w := &Writer{}
	for i := range confs {
		s, err := newSink(&confs[i])
		if err != nil {
			w.Close()
			return nil, errors.Wrapf(err, "could not create %s writer", confs[i].Type)
		}
		w.sinks = append(w.sinks, namedSink{
			name: fmt.Sprintf("%s[%d]", confs[i].Type, i),
			sink: s,
		})
	}
	return w, nil
}

func newSink(conf *config.WriterConfig) (sink, error) {
	switch conf.Type {
	case config.WriterCollectd:
		return newCollectdSink(conf)
	case config.WriterPutval:
		return newPutvalSink(nil), nil
	case config.WriterHTTP:
		return newWriteHTTPSink(conf)
	case config.WriterElasticsearch:
		return newElasticsearchSink(conf)
	case config.WriterSignalFx:
		return newSignalFxSink(conf)
	}
	return nil, fmt.Errorf("unknown writer type '%s'", conf.Type)
}

// SendValueList writes vl to every sink.  It only fails when no sink
// accepted the value list.
func (w *Writer) SendValueList(ctx context.Context, vl *api.ValueList) error {
	var errs *multierror.Error
	for _, s := range w.sinks {
		if err := s.Write(ctx, vl); err != nil {
			logger.WithError(err).WithFields(log.Fields{
				"sink":         s.name,
				"typeInstance": vl.TypeInstance,
			}).Debug("Sink rejected value list")
			errs = multierror.Append(errs, errors.Wrap(err, s.name))
		}
	}

	if errs != nil && len(errs.Errors) == len(w.sinks) {
		return errs
	}
	if errs != nil {
		logger.WithError(errs).Warn("Some sinks could not write value list")
	}
	return nil
}

// Flush sends whatever the sinks have buffered
func (w *Writer) Flush(ctx context.Context) error {
	var errs *multierror.Error
	for _, s := range w.sinks {
		if err := s.Flush(ctx); err != nil {
			errs = multierror.Append(errs, errors.Wrap(err, s.name))
		}
	}
	return errs.ErrorOrNil()
}

// Close all sinks
func (w *Writer) Close() error {
	var errs *multierror.Error
	for _, s := range w.sinks {
		if err := s.Close(); err != nil {
			errs = multierror.Append(errs, errors.Wrap(err, s.name))
		}
	}
	return errs.ErrorOrNil()
}
