package writer

import (
	"context"
	"net/url"
	"sync"

	"collectd.org/api"
	"github.com/pkg/errors"
	"github.com/signalfx/docker-stats-agent/internal/core/config"
	"github.com/signalfx/golib/v3/datapoint"
	"github.com/signalfx/golib/v3/sfxclient"
)

// The largest number of datapoints held between flushes
const maxBufferedDatapoints = 100000

// signalFxSink turns each data source into a datapoint and sends the
// buffered datapoints to SignalFx ingest on every flush
type signalFxSink struct {
	client *sfxclient.HTTPSink

	lock   sync.Mutex
	buffer []*datapoint.Datapoint
}

func newSignalFxSink(conf *config.WriterConfig) (*signalFxSink, error) {
	ingestURL, err := url.Parse(conf.IngestURL)
	if err != nil {
		return nil, errors.Wrapf(err, "%s is not a valid ingest URL", conf.IngestURL)
	}
	dpEndpointURL, err := ingestURL.Parse("v2/datapoint")
	if err != nil {
		return nil, errors.Wrap(err, "could not construct datapoint ingest URL")
	}

	httpClient, err := conf.HTTPConfig.Build()
	if err != nil {
		return nil, err
	}

	client := sfxclient.NewHTTPSink()
	client.AuthToken = conf.AccessToken
	client.DatapointEndpoint = dpEndpointURL.String()
	client.Client = httpClient

	return &signalFxSink{client: client}, nil
}

// toDatapoints makes one datapoint per data source, named docker.<dsname>.
// The metadata and the collectd identity become dimensions.
func toDatapoints(vl *api.ValueList) []*datapoint.Datapoint {
	dims := make(map[string]string, len(vl.Meta)+3)
	for k, v := range vl.Meta {
		dims[k] = v.String()
	}
	dims["plugin"] = vl.Plugin
	dims["host"] = vl.Host
	dims["type_instance"] = vl.TypeInstance

	out := make([]*datapoint.Datapoint, 0, len(vl.Values))
	for i, v := range vl.Values {
		name := vl.Type + "." + vl.DSName(i)

		var dp *datapoint.Datapoint
		switch n := v.(type) {
		case api.Gauge:
			dp = datapoint.New(name, dims, datapoint.NewFloatValue(float64(n)), datapoint.Gauge, vl.Time)
		case api.Derive:
			dp = datapoint.New(name, dims, datapoint.NewIntValue(int64(n)), datapoint.Counter, vl.Time)
		case api.Counter:
			dp = datapoint.New(name, dims, datapoint.NewIntValue(int64(n)), datapoint.Counter, vl.Time)
		default:
			continue
		}
		out = append(out, dp)
	}
	return out
}

func (s *signalFxSink) Write(ctx context.Context, vl *api.ValueList) error {
	dps := toDatapoints(vl)

	s.lock.Lock()
	defer s.lock.Unlock()
	if over := len(s.buffer) + len(dps) - maxBufferedDatapoints; over > 0 && over <= len(s.buffer) {
		s.buffer = s.buffer[over:]
	}
	s.buffer = append(s.buffer, dps...)
	return nil
}

func (s *signalFxSink) Flush(ctx context.Context) error {
	s.lock.Lock()
	batch := s.buffer
	s.buffer = nil
	s.lock.Unlock()

	if len(batch) == 0 {
		return nil
	}
	return errors.Wrapf(s.client.AddDatapoints(ctx, batch), "could not send %d datapoints", len(batch))
}

func (s *signalFxSink) Close() error {
	return nil
}
