package writer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"sync"

	"collectd.org/api"
	"github.com/pkg/errors"
	"github.com/signalfx/docker-stats-agent/internal/core/config"
)

// The largest number of value lists held between flushes.  Older ones are
// dropped first.
const maxBufferedValueLists = 10000

// writeHTTPSink POSTs buffered value lists in the collectd write_http JSON
// format, including metadata, on every flush.  The body is the JSON
// encoding of the api.ValueList batch.
type writeHTTPSink struct {
	url    string
	client *http.Client

	lock   sync.Mutex
	buffer []*api.ValueList
}

func newWriteHTTPSink(conf *config.WriterConfig) (*writeHTTPSink, error) {
	client, err := conf.HTTPConfig.Build()
	if err != nil {
		return nil, err
	}
	return &writeHTTPSink{
		url:    conf.URL,
		client: client,
	}, nil
}

func (s *writeHTTPSink) Write(ctx context.Context, vl *api.ValueList) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if len(s.buffer) >= maxBufferedValueLists {
		s.buffer = s.buffer[1:]
	}
	s.buffer = append(s.buffer, vl.Clone())
	return nil
}

func (s *writeHTTPSink) Flush(ctx context.Context) error {
	s.lock.Lock()
	batch := s.buffer
	s.buffer = nil
	s.lock.Unlock()

	if len(batch) == 0 {
		return nil
	}

	body, err := json.Marshal(batch)
	if err != nil {
		return errors.Wrap(err, "could not serialize value lists")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "could not post %d value lists to %s", len(batch), s.url)
	}
	defer resp.Body.Close()
	io.Copy(ioutil.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s responded with %s to %d value lists", s.url, resp.Status, len(batch))
	}
	return nil
}

func (s *writeHTTPSink) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
