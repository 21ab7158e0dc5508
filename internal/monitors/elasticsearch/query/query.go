// Package query runs the per-container searches against the index that the
// elasticsearch sink writes to.
package query

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/signalfx/docker-stats-agent/internal/monitors/elasticsearch/client"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithFields(log.Fields{"component": "elasticsearch-query"})

// Querier searches one index
type Querier struct {
	Client client.ESHttpClient
	Index  string
	// Maximum number of containers returned.  Defaults to 1000.
	Buckets int

	now func() time.Time
}

func (q *Querier) since(window time.Duration) time.Time {
	if window <= 0 {
		return time.Time{}
	}
	now := time.Now
	if q.now != nil {
		now = q.now
	}
	return now().Add(-window)
}

// LatestPerContainer returns the newest document of every container that
// reported within window
func (q *Querier) LatestPerContainer(ctx context.Context, window time.Duration) ([]ContainerSnapshot, error) {
	if window <= 0 {
		return nil, errors.New("the window of the latest snapshot query must be positive")
	}

	body := latestPerContainerBody(q.since(window), q.Buckets)

	var resp searchResponse
	if err := q.Client.Search(ctx, q.Index, body, &resp); err != nil {
		return nil, errors.Wrap(err, "latest snapshot query failed")
	}

	out, err := decodeLatest(&resp)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Found recent snapshots for %d containers", len(out))
	return out, nil
}

// MaximaPerContainer returns the maximum of each of dsNames per container
// over window.  A zero window covers the whole index.
func (q *Querier) MaximaPerContainer(ctx context.Context, window time.Duration, dsNames []string) ([]ContainerMaxima, error) {
	body := maximaPerContainerBody(q.since(window), q.Buckets, dsNames)

	var resp searchResponse
	if err := q.Client.Search(ctx, q.Index, body, &resp); err != nil {
		return nil, errors.Wrap(err, "maxima query failed")
	}

	out, err := decodeMaxima(&resp, dsNames)
	if err != nil {
		return nil, err
	}
	logger.Debugf("Found maxima for %d containers", len(out))
	return out, nil
}
