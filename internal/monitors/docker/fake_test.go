package docker

import (
	"context"
	"sync"
	"time"

	dtypes "github.com/docker/docker/api/types"
	dockercommon "github.com/signalfx/docker-stats-agent/internal/core/common/docker"
)

var snapshotTime = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

type fakeSource struct {
	containers []dockercommon.Container
	stats      map[string]*dtypes.StatsJSON
	statsErr   map[string]error
	listErr    error
	lastLabels []string

	// If set, FetchStats signals on fetching and then waits for release
	fetching chan struct{}
	release  chan struct{}

	lock    sync.Mutex
	fetched []string
}

func (f *fakeSource) ListContainers(ctx context.Context, requiredLabels []string) ([]dockercommon.Container, error) {
	f.lastLabels = requiredLabels
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]dockercommon.Container, len(f.containers))
	copy(out, f.containers)
	return out, nil
}

func (f *fakeSource) FetchStats(ctx context.Context, id string) (*dtypes.StatsJSON, error) {
	if f.fetching != nil {
		f.fetching <- struct{}{}
		<-f.release
	}

	f.lock.Lock()
	f.fetched = append(f.fetched, id)
	f.lock.Unlock()

	if err := f.statsErr[id]; err != nil {
		return nil, err
	}
	if s, ok := f.stats[id]; ok {
		return s, nil
	}
	s := &dtypes.StatsJSON{}
	s.Read = snapshotTime
	return s, nil
}
