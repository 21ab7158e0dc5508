package docker

import (
	"context"
	"io/ioutil"
	"strings"

	dtypes "github.com/docker/docker/api/types"
)

type fakeAPI struct {
	containers  []dtypes.Container
	inspect     map[string]dtypes.ContainerJSON
	images      map[string]dtypes.ImageInspect
	stats       map[string]string
	statsErr    map[string]error
	listErr     error
	lastList    dtypes.ContainerListOptions
	imageLookup int
	closed      bool
}

func (f *fakeAPI) ContainerList(ctx context.Context, options dtypes.ContainerListOptions) ([]dtypes.Container, error) {
	f.lastList = options
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.containers, nil
}

func (f *fakeAPI) ContainerInspect(ctx context.Context, id string) (dtypes.ContainerJSON, error) {
	if cj, ok := f.inspect[id]; ok {
		return cj, nil
	}
	return dtypes.ContainerJSON{}, notFoundErr(id)
}

func (f *fakeAPI) ContainerStats(ctx context.Context, id string, stream bool) (dtypes.ContainerStats, error) {
	if err := f.statsErr[id]; err != nil {
		return dtypes.ContainerStats{}, err
	}
	return dtypes.ContainerStats{
		Body:   ioutil.NopCloser(strings.NewReader(f.stats[id])),
		OSType: "linux",
	}, nil
}

func (f *fakeAPI) ImageInspectWithRaw(ctx context.Context, image string) (dtypes.ImageInspect, []byte, error) {
	f.imageLookup++
	if ii, ok := f.images[image]; ok {
		return ii, nil, nil
	}
	return dtypes.ImageInspect{}, nil, notFoundErr(image)
}

func (f *fakeAPI) Ping(ctx context.Context) (dtypes.Ping, error) {
	return dtypes.Ping{}, nil
}

func (f *fakeAPI) Close() error {
	f.closed = true
	return nil
}
