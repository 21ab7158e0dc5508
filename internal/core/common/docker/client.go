// Package docker wraps the Docker engine API with the small surface the stats
// collector needs: listing running containers, one-shot stats snapshots and
// container identity.
package docker

import (
	"context"
	"io"
	"time"

	dtypes "github.com/docker/docker/api/types"
	docker "github.com/docker/docker/client"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const imageCacheSize = 256

var logger = log.WithFields(log.Fields{"component": "docker-client"})

// API is the subset of the engine client that the adapter uses.  It is
// satisfied by *docker.Client.
type API interface {
	ContainerList(ctx context.Context, options dtypes.ContainerListOptions) ([]dtypes.Container, error)
	ContainerInspect(ctx context.Context, container string) (dtypes.ContainerJSON, error)
	ContainerStats(ctx context.Context, container string, stream bool) (dtypes.ContainerStats, error)
	ImageInspectWithRaw(ctx context.Context, image string) (dtypes.ImageInspect, []byte, error)
	Ping(ctx context.Context) (dtypes.Ping, error)
	io.Closer
}

var _ API = (*docker.Client)(nil)

// Config for the engine connection
type Config struct {
	// The URL of the docker server
	DockerURL string `yaml:"dockerURL" default:"unix:///var/run/docker.sock"`
	// The maximum amount of time to wait for docker API requests
	TimeoutSeconds int `yaml:"timeoutSeconds" default:"5" validate:"min=1"`
	// The engine API version to pin.  If blank, the version is negotiated
	// with the engine.
	APIVersion string `yaml:"apiVersion"`
}

// Timeout as a duration
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Client is the runtime adapter.  All calls are bounded by the configured
// timeout so a stuck engine surfaces as ErrRuntimeUnavailable instead of
// hanging the caller.
type Client struct {
	api     API
	timeout time.Duration
	images  *lru.Cache
}

// NewClient connects to the engine described by conf and pings it once.
func NewClient(ctx context.Context, conf *Config) (*Client, error) {
	opts := []docker.Opt{
		docker.WithHost(conf.DockerURL),
		docker.WithHTTPHeaders(map[string]string{"User-Agent": "docker-stats-agent"}),
	}
	if conf.APIVersion != "" {
		opts = append(opts, docker.WithVersion(conf.APIVersion))
	} else {
		opts = append(opts, docker.WithAPIVersionNegotiation())
	}

	cli, err := docker.NewClientWithOpts(opts...)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create docker client for %s", conf.DockerURL)
	}

	c := NewClientFromAPI(cli, conf.Timeout())

	pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if _, err := cli.Ping(pingCtx); err != nil {
		cli.Close()
		return nil, errors.Wrapf(ErrRuntimeUnavailable, "could not ping docker engine at %s: %v", conf.DockerURL, err)
	}

	return c, nil
}

// NewClientFromAPI wraps an existing engine client.
func NewClientFromAPI(api API, timeout time.Duration) *Client {
	images, _ := lru.New(imageCacheSize)
	return &Client{
		api:     api,
		timeout: timeout,
		images:  images,
	}
}

// Close releases the underlying engine connection
func (c *Client) Close() error {
	if c.api != nil {
		return c.api.Close()
	}
	return nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

func isNotFound(err error) bool {
	return docker.IsErrNotFound(errors.Cause(err))
}

func isUnavailable(err error) bool {
	cause := errors.Cause(err)
	return docker.IsErrConnectionFailed(cause) ||
		errors.Is(err, context.DeadlineExceeded)
}
