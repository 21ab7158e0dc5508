package docker

import (
	"context"
	"encoding/json"
	"io"

	dtypes "github.com/docker/docker/api/types"
	"github.com/pkg/errors"
)

// FetchStats takes a single, non-streaming stats snapshot of the container.
// A container that disappeared or stopped since it was listed yields
// ErrContainerGone.
func (c *Client) FetchStats(ctx context.Context, id string) (*dtypes.StatsJSON, error) {
	statsCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	resp, err := c.api.ContainerStats(statsCtx, id, false)
	if err != nil {
		return nil, classify(err, id)
	}
	defer resp.Body.Close()

	var parsed dtypes.StatsJSON
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		// EOF means that there aren't any stats because the container
		// exited while the request was in flight.
		if err == io.EOF {
			return nil, errors.Wrapf(ErrContainerGone, "container %s returned no stats", id)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, errors.Wrapf(ErrRuntimeUnavailable, "timed out reading stats of %s", id)
		}
		return nil, errors.Wrapf(err, "could not decode stats of container %s", id)
	}

	// The engine answers for a stopped container with a snapshot that only
	// holds the name and id, and no read time.
	if parsed.Read.IsZero() {
		return nil, errors.Wrapf(ErrContainerGone, "container %s is not running", id)
	}

	return &parsed, nil
}
