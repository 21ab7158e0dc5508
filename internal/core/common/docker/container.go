package docker

import (
	"context"
	"strings"

	dtypes "github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/filters"
	"github.com/docker/docker/pkg/stringid"
	"github.com/pkg/errors"
)

// Container is the identity of a running container as reported by the
// engine.  It is never mutated by the collector.
type Container struct {
	ID             string
	ShortID        string
	Name           string
	ImageReference string
	Labels         map[string]string
}

// ListContainers returns the running containers that carry every label in
// requiredLabels.  The label requirement is passed to the engine as one
// `label` filter per key, which the engine ANDs together.
func (c *Client) ListContainers(ctx context.Context, requiredLabels []string) ([]Container, error) {
	f := filters.NewArgs(filters.Arg("status", "running"))
	for _, l := range requiredLabels {
		f.Add("label", l)
	}

	listCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	list, err := c.api.ContainerList(listCtx, dtypes.ContainerListOptions{Filters: f})
	if err != nil {
		return nil, errors.Wrapf(ErrRuntimeUnavailable, "could not list containers: %v", err)
	}

	out := make([]Container, 0, len(list))
	for i := range list {
		out = append(out, Container{
			ID:             list[i].ID,
			ShortID:        stringid.TruncateID(list[i].ID),
			Name:           containerName(list[i].Names),
			ImageReference: c.imageReference(ctx, list[i].Image, list[i].ImageID),
			Labels:         copyLabels(list[i].Labels),
		})
	}
	return out, nil
}

// Inspect looks up a single container by id or name.
func (c *Client) Inspect(ctx context.Context, idOrName string) (*Container, error) {
	inspectCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	cj, err := c.api.ContainerInspect(inspectCtx, idOrName)
	if err != nil {
		return nil, classify(err, idOrName)
	}

	cont := &Container{
		ID:      cj.ID,
		ShortID: stringid.TruncateID(cj.ID),
		Name:    strings.TrimPrefix(cj.Name, "/"),
	}
	if cj.Config != nil {
		cont.ImageReference = c.imageReference(ctx, cj.Config.Image, cj.Image)
		cont.Labels = copyLabels(cj.Config.Labels)
	} else {
		cont.ImageReference = c.imageReference(ctx, cj.Image, cj.Image)
		cont.Labels = map[string]string{}
	}
	return cont, nil
}

// The engine reports names with a leading slash, and a container linked
// into other containers has one name per link.  The canonical name is the
// one without any further path segments.
func containerName(names []string) string {
	for _, n := range names {
		n = strings.TrimPrefix(n, "/")
		if !strings.Contains(n, "/") {
			return n
		}
	}
	if len(names) > 0 {
		return strings.TrimPrefix(names[0], "/")
	}
	return ""
}

func copyLabels(labels map[string]string) map[string]string {
	out := make(map[string]string, len(labels))
	for k, v := range labels {
		out[k] = v
	}
	return out
}
