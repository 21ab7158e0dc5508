package docker

import (
	"context"
	"strings"

	"github.com/docker/distribution/reference"
)

// imageReference returns the familiar name:tag of the image backing a
// container.  The engine reports the image the way it was asked for, which
// may be a bare name without a tag or an image id.  Ids are resolved to
// their first repo tag through an image inspect, cached by image id.
func (c *Client) imageReference(ctx context.Context, image, imageID string) string {
	if image != "" && !isImageID(image) {
		if ref, ok := normalizeReference(image); ok {
			return ref
		}
		return image
	}

	key := imageID
	if key == "" {
		key = image
	}
	if key == "" {
		return ""
	}

	if v, ok := c.images.Get(key); ok {
		return v.(string)
	}

	inspectCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	resolved := image
	inspect, _, err := c.api.ImageInspectWithRaw(inspectCtx, key)
	if err != nil {
		logger.WithError(err).WithField("image", key).Debug("Could not inspect image, using raw reference")
		return resolved
	}
	if len(inspect.RepoTags) > 0 {
		resolved = inspect.RepoTags[0]
	}
	c.images.Add(key, resolved)
	return resolved
}

func isImageID(image string) bool {
	return strings.HasPrefix(image, "sha256:")
}

// normalizeReference turns e.g. `nginx` into `nginx:latest` and
// `docker.io/library/redis:6` into `redis:6`.  Digest references are kept
// as they are.
func normalizeReference(image string) (string, bool) {
	named, err := reference.ParseNormalizedNamed(image)
	if err != nil {
		return "", false
	}
	if _, isDigested := named.(reference.Digested); isDigested {
		return reference.FamiliarString(named), true
	}
	return reference.FamiliarString(reference.TagNameOnly(named)), true
}
