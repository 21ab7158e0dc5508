package docker

import (
	"fmt"

	"github.com/pkg/errors"
	dockercommon "github.com/signalfx/docker-stats-agent/internal/core/common/docker"
)

// The metadata key that always holds the full container id
const containerIDKey = "container_id"

// ErrLabelMissing matches any LabelMissingError
var ErrLabelMissing = errors.New("container is missing a configured label")

// LabelMissingError is returned when a container lacks one of the label keys
// that its metadata must include
type LabelMissingError struct {
	Key         string
	ContainerID string
}

func (e *LabelMissingError) Error() string {
	return fmt.Sprintf("container %s has no label '%s'", e.ContainerID, e.Key)
}

// Is makes errors.Is(err, ErrLabelMissing) hold
func (e *LabelMissingError) Is(target error) bool {
	return target == ErrLabelMissing
}

// MetadataKind selects what metadata is attached to a container's value
// list
type MetadataKind int

const (
	// IDOnly attaches just the container id
	IDOnly MetadataKind = iota
	// LabelsPlusID attaches the container id and the configured labels
	LabelsPlusID
)

func (k MetadataKind) String() string {
	if k == LabelsPlusID {
		return "labels-plus-id"
	}
	return "id-only"
}

// MetadataBuilder produces the metadata of a container's value list
type MetadataBuilder struct {
	Kind MetadataKind
	Keys []string
}

// Build returns the metadata for c.  With LabelsPlusID every configured key
// must be present on the container, otherwise nothing is returned.
func (b MetadataBuilder) Build(c *dockercommon.Container) (map[string]string, error) {
	meta := make(map[string]string, len(b.Keys)+1)
	if b.Kind == LabelsPlusID {
		for _, k := range b.Keys {
			v, ok := c.Labels[k]
			if !ok {
				return nil, &LabelMissingError{Key: k, ContainerID: c.ID}
			}
			meta[k] = v
		}
	}
	meta[containerIDKey] = c.ID
	return meta, nil
}

// policiesForLabels picks the filter policy and metadata builder for the
// configured label keys.  The two are always chosen together.
func policiesForLabels(labels []string) (FilterPolicy, MetadataBuilder) {
	keys := append([]string(nil), labels...)
	switch len(keys) {
	case 0:
		return FilterPolicy{Kind: AllContainers}, MetadataBuilder{Kind: IDOnly}
	case 1:
		return FilterPolicy{Kind: SingleLabel, Keys: keys}, MetadataBuilder{Kind: LabelsPlusID, Keys: keys}
	default:
		return FilterPolicy{Kind: AllOfLabels, Keys: keys}, MetadataBuilder{Kind: LabelsPlusID, Keys: keys}
	}
}
