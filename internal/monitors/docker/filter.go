package docker

import (
	"context"

	dockercommon "github.com/signalfx/docker-stats-agent/internal/core/common/docker"
)

// FilterKind selects which containers are collected
type FilterKind int

const (
	// AllContainers accepts every running container
	AllContainers FilterKind = iota
	// SingleLabel accepts containers that carry one label key
	SingleLabel
	// AllOfLabels accepts containers that carry every one of several label
	// keys
	AllOfLabels
)

func (k FilterKind) String() string {
	switch k {
	case AllContainers:
		return "all-containers"
	case SingleLabel:
		return "single-label"
	case AllOfLabels:
		return "all-of-labels"
	}
	return "unknown"
}

// ContainerLister lists running containers that have all of requiredLabels
type ContainerLister interface {
	ListContainers(ctx context.Context, requiredLabels []string) ([]dockercommon.Container, error)
}

// FilterPolicy decides which running containers are eligible for collection.
// Label values are never looked at, only the presence of the keys.
type FilterPolicy struct {
	Kind FilterKind
	Keys []string
}

// Accepts returns whether a container with the given labels is eligible
func (p FilterPolicy) Accepts(labels map[string]string) bool {
	if p.Kind == AllContainers {
		return true
	}
	for _, k := range p.Keys {
		if _, ok := labels[k]; !ok {
			return false
		}
	}
	return true
}

// RequiredLabels are the label keys to pass to the engine's label filter
func (p FilterPolicy) RequiredLabels() []string {
	if p.Kind == AllContainers {
		return nil
	}
	return p.Keys
}

// List asks the engine for the eligible containers and checks each of them
// against the policy again, so that an engine which does not apply label
// filters still produces the right set.  The engine's order is kept.
func (p FilterPolicy) List(ctx context.Context, lister ContainerLister) ([]dockercommon.Container, error) {
	containers, err := lister.ListContainers(ctx, p.RequiredLabels())
	if err != nil {
		return nil, err
	}

	out := containers[:0]
	for i := range containers {
		if !p.Accepts(containers[i].Labels) {
			logger.WithField("containerID", containers[i].ID).Debug("Engine returned container without the required labels, ignoring it")
			continue
		}
		out = append(out, containers[i])
	}
	return out, nil
}
