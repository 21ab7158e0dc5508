package docker

import "github.com/pkg/errors"

var (
	// ErrRuntimeUnavailable is returned when the docker engine cannot be
	// reached or does not answer within the configured timeout.
	ErrRuntimeUnavailable = errors.New("docker engine unavailable")
	// ErrContainerGone is returned when a container exited or was removed
	// between being listed and having its stats fetched.
	ErrContainerGone = errors.New("container is gone")
)

// classify maps an engine API error onto one of the adapter's sentinel
// errors, keeping the original error as context.
func classify(err error, id string) error {
	switch {
	case err == nil:
		return nil
	case isNotFound(err):
		return errors.Wrapf(ErrContainerGone, "container %s: %v", id, err)
	case isUnavailable(err):
		return errors.Wrapf(ErrRuntimeUnavailable, "%v", err)
	default:
		return err
	}
}
