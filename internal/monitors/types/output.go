package types

import (
	"context"

	"collectd.org/api"
)

// Output is the interface that the collector uses to send data to the agent
// core.  Each value list describes one container, with the container's
// metadata in Meta.  Implementations fan the value list out to whatever
// backends are configured, and backends that cannot carry metadata ignore
// it.
type Output interface {
	SendValueList(ctx context.Context, vl *api.ValueList) error
}
