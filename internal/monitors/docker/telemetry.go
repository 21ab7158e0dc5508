package docker

import (
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dockercommon "github.com/signalfx/docker-stats-agent/internal/core/common/docker"
)

// Reasons a container was skipped in a cycle
const (
	reasonGone         = "gone"
	reasonUnavailable  = "unavailable"
	reasonLabelMissing = "label_missing"
	reasonDispatch     = "dispatch"
	reasonOther        = "other"
)

type telemetry struct {
	cycles        prometheus.Counter
	dispatched    prometheus.Counter
	failures      *prometheus.CounterVec
	cycleDuration prometheus.Histogram
}

// newTelemetry registers the collector's own metrics on reg.  A nil reg
// keeps the metrics unregistered.
func newTelemetry(reg prometheus.Registerer) *telemetry {
	factory := promauto.With(reg)
	return &telemetry{
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Name: "docker_stats_cycles_total",
			Help: "Number of collection cycles started",
		}),
		dispatched: factory.NewCounter(prometheus.CounterOpts{
			Name: "docker_stats_dispatched_total",
			Help: "Number of container value lists dispatched",
		}),
		failures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docker_stats_container_failures_total",
			Help: "Number of containers skipped in a cycle, by reason",
		}, []string{"reason"}),
		cycleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "docker_stats_cycle_duration_seconds",
			Help:    "Duration of collection cycles",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// failureReason is the reason label for a per-container error
func failureReason(err error) string {
	switch {
	case errors.Is(err, dockercommon.ErrContainerGone):
		return reasonGone
	case errors.Is(err, dockercommon.ErrRuntimeUnavailable):
		return reasonUnavailable
	case errors.Is(err, ErrLabelMissing):
		return reasonLabelMissing
	case errors.Is(err, errDispatch):
		return reasonDispatch
	}
	return reasonOther
}
