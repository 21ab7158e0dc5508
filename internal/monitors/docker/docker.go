// Package docker contains the collector that reads container stats from a
// Docker engine and dispatches one collectd value list per container.
package docker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"collectd.org/api"
	"collectd.org/meta"
	dtypes "github.com/docker/docker/api/types"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	dockercommon "github.com/signalfx/docker-stats-agent/internal/core/common/docker"
	"github.com/signalfx/docker-stats-agent/internal/monitors/types"
	log "github.com/sirupsen/logrus"
)

const monitorType = "docker_stats"

// The collectd plugin name of every value list
const pluginName = "docker_stats"

var logger = log.WithFields(log.Fields{"monitorType": monitorType})

// ErrCycleInProgress is returned by Read when it is triggered while the
// previous cycle has not finished yet
var ErrCycleInProgress = errors.New("a collection cycle is already in progress")

var errDispatch = errors.New("could not dispatch value list")

// dispatchError carries the output's error while still matching errDispatch
type dispatchError struct {
	err error
}

func (e *dispatchError) Error() string {
	return errDispatch.Error() + ": " + e.err.Error()
}

func (e *dispatchError) Is(target error) bool {
	return target == errDispatch
}

func (e *dispatchError) Unwrap() error {
	return e.err
}

const (
	stateIdle int32 = iota
	stateCollecting
)

// StatsSource is the part of the engine adapter that the collector needs
type StatsSource interface {
	ContainerLister
	FetchStats(ctx context.Context, id string) (*dtypes.StatsJSON, error)
}

var _ StatsSource = (*dockercommon.Client)(nil)

// Monitor collects stats for the eligible containers each time Read is
// called.  It has no timer of its own.
type Monitor struct {
	Output types.Output
	Client StatsSource
	// Where the collector's own metrics are registered.  May be nil.
	Registerer prometheus.Registerer

	hostname  string
	interval  time.Duration
	filter    FilterPolicy
	metadata  MetadataBuilder
	dataset   *api.DataSet
	telemetry *telemetry
	state     int32
}

// Configure the collector.  The filter policy and metadata builder are
// picked here and are not changed afterwards.
func (m *Monitor) Configure(conf *Config) error {
	if m.Output == nil || m.Client == nil {
		return errors.New("docker stats collector needs an output and a docker client")
	}

	m.hostname = conf.Hostname
	m.interval = time.Duration(conf.IntervalSeconds) * time.Second
	m.filter, m.metadata = policiesForLabels(conf.Labels)

	m.dataset = conf.Dataset
	if m.dataset == nil {
		m.dataset = DefaultDataset()
	}

	m.telemetry = newTelemetry(m.Registerer)

	logger.WithFields(log.Fields{
		"filter":   m.filter.Kind.String(),
		"metadata": m.metadata.Kind.String(),
		"labels":   conf.Labels,
	}).Info("Configured docker stats collector")

	return nil
}

// Read runs one collection cycle.  Containers that fail are logged and
// skipped.  An error is only returned when the containers could not be
// listed or when another cycle is still running.
func (m *Monitor) Read(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&m.state, stateIdle, stateCollecting) {
		logger.Warn("Previous collection cycle has not finished, skipping this one")
		return ErrCycleInProgress
	}
	defer atomic.StoreInt32(&m.state, stateIdle)

	start := time.Now()
	m.telemetry.cycles.Inc()
	defer func() {
		m.telemetry.cycleDuration.Observe(time.Since(start).Seconds())
	}()

	containers, err := m.filter.List(ctx, m.Client)
	if err != nil {
		logger.WithError(err).Error("Could not list docker containers")
		return errors.Wrap(err, "could not list containers")
	}

	for i := range containers {
		if err := m.collect(ctx, &containers[i]); err != nil {
			m.logFailure(&containers[i], err)
			continue
		}
		m.telemetry.dispatched.Inc()
	}

	logger.Debugf("Collected stats for %d containers", len(containers))
	return nil
}

func (m *Monitor) collect(ctx context.Context, c *dockercommon.Container) error {
	stats, err := m.Client.FetchStats(ctx, c.ID)
	if err != nil {
		return err
	}

	// A snapshot without a read time belongs to a container that stopped
	// after it was listed
	if stats.Read.IsZero() {
		return errors.Wrapf(dockercommon.ErrContainerGone, "container %s has no stats", c.ID)
	}

	rec := ConvertStats(stats)

	labels, err := m.metadata.Build(c)
	if err != nil {
		return err
	}
	md := make(meta.Data, len(labels))
	for k, v := range labels {
		md[k] = meta.String(v)
	}

	values, err := recordValues(m.dataset, &rec)
	if err != nil {
		return err
	}

	vl := &api.ValueList{
		Identifier: api.Identifier{
			Host:         m.hostname,
			Plugin:       pluginName,
			Type:         typeName,
			TypeInstance: m.typeInstance(c),
		},
		Time:     stats.Read,
		Interval: m.interval,
		Values:   values,
		DSNames:  m.dataset.Names(),
		Meta:     md,
	}
	if err := m.dataset.Check(vl); err != nil {
		return errors.Wrap(err, "value list does not match the docker type")
	}

	if err := m.Output.SendValueList(ctx, vl); err != nil {
		return &dispatchError{err: err}
	}
	return nil
}

// typeInstance identifies the container's value list.  Container names are
// unique among running containers so it never collides within a cycle.
func (m *Monitor) typeInstance(c *dockercommon.Container) string {
	if m.metadata.Kind == IDOnly {
		return c.ID
	}
	return fmt.Sprintf("image=%s name=%s short_id=%s", c.ImageReference, c.Name, c.ShortID)
}

func (m *Monitor) logFailure(c *dockercommon.Container, err error) {
	reason := failureReason(err)
	m.telemetry.failures.WithLabelValues(reason).Inc()

	entry := logger.WithError(err).WithFields(log.Fields{
		"containerID": c.ID,
		"name":        c.Name,
	})
	if reason == reasonGone {
		entry.Info("Container went away before its stats could be collected")
		return
	}
	entry.Warn("Could not collect stats for container")
}
