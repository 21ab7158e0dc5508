// Package core contains the central frame of the agent that hooks up the
// docker engine, the stats collector and the writer.
package core

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dockercommon "github.com/signalfx/docker-stats-agent/internal/core/common/docker"
	"github.com/signalfx/docker-stats-agent/internal/core/config"
	"github.com/signalfx/docker-stats-agent/internal/core/writer"
	"github.com/signalfx/docker-stats-agent/internal/monitors/docker"
	"github.com/signalfx/docker-stats-agent/internal/monitors/types"
	"github.com/signalfx/docker-stats-agent/internal/utils"
	log "github.com/sirupsen/logrus"
)

// VersionLine should be populated by the startup logic to contain version
// information.
var VersionLine string

// output is what the agent dispatches value lists to
type output interface {
	types.Output
	Flush(ctx context.Context) error
	Close() error
}

// Agent triggers the collector on every interval and flushes the writer
// after each cycle.
type Agent struct {
	interval time.Duration
	monitor  *docker.Monitor
	output   output
	closers  []func() error
	registry *prometheus.Registry

	metricsServer *http.Server
	metricsAddr   net.Addr
}

// collectorConfig builds the collector config out of the plugin block and
// the types.db of conf.  It touches nothing but the local filesystem.
func collectorConfig(conf *config.Config) (*docker.Config, error) {
	monitorConf, err := docker.ParseOptions(conf.Plugin)
	if err != nil {
		return nil, err
	}
	monitorConf.Hostname = conf.Hostname
	monitorConf.IntervalSeconds = conf.IntervalSeconds

	if conf.TypesDB != "" {
		monitorConf.Dataset, err = docker.LoadTypesDB(conf.TypesDB)
		if err != nil {
			return nil, err
		}
	}
	return monitorConf, nil
}

// newAgent wires a collector to its stats source and output
func newAgent(conf *config.Config, monitorConf *docker.Config, source docker.StatsSource, out output) (*Agent, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	monitor := &docker.Monitor{
		Output:     out,
		Client:     source,
		Registerer: registry,
	}
	if err := monitor.Configure(monitorConf); err != nil {
		return nil, err
	}

	return &Agent{
		interval: time.Duration(conf.IntervalSeconds) * time.Second,
		monitor:  monitor,
		output:   out,
		registry: registry,
	}, nil
}

// cycle runs one collection and sends out whatever the writer buffered
func (a *Agent) cycle(ctx context.Context) {
	if err := a.monitor.Read(ctx); err != nil {
		log.WithError(err).Error("Collection cycle failed")
	}

	flushCtx, cancel := context.WithTimeout(ctx, a.interval)
	defer cancel()
	if err := a.output.Flush(flushCtx); err != nil {
		log.WithError(err).Error("Could not flush value lists")
	}
}

// run starts the interval loop.  The returned channel is closed once the
// loop has stopped after ctx is cancelled.
func (a *Agent) run(ctx context.Context) <-chan struct{} {
	return utils.RunOnInterval(ctx, func() {
		// A cycle in progress is allowed to finish on shutdown
		a.cycle(context.Background())
	}, a.interval)
}

// serveInternalMetrics exposes the registry on addr under /metrics
func (a *Agent) serveInternalMetrics(addr string) error {
	if addr == "" {
		return nil
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return errors.Wrapf(err, "could not listen on %s for internal metrics", addr)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}))

	a.metricsAddr = listener.Addr()
	a.metricsServer = &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := a.metricsServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("Internal metrics server stopped")
		}
	}()

	log.Infof("Serving internal metrics at http://%s/metrics", a.metricsAddr)
	return nil
}

func (a *Agent) shutdown() {
	if a.metricsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		a.metricsServer.Shutdown(ctx)
		cancel()
	}

	if err := a.output.Close(); err != nil {
		log.WithError(err).Error("Could not close writer")
	}
	for _, closer := range a.closers {
		if err := closer(); err != nil {
			log.WithError(err).Error("Could not close docker client")
		}
	}
}

// Startup the agent.  Returns a function that can be called to shutdown the
// agent, as well as a channel that will be notified when the agent has
// shutdown.
func Startup(configPath string) (context.CancelFunc, <-chan struct{}, error) {
	log.Info("Starting up agent")

	conf, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}
	conf.Logging.Apply()
	log.Infof("Using log level %s", log.GetLevel().String())

	monitorConf, err := collectorConfig(conf)
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	client, err := dockercommon.NewClient(ctx, &conf.Docker)
	if err != nil {
		cancel()
		return nil, nil, err
	}

	w, err := writer.New(conf.Writer)
	if err != nil {
		cancel()
		client.Close()
		return nil, nil, err
	}

	agent, err := newAgent(conf, monitorConf, client, w)
	if err != nil {
		cancel()
		w.Close()
		client.Close()
		return nil, nil, err
	}
	agent.closers = append(agent.closers, client.Close)

	if err := agent.serveInternalMetrics(conf.InternalMetricsListenAddress); err != nil {
		log.WithError(err).Error("Could not start internal metrics server")
	}

	loopDone := agent.run(ctx)
	log.Info("Done configuring agent")

	shutdownComplete := make(chan struct{})
	go func() {
		<-loopDone
		agent.shutdown()
		close(shutdownComplete)
	}()

	return cancel, shutdownComplete, nil
}
