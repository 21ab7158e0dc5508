package core

import (
	"context"
	"io/ioutil"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"collectd.org/api"
	"collectd.org/meta"
	dtypes "github.com/docker/docker/api/types"
	"github.com/pkg/errors"
	dockercommon "github.com/signalfx/docker-stats-agent/internal/core/common/docker"
	"github.com/signalfx/docker-stats-agent/internal/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"
)

type fakeSource struct {
	containers []dockercommon.Container
}

func (f *fakeSource) ListContainers(ctx context.Context, requiredLabels []string) ([]dockercommon.Container, error) {
	return f.containers, nil
}

func (f *fakeSource) FetchStats(ctx context.Context, id string) (*dtypes.StatsJSON, error) {
	stats := &dtypes.StatsJSON{}
	stats.Read = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	stats.CPUStats.CPUUsage.TotalUsage = 5000000000
	stats.MemoryStats.MaxUsage = 104857600
	return stats, nil
}

type fakeOutput struct {
	lock    sync.Mutex
	vls     []*api.ValueList
	flushes int
	closed  bool
}

func (f *fakeOutput) SendValueList(ctx context.Context, vl *api.ValueList) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.vls = append(f.vls, vl)
	return nil
}

func (f *fakeOutput) Flush(ctx context.Context) error {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.flushes++
	return nil
}

func (f *fakeOutput) Close() error {
	f.closed = true
	return nil
}

func (f *fakeOutput) flushCount() int {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.flushes
}

var webContainer = dockercommon.Container{
	ID:             "3f4e6c2a9b1d8e7f3f4e6c2a9b1d8e7f3f4e6c2a9b1d8e7f3f4e6c2a9b1d8e7f",
	ShortID:        "3f4e6c2a9b1d",
	Name:           "web",
	ImageReference: "nginx:latest",
	Labels:         map[string]string{"com.example.module": "checkout"},
}

func testConfig(plugin string) *config.Config {
	conf := &config.Config{
		Hostname:        "docker-host",
		IntervalSeconds: 10,
	}
	if plugin != "" {
		if err := yaml.Unmarshal([]byte(plugin), &conf.Plugin); err != nil {
			panic(err)
		}
	}
	return conf
}

func buildAgent(conf *config.Config, source *fakeSource, out *fakeOutput) (*Agent, error) {
	monitorConf, err := collectorConfig(conf)
	if err != nil {
		return nil, err
	}
	return newAgent(conf, monitorConf, source, out)
}

func TestCycleDispatchesAndFlushes(t *testing.T) {
	out := &fakeOutput{}
	agent, err := buildAgent(testConfig("labels: com.example.module"), &fakeSource{
		containers: []dockercommon.Container{webContainer},
	}, out)
	require.NoError(t, err)

	agent.cycle(context.Background())

	require.Len(t, out.vls, 1)
	vl := out.vls[0]
	assert.Equal(t, "docker-host", vl.Host)
	assert.Equal(t, "image=nginx:latest name=web short_id=3f4e6c2a9b1d", vl.TypeInstance)
	assert.Equal(t, meta.Data{
		"com.example.module": meta.String("checkout"),
		"container_id":       meta.String(webContainer.ID),
	}, vl.Meta)
	assert.Equal(t, 10*time.Second, vl.Interval)
	assert.Equal(t, 1, out.flushCount())
}

func TestNewAgentRejectsUnknownOption(t *testing.T) {
	_, err := buildAgent(testConfig("lables: a"), &fakeSource{}, &fakeOutput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "lables")
}

func TestStartupChecksOptionsBeforeConnecting(t *testing.T) {
	dir, err := ioutil.TempDir("", "agent-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	for name, doc := range map[string]string{
		"lables":  "plugin:\n  lables: a\n",
		"typesDB": "typesDB: " + filepath.Join(dir, "missing.db") + "\n",
	} {
		path := filepath.Join(dir, name+".yaml")
		// Nothing listens on the discard port, so a connection attempt
		// would fail with a runtime error instead
		require.NoError(t, ioutil.WriteFile(path, []byte(
			"docker:\n  dockerURL: tcp://127.0.0.1:9\n  timeoutSeconds: 1\n"+doc), 0600))

		shutdown, done, err := Startup(path)
		require.Error(t, err, name)
		assert.Nil(t, shutdown)
		assert.Nil(t, done)
		assert.False(t, errors.Is(err, dockercommon.ErrRuntimeUnavailable), name)

		var ce *config.ConfigurationError
		require.True(t, errors.As(err, &ce), name)
		assert.Equal(t, name, ce.Key)
	}
}

func TestNewAgentLoadsTypesDB(t *testing.T) {
	dir, err := ioutil.TempDir("", "agent-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "types.db")
	require.NoError(t, ioutil.WriteFile(path, []byte(
		"load  shortterm:GAUGE:0:5000\ndocker  cpu_usage:GAUGE:0:U, max_mem:GAUGE:0:U\n"), 0600))

	conf := testConfig("")
	conf.TypesDB = path

	out := &fakeOutput{}
	agent, err := buildAgent(conf, &fakeSource{
		containers: []dockercommon.Container{webContainer},
	}, out)
	require.NoError(t, err)

	agent.cycle(context.Background())
	require.Len(t, out.vls, 1)
	assert.Equal(t, []string{"cpu_usage", "max_mem"}, out.vls[0].DSNames)
	assert.Len(t, out.vls[0].Values, 2)
	// No labels configured, so the full container id is the type instance
	assert.Equal(t, webContainer.ID, out.vls[0].TypeInstance)

	conf.TypesDB = filepath.Join(dir, "missing.db")
	_, err = buildAgent(conf, &fakeSource{}, out)
	assert.Error(t, err)
}

func TestRunStopsOnCancel(t *testing.T) {
	out := &fakeOutput{}
	agent, err := buildAgent(testConfig(""), &fakeSource{}, out)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := agent.run(ctx)
	// The first cycle runs before run returns
	assert.Equal(t, 1, out.flushCount())

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("interval loop did not stop")
	}
}

func TestInternalMetrics(t *testing.T) {
	out := &fakeOutput{}
	agent, err := buildAgent(testConfig(""), &fakeSource{
		containers: []dockercommon.Container{webContainer},
	}, out)
	require.NoError(t, err)

	require.NoError(t, agent.serveInternalMetrics("127.0.0.1:0"))
	agent.cycle(context.Background())

	resp, err := http.Get("http://" + agent.metricsAddr.String() + "/metrics")
	require.NoError(t, err)
	body, err := ioutil.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)

	assert.Contains(t, string(body), "docker_stats_cycles_total 1")
	assert.Contains(t, string(body), "docker_stats_dispatched_total 1")

	agent.shutdown()
	assert.True(t, out.closed)
	_, err = http.Get("http://" + agent.metricsAddr.String() + "/metrics")
	assert.Error(t, err)
}
