package writer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"collectd.org/meta"
	"github.com/signalfx/docker-stats-agent/internal/core/common/httpclient"
	"github.com/signalfx/docker-stats-agent/internal/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteHTTPSink(t *testing.T) {
	var requests int32
	var body []map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		atomic.AddInt32(&requests, 1)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		rw.Write([]byte(`"OK"`))
	}))
	defer server.Close()

	s, err := newWriteHTTPSink(&config.WriterConfig{
		Type:       config.WriterHTTP,
		URL:        server.URL + "/write",
		HTTPConfig: httpclient.HTTPConfig{TimeoutSeconds: 5},
	})
	require.NoError(t, err)

	// Nothing buffered means no request
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, int32(0), atomic.LoadInt32(&requests))

	require.NoError(t, s.Write(context.Background(), testValueList()))
	require.NoError(t, s.Write(context.Background(), testValueList()))
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests))

	require.Len(t, body, 2)
	vl := body[0]
	assert.Equal(t, []interface{}{float64(5000000000), float64(104857600), float64(4096)}, vl["values"])
	assert.Equal(t, []interface{}{"gauge", "gauge", "derive"}, vl["dstypes"])
	assert.Equal(t, []interface{}{"cpu_usage", "max_mem", "blk_in_rate"}, vl["dsnames"])
	assert.Equal(t, float64(testTime.Unix()), vl["time"])
	assert.Equal(t, float64(10), vl["interval"])
	assert.Equal(t, "docker-host", vl["host"])
	assert.Equal(t, "docker_stats", vl["plugin"])
	assert.Equal(t, "docker", vl["type"])
	assert.Equal(t, "image=nginx:latest name=web short_id=3f4e6c2a9b1d", vl["type_instance"])
	assert.Equal(t, map[string]interface{}{"container_id": "3f4e6c2a9b1d8e7f", "module_id": "abc"}, vl["meta"])

	// Buffered value lists are copies, so later changes by the caller do not
	// leak into the next request
	later := testValueList()
	require.NoError(t, s.Write(context.Background(), later))
	later.Meta["module_id"] = meta.String("changed")
	require.NoError(t, s.Flush(context.Background()))
	require.Len(t, body, 1)
	assert.Equal(t, "abc", body[0]["meta"].(map[string]interface{})["module_id"])
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))

	// The buffer was emptied by the flush
	require.NoError(t, s.Flush(context.Background()))
	assert.Equal(t, int32(2), atomic.LoadInt32(&requests))
}

func TestWriteHTTPSinkErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		rw.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	s, err := newWriteHTTPSink(&config.WriterConfig{
		Type:       config.WriterHTTP,
		URL:        server.URL,
		HTTPConfig: httpclient.HTTPConfig{TimeoutSeconds: 5},
	})
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), testValueList()))
	err = s.Flush(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
