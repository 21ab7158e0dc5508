package writer

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"collectd.org/meta"
	"github.com/signalfx/docker-stats-agent/internal/core/common/httpclient"
	"github.com/signalfx/docker-stats-agent/internal/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDocument(t *testing.T) {
	vl := testValueList()
	vl.Meta["host"] = meta.String("should-not-win")
	vl.Meta["cpu_usage"] = meta.String("should-not-win")

	assert.Equal(t, map[string]interface{}{
		"@timestamp":    "2024-03-01T10:00:00Z",
		"host":          "docker-host",
		"plugin":        "docker_stats",
		"type":          "docker",
		"type_instance": "image=nginx:latest name=web short_id=3f4e6c2a9b1d",
		"interval":      float64(10),
		"cpu_usage":     float64(5000000000),
		"max_mem":       float64(104857600),
		"blk_in_rate":   int64(4096),
		"container_id":  "3f4e6c2a9b1d8e7f",
		"module_id":     "abc",
	}, toDocument(vl))
}

func TestElasticsearchSink(t *testing.T) {
	var path string
	var doc map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(rw http.ResponseWriter, req *http.Request) {
		path = req.URL.Path
		require.NoError(t, json.NewDecoder(req.Body).Decode(&doc))
		rw.WriteHeader(http.StatusCreated)
		rw.Write([]byte(`{"result":"created"}`))
	}))
	defer server.Close()

	s, err := newElasticsearchSink(&config.WriterConfig{
		Type:       config.WriterElasticsearch,
		URL:        server.URL,
		Index:      "docker",
		HTTPConfig: httpclient.HTTPConfig{TimeoutSeconds: 5},
	})
	require.NoError(t, err)

	require.NoError(t, s.Write(context.Background(), testValueList()))
	assert.Equal(t, "/docker/_doc", path)
	assert.Equal(t, "abc", doc["module_id"])
	assert.Equal(t, float64(104857600), doc["max_mem"])
}
