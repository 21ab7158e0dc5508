package docker

import (
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/pkg/errors"
	"github.com/signalfx/docker-stats-agent/internal/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	yaml "gopkg.in/yaml.v2"
)

func parseBlock(t *testing.T, doc string) yaml.MapSlice {
	var block yaml.MapSlice
	require.NoError(t, yaml.Unmarshal([]byte(doc), &block))
	return block
}

func TestParseOptions(t *testing.T) {
	for _, tc := range []struct {
		doc    string
		labels []string
	}{
		{doc: ``, labels: nil},
		{doc: `labels:`, labels: nil},
		{doc: `labels: []`, labels: nil},
		{doc: `labels: ""`, labels: nil},
		{doc: `labels: module_id`, labels: []string{"module_id"}},
		{doc: `labels: [module_id, user]`, labels: []string{"module_id", "user"}},
		{doc: `labels: "module_id, user"`, labels: []string{"module_id", "user"}},
		{doc: `labels: "module_id user  app"`, labels: []string{"module_id", "user", "app"}},
		{doc: "labels:\n  - com.example.app\n  - user\n", labels: []string{"com.example.app", "user"}},
	} {
		conf, err := ParseOptions(parseBlock(t, tc.doc))
		require.NoError(t, err, spew.Sdump(tc))
		assert.Equal(t, tc.labels, conf.Labels, spew.Sdump(tc))
	}
}

func TestParseOptionsErrors(t *testing.T) {
	for _, tc := range []struct {
		doc string
		key string
	}{
		{doc: `interval: 10`, key: "interval"},
		{doc: "labels: a\nlabels: b\n", key: "labels"},
		{doc: `labels: [a, 5]`, key: "labels"},
		{doc: `labels: [a, ""]`, key: "labels"},
		{doc: `labels: {a: b}`, key: "labels"},
		{doc: `labels: 12`, key: "labels"},
		{doc: `labels: [a, a]`, key: "labels"},
		{doc: `labels: "user=alice"`, key: "labels"},
	} {
		_, err := ParseOptions(parseBlock(t, tc.doc))
		require.Error(t, err, spew.Sdump(tc))

		var ce *config.ConfigurationError
		require.True(t, errors.As(err, &ce), spew.Sdump(tc))
		assert.Equal(t, tc.key, ce.Key, spew.Sdump(tc))
		assert.Contains(t, err.Error(), tc.key)
	}
}
