package config

import (
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

func TestLogConfig(t *testing.T) {
	lc := LogConfig{Level: "debug", Format: "json"}
	require.NoError(t, lc.Validate())

	level := lc.LogrusLevel()
	require.NotNil(t, level)
	assert.Equal(t, log.DebugLevel, *level)
	assert.IsType(t, &log.JSONFormatter{}, lc.LogrusFormatter())

	lc.Format = "text"
	assert.IsType(t, &prefixed.TextFormatter{}, lc.LogrusFormatter())

	lc.Level = "loud"
	assert.Nil(t, lc.LogrusLevel())
	assert.Error(t, lc.Validate())
}
