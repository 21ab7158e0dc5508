package writer

import (
	"bytes"
	"context"
	"net"
	"testing"
	"time"

	"github.com/signalfx/docker-stats-agent/internal/core/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectdSink(t *testing.T) {
	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	s, err := newCollectdSink(&config.WriterConfig{
		Type:          config.WriterCollectd,
		Address:       conn.LocalAddr().String(),
		SecurityLevel: "none",
	})
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Write(context.Background(), testValueList()))
	require.NoError(t, s.Flush(context.Background()))

	buf := make([]byte, 1452)
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	n, _, err := conn.ReadFrom(buf)
	require.NoError(t, err)

	packet := buf[:n]
	assert.True(t, bytes.Contains(packet, []byte("docker-host")))
	assert.True(t, bytes.Contains(packet, []byte("docker_stats")))
	// Metadata is not part of the binary protocol
	assert.False(t, bytes.Contains(packet, []byte("module_id")))
}

func TestCollectdSinkBadSecurityLevel(t *testing.T) {
	_, err := newCollectdSink(&config.WriterConfig{
		Type:          config.WriterCollectd,
		Address:       "127.0.0.1:25826",
		SecurityLevel: "paranoid",
	})
	assert.Error(t, err)
}
