package writer

import (
	"context"
	"strings"

	"collectd.org/api"
	"collectd.org/network"
	"github.com/pkg/errors"
	"github.com/signalfx/docker-stats-agent/internal/core/config"
)

// collectdSink speaks the collectd binary network protocol to a collectd
// network plugin.  The protocol has no room for metadata, so Meta is dropped.
type collectdSink struct {
	client *network.Client
}

func newCollectdSink(conf *config.WriterConfig) (*collectdSink, error) {
	opts := network.ClientOptions{
		Username: conf.Username,
		Password: conf.Password,
	}
	switch strings.ToLower(conf.SecurityLevel) {
	case "", "none":
		opts.SecurityLevel = network.None
	case "sign":
		opts.SecurityLevel = network.Sign
	case "encrypt":
		opts.SecurityLevel = network.Encrypt
	default:
		return nil, config.NewConfigurationError("securityLevel", "unknown security level '%s'", conf.SecurityLevel)
	}

	client, err := network.Dial(conf.Address, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "could not dial collectd at %s", conf.Address)
	}
	return &collectdSink{client: client}, nil
}

func (s *collectdSink) Write(ctx context.Context, vl *api.ValueList) error {
	return s.client.Write(ctx, vl)
}

func (s *collectdSink) Flush(ctx context.Context) error {
	return s.client.Flush()
}

func (s *collectdSink) Close() error {
	return s.client.Close()
}
