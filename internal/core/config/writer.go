package config

import (
	"net/url"
	"strings"

	"github.com/signalfx/docker-stats-agent/internal/core/common/httpclient"
)

// The sink types a writer can be
const (
	WriterCollectd      = "collectd"
	WriterPutval        = "putval"
	WriterHTTP          = "writeHTTP"
	WriterElasticsearch = "elasticsearch"
	WriterSignalFx      = "signalfx"
)

// WriterConfig holds the configuration of a single dispatch sink.  Which
// fields apply depends on the type.
type WriterConfig struct {
	// One of collectd, putval, writeHTTP, elasticsearch or signalfx
	Type string `yaml:"type" validate:"required"`

	// The host:port of the collectd network plugin (collectd only)
	Address string `yaml:"address" default:"localhost:25826"`
	// none, sign or encrypt (collectd only).  Sign and encrypt use the
	// username and password.
	SecurityLevel string `yaml:"securityLevel" default:"none"`

	// The URL to POST to (writeHTTP), or the base URL of the cluster
	// (elasticsearch)
	URL string `yaml:"url"`
	// The index documents are written to (elasticsearch only)
	Index string `yaml:"index" default:"docker"`

	// The SignalFx access token (signalfx only)
	AccessToken string `yaml:"accessToken" neverLog:"true"`
	// The ingest URL for SignalFx, without the path (signalfx only)
	IngestURL string `yaml:"ingestUrl" default:"https://ingest.signalfx.com"`

	httpclient.HTTPConfig `yaml:",inline"`
}

// Validate the type specific fields
func (wc *WriterConfig) Validate() error {
	switch wc.Type {
	case WriterCollectd:
		if wc.Address == "" {
			return NewConfigurationError("address", "required by the collectd writer")
		}
		switch strings.ToLower(wc.SecurityLevel) {
		case "none":
		case "sign", "encrypt":
			if wc.Username == "" || wc.Password == "" {
				return NewConfigurationError("securityLevel", "%s requires username and password", wc.SecurityLevel)
			}
		default:
			return NewConfigurationError("securityLevel", "must be none, sign or encrypt, not '%s'", wc.SecurityLevel)
		}
	case WriterPutval:
	case WriterHTTP, WriterElasticsearch:
		if err := validateURL("url", wc.URL); err != nil {
			return err
		}
		if wc.Type == WriterElasticsearch && wc.Index == "" {
			return NewConfigurationError("index", "required by the elasticsearch writer")
		}
	case WriterSignalFx:
		if wc.AccessToken == "" {
			return NewConfigurationError("accessToken", "required by the signalfx writer")
		}
		if err := validateURL("ingestUrl", wc.IngestURL); err != nil {
			return err
		}
	default:
		return NewConfigurationError("type", "unknown writer type '%s'", wc.Type)
	}
	return nil
}

func validateURL(key string, raw string) error {
	if raw == "" {
		return NewConfigurationError(key, "must be set")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return NewConfigurationError(key, "%v", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewConfigurationError(key, "%s is not an http or https URL", raw)
	}
	return nil
}
