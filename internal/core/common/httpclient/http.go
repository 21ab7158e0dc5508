package httpclient

import (
	"net/http"
	"time"

	"github.com/docker/go-connections/tlsconfig"
	"github.com/pkg/errors"
)

// HTTPConfig can be embedded inside a sink config.
type HTTPConfig struct {
	// HTTP timeout, in seconds, for the whole request
	TimeoutSeconds int `yaml:"timeoutSeconds" default:"10" validate:"min=1"`

	// Basic Auth username to use on each request, if any.
	Username string `yaml:"username"`
	// Basic Auth password to use on each request, if any.
	Password string `yaml:"password" neverLog:"true"`

	// If true, the server's TLS cert will not be verified.
	SkipVerify bool `yaml:"skipVerify"`
	// Path to the CA cert that has signed the server's TLS cert
	CACertPath string `yaml:"caCertPath"`
	// Path to the client TLS cert to use for TLS required connections
	ClientCertPath string `yaml:"clientCertPath"`
	// Path to the client TLS key to use for TLS required connections
	ClientKeyPath string `yaml:"clientKeyPath"`
}

// Build returns a configured http.Client.  The TLS settings only take effect
// for https URLs.
func (h *HTTPConfig) Build() (*http.Client, error) {
	tlsConf, err := tlsconfig.Client(tlsconfig.Options{
		CAFile:             h.CACertPath,
		CertFile:           h.ClientCertPath,
		KeyFile:            h.ClientKeyPath,
		InsecureSkipVerify: h.SkipVerify,
	})
	if err != nil {
		return nil, errors.Wrap(err, "could not load TLS settings")
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConf

	var roundTripper http.RoundTripper = transport

	if h.Username != "" {
		roundTripper = &transportWithBasicAuth{
			RoundTripper: roundTripper,
			Username:     h.Username,
			Password:     h.Password,
		}
	}

	return &http.Client{
		Timeout:   time.Duration(h.TimeoutSeconds) * time.Second,
		Transport: roundTripper,
	}, nil
}

type transportWithBasicAuth struct {
	http.RoundTripper
	Username string
	Password string
}

func (t *transportWithBasicAuth) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.Username, t.Password)
	return t.RoundTripper.RoundTrip(req)
}
