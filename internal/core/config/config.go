// Package config contains configuration structures and related helper logic for all
// agent components.
package config

import (
	"os"
	"strings"

	fqdn "github.com/Showmax/go-fqdn"
	"github.com/pkg/errors"
	dockercommon "github.com/signalfx/docker-stats-agent/internal/core/common/docker"
	"github.com/signalfx/docker-stats-agent/internal/core/config/validation"
	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"
)

// Config is the top level config struct that everything goes under
type Config struct {
	// The hostname that will be reported as the host of every value list.
	// If blank, the fully qualified hostname of the machine is used.
	Hostname string `yaml:"hostname"`
	// How often to collect container stats
	IntervalSeconds int `yaml:"intervalSeconds" default:"10" validate:"min=1"`
	// How to reach the docker engine
	Docker dockercommon.Config `yaml:"docker" default:"{}"`
	// Path to a collectd types.db file that declares the `docker` type.  The
	// built-in dataset is used if blank.
	TypesDB string `yaml:"typesDB"`
	// The plugin option block.  Options are processed in order, and unknown
	// options are rejected.
	Plugin yaml.MapSlice `yaml:"plugin"`
	// Where to send the collected value lists.  Stats are written as PUTVAL
	// lines to stdout if no writer is configured.
	Writer  []WriterConfig `yaml:"writer" default:"[]"`
	Logging LogConfig      `yaml:"logging" default:"{}"`
	// The host:port on which the collector's own Prometheus metrics are
	// served.  Disabled if blank.
	InternalMetricsListenAddress string `yaml:"internalMetricsListenAddress"`
}

func (c *Config) setDefaultHostname() {
	if c.Hostname != "" {
		return
	}

	host := fqdn.Get()
	if host == "unknown" || host == "localhost" {
		log.Info("Error getting fully qualified hostname, using plain hostname")

		var err error
		host, err = os.Hostname()
		if err != nil {
			log.Error("Error getting system simple hostname, cannot set hostname")
			return
		}
	}

	log.Infof("Using hostname %s", host)
	c.Hostname = host
}

func (c *Config) initialize() (*Config, error) {
	c.setDefaultHostname()

	if err := c.validate(); err != nil {
		return nil, errors.Wrap(err, "configuration is invalid")
	}

	return c, nil
}

// Validate everything that we can about the main config
func (c *Config) validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return err
	}
	if err := validation.ValidateStruct(&c.Docker); err != nil {
		return err
	}
	if !strings.Contains(c.Docker.DockerURL, "://") {
		return NewConfigurationError("dockerURL", "%s is not a URL", c.Docker.DockerURL)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}

	for i := range c.Writer {
		if err := validation.ValidateStruct(&c.Writer[i]); err != nil {
			return errors.Wrapf(err, "writer %d", i)
		}
		if err := validation.ValidateCustomConfig(&c.Writer[i]); err != nil {
			return errors.Wrapf(err, "writer %d", i)
		}
	}
	return nil
}
