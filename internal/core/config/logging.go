package config

import (
	"os"

	log "github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// LogConfig contains configuration related to logging
type LogConfig struct {
	// Valid values are 'debug', 'info', 'warning', and 'error'
	Level string `yaml:"level" default:"info"`
	// The log output format to use.  Valid values are 'text' and 'json'.
	Format string `yaml:"format" default:"text"`
}

// LogrusLevel returns a logrus log level based on the configured level in
// LogConfig.
func (lc *LogConfig) LogrusLevel() *log.Level {
	if lc.Level != "" {
		level, err := log.ParseLevel(lc.Level)
		if err != nil {
			log.WithFields(log.Fields{
				"level": lc.Level,
			}).Error("Invalid log level")
			return nil
		}
		return &level
	}
	return nil
}

// LogrusFormatter returns the formatter to use based on the config
func (lc *LogConfig) LogrusFormatter() log.Formatter {
	switch lc.Format {
	case "json":
		return &log.JSONFormatter{}
	default:
		return &prefixed.TextFormatter{}
	}
}

// Validate the logging config
func (lc *LogConfig) Validate() error {
	if _, err := log.ParseLevel(lc.Level); err != nil {
		return NewConfigurationError("level", "%v", err)
	}
	if lc.Format != "text" && lc.Format != "json" {
		return NewConfigurationError("format", "must be 'text' or 'json', not '%s'", lc.Format)
	}
	return nil
}

// Apply the logging config to the global logrus logger
func (lc *LogConfig) Apply() {
	if level := lc.LogrusLevel(); level != nil {
		log.SetLevel(*level)
	}
	log.SetFormatter(lc.LogrusFormatter())
	log.SetOutput(os.Stdout)
}
