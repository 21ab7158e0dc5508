package config

import (
	"fmt"
	"io/ioutil"
	"os"
	"regexp"

	"github.com/pkg/errors"
	"github.com/signalfx/defaults"
	"github.com/signalfx/docker-stats-agent/internal/utils"
	log "github.com/sirupsen/logrus"
	yaml "gopkg.in/yaml.v2"
)

// LoadConfig reads, renders and validates the agent config file
func LoadConfig(configPath string) (*Config, error) {
	content, err := ioutil.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("could not read config file %s: %v", configPath, err)
	}

	conf, err := loadYAML(content)
	if err != nil {
		return nil, errors.Wrapf(err, "could not load config file %s", configPath)
	}
	return conf, nil
}

func loadYAML(fileContent []byte) (*Config, error) {
	config := &Config{}

	preprocessedContent := preprocessConfig(fileContent)

	err := yaml.UnmarshalStrict(preprocessedContent, config)
	if err != nil {
		return nil, utils.YAMLErrorWithContext(preprocessedContent, err)
	}

	if err := setDefaults(config); err != nil {
		panic(fmt.Sprintf("Config defaults are wrong types: %s", err))
	}

	return config.initialize()
}

// Nested structs and slice elements don't get their defaults from the
// parent's Set call.
func setDefaults(config *Config) error {
	if err := defaults.Set(config); err != nil {
		return err
	}
	if err := defaults.Set(&config.Docker); err != nil {
		return err
	}
	if err := defaults.Set(&config.Logging); err != nil {
		return err
	}
	if len(config.Writer) == 0 {
		config.Writer = []WriterConfig{{Type: WriterPutval}}
	}
	for i := range config.Writer {
		if err := defaults.Set(&config.Writer[i]); err != nil {
			return err
		}
		if err := defaults.Set(&config.Writer[i].HTTPConfig); err != nil {
			return err
		}
	}
	return nil
}

var envVarRE = regexp.MustCompile(`\${\s*([\w-]+?)\s*}`)

// Replaces envvar syntax with the actual envvars
func preprocessConfig(content []byte) []byte {
	return envVarRE.ReplaceAllFunc(content, func(bs []byte) []byte {
		parts := envVarRE.FindSubmatch(bs)
		envvar := string(parts[1])

		val, ok := os.LookupEnv(envvar)
		if !ok {
			log.WithFields(log.Fields{
				"envvar": envvar,
			}).Warn("Config references an envvar that is not set")
		}

		return []byte(val)
	})
}
