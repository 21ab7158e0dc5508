package docker

import (
	"fmt"
	"strings"
	"unicode"

	"collectd.org/api"
	"github.com/signalfx/docker-stats-agent/internal/core/config"
	yaml "gopkg.in/yaml.v2"
)

// Config for the collector.  It is built once, before the first cycle, and
// never changes afterwards.
type Config struct {
	// The host name put on every value list
	Hostname string
	// How often the collector is triggered, reported as the value list
	// interval
	IntervalSeconds int
	// The label keys that a container must carry to be collected.  The
	// values of these labels are attached to the container's metrics.
	Labels []string
	// The ordered schema of the `docker` type.  The built-in dataset is used
	// when this is nil.
	Dataset *api.DataSet
}

type optionHandler func(conf *Config, key string, value interface{}) error

// Every option the plugin block accepts.  Anything else is rejected.
var optionHandlers = map[string]optionHandler{
	"labels": parseLabelsOption,
}

// ParseOptions runs the plugin option block through the option handlers in
// the order the keys appear.  Unknown or repeated keys fail the whole pass.
func ParseOptions(block yaml.MapSlice) (*Config, error) {
	conf := &Config{}
	seen := map[string]bool{}

	for _, item := range block {
		key, ok := item.Key.(string)
		if !ok {
			return nil, config.NewConfigurationError(fmt.Sprintf("%v", item.Key), "option names must be strings")
		}

		handler, ok := optionHandlers[key]
		if !ok {
			return nil, config.NewConfigurationError(key, "unknown option")
		}
		if seen[key] {
			return nil, config.NewConfigurationError(key, "option given more than once")
		}
		seen[key] = true

		if err := handler(conf, key, item.Value); err != nil {
			return nil, err
		}
	}

	return conf, nil
}

// labels can be a YAML list or a single string with keys separated by
// commas or whitespace.  An empty value is the same as no option at all.
func parseLabelsOption(conf *Config, key string, value interface{}) error {
	var keys []string

	switch v := value.(type) {
	case nil:
	case string:
		keys = strings.FieldsFunc(v, func(r rune) bool {
			return r == ',' || unicode.IsSpace(r)
		})
	case []interface{}:
		for i := range v {
			s, ok := v[i].(string)
			if !ok {
				return config.NewConfigurationError(key, "entry %d (%v) is not a string", i, v[i])
			}
			s = strings.TrimSpace(s)
			if s == "" {
				return config.NewConfigurationError(key, "entry %d is empty", i)
			}
			keys = append(keys, s)
		}
	default:
		return config.NewConfigurationError(key, "expected a list of label keys or a string, got %T", value)
	}

	seen := map[string]bool{}
	for _, k := range keys {
		if strings.Contains(k, "=") {
			return config.NewConfigurationError(key, "label key '%s' must not contain '='", k)
		}
		if seen[k] {
			return config.NewConfigurationError(key, "label key '%s' is listed more than once", k)
		}
		seen[k] = true
	}

	if len(keys) > 0 {
		conf.Labels = keys
	}
	return nil
}
