package config

import "fmt"

// ConfigurationError is returned for any config value that the agent cannot
// start with.  It always names the offending key.
type ConfigurationError struct {
	Key    string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for '%s': %s", e.Key, e.Reason)
}

// NewConfigurationError formats a ConfigurationError for key
func NewConfigurationError(key string, format string, args ...interface{}) *ConfigurationError {
	return &ConfigurationError{
		Key:    key,
		Reason: fmt.Sprintf(format, args...),
	}
}
