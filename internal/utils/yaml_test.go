package utils

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	yaml "gopkg.in/yaml.v2"
)

func TestYAMLNameOfField(t *testing.T) {
	type conf struct {
		DockerURL string `yaml:"dockerURL"`
		Skipped   string `yaml:"-"`
		Inlined   struct {
			A string `yaml:"a"`
		} `yaml:",inline"`
	}
	st := reflect.TypeOf(conf{})

	assert.Equal(t, "dockerURL", YAMLNameOfField(st.Field(0)))
	assert.Equal(t, "", YAMLNameOfField(st.Field(1)))
	assert.Equal(t, "", YAMLNameOfField(st.Field(2)))
}

func TestYAMLErrorWithContext(t *testing.T) {
	content := []byte("hostname: a\nintervalSeconds: ten\n")
	var out struct {
		Hostname        string `yaml:"hostname"`
		IntervalSeconds int    `yaml:"intervalSeconds"`
	}
	err := yaml.UnmarshalStrict(content, &out)
	assert.Error(t, err)

	withContext := YAMLErrorWithContext(content, err)
	assert.Contains(t, withContext.Error(), "2: intervalSeconds: ten")

	plain := errors.New("something else")
	assert.Equal(t, plain, YAMLErrorWithContext(content, plain))
}
