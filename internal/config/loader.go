package config

import (
	"bytes"
	"errors"
	"os"
	"regexp"
	"strings"

	"github.com/spf13/viper"
	"github.com/zero-day-ai/graphqa/internal/types"
	"gopkg.in/yaml.v3"
)

// ConfigLoader handles loading configuration from files.
type ConfigLoader interface {
	Load(path string) (*Config, error)
	LoadWithDefaults(path string) (*Config, error)
}

// viperConfigLoader implements ConfigLoader using Viper.
//
// Values are layered: DefaultConfig, then the YAML file, then GRAPHQA_*
// environment variables. ${VAR} references in string values are expanded
// last.
type viperConfigLoader struct {
	validator ConfigValidator
}

// NewConfigLoader creates a new ConfigLoader instance.
func NewConfigLoader(validator ConfigValidator) ConfigLoader {
	return &viperConfigLoader{
		validator: validator,
	}
}

// Load loads configuration from the specified file path.
// Returns an error if the file doesn't exist or cannot be parsed.
func (l *viperConfigLoader) Load(path string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.MergeInConfig(); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to read config file", err)
	}

	return l.decode(v)
}

// LoadWithDefaults loads configuration from the specified file path.
// If path is empty or the file doesn't exist, defaults and environment
// overrides are used.
func (l *viperConfigLoader) LoadWithDefaults(path string) (*Config, error) {
	if path != "" {
		_, err := os.Stat(path)
		if err == nil {
			return l.Load(path)
		}
		if !errors.Is(err, os.ErrNotExist) {
			return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to stat config file", err)
		}
	}

	v, err := newViper()
	if err != nil {
		return nil, err
	}
	return l.decode(v)
}

func (l *viperConfigLoader) decode(v *viper.Viper) (*Config, error) {
	interpolate(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, types.WrapError(types.CONFIG_PARSE_FAILED, "failed to unmarshal config", err)
	}

	if err := l.validator.Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// newViper returns a viper instance seeded with DefaultConfig so that every
// key is known to the environment lookup.
func newViper() (*viper.Viper, error) {
	defaults, err := yaml.Marshal(DefaultConfig())
	if err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to encode defaults", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaults)); err != nil {
		return nil, types.WrapError(types.CONFIG_LOAD_FAILED, "failed to load defaults", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	return v, nil
}

// interpolate expands ${VAR} in every string value.
func interpolate(v *viper.Viper) {
	for _, key := range v.AllKeys() {
		s, ok := v.Get(key).(string)
		if !ok || !strings.Contains(s, "${") {
			continue
		}
		v.Set(key, interpolateString(s))
	}
}

var envRefPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// interpolateString replaces ${VAR_NAME} with environment variable values.
// Unset variables are left as written.
func interpolateString(s string) string {
	return envRefPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")

		if envValue := os.Getenv(varName); envValue != "" {
			return envValue
		}
		return match
	})
}
