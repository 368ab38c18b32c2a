package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable override, e.g. MONEO_BOT_TOKEN.
const EnvPrefix = "MONEO"

// Load loads and validates configuration from:
// 1. Default values
// 2. the YAML file at path, if it exists (an empty path skips the file)
// 3. MONEO_* environment variables
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if err := readConfigFile(v, path); err != nil {
		return nil, fmt.Errorf("%w: failed to load config file: %v", ErrConfiguration, err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrConfiguration, err)
	}
	cfg.ChatAdapter = strings.ToLower(strings.TrimSpace(cfg.ChatAdapter))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func readConfigFile(v *viper.Viper, path string) error {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path == "" {
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	// Allow missing config file
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return nil
}

// setDefaults registers every key so that environment overrides resolve during Unmarshal.
func setDefaults(v *viper.Viper) {
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}
