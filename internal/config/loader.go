package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load resolves Config from, in priority order: built-in defaults, an
// optional config file at path (skipped entirely if path == ""),
// environment variables prefixed CATL_, then validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()

	d := defaults()
	v.SetDefault("max_value_size", d.MaxValueSize)
	v.SetDefault("collapse_mode", d.CollapseMode)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("strict_file_hash", d.StrictFileHash)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
		}
	}

	v.SetEnvPrefix("CATL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
