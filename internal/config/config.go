// Package config holds catl1-hasher's runtime configuration: the
// value-size sanity ceiling, collapse mode, log level and file_hash
// strictness.
package config

import (
	"fmt"

	"github.com/sublimator/catalogue-tools-sub002/internal/catl/v1"
	"github.com/sublimator/catalogue-tools-sub002/internal/shamap"
)

// Config is the fully resolved configuration for a hash run.
type Config struct {
	MaxValueSize   uint32 `mapstructure:"max_value_size"`
	CollapseMode   string `mapstructure:"collapse_mode"`
	LogLevel       string `mapstructure:"log_level"`
	StrictFileHash bool   `mapstructure:"strict_file_hash"`
}

// DefaultMaxValueSize is the 5 MiB sanity ceiling used by
// original_source/catl-hasher.cpp's MAX_REASONABLE_DATA_SIZE.
const DefaultMaxValueSize = 5 * 1024 * 1024

func defaults() Config {
	return Config{
		MaxValueSize:   DefaultMaxValueSize,
		CollapseMode:   "leaves-only",
		LogLevel:       "info",
		StrictFileHash: false,
	}
}

// CollapseModeValue parses CollapseMode into a shamap.CollapseMode.
func (c Config) CollapseModeValue() (shamap.CollapseMode, error) {
	switch c.CollapseMode {
	case "leaves-only", "":
		return shamap.CollapseLeavesOnly, nil
	case "leaves-and-inners":
		return shamap.CollapseLeavesAndInners, nil
	default:
		return 0, fmt.Errorf("config: unknown collapse mode %q", c.CollapseMode)
	}
}

// DriverOptions builds v1.Options from the resolved config.
func (c Config) DriverOptions() (v1.Options, error) {
	mode, err := c.CollapseModeValue()
	if err != nil {
		return v1.Options{}, err
	}
	return v1.Options{
		MaxValueSize:   c.MaxValueSize,
		CollapseMode:   mode,
		StrictFileHash: c.StrictFileHash,
	}, nil
}

// Validate checks the resolved config for internal consistency.
func (c Config) Validate() error {
	if c.MaxValueSize == 0 {
		return fmt.Errorf("config: max_value_size must be > 0")
	}
	if _, err := c.CollapseModeValue(); err != nil {
		return err
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: unknown log_level %q", c.LogLevel)
	}
	return nil
}
