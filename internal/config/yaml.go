package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

func millisToDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// fileOptions mirrors Options' fields with YAML tags; kept separate so
// Options itself carries no serialization concerns.
type fileOptions struct {
	NullEqualsNull       bool   `yaml:"null_equals_null"`
	DefaultHashTableSize int    `yaml:"default_hash_table_size"`
	MaxBuildWorkers      int    `yaml:"max_build_workers"`
	EnableDebugLogging   bool   `yaml:"enable_debug_logging"`
	BuildTimeoutMillis   int    `yaml:"build_timeout_millis"`
}

// Load reads operator options from a YAML file, applying defaults for any
// field the file omits.
func Load(path string) (Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Options{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	var fo fileOptions
	if err := yaml.Unmarshal(data, &fo); err != nil {
		return Options{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	opts := Options{
		NullEqualsNull:       fo.NullEqualsNull,
		DefaultHashTableSize: fo.DefaultHashTableSize,
		MaxBuildWorkers:      fo.MaxBuildWorkers,
		EnableDebugLogging:   fo.EnableDebugLogging,
		BuildTimeout:         millisToDuration(fo.BuildTimeoutMillis),
	}
	return opts.WithDefaults(), nil
}
