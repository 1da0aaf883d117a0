package main

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/stylebind/pkg/naming"
	"github.com/gnana997/stylebind/pkg/util"
	"github.com/gnana997/stylebind/pkg/watch"
)

const defaultConfigPath = ".stylebind/config.yaml"

// ProjectConfig holds the contents of .stylebind/config.yaml.
type ProjectConfig struct {
	Version        string `yaml:"version"`
	StylePrefix    string `yaml:"style_prefix"`
	VariablePrefix string `yaml:"variable_prefix"`
	LogFile        string `yaml:"log_file"`
	LogLevel       string `yaml:"log_level"`
	StyleCacheSize int    `yaml:"style_cache_size"`
	DebounceMs     int    `yaml:"debounce_ms"`
}

// loadProjectConfig reads the config file at path.
// Returns nil (no error) if the file does not exist.
func loadProjectConfig(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.StyleCacheSize < 0 || cfg.DebounceMs < 0 {
		return nil, fmt.Errorf("parse config %s: sizes and durations must not be negative", path)
	}
	return &cfg, nil
}

// convention returns the naming convention, falling back to the fixed
// prefixes for fields left empty.
func (c *ProjectConfig) convention() naming.Convention {
	conv := naming.Default
	if c == nil {
		return conv
	}
	if c.StylePrefix != "" {
		conv.StylePrefix = c.StylePrefix
	}
	if c.VariablePrefix != "" {
		conv.VariablePrefix = c.VariablePrefix
	}
	return conv
}

func (c *ProjectConfig) debounce() time.Duration {
	if c == nil || c.DebounceMs == 0 {
		return watch.DefaultDebounce
	}
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// logLevel returns the configured stderr log level. --verbose wins.
func (c *ProjectConfig) logLevel(verbose bool) util.LogLevel {
	if verbose {
		return util.LevelDebug
	}
	if c == nil {
		return util.LevelInfo
	}
	return util.ParseLevel(c.LogLevel)
}

func (c *ProjectConfig) styleCacheSize() int {
	if c == nil {
		return 0
	}
	return c.StyleCacheSize
}

// resolveLogPath returns the tool-call log path to use, applying the fallback chain:
//  1. Explicit --log flag value (non-empty override)
//  2. log_file from .stylebind/config.yaml
//  3. "" (logging disabled)
func resolveLogPath(flagValue string, cfg *ProjectConfig) string {
	if flagValue != "" {
		return flagValue
	}
	if cfg != nil {
		return cfg.LogFile
	}
	return ""
}
