package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gnana997/stylebind/pkg/naming"
	"github.com/gnana997/stylebind/pkg/util"
	"github.com/gnana997/stylebind/pkg/watch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".stylebind", "config.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadProjectConfig_Missing(t *testing.T) {
	cfg, err := loadProjectConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Nil(t, cfg)

	// A nil config yields the defaults.
	assert.Equal(t, naming.Default, cfg.convention())
	assert.Equal(t, watch.DefaultDebounce, cfg.debounce())
	assert.Equal(t, 0, cfg.styleCacheSize())
}

func TestLoadProjectConfig_Fields(t *testing.T) {
	path := writeConfig(t, `version: "1"
style_prefix: "M3/sys/dark/"
log_file: ".stylebind/calls.jsonl"
style_cache_size: 64
debounce_ms: 50
`)
	cfg, err := loadProjectConfig(path)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "1", cfg.Version)
	conv := cfg.convention()
	assert.Equal(t, "M3/sys/dark/", conv.StylePrefix)
	assert.Equal(t, naming.VariablePrefix, conv.VariablePrefix)
	assert.Equal(t, 50*time.Millisecond, cfg.debounce())
	assert.Equal(t, 64, cfg.styleCacheSize())
}

func TestLoadProjectConfig_Invalid(t *testing.T) {
	_, err := loadProjectConfig(writeConfig(t, "style_prefix: [unclosed"))
	assert.Error(t, err)

	_, err = loadProjectConfig(writeConfig(t, "debounce_ms: -5"))
	assert.Error(t, err)
}

func TestResolveLogPath(t *testing.T) {
	cfg := &ProjectConfig{LogFile: "from-config.jsonl"}
	assert.Equal(t, "flag.jsonl", resolveLogPath("flag.jsonl", cfg))
	assert.Equal(t, "from-config.jsonl", resolveLogPath("", cfg))
	assert.Equal(t, "", resolveLogPath("", nil))
}

func TestProjectConfig_LogLevel(t *testing.T) {
	var none *ProjectConfig
	assert.Equal(t, util.LevelInfo, none.logLevel(false))
	assert.Equal(t, util.LevelDebug, none.logLevel(true))

	cfg := &ProjectConfig{LogLevel: "warn"}
	assert.Equal(t, util.LevelWarn, cfg.logLevel(false))
	assert.Equal(t, util.LevelDebug, cfg.logLevel(true))

	cfg.LogLevel = "loud"
	assert.Equal(t, util.LevelInfo, cfg.logLevel(false))
}
