package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/tide/internal/core"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[logger]
log_level = "debug"
enabled_tags = ["history"]

[undo]
enabled = false
max_stack_size = 7

[analysis]
debounce = "10ms"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Logger.LogLevel)
	assert.Equal(t, []string{"history"}, cfg.Logger.EnabledTags)
	assert.False(t, cfg.Undo.Enabled)
	assert.Equal(t, 7, cfg.Undo.MaxStackSize)
	assert.Equal(t, NewDefaultConfig().Undo.MergeLimit, cfg.Undo.MergeLimit, "unset keys keep their defaults")
	assert.Equal(t, 10*time.Millisecond, cfg.Analysis.Debounce)
	assert.Equal(t, DefaultCheckpointInterval, cfg.Analysis.CheckpointInterval)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yml", `
buffer:
  initial_line_capacity: 8
undo:
  max_stack_size: -3
  merge_limit: 50
clipboard:
  system: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8, cfg.Buffer.InitialLineCapacity)
	assert.Equal(t, NewDefaultConfig().Undo.MaxStackSize, cfg.Undo.MaxStackSize, "invalid values fall back to defaults")
	assert.Equal(t, 50, cfg.Undo.MergeLimit)
	assert.True(t, cfg.Undo.Enabled)
	assert.True(t, cfg.Clipboard.System)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "bad.toml", "[undo\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, "config.json", "{}"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)

	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, NewDefaultConfig(), cfg)
}

func TestFlagOverrides(t *testing.T) {
	var f Flags
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.Define(fs)
	require.NoError(t, fs.Parse([]string{"--log-level=warn", "--max-undo=3", "--log-tags=buffer, history", "--no-undo"}))

	cfg := NewDefaultConfig()
	f.ApplyOverrides(cfg, fs)
	assert.Equal(t, "warn", cfg.Logger.LogLevel)
	assert.Equal(t, 3, cfg.Undo.MaxStackSize)
	assert.Equal(t, []string{"buffer", "history"}, cfg.Logger.EnabledTags)
	assert.False(t, cfg.Undo.Enabled)
	assert.False(t, cfg.Clipboard.System, "flags that were not given leave the config alone")
}

func TestDocumentOptions(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Undo.MaxStackSize = 2

	doc, err := core.New(cfg.DocumentOptions()...)
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		require.NoError(t, doc.Insert(0, 0, "\n"))
	}
	assert.Equal(t, 2, doc.History().Len())
	assert.Equal(t, 2, doc.History().MaxSize())
}
