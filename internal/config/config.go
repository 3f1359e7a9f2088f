// Package config loads the program's settings from TOML or YAML files and
// command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/bethropolis/tide/internal/analysis"
	"github.com/bethropolis/tide/internal/analysis/lang"
	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/core"
	"github.com/bethropolis/tide/internal/core/history"
	"github.com/bethropolis/tide/internal/logger"
)

// ErrUnsupportedFormat is returned for config files that are neither TOML
// nor YAML.
var ErrUnsupportedFormat = errors.New("unsupported config format")

// Config holds the application's combined configuration.
type Config struct {
	Logger    logger.Config   `toml:"logger" yaml:"logger"`
	Buffer    BufferConfig    `toml:"buffer" yaml:"buffer"`
	Undo      UndoConfig      `toml:"undo" yaml:"undo"`
	Analysis  AnalysisConfig  `toml:"analysis" yaml:"analysis"`
	Clipboard ClipboardConfig `toml:"clipboard" yaml:"clipboard"`
}

// BufferConfig sizes new buffers.
type BufferConfig struct {
	InitialLineCapacity int `toml:"initial_line_capacity" yaml:"initial_line_capacity"`
}

// UndoConfig configures the undo log.
type UndoConfig struct {
	Enabled      bool `toml:"enabled" yaml:"enabled"`
	MaxStackSize int  `toml:"max_stack_size" yaml:"max_stack_size"`
	MergeLimit   int  `toml:"merge_limit" yaml:"merge_limit"`
}

// AnalysisConfig tunes the background tokenizer.
type AnalysisConfig struct {
	Debounce           time.Duration `toml:"debounce" yaml:"debounce"`
	CheckpointInterval int           `toml:"checkpoint_interval" yaml:"checkpoint_interval"`
}

// ClipboardConfig selects the clipboard backend.
type ClipboardConfig struct {
	System bool `toml:"system" yaml:"system"`
}

// NewDefaultConfig creates a Config with default values.
func NewDefaultConfig() *Config {
	return &Config{
		Logger: logger.NewConfig(),
		Buffer: BufferConfig{
			InitialLineCapacity: buffer.DefaultInitialLineCapacity,
		},
		Undo: UndoConfig{
			Enabled:      true,
			MaxStackSize: history.DefaultMaxSize,
			MergeLimit:   history.DefaultMergeLimit,
		},
		Analysis: AnalysisConfig{
			Debounce:           DefaultDebounce,
			CheckpointInterval: DefaultCheckpointInterval,
		},
	}
}

// DefaultPath returns the per-user config file location, or "" if the user
// config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, AppName, DefaultConfigFileName)
}

// Load reads the configuration at path over the defaults. An empty path
// means DefaultPath, which is allowed not to exist; an explicit path must.
// Files ending in .yaml or .yml are read as YAML, everything else as TOML.
func Load(path string) (*Config, error) {
	cfg := NewDefaultConfig()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
		if path == "" {
			return cfg, nil
		}
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) && !explicit {
		logger.DebugTagf("config", "no config file at %s, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := cfg.decode(path, data); err != nil {
		return nil, err
	}
	cfg.validate()
	logger.DebugTagf("config", "loaded configuration from %s", path)
	return cfg, nil
}

func (c *Config) decode(path string, data []byte) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
	case ".toml", "":
		md, err := toml.Decode(string(data), c)
		if err != nil {
			return fmt.Errorf("parse config %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			logger.Warnf("config %s: unrecognized keys: %v", path, undecoded)
		}
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
	return nil
}

// validate resets invalid values to their defaults.
func (c *Config) validate() {
	defaults := NewDefaultConfig()

	if c.Buffer.InitialLineCapacity <= 0 {
		logger.WarnTagf("config", "buffer.initial_line_capacity %d is invalid, using %d", c.Buffer.InitialLineCapacity, defaults.Buffer.InitialLineCapacity)
		c.Buffer.InitialLineCapacity = defaults.Buffer.InitialLineCapacity
	}
	if c.Undo.MaxStackSize <= 0 {
		logger.WarnTagf("config", "undo.max_stack_size %d is invalid, using %d", c.Undo.MaxStackSize, defaults.Undo.MaxStackSize)
		c.Undo.MaxStackSize = defaults.Undo.MaxStackSize
	}
	if c.Undo.MergeLimit <= 0 {
		c.Undo.MergeLimit = defaults.Undo.MergeLimit
	}
	if c.Analysis.Debounce < 0 {
		c.Analysis.Debounce = defaults.Analysis.Debounce
	}
	if c.Analysis.CheckpointInterval <= 0 {
		c.Analysis.CheckpointInterval = defaults.Analysis.CheckpointInterval
	}
	if c.Logger.LogLevel == "" {
		c.Logger.LogLevel = defaults.Logger.LogLevel
	}
}

// DocumentOptions converts the buffer and undo settings into document options.
func (c *Config) DocumentOptions() []core.Option {
	return []core.Option{
		core.WithInitialLineCapacity(c.Buffer.InitialLineCapacity),
		core.WithUndoEnabled(c.Undo.Enabled),
		core.WithMaxUndoStackSize(c.Undo.MaxStackSize),
		core.WithMergeLimit(c.Undo.MergeLimit),
	}
}

// SchedulerOptions returns analysis options for a document in l.
func (c *Config) SchedulerOptions(l *lang.Language) analysis.Options {
	return analysis.Options{
		Language:           l,
		Debounce:           c.Analysis.Debounce,
		CheckpointInterval: c.Analysis.CheckpointInterval,
	}
}
