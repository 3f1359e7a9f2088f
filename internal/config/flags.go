package config

import (
	"strings"

	"github.com/spf13/pflag"

	"github.com/bethropolis/tide/internal/logger"
)

// Flags holds the command-line overrides for the configuration.
type Flags struct {
	ConfigFilePath  string
	LogLevel        string
	LogFilePath     string
	EnableTags      string
	DisableTags     string
	EnablePkgs      string
	DisablePkgs     string
	MaxUndo         int
	NoUndo          bool
	SystemClipboard bool
}

// Define registers the flags on fs.
func (f *Flags) Define(fs *pflag.FlagSet) {
	fs.StringVar(&f.ConfigFilePath, "config", "", "path to a TOML or YAML config file (default: user config dir/"+AppName+"/"+DefaultConfigFileName+")")
	fs.StringVar(&f.LogLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.LogFilePath, "log-file", "", "write logs to this file ('-' for stderr)")
	fs.StringVar(&f.EnableTags, "log-tags", "", "comma-separated list of log tags to enable")
	fs.StringVar(&f.DisableTags, "log-disable-tags", "", "comma-separated list of log tags to disable")
	fs.StringVar(&f.EnablePkgs, "log-packages", "", "comma-separated list of packages to log from")
	fs.StringVar(&f.DisablePkgs, "log-disable-packages", "", "comma-separated list of packages to silence")
	fs.IntVar(&f.MaxUndo, "max-undo", 0, "maximum number of undo steps")
	fs.BoolVar(&f.NoUndo, "no-undo", false, "disable the undo log")
	fs.BoolVar(&f.SystemClipboard, "system-clipboard", false, "mirror yanks to the system clipboard")
}

// ApplyOverrides copies the flags that were set on fs into cfg.
func (f *Flags) ApplyOverrides(cfg *Config, fs *pflag.FlagSet) {
	fs.Visit(func(fl *pflag.Flag) {
		logger.DebugTagf("config", "applying flag override --%s=%s", fl.Name, fl.Value)
		switch fl.Name {
		case "log-level":
			cfg.Logger.LogLevel = f.LogLevel
		case "log-file":
			cfg.Logger.LogFilePath = f.LogFilePath
		case "log-tags":
			cfg.Logger.EnabledTags = splitCommaList(f.EnableTags)
		case "log-disable-tags":
			cfg.Logger.DisabledTags = splitCommaList(f.DisableTags)
		case "log-packages":
			cfg.Logger.EnabledPackages = splitCommaList(f.EnablePkgs)
		case "log-disable-packages":
			cfg.Logger.DisabledPackages = splitCommaList(f.DisablePkgs)
		case "max-undo":
			if f.MaxUndo > 0 {
				cfg.Undo.MaxStackSize = f.MaxUndo
			}
		case "no-undo":
			cfg.Undo.Enabled = !f.NoUndo
		case "system-clipboard":
			cfg.Clipboard.System = f.SystemClipboard
		}
	})
}

func splitCommaList(list string) []string {
	if list == "" {
		return nil
	}
	items := strings.Split(list, ",")
	result := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
