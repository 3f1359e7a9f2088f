// Package cli provides the tide command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bethropolis/tide/internal/config"
	"github.com/bethropolis/tide/internal/logger"
)

// BuildInfo holds build-time version information.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// state is shared by the subcommands once the root has loaded the config.
type state struct {
	flags   config.Flags
	cfg     *config.Config
	logFile io.Closer
}

// NewRootCommand creates the root tide command with all subcommands.
func NewRootCommand(info BuildInfo) *cobra.Command {
	st := &state{}

	rootCmd := &cobra.Command{
		Use:   "tide",
		Short: "Scriptable text buffer with undo and background tokenizing",
		Long: `tide edits text through a line-oriented buffer with undo/redo.

Edits are applied by Lua scripts and ":" command lines (tide run), and
documents can be tokenized with tree-sitter grammars (tide tokens).`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.setup(cmd)
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if st.logFile != nil {
				st.logFile.Close()
			}
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	st.flags.Define(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newRunCommand(st))
	rootCmd.AddCommand(newTokensCommand(st))
	rootCmd.AddCommand(newVersionCommand(info))

	return rootCmd
}

func (st *state) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(st.flags.ConfigFilePath)
	if err != nil {
		return err
	}
	st.flags.ApplyOverrides(cfg, cmd.Flags())
	st.cfg = cfg

	var out io.Writer = cmd.ErrOrStderr()
	if path := cfg.Logger.LogFilePath; path != "" && path != "-" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		st.logFile = f
		out = f
	}
	logger.Init(cfg.Logger, out)
	logger.DebugTagf("config", "log level %s", cfg.Logger.LogLevel)
	return nil
}
