package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bethropolis/tide/internal/commands"
	"github.com/bethropolis/tide/internal/core"
	"github.com/bethropolis/tide/internal/core/clipboard"
	"github.com/bethropolis/tide/internal/event"
	"github.com/bethropolis/tide/internal/logger"
	"github.com/bethropolis/tide/internal/plugin"
	"github.com/bethropolis/tide/internal/script"
	"github.com/bethropolis/tide/plugins/wordcount"
)

func newRunCommand(st *state) *cobra.Command {
	var input string
	var copyResult bool
	var execs []string

	cmd := &cobra.Command{
		Use:   "run [SCRIPT]",
		Short: "Run a Lua edit script and print the resulting text",
		Long: `Run a Lua edit script against a document and print the final text.

The script sees a global table doc with insert, delete, replace, undo, redo,
begin_batch, end_batch, selection, clipboard, find and read functions. Lines
and columns are 0-based. Built-in and plugin commands are available through
command(name, ...), and --exec runs command lines such as ":%s/a/b/g" after
the script.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && len(execs) == 0 {
				return fmt.Errorf("nothing to run: give a script or --exec")
			}
			doc, err := st.newDocument(input)
			if err != nil {
				return err
			}

			plugins := plugin.NewManager()
			for _, p := range []plugin.Plugin{wordcount.New()} {
				if err := plugins.Register(p); err != nil {
					return err
				}
			}
			host, err := plugin.NewHost(doc, plugins)
			if err != nil {
				return err
			}
			if err := commands.Register(host, doc); err != nil {
				return err
			}
			if err := host.Start(); err != nil {
				logger.Warnf("run: %v", err)
			}
			defer host.Close()

			clip := clipboard.NewManager(st.cfg.Clipboard.System)
			if len(args) == 1 {
				r := script.NewRunner(doc,
					script.WithOutput(cmd.ErrOrStderr()),
					script.WithCommands(host.Execute),
					script.WithClipboard(clip),
				)
				defer r.Close()
				if err := r.RunFile(cmd.Context(), args[0]); err != nil {
					return err
				}
			}
			for _, line := range execs {
				if err := commands.Execute(host.Execute, line); err != nil {
					return err
				}
			}

			text := doc.Text()
			fmt.Fprint(cmd.OutOrStdout(), text)
			if msg := host.StatusMessage(); msg != "" {
				fmt.Fprintln(cmd.ErrOrStderr(), msg)
			}
			if copyResult {
				clipboard.NewManager(true).Set(text)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "seed the document from this file")
	cmd.Flags().StringArrayVarP(&execs, "exec", "e", nil, "run a command line after the script (repeatable)")
	cmd.Flags().BoolVar(&copyResult, "copy", false, "copy the result to the system clipboard")
	return cmd
}

// newDocument creates a document publishing events, seeded from path if set.
func (st *state) newDocument(path string) (*core.Document, error) {
	opts := append(st.cfg.DocumentOptions(), core.WithEventManager(event.NewManager()))
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read input: %w", err)
		}
		opts = append(opts, core.WithText(string(data)))
	}
	return core.New(opts...)
}
