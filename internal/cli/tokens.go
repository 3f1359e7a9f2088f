package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bethropolis/tide/internal/analysis"
	"github.com/bethropolis/tide/internal/analysis/lang"
	"github.com/bethropolis/tide/internal/core"
)

func newTokensCommand(st *state) *cobra.Command {
	var langName string
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "tokens FILE",
		Short: "Tokenize a file with the background analyzer and print the tokens",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}

			registry := lang.Default()
			l := registry.Detect(path, data)
			if langName != "" {
				l = registry.ForName(langName)
			}
			if l == nil {
				return fmt.Errorf("tokens %s: %w", path, analysis.ErrNoLanguage)
			}

			doc, err := core.New(append(st.cfg.DocumentOptions(), core.WithText(string(data)))...)
			if err != nil {
				return err
			}
			r, err := tokenize(cmd.Context(), doc, st.cfg.SchedulerOptions(l), timeout)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "# %s, version %d, %d tokens\n", r.Language, r.Version, len(r.Tokens))
			for _, tok := range r.Tokens {
				text, err := doc.TextRange(tok.Line, tok.StartCol, tok.Line, tok.EndCol)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s\t%q\n", tok, text)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&langName, "lang", "", "language name, overriding detection")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "give up after this long")
	return cmd
}

// tokenize runs a scheduler over doc until it publishes the current version.
func tokenize(ctx context.Context, doc *core.Document, opts analysis.Options, timeout time.Duration) (analysis.Result, error) {
	s, err := analysis.NewScheduler(doc, opts)
	if err != nil {
		return analysis.Result{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := s.Start(ctx); err != nil {
		return analysis.Result{}, err
	}
	defer s.Close()

	for {
		select {
		case r := <-s.Results():
			if r.Version == doc.Version() {
				return r, nil
			}
		case <-ctx.Done():
			return analysis.Result{}, fmt.Errorf("tokenize: %w", ctx.Err())
		}
	}
}
