// Package commands holds the built-in commands and the parser for
// ":name args" command lines.
package commands

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/bethropolis/tide/internal/core"
	"github.com/bethropolis/tide/internal/core/find"
	"github.com/bethropolis/tide/internal/logger"
	"github.com/bethropolis/tide/internal/plugin"
)

// ErrEmptyCommand is returned for a blank command line.
var ErrEmptyCommand = errors.New("empty command")

// Registrar is where built-in commands are registered and report back.
type Registrar interface {
	RegisterCommand(name string, fn plugin.CommandFunc) error
	SetStatusMessage(format string, args ...interface{})
}

// Register adds undo, redo, s, find and goto for doc.
func Register(api Registrar, doc *core.Document) error {
	finder := find.NewManager(doc)

	undo := func(args []string) error {
		n, err := count(args)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := doc.Undo(); err != nil {
				return err
			}
		}
		return nil
	}
	redo := func(args []string) error {
		n, err := count(args)
		if err != nil {
			return err
		}
		for i := 0; i < n; i++ {
			if err := doc.Redo(); err != nil {
				return err
			}
		}
		return nil
	}

	// s /pattern/replacement/[g] on the caret's line; %s on every line.
	substitute := func(all bool) plugin.CommandFunc {
		return func(args []string) error {
			if len(args) == 0 {
				return fmt.Errorf("usage: s/pattern/replacement/[g]")
			}
			line := doc.Cursor().Position().Line
			if all {
				line = -1
			}
			n, err := finder.Substitute(strings.Join(args, " "), line)
			if err != nil {
				return err
			}
			api.SetStatusMessage("%d substitutions", n)
			return nil
		}
	}

	findCmd := func(args []string) error {
		if len(args) == 0 {
			return find.ErrEmptyPattern
		}
		if err := finder.SetPattern(strings.Join(args, " ")); err != nil {
			return err
		}
		all, err := finder.FindAll()
		if err != nil {
			return err
		}
		match, ok := finder.FindNext(doc.Cursor().Position(), true)
		if !ok {
			api.SetStatusMessage("Pattern not found: %s", finder.Pattern())
			return nil
		}
		doc.Cursor().SetPosition(match.Start.Line, match.Start.Col)
		api.SetStatusMessage("%d matches, at %d:%d", len(all), match.Start.Line+1, match.Start.Col+1)
		return nil
	}

	// goto takes a 1-based line number, as shown to users.
	gotoLine := func(args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("usage: goto LINE")
		}
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			return fmt.Errorf("invalid line %q", args[0])
		}
		doc.Cursor().SetPosition(n-1, 0)
		return nil
	}

	var errs []error
	for name, fn := range map[string]plugin.CommandFunc{
		"undo": undo,
		"redo": redo,
		"s":    substitute(false),
		"%s":   substitute(true),
		"find": findCmd,
		"goto": gotoLine,
	} {
		if err := api.RegisterCommand(name, fn); err != nil {
			logger.Warnf("commands: failed to register ':%s': %v", name, err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func count(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid count %q", args[0])
	}
	return n, nil
}

// Parse splits a command line into a name and arguments. A leading ':' is
// optional. Substitutions may be written without a space, as in
// ":%s/a/b/g".
func Parse(line string) (name string, args []string, err error) {
	line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), ":"))
	if line == "" {
		return "", nil, ErrEmptyCommand
	}
	for _, prefix := range []string{"%s/", "s/"} {
		if strings.HasPrefix(line, prefix) {
			n := len(prefix) - 1
			return line[:n], []string{line[n:]}, nil
		}
	}
	parts := strings.Fields(line)
	return parts[0], parts[1:], nil
}

// Execute parses line and runs it with exec.
func Execute(exec func(name string, args []string) error, line string) error {
	name, args, err := Parse(line)
	if err != nil {
		return err
	}
	logger.Debugf("commands: executing ':%s' with args %v", name, args)
	if err := exec(name, args); err != nil {
		return fmt.Errorf(":%s: %w", name, err)
	}
	return nil
}
