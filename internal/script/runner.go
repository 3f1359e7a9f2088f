// Package script runs Lua edit scripts against a document.
//
// Scripts see a global table named doc. Lines and columns are 0-based, as in
// the rest of the program; errors from the document are raised as Lua errors.
package script

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/bethropolis/tide/internal/core"
	"github.com/bethropolis/tide/internal/core/clipboard"
	"github.com/bethropolis/tide/internal/core/cursor"
	"github.com/bethropolis/tide/internal/core/find"
	"github.com/bethropolis/tide/internal/logger"
)

// ErrClosed is returned when running a script on a closed runner.
var ErrClosed = errors.New("script: runner closed")

// CommandFunc executes a named command on behalf of a script.
type CommandFunc func(name string, args []string) error

// Option configures a Runner.
type Option func(*Runner)

// WithOutput sends the output of print to w. By default it is discarded.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) { r.out = w }
}

// WithCommands exposes fn to scripts as command(name, ...).
func WithCommands(fn CommandFunc) Option {
	return func(r *Runner) { r.command = fn }
}

// WithClipboard makes yank, cut and put use m. By default the runner keeps
// a register of its own.
func WithClipboard(m *clipboard.Manager) Option {
	return func(r *Runner) { r.clip = m }
}

// Runner owns a Lua state bound to one document. Like the document, it must
// only be used from one goroutine.
type Runner struct {
	L       *lua.LState
	doc     *core.Document
	out     io.Writer
	command CommandFunc
	clip    *clipboard.Manager
	finder  *find.Manager
	closed  bool
}

// NewRunner creates a runner for doc with only the base, table, string and
// math libraries loaded.
func NewRunner(doc *core.Document, opts ...Option) *Runner {
	r := &Runner{doc: doc, out: io.Discard, finder: find.NewManager(doc)}
	for _, opt := range opts {
		opt(r)
	}
	if r.clip == nil {
		r.clip = clipboard.NewManager(false)
	}

	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	for _, name := range []string{"dofile", "loadfile", "load", "loadstring"} {
		L.SetGlobal(name, lua.LNil)
	}
	r.L = L

	L.SetGlobal("print", L.NewFunction(r.print))
	if r.command != nil {
		L.SetGlobal("command", L.NewFunction(r.runCommand))
	}
	r.register()
	return r
}

// Close releases the Lua state.
func (r *Runner) Close() {
	if !r.closed {
		r.L.Close()
		r.closed = true
	}
}

// RunString executes code. ctx cancels a running script.
func (r *Runner) RunString(ctx context.Context, code string) error {
	return r.run(ctx, "string", func() error { return r.L.DoString(code) })
}

// RunFile executes the script at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	return r.run(ctx, path, func() error { return r.L.DoFile(path) })
}

func (r *Runner) run(ctx context.Context, name string, fn func() error) (err error) {
	if r.closed {
		return ErrClosed
	}
	r.L.SetContext(ctx)
	defer r.L.RemoveContext()
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("script %s: lua panic: %v", name, p)
		}
	}()

	logger.DebugTagf("script", "running %s", name)
	if err := fn(); err != nil {
		return fmt.Errorf("script %s: %w", name, err)
	}
	return nil
}

func (r *Runner) print(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	fmt.Fprintln(r.out, strings.Join(parts, "\t"))
	return 0
}

func (r *Runner) runCommand(L *lua.LState) int {
	name := L.CheckString(1)
	args := make([]string, 0, L.GetTop()-1)
	for i := 2; i <= L.GetTop(); i++ {
		args = append(args, L.ToStringMeta(L.Get(i)).String())
	}
	if err := r.command(name, args); err != nil {
		L.RaiseError("command %s: %v", name, err)
	}
	return 0
}

func (r *Runner) register() {
	mod := r.L.NewTable()
	for name, fn := range map[string]lua.LGFunction{
		"insert":       r.insert,
		"delete":       r.delete,
		"delete_index": r.deleteIndex,
		"replace":      r.replace,
		"undo":         r.undo,
		"redo":         r.redo,
		"can_undo":     r.canUndo,
		"can_redo":     r.canRedo,
		"begin_batch":  r.beginBatch,
		"end_batch":    r.endBatch,
		"text":         r.text,
		"line":         r.line,
		"line_count":   r.lineCount,
		"len":          r.length,
		"position_of":  r.positionOf,
		"index_of":     r.indexOf,
		"graphemes":    r.graphemes,
		"type":         r.typeText,
		"cursor":       r.cursorPos,
		"set_cursor":   r.setCursor,
		"select":       r.selectRange,
		"selection":    r.selection,
		"yank":         r.yank,
		"cut":          r.cut,
		"put":          r.put,
		"find":         r.find,
		"substitute":   r.substitute,
	} {
		r.L.SetField(mod, name, r.L.NewFunction(fn))
	}
	r.L.SetGlobal("doc", mod)
}

// check raises err as a Lua error prefixed with op.
func check(L *lua.LState, op string, err error) {
	if err != nil {
		L.RaiseError("%s: %v", op, err)
	}
}

// insert(line, col, text)
func (r *Runner) insert(L *lua.LState) int {
	check(L, "insert", r.doc.Insert(L.CheckInt(1), L.CheckInt(2), L.CheckString(3)))
	return 0
}

// delete(start_line, start_col, end_line, end_col)
func (r *Runner) delete(L *lua.LState) int {
	check(L, "delete", r.doc.Delete(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4)))
	return 0
}

// delete_index(start, end)
func (r *Runner) deleteIndex(L *lua.LState) int {
	check(L, "delete_index", r.doc.DeleteIndex(L.CheckInt(1), L.CheckInt(2)))
	return 0
}

// replace(start_line, start_col, end_line, end_col, text)
func (r *Runner) replace(L *lua.LState) int {
	check(L, "replace", r.doc.Replace(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4), L.CheckString(5)))
	return 0
}

// undo() -> bool, false when there was nothing to undo
func (r *Runner) undo(L *lua.LState) int {
	L.Push(lua.LBool(r.doc.Undo() == nil))
	return 1
}

// redo() -> bool
func (r *Runner) redo(L *lua.LState) int {
	L.Push(lua.LBool(r.doc.Redo() == nil))
	return 1
}

func (r *Runner) canUndo(L *lua.LState) int {
	L.Push(lua.LBool(r.doc.CanUndo()))
	return 1
}

func (r *Runner) canRedo(L *lua.LState) int {
	L.Push(lua.LBool(r.doc.CanRedo()))
	return 1
}

// begin_batch() -> bool, always true
func (r *Runner) beginBatch(L *lua.LState) int {
	L.Push(lua.LBool(r.doc.BeginBatchEdit()))
	return 1
}

// end_batch() -> bool, true while a batch is still open
func (r *Runner) endBatch(L *lua.LState) int {
	L.Push(lua.LBool(r.doc.EndBatchEdit()))
	return 1
}

func (r *Runner) text(L *lua.LState) int {
	L.Push(lua.LString(r.doc.Text()))
	return 1
}

// line(n) -> string
func (r *Runner) line(L *lua.LState) int {
	text, err := r.doc.LineText(L.CheckInt(1))
	check(L, "line", err)
	L.Push(lua.LString(text))
	return 1
}

func (r *Runner) lineCount(L *lua.LState) int {
	L.Push(lua.LNumber(r.doc.LineCount()))
	return 1
}

func (r *Runner) length(L *lua.LState) int {
	L.Push(lua.LNumber(r.doc.Len()))
	return 1
}

// position_of(index) -> line, col
func (r *Runner) positionOf(L *lua.LState) int {
	p, err := r.doc.PositionOf(L.CheckInt(1))
	check(L, "position_of", err)
	L.Push(lua.LNumber(p.Line))
	L.Push(lua.LNumber(p.Col))
	return 2
}

// index_of(line, col) -> index
func (r *Runner) indexOf(L *lua.LState) int {
	i, err := r.doc.IndexOf(L.CheckInt(1), L.CheckInt(2))
	check(L, "index_of", err)
	L.Push(lua.LNumber(i))
	return 1
}

// graphemes(s) -> number of user-perceived characters
func (r *Runner) graphemes(L *lua.LState) int {
	L.Push(lua.LNumber(cursor.CountGraphemes(L.CheckString(1))))
	return 1
}

// type(text) inserts at the caret, replacing any selection.
func (r *Runner) typeText(L *lua.LState) int {
	check(L, "type", r.doc.TypeText(L.CheckString(1)))
	return 0
}

// cursor() -> line, col
func (r *Runner) cursorPos(L *lua.LState) int {
	p := r.doc.Cursor().Position()
	L.Push(lua.LNumber(p.Line))
	L.Push(lua.LNumber(p.Col))
	return 2
}

// set_cursor(line, col), clamped into the document
func (r *Runner) setCursor(L *lua.LState) int {
	r.doc.Cursor().SetPosition(L.CheckInt(1), L.CheckInt(2))
	return 0
}

// select(start_line, start_col, end_line, end_col)
func (r *Runner) selectRange(L *lua.LState) int {
	r.doc.Selection().Select(L.CheckInt(1), L.CheckInt(2), L.CheckInt(3), L.CheckInt(4))
	return 0
}

// selection() -> start_line, start_col, end_line, end_col, or nil
func (r *Runner) selection(L *lua.LState) int {
	start, end, ok := r.doc.Selection().GetSelection()
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	for _, n := range []int{start.Line, start.Col, end.Line, end.Col} {
		L.Push(lua.LNumber(n))
	}
	return 4
}

// yank() -> bool, false when nothing was selected
func (r *Runner) yank(L *lua.LState) int {
	ok, err := r.clip.YankSelection(r.doc)
	check(L, "yank", err)
	L.Push(lua.LBool(ok))
	return 1
}

// cut() -> bool
func (r *Runner) cut(L *lua.LState) int {
	ok, err := r.clip.CutSelection(r.doc)
	check(L, "cut", err)
	L.Push(lua.LBool(ok))
	return 1
}

// put() -> bool, false when the clipboard is empty
func (r *Runner) put(L *lua.LState) int {
	err := r.clip.Put(r.doc)
	if errors.Is(err, clipboard.ErrEmpty) {
		L.Push(lua.LFalse)
		return 1
	}
	check(L, "put", err)
	L.Push(lua.LTrue)
	return 1
}

// find(pattern) -> array of {line, col, end_line, end_col, text}
func (r *Runner) find(L *lua.LState) int {
	check(L, "find", r.finder.SetPattern(L.CheckString(1)))
	matches, err := r.finder.FindAll()
	check(L, "find", err)

	out := L.CreateTable(len(matches), 0)
	for _, m := range matches {
		t := L.CreateTable(0, 5)
		L.SetField(t, "line", lua.LNumber(m.Start.Line))
		L.SetField(t, "col", lua.LNumber(m.Start.Col))
		L.SetField(t, "end_line", lua.LNumber(m.End.Line))
		L.SetField(t, "end_col", lua.LNumber(m.End.Col))
		L.SetField(t, "text", lua.LString(m.Text))
		out.Append(t)
	}
	L.Push(out)
	return 1
}

// substitute("/pattern/replacement/[g]" [, line]) -> count. Without a line
// every line is substituted.
func (r *Runner) substitute(L *lua.LState) int {
	n, err := r.finder.Substitute(L.CheckString(1), L.OptInt(2, -1))
	check(L, "substitute", err)
	L.Push(lua.LNumber(n))
	return 1
}
