package core

import (
	"fmt"
	"strings"

	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/event"
)

// Insert inserts text at (line, col).
func (d *Document) Insert(line, col int, text string) error {
	return d.buf.Insert(line, col, text)
}

// InsertAt inserts text at the position selected by req.
func (d *Document) InsertAt(req buffer.InsertRequest, text string) error {
	return d.buf.InsertAt(req, text)
}

// Delete removes [start, end).
func (d *Document) Delete(startLine, startCol, endLine, endCol int) error {
	return d.buf.Delete(startLine, startCol, endLine, endCol)
}

// DeleteRequest removes the range selected by req.
func (d *Document) DeleteRequest(req buffer.DeleteRequest) error {
	return d.buf.DeleteRequest(req)
}

// DeleteIndex removes the characters between two absolute indices.
func (d *Document) DeleteIndex(start, end int) error {
	return d.buf.DeleteIndex(start, end)
}

// Replace swaps [start, end) for text as a single undo step.
func (d *Document) Replace(startLine, startCol, endLine, endCol int, text string) error {
	return d.buf.Replace(startLine, startCol, endLine, endCol, text)
}

// BeginBatchEdit opens a batch; everything until the matching EndBatchEdit
// is undone in one step.
func (d *Document) BeginBatchEdit() bool { return d.buf.BeginBatchEdit() }

// EndBatchEdit closes one batch level and reports whether one is still open.
func (d *Document) EndBatchEdit() bool { return d.buf.EndBatchEdit() }

// TypeText inserts text at the caret, the way typing does. A selection is
// replaced.
func (d *Document) TypeText(text string) error {
	if start, end, ok := d.sel.GetSelection(); ok {
		d.sel.ClearSelection()
		return d.buf.Replace(start.Line, start.Col, end.Line, end.Col, text)
	}
	d.sel.ClearSelection()
	p := d.cursor.Position()
	return d.buf.Insert(p.Line, p.Col, text)
}

// InsertNewLine splits the line at the caret.
func (d *Document) InsertNewLine() error {
	return d.TypeText("\n")
}

// InsertTab inserts a tab, or tabWidth spaces when expand is set.
func (d *Document) InsertTab(tabWidth int, expand bool) error {
	if expand && tabWidth > 0 {
		return d.TypeText(strings.Repeat(" ", tabWidth))
	}
	return d.TypeText("\t")
}

// DeleteSelection removes the selected text and leaves the caret at its
// start. It reports whether there was anything to delete.
func (d *Document) DeleteSelection() (bool, error) {
	start, end, ok := d.sel.GetSelection()
	d.sel.ClearSelection()
	if !ok {
		return false, nil
	}
	if err := d.buf.Delete(start.Line, start.Col, end.Line, end.Col); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteForward removes the grapheme after the caret, joining the next line
// at the end of a line.
func (d *Document) DeleteForward() error {
	if ok, err := d.DeleteSelection(); ok || err != nil {
		return err
	}
	p := d.cursor.Position()
	if p.Col >= d.buf.ColumnCount(p.Line) {
		if p.Line >= d.buf.LineCount()-1 {
			return nil
		}
		return d.buf.Delete(p.Line, p.Col, p.Line+1, 0)
	}
	d.cursor.Right()
	end := d.cursor.Position()
	return d.buf.Delete(p.Line, p.Col, end.Line, end.Col)
}

// Backspace removes the grapheme before the caret, joining lines at column 0.
// A selection is deleted instead.
func (d *Document) Backspace() error {
	if ok, err := d.DeleteSelection(); ok || err != nil {
		return err
	}
	p := d.cursor.Position()
	if p.Col == 0 {
		if p.Line == 0 {
			return nil
		}
		return d.buf.DeleteRequest(buffer.ThroughPreviousNewline{Line: p.Line})
	}
	d.cursor.Left()
	start := d.cursor.Position()
	return d.buf.Delete(start.Line, start.Col, p.Line, p.Col)
}

// --- undo ---

// Undo reverts the last undo step.
func (d *Document) Undo() error {
	a, err := d.history.Undo()
	if err != nil {
		return err
	}
	d.dispatch(event.TypeUndo, event.HistoryData{DocumentID: d.id, Description: a.Description()})
	return nil
}

// Redo re-applies the last undone step.
func (d *Document) Redo() error {
	a, err := d.history.Redo()
	if err != nil {
		return err
	}
	d.dispatch(event.TypeRedo, event.HistoryData{DocumentID: d.id, Description: a.Description()})
	return nil
}

func (d *Document) CanUndo() bool { return d.history.CanUndo() }

func (d *Document) CanRedo() bool { return d.history.CanRedo() }

// SetUndoEnabled turns the undo log on or off. Turning it off drops the log.
func (d *Document) SetUndoEnabled(enabled bool) {
	d.history.SetEnabled(enabled)
	d.opts.history.Enabled = enabled
}

// SetMaxUndoStackSize limits the undo log. n must be at least 1; to keep no
// history, disable undo instead.
func (d *Document) SetMaxUndoStackSize(n int) error {
	if err := d.history.SetMaxSize(n); err != nil {
		return fmt.Errorf("set max undo stack size %d: %w", n, err)
	}
	d.opts.history.MaxSize = n
	return nil
}
