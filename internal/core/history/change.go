// Package history provides undo/redo as a log of reversible edit actions
// recorded from buffer notifications.
package history

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bethropolis/tide/internal/buffer"
)

// ActionType identifies the variant of an Action.
type ActionType int

const (
	TypeInsert ActionType = iota
	TypeDelete
	TypeReplace
	TypeBatch
)

func (t ActionType) String() string {
	switch t {
	case TypeInsert:
		return "insert"
	case TypeDelete:
		return "delete"
	case TypeReplace:
		return "replace"
	case TypeBatch:
		return "batch"
	default:
		return "unknown"
	}
}

// Action is one reversible entry of the undo log.
type Action interface {
	Type() ActionType
	// Undo applies the inverse of the action through r.
	Undo(r *buffer.Replay) error
	// Redo applies the action again through r.
	Redo(r *buffer.Replay) error
	// Description is a short human readable summary.
	Description() string
}

// merger is implemented by actions that can absorb the action after them.
type merger interface {
	tryMerge(next Action, limit int) bool
}

// span is a range in the coordinates of the document before the action ran
// (for a delete) or after it ran (for an insert).
type span struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

func spanOf(e buffer.Edit) span {
	return span{StartLine: e.StartLine, StartCol: e.StartCol, EndLine: e.EndLine, EndCol: e.EndCol}
}

// endOf returns where text ends when it is placed at (line, col).
func endOf(line, col int, text string) (int, int) {
	nl := strings.Count(text, "\n")
	if nl == 0 {
		return line, col + utf8.RuneCountInString(text)
	}
	return line + nl, utf8.RuneCountInString(text[strings.LastIndexByte(text, '\n')+1:])
}

func summarize(text string) string {
	const max = 20
	if utf8.RuneCountInString(text) > max {
		text = string([]rune(text)[:max]) + "…"
	}
	return fmt.Sprintf("%q", text)
}

// InsertAction records inserted text and the range it occupies.
type InsertAction struct {
	span
	Text  string
	runes int
}

// NewInsertAction builds an action from an insert notification.
func NewInsertAction(e buffer.Edit) *InsertAction {
	return &InsertAction{span: spanOf(e), Text: e.Text, runes: utf8.RuneCountInString(e.Text)}
}

func (a *InsertAction) Type() ActionType { return TypeInsert }

func (a *InsertAction) Undo(r *buffer.Replay) error {
	return r.Delete(a.StartLine, a.StartCol, a.EndLine, a.EndCol)
}

func (a *InsertAction) Redo(r *buffer.Replay) error {
	return r.Insert(a.StartLine, a.StartCol, a.Text)
}

func (a *InsertAction) Description() string {
	return fmt.Sprintf("insert %s at %d:%d", summarize(a.Text), a.StartLine, a.StartCol)
}

// tryMerge absorbs an insert that starts exactly where this one ends.
func (a *InsertAction) tryMerge(next Action, limit int) bool {
	n, ok := next.(*InsertAction)
	if !ok || n.StartLine != a.EndLine || n.StartCol != a.EndCol {
		return false
	}
	if a.runes+n.runes >= limit {
		return false
	}
	a.Text += n.Text
	a.runes += n.runes
	a.EndLine, a.EndCol = n.EndLine, n.EndCol
	return true
}

// DeleteAction records removed text and the range it occupied.
type DeleteAction struct {
	span
	Text  string
	runes int
}

// NewDeleteAction builds an action from a delete notification.
func NewDeleteAction(e buffer.Edit) *DeleteAction {
	return &DeleteAction{span: spanOf(e), Text: e.Text, runes: utf8.RuneCountInString(e.Text)}
}

func (a *DeleteAction) Type() ActionType { return TypeDelete }

func (a *DeleteAction) Undo(r *buffer.Replay) error {
	return r.Insert(a.StartLine, a.StartCol, a.Text)
}

func (a *DeleteAction) Redo(r *buffer.Replay) error {
	return r.Delete(a.StartLine, a.StartCol, a.EndLine, a.EndCol)
}

func (a *DeleteAction) Description() string {
	return fmt.Sprintf("delete %s at %d:%d", summarize(a.Text), a.StartLine, a.StartCol)
}

// tryMerge absorbs a delete that ends where this one starts (backspacing) or
// starts at the same position (deleting forward).
func (a *DeleteAction) tryMerge(next Action, limit int) bool {
	n, ok := next.(*DeleteAction)
	if !ok || a.runes+n.runes >= limit {
		return false
	}
	switch {
	case n.EndLine == a.StartLine && n.EndCol == a.StartCol:
		a.Text = n.Text + a.Text
		a.StartLine, a.StartCol = n.StartLine, n.StartCol
	case n.StartLine == a.StartLine && n.StartCol == a.StartCol:
		a.Text += n.Text
	default:
		return false
	}
	a.runes += n.runes
	a.EndLine, a.EndCol = endOf(a.StartLine, a.StartCol, a.Text)
	return true
}

// ReplaceAction pairs the delete and insert halves of a replace.
type ReplaceAction struct {
	Delete *DeleteAction
	Insert *InsertAction
}

func (a *ReplaceAction) Type() ActionType { return TypeReplace }

// Undo removes the inserted text, then puts the deleted text back.
func (a *ReplaceAction) Undo(r *buffer.Replay) error {
	if err := a.Insert.Undo(r); err != nil {
		return err
	}
	return a.Delete.Undo(r)
}

func (a *ReplaceAction) Redo(r *buffer.Replay) error {
	if err := a.Delete.Redo(r); err != nil {
		return err
	}
	return a.Insert.Redo(r)
}

func (a *ReplaceAction) Description() string {
	return fmt.Sprintf("replace %s with %s at %d:%d",
		summarize(a.Delete.Text), summarize(a.Insert.Text), a.Delete.StartLine, a.Delete.StartCol)
}

// BatchAction is a group of actions undone and redone as one step.
type BatchAction struct {
	Actions []Action
	id      uint64
}

func (a *BatchAction) Type() ActionType { return TypeBatch }

func (a *BatchAction) Undo(r *buffer.Replay) error {
	for i := len(a.Actions) - 1; i >= 0; i-- {
		if err := a.Actions[i].Undo(r); err != nil {
			return err
		}
	}
	return nil
}

func (a *BatchAction) Redo(r *buffer.Replay) error {
	for _, child := range a.Actions {
		if err := child.Redo(r); err != nil {
			return err
		}
	}
	return nil
}

func (a *BatchAction) Description() string {
	return fmt.Sprintf("batch of %d edits", len(a.Actions))
}

// add appends a child, merging it into the previous child when possible.
func (a *BatchAction) add(child Action, limit int) {
	if n := len(a.Actions); n > 0 {
		if m, ok := a.Actions[n-1].(merger); ok && m.tryMerge(child, limit) {
			return
		}
	}
	a.Actions = append(a.Actions, child)
}
