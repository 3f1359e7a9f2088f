// Package selection keeps a selection anchored in a buffer while it changes.
package selection

import (
	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/core/cursor"
	"github.com/bethropolis/tide/internal/logger"
	"github.com/bethropolis/tide/internal/types"
)

// Manager is a selection between a fixed anchor and the caret. The anchor is
// a position tracker of its own, so edits elsewhere move it like the caret.
type Manager struct {
	caret     *cursor.Tracker
	anchor    *cursor.Tracker
	selecting bool
}

// NewManager creates a manager selecting from an anchor to caret in b.
func NewManager(b *buffer.Buffer, caret *cursor.Tracker) *Manager {
	return &Manager{
		caret:  caret,
		anchor: cursor.NewTracker(b),
	}
}

// HasSelection reports whether a non-empty range is selected.
func (m *Manager) HasSelection() bool {
	_, _, ok := m.GetSelection()
	return ok
}

// GetSelection returns the selected range with start before end. ok is false
// when nothing is selected or the range is empty.
func (m *Manager) GetSelection() (start, end types.Position, ok bool) {
	if !m.selecting {
		return types.Position{}, types.Position{}, false
	}
	start, end = m.anchor.Position(), m.caret.Position()
	if start == end {
		return start, end, false
	}
	if end.Before(start) {
		start, end = end, start
	}
	return start, end, true
}

// StartOrUpdateSelection anchors a selection at the caret if none is active.
// Moving the caret afterwards extends the selection.
func (m *Manager) StartOrUpdateSelection() {
	if m.selecting {
		return
	}
	p := m.caret.Position()
	m.anchor.SetPosition(p.Line, p.Col)
	m.selecting = true
	logger.DebugTagf("core", "selection anchored at %v", p)
}

// Select selects from (startLine, startCol) to (endLine, endCol), leaving the
// caret at the end. Positions are clamped into the buffer.
func (m *Manager) Select(startLine, startCol, endLine, endCol int) {
	m.anchor.SetPosition(startLine, startCol)
	m.caret.SetPosition(endLine, endCol)
	m.selecting = true
}

// ClearSelection drops the selection.
func (m *Manager) ClearSelection() {
	if m.selecting {
		logger.DebugTagf("core", "selection cleared")
	}
	m.selecting = false
}

// IsSelecting returns whether a selection is anchored, even an empty one.
func (m *Manager) IsSelecting() bool {
	return m.selecting
}
