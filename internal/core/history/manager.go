package history

import (
	"errors"
	"fmt"

	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/logger"
)

const (
	DefaultMaxSize    = 100
	DefaultMergeLimit = 10000
)

var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
	// ErrInvalidStackSize is returned for a max size below 1. To keep no
	// history at all, disable the manager instead.
	ErrInvalidStackSize = errors.New("undo stack size must be at least 1")
)

// Options configures a Manager. The zero value is a disabled log; start from
// DefaultOptions.
type Options struct {
	Enabled    bool
	MaxSize    int
	MergeLimit int
}

// DefaultOptions returns an enabled log with the default limits.
func DefaultOptions() Options {
	return Options{Enabled: true, MaxSize: DefaultMaxSize, MergeLimit: DefaultMergeLimit}
}

// Info describes one entry of the log.
type Info struct {
	Type        ActionType
	Description string
	Applied     bool // false for entries that can only be redone
}

// Manager records buffer edits as actions and replays them for undo and redo.
// It is installed as the buffer's recorder, so it sees every edit first.
type Manager struct {
	buf        *buffer.Buffer
	actions    []Action
	pos        int // number of applied actions; actions[pos:] can be redone
	maxSize    int
	mergeLimit int
	enabled    bool

	// sealed is the number of leading actions that must not absorb new edits.
	// Everything that has ever been undone lies below it.
	sealed int

	pendingReplace bool
	pendingDelete  *DeleteAction
}

var _ buffer.ChangeListener = (*Manager)(nil)

// NewManager creates a manager and installs it as b's recorder.
func NewManager(b *buffer.Buffer, opts Options) (*Manager, error) {
	if opts.MaxSize == 0 {
		opts.MaxSize = DefaultMaxSize
	}
	if opts.MaxSize < 0 {
		return nil, ErrInvalidStackSize
	}
	if opts.MergeLimit <= 0 {
		opts.MergeLimit = DefaultMergeLimit
	}
	m := &Manager{
		buf:        b,
		actions:    make([]Action, 0, min(opts.MaxSize, DefaultMaxSize)),
		maxSize:    opts.MaxSize,
		mergeLimit: opts.MergeLimit,
		enabled:    opts.Enabled,
	}
	b.SetRecorder(m)
	return m, nil
}

// --- buffer.ChangeListener ---

// BeforeReplace marks the next delete/insert pair as one replace.
func (m *Manager) BeforeReplace(*buffer.Buffer) {
	if !m.enabled {
		return
	}
	m.pendingReplace = true
	m.pendingDelete = nil
}

// AfterInsert records an insert, completing a pending replace if there is one.
func (m *Manager) AfterInsert(b *buffer.Buffer, e buffer.Edit) {
	if !m.enabled || e.Origin == buffer.OriginReplay {
		return
	}
	ins := NewInsertAction(e)
	if m.pendingReplace {
		del := m.pendingDelete
		if del == nil {
			// The replaced range was empty, so no delete was announced.
			del = &DeleteAction{span: span{
				StartLine: e.StartLine, StartCol: e.StartCol,
				EndLine: e.StartLine, EndCol: e.StartCol,
			}}
		}
		m.pendingReplace, m.pendingDelete = false, nil
		m.push(&ReplaceAction{Delete: del, Insert: ins}, b.BatchID())
		return
	}
	m.push(ins, b.BatchID())
}

// AfterDelete records a delete. The delete half of a replace is held until
// the insert half arrives.
func (m *Manager) AfterDelete(b *buffer.Buffer, e buffer.Edit) {
	if !m.enabled || e.Origin == buffer.OriginReplay {
		return
	}
	del := NewDeleteAction(e)
	if m.pendingReplace && m.pendingDelete == nil {
		m.pendingDelete = del
		return
	}
	m.flushPending()
	m.push(del, b.BatchID())
}

// flushPending records a replace whose insert half never came (an empty
// replacement text) as a plain delete.
func (m *Manager) flushPending() {
	if !m.pendingReplace {
		return
	}
	del := m.pendingDelete
	m.pendingReplace, m.pendingDelete = false, nil
	if del != nil {
		m.push(del, m.buf.BatchID())
	}
}

func (m *Manager) push(a Action, batchID uint64) {
	if m.pos < len(m.actions) {
		logger.DebugTagf("history", "discarding %d redo entries", len(m.actions)-m.pos)
		clear(m.actions[m.pos:])
		m.actions = m.actions[:m.pos]
		m.sealed = min(m.sealed, m.pos)
	}

	top := m.top()
	switch {
	case batchID != 0:
		if batch, ok := top.(*BatchAction); ok && batch.id == batchID {
			batch.add(a, m.mergeLimit)
			logger.DebugTagf("history", "batch %d += %s", batchID, a.Description())
			return
		}
		a = &BatchAction{Actions: []Action{a}, id: batchID}
	case top != nil:
		if mg, ok := top.(merger); ok && mg.tryMerge(a, m.mergeLimit) {
			logger.DebugTagf("history", "merged into %s", top.Description())
			return
		}
	}

	m.actions = append(m.actions, a)
	m.pos = len(m.actions)
	logger.DebugTagf("history", "recorded %s (pos=%d)", a.Description(), m.pos)
	m.trim()
}

// top returns the last applied action if new edits may still merge into it.
func (m *Manager) top() Action {
	if m.pos == 0 || m.pos <= m.sealed {
		return nil
	}
	return m.actions[m.pos-1]
}

// trim drops actions beyond maxSize, always keeping one. Redo entries go
// first, newest first, since each one assumes the ones before it were
// re-applied; then the oldest applied actions.
func (m *Manager) trim() {
	limit := max(m.maxSize, 1)
	if len(m.actions) <= limit {
		return
	}
	if keep := max(m.pos, limit); len(m.actions) > keep {
		logger.DebugTagf("history", "trimmed %d redo entries", len(m.actions)-keep)
		clear(m.actions[keep:])
		m.actions = m.actions[:keep]
		m.sealed = min(m.sealed, keep)
	}
	if len(m.actions) <= limit {
		return
	}
	drop := len(m.actions) - limit
	clear(m.actions[:drop])
	m.actions = m.actions[drop:]
	m.pos = max(m.pos-drop, 0)
	m.sealed = max(m.sealed-drop, 0)
	logger.DebugTagf("history", "trimmed %d oldest entries", drop)
}

// --- undo / redo ---

// Undo reverts the last applied action.
func (m *Manager) Undo() (Action, error) {
	m.flushPending()
	if m.pos == 0 {
		return nil, ErrNothingToUndo
	}
	a := m.actions[m.pos-1]
	if err := m.replay(a.Undo); err != nil {
		return nil, fmt.Errorf("undo %s: %w", a.Description(), err)
	}
	m.pos--
	// Anything undone is sealed for good, even after a redo.
	m.sealed = max(m.sealed, m.pos+1)
	logger.DebugTagf("history", "undid %s (pos=%d)", a.Description(), m.pos)
	return a, nil
}

// Redo re-applies the next undone action.
func (m *Manager) Redo() (Action, error) {
	m.flushPending()
	if m.pos >= len(m.actions) {
		return nil, ErrNothingToRedo
	}
	a := m.actions[m.pos]
	if err := m.replay(a.Redo); err != nil {
		return nil, fmt.Errorf("redo %s: %w", a.Description(), err)
	}
	m.pos++
	logger.DebugTagf("history", "redid %s (pos=%d)", a.Description(), m.pos)
	return a, nil
}

func (m *Manager) replay(apply func(*buffer.Replay) error) error {
	r, err := m.buf.BeginReplay()
	if err != nil {
		return err
	}
	defer r.End()
	return apply(r)
}

// CanUndo reports whether Undo would do something.
func (m *Manager) CanUndo() bool {
	m.flushPending()
	return m.pos > 0
}

// CanRedo reports whether Redo would do something.
func (m *Manager) CanRedo() bool {
	m.flushPending()
	return m.pos < len(m.actions)
}

// --- configuration ---

// SetEnabled turns recording on or off. Disabling drops the whole log.
func (m *Manager) SetEnabled(enabled bool) {
	if !enabled {
		m.Clear()
	}
	m.enabled = enabled
}

// Enabled reports whether edits are recorded.
func (m *Manager) Enabled() bool {
	return m.enabled
}

// SetMaxSize limits the number of entries. The log is trimmed right away.
func (m *Manager) SetMaxSize(n int) error {
	if n <= 0 {
		return ErrInvalidStackSize
	}
	m.maxSize = n
	m.trim()
	return nil
}

// MaxSize returns the entry limit.
func (m *Manager) MaxSize() int {
	return m.maxSize
}

// Clear drops every entry.
func (m *Manager) Clear() {
	clear(m.actions)
	m.actions = m.actions[:0]
	m.pos = 0
	m.sealed = 0
	m.pendingReplace, m.pendingDelete = false, nil
	logger.DebugTagf("history", "cleared")
}

// Len returns the number of entries, applied or not.
func (m *Manager) Len() int {
	m.flushPending()
	return len(m.actions)
}

// Position returns the number of applied entries.
func (m *Manager) Position() int {
	m.flushPending()
	return m.pos
}

// Infos describes every entry, oldest first.
func (m *Manager) Infos() []Info {
	m.flushPending()
	infos := make([]Info, len(m.actions))
	for i, a := range m.actions {
		infos[i] = Info{Type: a.Type(), Description: a.Description(), Applied: i < m.pos}
	}
	return infos
}
