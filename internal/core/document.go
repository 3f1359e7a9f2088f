// Package core assembles the text buffer, its undo log and a caret into a
// Document, the surface the rest of the program edits through.
package core

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/core/cursor"
	"github.com/bethropolis/tide/internal/core/history"
	"github.com/bethropolis/tide/internal/core/selection"
	"github.com/bethropolis/tide/internal/event"
	"github.com/bethropolis/tide/internal/logger"
	"github.com/bethropolis/tide/internal/types"
)

// Document is an editable text with undo and a caret. Like the buffer it
// wraps, it must only be used from one goroutine; use Snapshot to hand the
// text to others.
type Document struct {
	id      uuid.UUID
	buf     *buffer.Buffer
	history *history.Manager
	cursor  *cursor.Tracker
	sel     *selection.Manager
	events  *event.Manager
	opts    options
}

// New creates a document. With no options it is empty, with undo enabled.
func New(opts ...Option) (*Document, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return newDocument(o)
}

func newDocument(o options) (*Document, error) {
	buf := buffer.NewFromString(o.text, o.buffer)
	hist, err := history.NewManager(buf, o.history)
	if err != nil {
		return nil, fmt.Errorf("new document: %w", err)
	}

	d := &Document{
		id:      uuid.New(),
		buf:     buf,
		history: hist,
		cursor:  cursor.NewTracker(buf),
		events:  o.events,
		opts:    o,
	}
	d.sel = selection.NewManager(buf, d.cursor)
	if d.events != nil {
		if err := buf.AddListener(&forwarder{doc: d}); err != nil {
			return nil, fmt.Errorf("new document: %w", err)
		}
	}
	logger.DebugTagf("core", "document %s created (%d lines)", d.id, buf.LineCount())
	return d, nil
}

// ID identifies the document in events and analysis results.
func (d *Document) ID() uuid.UUID { return d.id }

// Buffer exposes the underlying buffer for collaborators that need the
// listener protocol directly.
func (d *Document) Buffer() *buffer.Buffer { return d.buf }

// History exposes the undo log.
func (d *Document) History() *history.Manager { return d.history }

// Cursor exposes the caret.
func (d *Document) Cursor() *cursor.Tracker { return d.cursor }

// Selection exposes the selection anchored at the caret.
func (d *Document) Selection() *selection.Manager { return d.sel }

// Events returns the event manager, or nil if the document has none.
func (d *Document) Events() *event.Manager { return d.events }

// --- listeners ---

// AddListener registers an external change listener.
func (d *Document) AddListener(l buffer.ChangeListener) error {
	return d.buf.AddListener(l)
}

// RemoveListener unregisters a change listener.
func (d *Document) RemoveListener(l buffer.ChangeListener) {
	d.buf.RemoveListener(l)
}

// --- reads ---

func (d *Document) LineCount() int                           { return d.buf.LineCount() }
func (d *Document) ColumnCount(line int) int                 { return d.buf.ColumnCount(line) }
func (d *Document) CharAt(line, col int) (rune, error)       { return d.buf.CharAt(line, col) }
func (d *Document) CharAtIndex(i int) (rune, error)          { return d.buf.CharAtIndex(i) }
func (d *Document) LineText(line int) (string, error)        { return d.buf.LineText(line) }
func (d *Document) Len() int                                 { return d.buf.Len() }
func (d *Document) Text() string                             { return d.buf.Text() }
func (d *Document) Version() uint64                          { return d.buf.Version() }
func (d *Document) Snapshot() *buffer.Snapshot               { return d.buf.Snapshot() }
func (d *Document) PositionOf(i int) (types.Position, error) { return d.buf.PositionOf(i) }
func (d *Document) IndexOf(line, col int) (int, error)       { return d.buf.IndexOf(line, col) }

// TextRange returns the text between two positions.
func (d *Document) TextRange(startLine, startCol, endLine, endCol int) (string, error) {
	return d.buf.TextRange(startLine, startCol, endLine, endCol)
}

// --- indexer control ---

// BeginStreamCharGetting switches to the streaming indexer for a run of
// nearby index lookups.
func (d *Document) BeginStreamCharGetting(initialIndex int) error {
	return d.buf.BeginStreamCharGetting(initialIndex)
}

// EndStreamCharGetting switches back to the stateless indexer.
func (d *Document) EndStreamCharGetting() {
	d.buf.EndStreamCharGetting()
}

// Streaming reports whether the streaming indexer is active.
func (d *Document) Streaming() bool {
	return d.buf.Streaming()
}

// SubDocument returns an independent document holding the text of the range.
// The copy starts with an empty undo log.
func (d *Document) SubDocument(startLine, startCol, endLine, endCol int) (*Document, error) {
	text, err := d.buf.TextRange(startLine, startCol, endLine, endCol)
	if err != nil {
		return nil, err
	}

	o := d.opts
	o.events = nil
	o.text = ""
	enabled := o.history.Enabled
	sub, err := newDocument(o)
	if err != nil {
		return nil, err
	}

	sub.history.SetEnabled(false)
	if err := sub.buf.Insert(0, 0, text); err != nil {
		return nil, fmt.Errorf("sub document: %w", err)
	}
	sub.history.SetEnabled(enabled)
	sub.cursor.SetPosition(0, 0)
	return sub, nil
}
