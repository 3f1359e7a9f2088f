package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/core/history"
	"github.com/bethropolis/tide/internal/event"
)

func TestDocumentScenario(t *testing.T) {
	d, err := New()
	require.NoError(t, err)

	require.NoError(t, d.Insert(0, 0, "ab\ncd"))
	assert.Equal(t, 2, d.LineCount())
	line, err := d.LineText(1)
	require.NoError(t, err)
	assert.Equal(t, "cd", line)
	assert.Equal(t, 5, d.Len())

	require.NoError(t, d.Delete(0, 1, 1, 1))
	assert.Equal(t, "ad", d.Text())

	require.NoError(t, d.Undo())
	assert.Equal(t, "ab\ncd", d.Text())
	require.NoError(t, d.Undo())
	assert.Equal(t, "", d.Text())
	assert.False(t, d.CanUndo())
	assert.True(t, d.CanRedo())
	assert.ErrorIs(t, d.Undo(), history.ErrNothingToUndo)
}

func TestOptions(t *testing.T) {
	d, err := New(WithText("seed"), WithUndoEnabled(false), WithInitialLineCapacity(8))
	require.NoError(t, err)
	assert.Equal(t, "seed", d.Text())
	assert.False(t, d.CanUndo(), "seeding is not recorded")

	require.NoError(t, d.Insert(0, 4, "!"))
	assert.False(t, d.CanUndo())

	_, err = New(WithMaxUndoStackSize(-1))
	assert.ErrorIs(t, err, history.ErrInvalidStackSize)

	d, err = New(WithMergeLimit(3))
	require.NoError(t, err)
	for i, s := range []string{"a", "b", "c"} {
		require.NoError(t, d.Insert(0, i, s))
	}
	assert.Equal(t, 2, d.History().Len())
}

func TestSetMaxUndoStackSize(t *testing.T) {
	d, err := New()
	require.NoError(t, err)
	assert.ErrorIs(t, d.SetMaxUndoStackSize(0), history.ErrInvalidStackSize)
	require.NoError(t, d.SetMaxUndoStackSize(2))

	for i := 0; i < 5; i++ {
		require.NoError(t, d.Insert(0, 0, "x"))
	}
	assert.Equal(t, 2, d.History().Len())
}

func TestSubDocument(t *testing.T) {
	d, err := New(WithText("first line\nsecond line\nthird"))
	require.NoError(t, err)

	sub, err := d.SubDocument(0, 6, 1, 6)
	require.NoError(t, err)
	assert.Equal(t, "line\nsecond", sub.Text())
	assert.NotEqual(t, d.ID(), sub.ID())
	assert.False(t, sub.CanUndo(), "construction is not undoable")

	require.NoError(t, sub.Insert(0, 0, ">"))
	assert.True(t, sub.CanUndo(), "undo is re-enabled after construction")
	assert.Equal(t, "first line\nsecond line\nthird", d.Text(), "the copy is independent")

	_, err = d.SubDocument(2, 0, 0, 0)
	assert.ErrorIs(t, err, buffer.ErrOutOfRange)
}

func TestEventsAreForwarded(t *testing.T) {
	events := event.NewManager()
	d, err := New(WithEventManager(events))
	require.NoError(t, err)

	var got []event.Type
	var edits []buffer.Edit
	for _, typ := range []event.Type{event.TypeTextInserted, event.TypeTextDeleted, event.TypeUndo, event.TypeRedo} {
		events.Subscribe(typ, func(e event.Event) bool {
			got = append(got, e.Type)
			if data, ok := e.Data.(event.TextChangedData); ok {
				assert.Equal(t, d.ID(), data.DocumentID)
				edits = append(edits, data.Edit)
			}
			return false
		})
	}

	require.NoError(t, d.Insert(0, 0, "hi"))
	require.NoError(t, d.Undo())
	require.NoError(t, d.Redo())

	assert.Equal(t, []event.Type{
		event.TypeTextInserted,
		event.TypeTextDeleted, event.TypeUndo,
		event.TypeTextInserted, event.TypeRedo,
	}, got)
	require.Len(t, edits, 3)
	assert.Equal(t, buffer.OriginEdit, edits[0].Origin)
	assert.Equal(t, buffer.OriginReplay, edits[1].Origin)
}

func TestTypingAndBackspace(t *testing.T) {
	d, err := New(WithText("ab\ncd"))
	require.NoError(t, err)
	d.Cursor().SetPosition(1, 0)

	require.NoError(t, d.Backspace())
	assert.Equal(t, "abcd", d.Text())
	assert.Equal(t, 2, d.Cursor().Position().Col)

	require.NoError(t, d.TypeText("X"))
	require.NoError(t, d.TypeText("Y"))
	assert.Equal(t, "abXYcd", d.Text())

	require.NoError(t, d.Backspace())
	require.NoError(t, d.Backspace())
	assert.Equal(t, "abcd", d.Text())

	d.Cursor().SetPosition(0, 0)
	require.NoError(t, d.Backspace(), "backspace at the document start does nothing")
	assert.Equal(t, "abcd", d.Text())

	for d.CanUndo() {
		require.NoError(t, d.Undo())
	}
	assert.Equal(t, "ab\ncd", d.Text())
}

func TestStreamCharGetting(t *testing.T) {
	d, err := New(WithText("one\ntwo\nthree"))
	require.NoError(t, err)

	require.NoError(t, d.BeginStreamCharGetting(0))
	var text []rune
	for i := 0; i < d.Len(); i++ {
		r, err := d.CharAtIndex(i)
		require.NoError(t, err)
		text = append(text, r)
	}
	d.EndStreamCharGetting()
	assert.Equal(t, d.Text(), string(text))

	p, err := d.PositionOf(8)
	require.NoError(t, err)
	idx, err := d.IndexOf(p.Line, p.Col)
	require.NoError(t, err)
	assert.Equal(t, 8, idx)
}

func TestEditingOperations(t *testing.T) {
	d, err := New(WithText("ab\ncd"))
	require.NoError(t, err)

	d.Cursor().SetPosition(0, 1)
	require.NoError(t, d.InsertNewLine())
	assert.Equal(t, "a\nb\ncd", d.Text())
	assert.Equal(t, 1, d.Cursor().Position().Line)

	require.NoError(t, d.InsertTab(4, true))
	require.NoError(t, d.InsertTab(4, false))
	assert.Equal(t, "a\n    \tb\ncd", d.Text())

	d.Cursor().SetPosition(0, 1)
	require.NoError(t, d.DeleteForward(), "joins the next line")
	assert.Equal(t, "a    \tb\ncd", d.Text())
	require.NoError(t, d.DeleteForward())
	assert.Equal(t, "a   \tb\ncd", d.Text())
	assert.Equal(t, 1, d.Cursor().Position().Col)

	d.Cursor().SetPosition(1, 2)
	require.NoError(t, d.DeleteForward(), "nothing after the last character")
	assert.Equal(t, "a   \tb\ncd", d.Text())
}

func TestSelectionEditing(t *testing.T) {
	d, err := New(WithText("hello world"))
	require.NoError(t, err)

	d.Selection().Select(0, 6, 0, 11)
	require.NoError(t, d.TypeText("there"))
	assert.Equal(t, "hello there", d.Text())
	assert.False(t, d.Selection().HasSelection())
	assert.Equal(t, 11, d.Cursor().Position().Col)

	d.Selection().Select(0, 5, 0, 0)
	require.NoError(t, d.Backspace())
	assert.Equal(t, " there", d.Text())
	assert.Equal(t, 0, d.Cursor().Position().Col)

	deleted, err := d.DeleteSelection()
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, d.Undo())
	assert.Equal(t, "hello there", d.Text())
}
