package selection

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/core/cursor"
	"github.com/bethropolis/tide/internal/types"
)

func TestSelectionFollowsCaret(t *testing.T) {
	b := buffer.NewFromString("hello\nworld", buffer.Options{})
	caret := cursor.NewTracker(b)
	m := NewManager(b, caret)

	assert.False(t, m.HasSelection())
	caret.SetPosition(1, 3)
	m.StartOrUpdateSelection()
	assert.True(t, m.IsSelecting())
	assert.False(t, m.HasSelection(), "an anchor alone is not a selection")

	caret.SetPosition(0, 1)
	start, end, ok := m.GetSelection()
	require.True(t, ok)
	assert.Equal(t, types.Position{Line: 0, Col: 1, Index: 1}, start)
	assert.Equal(t, types.Position{Line: 1, Col: 3, Index: 9}, end)

	m.ClearSelection()
	assert.False(t, m.HasSelection())
}

func TestSelectionSurvivesEdits(t *testing.T) {
	b := buffer.NewFromString("abc def", buffer.Options{})
	caret := cursor.NewTracker(b)
	m := NewManager(b, caret)
	m.Select(0, 4, 0, 7)

	require.NoError(t, b.Insert(0, 0, ">> "))
	start, end, ok := m.GetSelection()
	require.True(t, ok)
	text, err := b.TextRange(start.Line, start.Col, end.Line, end.Col)
	require.NoError(t, err)
	assert.Equal(t, "def", text)

	require.NoError(t, b.Delete(0, 5, 0, 10))
	_, _, ok = m.GetSelection()
	assert.False(t, ok, "deleting the selected text collapses the selection")
}
