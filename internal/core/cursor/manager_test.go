package cursor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/types"
)

func setup(text string, line, col int) (*buffer.Buffer, *Tracker) {
	b := buffer.NewFromString(text, buffer.Options{})
	t := NewTracker(b)
	t.SetPosition(line, col)
	return b, t
}

func TestFollowsInsert(t *testing.T) {
	tests := []struct {
		name      string
		line, col int
		text      string
		want      types.Position
	}{
		{"after on same line", 0, 0, "xy", types.Position{Index: 5, Line: 0, Col: 5}},
		{"at caret", 0, 3, "xy", types.Position{Index: 5, Line: 0, Col: 5}},
		{"after caret", 0, 4, "xy", types.Position{Index: 3, Line: 0, Col: 3}},
		{"newline before", 0, 1, "\n", types.Position{Index: 4, Line: 1, Col: 2}},
		{"lines above", 0, 0, "a\nb\n", types.Position{Index: 7, Line: 2, Col: 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, c := setup("abcdef\nghi", 0, 3)
			require.NoError(t, b.Insert(tt.line, tt.col, tt.text))
			assert.Equal(t, tt.want, c.Position())
		})
	}
}

func TestFollowsDelete(t *testing.T) {
	tests := []struct {
		name           string
		sl, sc, el, ec int
		wantLine       int
		wantCol        int
	}{
		{"before caret", 1, 0, 1, 1, 1, 1},
		{"containing caret", 1, 1, 1, 3, 1, 1},
		{"after caret", 1, 3, 1, 4, 1, 2},
		{"line above", 0, 0, 1, 0, 0, 2},
		{"joins caret line", 0, 2, 1, 1, 0, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, c := setup("abc\ndefg", 1, 2)
			require.NoError(t, b.Delete(tt.sl, tt.sc, tt.el, tt.ec))
			p := c.Position()
			assert.Equal(t, tt.wantLine, p.Line)
			assert.Equal(t, tt.wantCol, p.Col)
		})
	}
}

func TestGraphemeMoves(t *testing.T) {
	// "e" + combining acute, then a flag made of two regional indicators.
	_, c := setup("e\u0301\U0001F1E9\U0001F1EAx\nz", 0, 0)

	c.Right()
	assert.Equal(t, 2, c.Position().Col)
	c.Right()
	assert.Equal(t, 4, c.Position().Col)
	c.Right()
	assert.Equal(t, 5, c.Position().Col)
	c.Right()
	assert.Equal(t, types.Position{Index: 6, Line: 1, Col: 0}, c.Position(), "wraps to the next line")

	c.Left()
	assert.Equal(t, 0, c.Position().Line)
	assert.Equal(t, 5, c.Position().Col)
	c.Left()
	assert.Equal(t, 4, c.Position().Col)
	c.Left()
	assert.Equal(t, 2, c.Position().Col)
	c.Left()
	assert.Equal(t, 0, c.Position().Col)
	c.Left()
	assert.Equal(t, 0, c.Position().Col, "stays at the document start")
}

func TestVerticalMovesKeepGoalColumn(t *testing.T) {
	_, c := setup("long line\nab\nanother line", 0, 7)
	c.Down()
	assert.Equal(t, 2, c.Position().Col)
	c.Down()
	assert.Equal(t, 7, c.Position().Col)
	c.Up()
	c.Up()
	assert.Equal(t, 7, c.Position().Col)
}

func TestLineStartAndEnd(t *testing.T) {
	_, c := setup("\t  code here", 0, 9)
	c.MoveToLineStart()
	assert.Equal(t, 3, c.Position().Col)
	c.MoveToLineEnd()
	assert.Equal(t, 12, c.Position().Col)
}

func TestSetPositionClamps(t *testing.T) {
	_, c := setup("ab\ncd", 5, 9)
	assert.Equal(t, types.Position{Index: 5, Line: 1, Col: 2}, c.Position())
	c.Move(-4, -4)
	assert.Equal(t, types.Position{}, c.Position())
}

func TestDisplayColumn(t *testing.T) {
	assert.Equal(t, 4, DisplayColumn("\tx", 1, 4))
	assert.Equal(t, 5, DisplayColumn("\tx", 2, 4))
	assert.Equal(t, 2, DisplayColumn("世界", 1, 4), "wide characters take two cells")
	assert.Equal(t, 2, DisplayColumn("\t\t", 2, 0), "a non-positive tab width counts tabs as one cell")
}

func TestDetach(t *testing.T) {
	b, c := setup("abc", 0, 3)
	c.Detach()
	require.NoError(t, b.Insert(0, 0, "xx"))
	assert.Equal(t, 3, c.Position().Col)
}

func TestCountGraphemes(t *testing.T) {
	assert.Equal(t, 3, CountGraphemes("e\u0301\U0001F1E9\U0001F1EAx"))
	assert.Equal(t, 0, CountGraphemes(""))
}
