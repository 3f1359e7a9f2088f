// Package cursor keeps a caret valid while the buffer changes underneath it.
package cursor

import (
	"strings"
	"unicode/utf8"

	"github.com/rivo/uniseg"

	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/logger"
	"github.com/bethropolis/tide/internal/types"
)

// Tracker is a caret attached to a buffer. It runs in the buffer's position
// tracker slot, so it has already moved by the time external listeners see an
// edit.
type Tracker struct {
	buf  *buffer.Buffer
	line int
	col  int
	// goal is the column Up and Down try to return to.
	goal int
}

var _ buffer.PositionTracker = (*Tracker)(nil)

// NewTracker creates a caret at (0, 0) and registers it with b.
func NewTracker(b *buffer.Buffer) *Tracker {
	t := &Tracker{buf: b}
	if err := b.AddTracker(t); err != nil {
		logger.Errorf("cursor: register tracker: %v", err)
	}
	return t
}

// Detach stops the tracker from following edits.
func (t *Tracker) Detach() {
	t.buf.RemoveTracker(t)
}

// Position returns the caret with its absolute index filled in.
func (t *Tracker) Position() types.Position {
	idx, err := t.buf.IndexOf(t.line, t.col)
	if err != nil {
		// The caret is kept valid by the edit hooks; this means a bug.
		logger.Warnf("cursor: caret %d:%d is outside the buffer: %v", t.line, t.col, err)
	}
	return types.Position{Index: idx, Line: t.line, Col: t.col}
}

// SetPosition moves the caret, clamping it into the buffer.
func (t *Tracker) SetPosition(line, col int) {
	t.setClamped(line, col)
	t.goal = t.col
}

// Move moves the caret by the given deltas, clamping at the edges.
func (t *Tracker) Move(deltaLine, deltaCol int) {
	t.SetPosition(t.line+deltaLine, t.col+deltaCol)
}

// Left moves one grapheme cluster left, wrapping to the end of the previous line.
func (t *Tracker) Left() {
	if t.col == 0 {
		if t.line > 0 {
			t.line--
			t.col = t.buf.ColumnCount(t.line)
		}
		t.goal = t.col
		return
	}
	bounds := graphemeBounds(t.lineText())
	prev := 0
	for _, b := range bounds {
		if b >= t.col {
			break
		}
		prev = b
	}
	t.col = prev
	t.goal = t.col
}

// Right moves one grapheme cluster right, wrapping to the start of the next line.
func (t *Tracker) Right() {
	if t.col >= t.buf.ColumnCount(t.line) {
		if t.line < t.buf.LineCount()-1 {
			t.line++
			t.col = 0
		}
		t.goal = t.col
		return
	}
	for _, b := range graphemeBounds(t.lineText()) {
		if b > t.col {
			t.col = b
			break
		}
	}
	t.goal = t.col
}

// Up moves to the previous line, keeping the goal column where possible.
func (t *Tracker) Up() {
	if t.line > 0 {
		t.setClamped(t.line-1, t.goal)
	}
}

// Down moves to the next line, keeping the goal column where possible.
func (t *Tracker) Down() {
	if t.line < t.buf.LineCount()-1 {
		t.setClamped(t.line+1, t.goal)
	}
}

// MoveToLineStart moves to the first non-blank character of the line.
func (t *Tracker) MoveToLineStart() {
	text := []rune(t.lineText())
	col := 0
	for col < len(text) && (text[col] == ' ' || text[col] == '\t') {
		col++
	}
	t.SetPosition(t.line, col)
}

// MoveToLineEnd moves past the last character of the line.
func (t *Tracker) MoveToLineEnd() {
	t.SetPosition(t.line, t.buf.ColumnCount(t.line))
}

// DisplayColumn returns the caret's column on screen: tabs advance to the next
// multiple of tabWidth and wide characters take two cells.
func (t *Tracker) DisplayColumn(tabWidth int) int {
	return DisplayColumn(t.lineText(), t.col, tabWidth)
}

// DisplayColumn returns the screen column of character column col in line.
func DisplayColumn(line string, col, tabWidth int) int {
	if tabWidth <= 0 {
		tabWidth = 1
	}
	visual, seen := 0, 0
	state := -1
	for len(line) > 0 && seen < col {
		var cluster string
		var width int
		cluster, line, width, state = uniseg.FirstGraphemeClusterInString(line, state)
		if cluster == "\t" {
			visual = (visual/tabWidth + 1) * tabWidth
		} else {
			visual += width
		}
		seen += utf8.RuneCountInString(cluster)
	}
	return visual
}

// --- buffer.PositionTracker ---

func (t *Tracker) BeforeReplace(*buffer.Buffer) {}

func (t *Tracker) BeforeInsert(*buffer.Buffer, int, int, string) {}

func (t *Tracker) BeforeDelete(*buffer.Buffer, int, int, int, int) {}

// AfterInsert pushes the caret past text inserted at or before it.
func (t *Tracker) AfterInsert(_ *buffer.Buffer, e buffer.Edit) {
	switch {
	case t.line == e.StartLine && t.col >= e.StartCol:
		t.col = e.EndCol + (t.col - e.StartCol)
		t.line = e.EndLine
	case t.line > e.StartLine:
		t.line += e.EndLine - e.StartLine
	default:
		return
	}
	t.goal = t.col
}

// AfterDelete pulls the caret back over removed text. A caret inside the
// removed range lands on its start.
func (t *Tracker) AfterDelete(_ *buffer.Buffer, e buffer.Edit) {
	before := t.line < e.StartLine || (t.line == e.StartLine && t.col <= e.StartCol)
	if before {
		return
	}
	after := t.line > e.EndLine || (t.line == e.EndLine && t.col >= e.EndCol)
	switch {
	case !after:
		t.line, t.col = e.StartLine, e.StartCol
	case t.line == e.EndLine:
		t.line, t.col = e.StartLine, e.StartCol+(t.col-e.EndCol)
	default:
		t.line -= e.EndLine - e.StartLine
	}
	t.goal = t.col
}

func (t *Tracker) setClamped(line, col int) {
	line = max(0, min(line, t.buf.LineCount()-1))
	col = max(0, min(col, t.buf.ColumnCount(line)))
	t.line, t.col = line, col
}

func (t *Tracker) lineText() string {
	text, err := t.buf.LineText(t.line)
	if err != nil {
		logger.Warnf("cursor: read line %d: %v", t.line, err)
		return ""
	}
	return text
}

// graphemeBounds returns the character columns at which grapheme clusters
// start, plus the end of the line.
func graphemeBounds(line string) []int {
	bounds := make([]int, 0, utf8.RuneCountInString(line)+1)
	bounds = append(bounds, 0)
	col, state := 0, -1
	for len(line) > 0 {
		var cluster string
		cluster, line, _, state = uniseg.FirstGraphemeClusterInString(line, state)
		col += utf8.RuneCountInString(cluster)
		bounds = append(bounds, col)
	}
	return bounds
}

// CountGraphemes returns the number of user-perceived characters in s.
func CountGraphemes(s string) int {
	return uniseg.GraphemeClusterCount(strings.ToValidUTF8(s, "�"))
}
