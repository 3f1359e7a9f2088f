package buffer

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/bethropolis/tide/internal/logger"
)

// Insert inserts text at (line, col). Each '\n' in text splits the line.
func (b *Buffer) Insert(line, col int, text string) error {
	return b.insert(line, col, text, OriginEdit)
}

// Delete removes [start, end). A range that ends at column 0 of a line
// removes the line break before it.
func (b *Buffer) Delete(startLine, startCol, endLine, endCol int) error {
	return b.delete(startLine, startCol, endLine, endCol, OriginEdit)
}

// DeleteIndex removes the characters between two absolute indices.
func (b *Buffer) DeleteIndex(start, end int) error {
	if start < 0 || start > b.length {
		return &RangeError{Kind: RangeIndex, Index: start, Limit: b.length}
	}
	if end < 0 || end > b.length {
		return &RangeError{Kind: RangeIndex, Index: end, Limit: b.length}
	}
	if start > end {
		return &RangeError{Kind: RangeOrder, Index: end}
	}
	from, err := b.PositionOf(start)
	if err != nil {
		return err
	}
	to, err := b.PositionOf(end)
	if err != nil {
		return err
	}
	return b.delete(from.Line, from.Col, to.Line, to.Col, OriginEdit)
}

// Replace deletes [start, end) and inserts text at start. Listeners get
// BeforeReplace first, then the delete and insert notifications. With empty
// text there is no insert half and Replace is a plain Delete.
func (b *Buffer) Replace(startLine, startCol, endLine, endCol int, text string) error {
	if err := b.checkRange(startLine, startCol, endLine, endCol); err != nil {
		return err
	}
	if text == "" {
		return b.delete(startLine, startCol, endLine, endCol, OriginEdit)
	}
	b.notifyBeforeReplace()
	if err := b.delete(startLine, startCol, endLine, endCol, OriginEdit); err != nil {
		return err
	}
	return b.insert(startLine, startCol, text, OriginEdit)
}

func (b *Buffer) insert(line, col int, text string, origin Origin) error {
	if err := b.checkPosition(line, col); err != nil {
		return err
	}
	if !utf8.ValidString(text) {
		// Store and announce the same text: invalid bytes become U+FFFD.
		text = string([]rune(text))
	}
	if text == "" {
		return nil
	}

	b.notifyBeforeInsert(line, col, text)

	cur := b.lines[line]
	segments := strings.Split(text, "\n")
	e := Edit{StartLine: line, StartCol: col, Text: text, Origin: origin}

	if len(segments) == 1 {
		ins := []rune(text)
		next := make([]rune, 0, len(cur)+len(ins))
		next = append(next, cur[:col]...)
		next = append(next, ins...)
		next = append(next, cur[col:]...)
		b.lines[line] = next
		e.EndLine, e.EndCol = line, col+len(ins)
	} else {
		added := make([][]rune, len(segments))
		first := []rune(segments[0])
		head := make([]rune, 0, col+len(first))
		head = append(head, cur[:col]...)
		added[0] = append(head, first...)
		for i := 1; i < len(segments)-1; i++ {
			added[i] = []rune(segments[i])
		}
		last := []rune(segments[len(segments)-1])
		tail := make([]rune, 0, len(last)+len(cur)-col)
		tail = append(tail, last...)
		added[len(added)-1] = append(tail, cur[col:]...)

		b.lines = slices.Replace(b.lines, line, line+1, added...)
		e.EndLine, e.EndCol = line+len(segments)-1, len(last)
	}

	b.length += utf8.RuneCountInString(text)
	b.version++
	logger.DebugTagf("buffer", "insert %s (len=%d)", e, b.length)

	b.notifyAfterInsert(e)
	return nil
}

func (b *Buffer) delete(startLine, startCol, endLine, endCol int, origin Origin) error {
	if err := b.checkRange(startLine, startCol, endLine, endCol); err != nil {
		return err
	}
	if startLine == endLine && startCol == endCol {
		return nil
	}

	removed := b.textRange(startLine, startCol, endLine, endCol)
	b.notifyBeforeDelete(startLine, startCol, endLine, endCol)

	head := b.lines[startLine][:startCol]
	tail := b.lines[endLine][endCol:]
	joined := make([]rune, 0, len(head)+len(tail))
	joined = append(joined, head...)
	joined = append(joined, tail...)
	b.lines = slices.Replace(b.lines, startLine, endLine+1, joined)

	b.length -= utf8.RuneCountInString(removed)
	b.version++
	e := Edit{
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   endLine,
		EndCol:    endCol,
		Text:      removed,
		Origin:    origin,
	}
	logger.DebugTagf("buffer", "delete %s (len=%d)", e, b.length)

	b.notifyAfterDelete(e)
	return nil
}

// textRange assumes a validated, ordered range.
func (b *Buffer) textRange(startLine, startCol, endLine, endCol int) string {
	if startLine == endLine {
		return string(b.lines[startLine][startCol:endCol])
	}
	var sb strings.Builder
	sb.WriteString(string(b.lines[startLine][startCol:]))
	for i := startLine + 1; i < endLine; i++ {
		sb.WriteByte('\n')
		sb.WriteString(string(b.lines[i]))
	}
	sb.WriteByte('\n')
	sb.WriteString(string(b.lines[endLine][:endCol]))
	return sb.String()
}

func joinLines(lines [][]rune, length int) string {
	var sb strings.Builder
	sb.Grow(length)
	for i, line := range lines {
		if i > 0 {
			sb.WriteByte('\n')
		}
		for _, r := range line {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func byteOffset(lines [][]rune, line, col int) int {
	n := 0
	for i := 0; i < line; i++ {
		for _, r := range lines[i] {
			n += utf8.RuneLen(r)
		}
		n++
	}
	for _, r := range lines[line][:col] {
		n += utf8.RuneLen(r)
	}
	return n
}
