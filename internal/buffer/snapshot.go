package buffer

import "fmt"

// Snapshot is an immutable view of the buffer at one version. It is safe to
// read from any goroutine while the buffer keeps changing.
type Snapshot struct {
	lines   [][]rune
	length  int
	version uint64
}

// Snapshot captures the current contents. Only the line table is copied;
// line contents are shared because the buffer never writes into a stored line.
func (b *Buffer) Snapshot() *Snapshot {
	return &Snapshot{
		lines:   append([][]rune(nil), b.lines...),
		length:  b.length,
		version: b.version,
	}
}

// Version is the buffer version the snapshot was taken at.
func (s *Snapshot) Version() uint64 { return s.version }

// Len returns the number of characters, line breaks included.
func (s *Snapshot) Len() int { return s.length }

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() int { return len(s.lines) }

// ColumnCount returns the number of characters on line, or 0 for an invalid line.
func (s *Snapshot) ColumnCount(line int) int {
	if line < 0 || line >= len(s.lines) {
		return 0
	}
	return len(s.lines[line])
}

// LineText returns the text of line.
func (s *Snapshot) LineText(line int) (string, error) {
	if line < 0 || line >= len(s.lines) {
		return "", &RangeError{Kind: RangeLine, Line: line, Limit: len(s.lines)}
	}
	return string(s.lines[line]), nil
}

// Text returns the whole document.
func (s *Snapshot) Text() string {
	return joinLines(s.lines, s.length)
}

// Bytes returns the UTF-8 encoding of Text.
func (s *Snapshot) Bytes() []byte {
	return []byte(s.Text())
}

// ByteOffset returns the UTF-8 byte offset of (line, col).
func (s *Snapshot) ByteOffset(line, col int) (int, error) {
	if line < 0 || line >= len(s.lines) {
		return 0, &RangeError{Kind: RangeLine, Line: line, Limit: len(s.lines)}
	}
	if col < 0 || col > len(s.lines[line]) {
		return 0, &RangeError{Kind: RangeColumn, Line: line, Col: col, Limit: len(s.lines[line])}
	}
	return byteOffset(s.lines, line, col), nil
}

// ColumnAtByte converts a byte column within line to a character column.
// Byte columns inside a multi-byte character round down.
func (s *Snapshot) ColumnAtByte(line int, byteCol int) int {
	if line < 0 || line >= len(s.lines) {
		return 0
	}
	col, n := 0, 0
	for _, r := range s.lines[line] {
		size := len(string(r))
		if n+size > byteCol {
			break
		}
		n += size
		col++
	}
	return col
}

func (s *Snapshot) String() string {
	return fmt.Sprintf("snapshot v%d (%d lines, %d chars)", s.version, len(s.lines), s.length)
}
