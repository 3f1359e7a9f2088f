// internal/types/position.go
package types

import "fmt"

// Position is one location in a document.
// Index is the absolute character (rune) offset from the start of the document,
// counting one character for every line break.
// Line is the 0-based line index.
// Col is the 0-based column (rune index) within the line.
// Positions are produced by an indexer and are always self-consistent; treat
// them as values.
type Position struct {
	Index int
	Line  int
	Col   int
}

// String returns a compact "line:col@index" form, handy in logs and test failures.
func (p Position) String() string {
	return fmt.Sprintf("%d:%d@%d", p.Line, p.Col, p.Index)
}

// Before reports whether p comes before other in document order.
func (p Position) Before(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}
