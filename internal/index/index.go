// Package index translates between absolute character offsets and
// (line, column) positions of a line-oriented document.
//
// Two strategies share the Indexer contract. Recomputing walks the line
// lengths from the top of the document on every query and needs no
// bookkeeping. Cached remembers the last position it resolved and walks from
// there, which makes left-to-right scans (a tokenizer, a search) cheap; it must
// be told about edits so its memory stays valid.
package index

import (
	"errors"
	"fmt"

	"github.com/bethropolis/tide/internal/types"
)

// ErrOutOfRange is returned for an index, line or column outside the document.
var ErrOutOfRange = errors.New("index: position out of range")

// LineSource is the read access an indexer needs from a document.
type LineSource interface {
	LineCount() int
	// ColumnCount returns the number of characters on line, without the line break.
	ColumnCount(line int) int
	// Len returns the total number of characters including line breaks.
	Len() int
}

// Indexer converts between absolute character indices and positions.
type Indexer interface {
	PositionOf(index int) (types.Position, error)
	IndexOf(line, col int) (int, error)
}

// EditAware is implemented by indexers that keep state derived from the
// document and must hear about every completed edit. line and col are the
// start of the edited range.
type EditAware interface {
	AfterEdit(line, col int)
}

func indexError(index, length int) error {
	return fmt.Errorf("%w: index %d not in [0, %d]", ErrOutOfRange, index, length)
}

func lineError(line, count int) error {
	return fmt.Errorf("%w: line %d not in [0, %d)", ErrOutOfRange, line, count)
}

func columnError(line, col, count int) error {
	return fmt.Errorf("%w: column %d not in [0, %d] on line %d", ErrOutOfRange, col, count, line)
}
