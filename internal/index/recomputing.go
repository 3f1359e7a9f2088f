package index

import "github.com/bethropolis/tide/internal/types"

// Recomputing is the stateless indexer. Every query walks line lengths from
// line 0, so it is always correct after any edit.
type Recomputing struct {
	src LineSource
}

// NewRecomputing creates a stateless indexer over src.
func NewRecomputing(src LineSource) *Recomputing {
	return &Recomputing{src: src}
}

// PositionOf resolves an absolute index. index == Len() is valid and names the
// end of the last line.
func (r *Recomputing) PositionOf(index int) (types.Position, error) {
	if index < 0 || index > r.src.Len() {
		return types.Position{}, indexError(index, r.src.Len())
	}

	start := 0
	lines := r.src.LineCount()
	for line := 0; line < lines; line++ {
		cols := r.src.ColumnCount(line)
		if index <= start+cols {
			return types.Position{Index: index, Line: line, Col: index - start}, nil
		}
		start += cols + 1
	}
	// Unreachable while the document keeps its length invariant.
	return types.Position{}, indexError(index, r.src.Len())
}

// IndexOf resolves a (line, column) pair.
func (r *Recomputing) IndexOf(line, col int) (int, error) {
	if line < 0 || line >= r.src.LineCount() {
		return 0, lineError(line, r.src.LineCount())
	}
	if cols := r.src.ColumnCount(line); col < 0 || col > cols {
		return 0, columnError(line, col, cols)
	}

	index := 0
	for i := 0; i < line; i++ {
		index += r.src.ColumnCount(i) + 1
	}
	return index + col, nil
}
