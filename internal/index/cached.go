package index

import "github.com/bethropolis/tide/internal/types"

// Cached is the streaming indexer. It keeps the last resolved position and
// walks to each new query from there, jumping whole lines and doing column
// arithmetic inside a line. Queries near the previous one cost O(distance);
// random access stays correct but loses the benefit.
//
// Cached is stateful: the owning document must call AfterEdit for every edit
// while it is in use.
type Cached struct {
	src  LineSource
	last types.Position
}

var _ EditAware = (*Cached)(nil)

// NewCached creates a streaming indexer primed at initialIndex.
func NewCached(src LineSource, initialIndex int) (*Cached, error) {
	c := &Cached{src: src}
	if _, err := c.PositionOf(initialIndex); err != nil {
		return nil, err
	}
	return c, nil
}

// Last returns the most recently resolved position.
func (c *Cached) Last() types.Position {
	return c.last
}

// PositionOf resolves an absolute index starting from the cached position.
func (c *Cached) PositionOf(index int) (types.Position, error) {
	if index < 0 || index > c.src.Len() {
		return types.Position{}, indexError(index, c.src.Len())
	}

	p := c.last
	// Forward: past the end of the current line, hop to the next line start.
	for index > p.Index+c.src.ColumnCount(p.Line)-p.Col {
		p.Index += c.src.ColumnCount(p.Line) - p.Col + 1
		p.Line++
		p.Col = 0
	}
	// Backward: before the start of the current line, hop to the previous line end.
	for index < p.Index-p.Col {
		p.Index -= p.Col + 1
		p.Line--
		p.Col = c.src.ColumnCount(p.Line)
	}
	p.Col += index - p.Index
	p.Index = index

	c.last = p
	return p, nil
}

// IndexOf resolves a (line, column) pair starting from the cached position.
func (c *Cached) IndexOf(line, col int) (int, error) {
	if line < 0 || line >= c.src.LineCount() {
		return 0, lineError(line, c.src.LineCount())
	}
	if cols := c.src.ColumnCount(line); col < 0 || col > cols {
		return 0, columnError(line, col, cols)
	}

	p := c.last
	for p.Line < line {
		p.Index += c.src.ColumnCount(p.Line) - p.Col + 1
		p.Line++
		p.Col = 0
	}
	for p.Line > line {
		p.Index -= p.Col + 1
		p.Line--
		p.Col = c.src.ColumnCount(p.Line)
	}
	p.Index += col - p.Col
	p.Col = col

	c.last = p
	return p.Index, nil
}

// AfterEdit drops the cached position when an edit started before it. An edit
// at or after the cached position leaves everything before it untouched, so
// the cache stays valid.
func (c *Cached) AfterEdit(line, col int) {
	if line < c.last.Line || (line == c.last.Line && col < c.last.Col) {
		c.last = types.Position{}
	}
}
