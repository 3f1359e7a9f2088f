package buffer

import "fmt"

// DeleteRequest selects the range removed by Buffer.DeleteRequest.
// The two implementations are Range and ThroughPreviousNewline.
type DeleteRequest interface {
	resolveDelete(b *Buffer) (startLine, startCol, endLine, endCol int, err error)
}

// Range deletes [Start, End) given as line/column pairs.
type Range struct {
	StartLine, StartCol int
	EndLine, EndCol     int
}

func (r Range) resolveDelete(b *Buffer) (int, int, int, int, error) {
	return r.StartLine, r.StartCol, r.EndLine, r.EndCol, nil
}

// ThroughPreviousNewline deletes from the end of the line above Line up to
// (Line, EndCol), removing the line break between them. This is backspace at
// column 0. On line 0 there is no line break to remove and the range starts
// at (0, 0).
type ThroughPreviousNewline struct {
	Line   int
	EndCol int
}

func (r ThroughPreviousNewline) resolveDelete(b *Buffer) (int, int, int, int, error) {
	if err := b.checkLine(r.Line); err != nil {
		return 0, 0, 0, 0, err
	}
	if r.Line == 0 {
		return 0, 0, 0, r.EndCol, nil
	}
	prev := r.Line - 1
	return prev, len(b.lines[prev]), r.Line, r.EndCol, nil
}

// InsertRequest selects where Buffer.InsertAt puts its text.
// The two implementations are At and NextLineStart.
type InsertRequest interface {
	resolveInsert(b *Buffer) (line, col int, err error)
}

// At inserts at an explicit line and column.
type At struct {
	Line int
	Col  int
}

func (a At) resolveInsert(b *Buffer) (int, int, error) {
	return a.Line, a.Col, nil
}

// NextLineStart inserts at the start of the line after Line. When Line is the
// last line there is no next line; the text goes to the end of the document.
type NextLineStart struct {
	Line int
}

func (n NextLineStart) resolveInsert(b *Buffer) (int, int, error) {
	if err := b.checkLine(n.Line); err != nil {
		return 0, 0, err
	}
	if n.Line+1 < len(b.lines) {
		return n.Line + 1, 0, nil
	}
	return n.Line, len(b.lines[n.Line]), nil
}

// DeleteRequest removes the range selected by req.
func (b *Buffer) DeleteRequest(req DeleteRequest) error {
	if req == nil {
		return fmt.Errorf("delete: %w", ErrInvalidArgument)
	}
	sl, sc, el, ec, err := req.resolveDelete(b)
	if err != nil {
		return err
	}
	return b.delete(sl, sc, el, ec, OriginEdit)
}

// InsertAt inserts text at the position selected by req.
func (b *Buffer) InsertAt(req InsertRequest, text string) error {
	if req == nil {
		return fmt.Errorf("insert: %w", ErrInvalidArgument)
	}
	line, col, err := req.resolveInsert(b)
	if err != nil {
		return err
	}
	return b.insert(line, col, text, OriginEdit)
}
