// Package buffer holds the document text as an array of lines and owns the
// change notification protocol. Every mutation is validated up front, applied,
// and then announced to the recorder, position trackers, the active indexer
// and external listeners, in that order.
package buffer

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/bethropolis/tide/internal/index"
	"github.com/bethropolis/tide/internal/logger"
	"github.com/bethropolis/tide/internal/types"
)

// DefaultInitialLineCapacity is used when Options.InitialLineCapacity is not positive.
const DefaultInitialLineCapacity = 64

// Options configures a new Buffer.
type Options struct {
	// InitialLineCapacity pre-sizes the line array.
	InitialLineCapacity int
}

// Buffer is a mutable text document stored as lines of runes without their
// line breaks. There is always at least one line. A Buffer is not safe for
// concurrent use; take a Snapshot to read from other goroutines.
type Buffer struct {
	// Each line slice is replaced, never written in place, once it is stored.
	// Snapshots share line slices with the buffer.
	lines  [][]rune
	length int

	version    uint64
	batchDepth int
	batchSeq   uint64

	recomputing *index.Recomputing
	streaming   *index.Cached
	indexer     index.Indexer

	recorder  ChangeListener
	trackers  []PositionTracker
	listeners []ChangeListener

	replay *Replay
}

// New creates an empty buffer: one empty line, length zero.
func New(opts Options) *Buffer {
	capacity := opts.InitialLineCapacity
	if capacity <= 0 {
		capacity = DefaultInitialLineCapacity
	}
	b := &Buffer{lines: make([][]rune, 1, capacity)}
	b.lines[0] = []rune{}
	b.recomputing = index.NewRecomputing(b)
	b.indexer = b.recomputing
	return b
}

// NewFromString creates a buffer holding text. No notifications are sent.
func NewFromString(text string, opts Options) *Buffer {
	b := New(opts)
	if text == "" {
		return b
	}
	parts := strings.Split(text, "\n")
	b.lines = b.lines[:0]
	for _, part := range parts {
		b.lines = append(b.lines, []rune(part))
	}
	b.length = utf8.RuneCountInString(text)
	return b
}

// NewFromReader reads r to the end and creates a buffer holding its contents.
// Only '\n' separates lines; a '\r' stays part of the line text.
func NewFromReader(r io.Reader, opts Options) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read buffer contents: %w", err)
	}
	if !utf8.Valid(data) {
		logger.Warnf("buffer: input is not valid UTF-8, invalid bytes become U+FFFD")
	}
	return NewFromString(string(data), opts), nil
}

// --- reads ---

// LineCount returns the number of lines, always at least 1.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// ColumnCount returns the number of characters on line, excluding the line
// break. line must be in [0, LineCount); otherwise ColumnCount panics with a
// *RangeError, like an out-of-range slice index.
func (b *Buffer) ColumnCount(line int) int {
	if err := b.checkLine(line); err != nil {
		panic(err)
	}
	return len(b.lines[line])
}

// Len returns the total number of characters, counting one per line break.
func (b *Buffer) Len() int {
	return b.length
}

// Version increases by one with every insert or delete.
func (b *Buffer) Version() uint64 {
	return b.version
}

// CharAt returns the character at (line, col). Column ColumnCount(line) reads
// as the virtual '\n' on every line but the last.
func (b *Buffer) CharAt(line, col int) (rune, error) {
	if err := b.checkLine(line); err != nil {
		return 0, err
	}
	cur := b.lines[line]
	if col == len(cur) && line < len(b.lines)-1 {
		return '\n', nil
	}
	if col < 0 || col >= len(cur) {
		// Only the last line has no virtual '\n' at its end.
		last := line == len(b.lines)-1
		return 0, &RangeError{Kind: RangeColumn, Line: line, Col: col, Limit: len(cur), Open: last}
	}
	return cur[col], nil
}

// CharAtIndex returns the character at an absolute index in [0, Len).
func (b *Buffer) CharAtIndex(i int) (rune, error) {
	if i < 0 || i >= b.length {
		return 0, &RangeError{Kind: RangeIndex, Index: i, Limit: b.length - 1}
	}
	p, err := b.PositionOf(i)
	if err != nil {
		return 0, err
	}
	return b.CharAt(p.Line, p.Col)
}

// LineText returns the text of line without its line break.
func (b *Buffer) LineText(line int) (string, error) {
	if err := b.checkLine(line); err != nil {
		return "", err
	}
	return string(b.lines[line]), nil
}

// Text returns the whole document with lines joined by '\n'.
func (b *Buffer) Text() string {
	return joinLines(b.lines, b.length)
}

// TextRange returns the text between two positions, start inclusive and end exclusive.
func (b *Buffer) TextRange(startLine, startCol, endLine, endCol int) (string, error) {
	if err := b.checkRange(startLine, startCol, endLine, endCol); err != nil {
		return "", err
	}
	return b.textRange(startLine, startCol, endLine, endCol), nil
}

// ByteOffset returns the UTF-8 byte offset of (line, col) in Text().
func (b *Buffer) ByteOffset(line, col int) (int, error) {
	if err := b.checkPosition(line, col); err != nil {
		return 0, err
	}
	return byteOffset(b.lines, line, col), nil
}

// PositionOf converts an absolute index in [0, Len] to a position using the
// active indexer.
func (b *Buffer) PositionOf(i int) (types.Position, error) {
	if i < 0 || i > b.length {
		return types.Position{}, &RangeError{Kind: RangeIndex, Index: i, Limit: b.length}
	}
	return b.indexer.PositionOf(i)
}

// IndexOf converts a (line, col) position to an absolute index using the
// active indexer.
func (b *Buffer) IndexOf(line, col int) (int, error) {
	if err := b.checkPosition(line, col); err != nil {
		return 0, err
	}
	return b.indexer.IndexOf(line, col)
}

// --- indexer selection ---

// BeginStreamCharGetting switches to the streaming indexer, primed at
// initialIndex, for a run of nearby index queries. Calling it again re-primes.
func (b *Buffer) BeginStreamCharGetting(initialIndex int) error {
	if initialIndex < 0 || initialIndex > b.length {
		return &RangeError{Kind: RangeIndex, Index: initialIndex, Limit: b.length}
	}
	c, err := index.NewCached(b, initialIndex)
	if err != nil {
		return err
	}
	b.streaming = c
	b.indexer = c
	return nil
}

// EndStreamCharGetting reverts to the stateless indexer.
func (b *Buffer) EndStreamCharGetting() {
	b.streaming = nil
	b.indexer = b.recomputing
}

// Streaming reports whether the streaming indexer is active.
func (b *Buffer) Streaming() bool {
	return b.streaming != nil
}

func (b *Buffer) indexerAfterEdit(e Edit) {
	if aware, ok := b.indexer.(index.EditAware); ok {
		aware.AfterEdit(e.StartLine, e.StartCol)
	}
}

// --- batch edits ---

// BeginBatchEdit opens a (possibly nested) batch. The edit log groups every
// edit made while a batch is open into one undo step. It always returns true.
func (b *Buffer) BeginBatchEdit() bool {
	if b.batchDepth == 0 {
		b.batchSeq++
	}
	b.batchDepth++
	return true
}

// EndBatchEdit closes one level of batching and reports whether a batch is
// still open. Unbalanced calls are clamped at zero.
func (b *Buffer) EndBatchEdit() bool {
	if b.batchDepth > 0 {
		b.batchDepth--
	}
	return b.batchDepth > 0
}

// InBatch reports whether a batch is open.
func (b *Buffer) InBatch() bool {
	return b.batchDepth > 0
}

// BatchDepth returns the current nesting depth.
func (b *Buffer) BatchDepth() int {
	return b.batchDepth
}

// BatchID identifies the outermost open batch, or returns 0 outside a batch.
// Each outermost BeginBatchEdit gets a new ID.
func (b *Buffer) BatchID() uint64 {
	if b.batchDepth == 0 {
		return 0
	}
	return b.batchSeq
}

// --- validation ---

func (b *Buffer) checkLine(line int) error {
	if line < 0 || line >= len(b.lines) {
		return &RangeError{Kind: RangeLine, Line: line, Limit: len(b.lines)}
	}
	return nil
}

func (b *Buffer) checkPosition(line, col int) error {
	if err := b.checkLine(line); err != nil {
		return err
	}
	if cols := len(b.lines[line]); col < 0 || col > cols {
		return &RangeError{Kind: RangeColumn, Line: line, Col: col, Limit: cols}
	}
	return nil
}

func (b *Buffer) checkRange(startLine, startCol, endLine, endCol int) error {
	if err := b.checkPosition(startLine, startCol); err != nil {
		return err
	}
	if err := b.checkPosition(endLine, endCol); err != nil {
		return err
	}
	if startLine > endLine || (startLine == endLine && startCol > endCol) {
		return &RangeError{Kind: RangeOrder, Line: endLine, Col: endCol}
	}
	return nil
}
