package buffer

import (
	"errors"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBuffer(text string) *Buffer {
	return NewFromString(text, Options{})
}

func requireRangeError(t *testing.T, err error, kind RangeKind) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfRange))
	var re *RangeError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, kind, re.Kind)
}

func TestNewBuffer(t *testing.T) {
	b := New(Options{InitialLineCapacity: 4})
	assert.Equal(t, 1, b.LineCount())
	assert.Equal(t, 0, b.Len())
	assert.Equal(t, 0, b.ColumnCount(0))
	assert.Equal(t, "", b.Text())
	assert.Equal(t, uint64(0), b.Version())
}

func TestNewFromString(t *testing.T) {
	b := newBuffer("ab\n\ncd\n")
	assert.Equal(t, 4, b.LineCount())
	assert.Equal(t, 7, b.Len())
	assert.Equal(t, "ab\n\ncd\n", b.Text())

	b = newBuffer("a\r\nb")
	assert.Equal(t, 2, b.LineCount())
	assert.Equal(t, 2, b.ColumnCount(0), "carriage return is an ordinary character")
}

func TestInsert(t *testing.T) {
	tests := []struct {
		name      string
		initial   string
		line, col int
		text      string
		want      string
		lines     int
	}{
		{"empty doc", "", 0, 0, "ab\ncd", "ab\ncd", 2},
		{"middle of line", "abcd", 0, 2, "XY", "abXYcd", 1},
		{"split line", "abcd", 0, 2, "\n", "ab\ncd", 2},
		{"multi line into middle", "abcd\nef", 0, 1, "1\n2\n3", "a1\n2\n3bcd\nef", 4},
		{"end of last line", "ab\ncd", 1, 2, "\n", "ab\ncd\n", 3},
		{"unicode", "héllo", 0, 2, "ü", "héüllo", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuffer(tt.initial)
			require.NoError(t, b.Insert(tt.line, tt.col, tt.text))
			assert.Equal(t, tt.want, b.Text())
			assert.Equal(t, tt.lines, b.LineCount())
			assert.Equal(t, utf8.RuneCountInString(tt.want), b.Len())
			assert.Equal(t, uint64(1), b.Version())
		})
	}
}

func TestInsertEmptyIsNoop(t *testing.T) {
	b := newBuffer("ab")
	rec := &recording{name: "l"}
	require.NoError(t, b.AddListener(rec))
	require.NoError(t, b.Insert(0, 1, ""))
	assert.Empty(t, rec.calls)
	assert.Equal(t, uint64(0), b.Version())
}

func TestDelete(t *testing.T) {
	tests := []struct {
		name           string
		initial        string
		sl, sc, el, ec int
		want           string
	}{
		{"within line", "abcd", 0, 1, 0, 3, "ad"},
		{"join lines", "ab\ncd", 0, 2, 1, 0, "abcd"},
		{"across lines", "ab\ncd\nef", 0, 1, 2, 1, "af"},
		{"whole doc", "ab\ncd", 0, 0, 1, 2, ""},
		{"empty range", "ab", 0, 1, 0, 1, "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBuffer(tt.initial)
			require.NoError(t, b.Delete(tt.sl, tt.sc, tt.el, tt.ec))
			assert.Equal(t, tt.want, b.Text())
			assert.Equal(t, utf8.RuneCountInString(tt.want), b.Len())
			assert.GreaterOrEqual(t, b.LineCount(), 1)
		})
	}
}

func TestDeleteIndex(t *testing.T) {
	b := newBuffer("ab\ncd")
	require.NoError(t, b.DeleteIndex(1, 4))
	assert.Equal(t, "ad", b.Text())

	requireRangeError(t, b.DeleteIndex(0, 3), RangeIndex)
	requireRangeError(t, b.DeleteIndex(2, 1), RangeOrder)
}

func TestDeleteRequest(t *testing.T) {
	b := newBuffer("ab\ncd")
	require.NoError(t, b.DeleteRequest(ThroughPreviousNewline{Line: 1, EndCol: 0}))
	assert.Equal(t, "abcd", b.Text())

	b = newBuffer("ab\ncd")
	require.NoError(t, b.DeleteRequest(ThroughPreviousNewline{Line: 1, EndCol: 1}))
	assert.Equal(t, "abd", b.Text())

	b = newBuffer("ab\ncd")
	require.NoError(t, b.DeleteRequest(ThroughPreviousNewline{Line: 0, EndCol: 1}))
	assert.Equal(t, "b\ncd", b.Text(), "line 0 has no line break before it")

	b = newBuffer("ab\ncd")
	require.NoError(t, b.DeleteRequest(Range{StartLine: 0, StartCol: 1, EndLine: 1, EndCol: 1}))
	assert.Equal(t, "ad", b.Text())

	assert.ErrorIs(t, b.DeleteRequest(nil), ErrInvalidArgument)
	requireRangeError(t, b.DeleteRequest(ThroughPreviousNewline{Line: 5}), RangeLine)
}

func TestInsertAt(t *testing.T) {
	b := newBuffer("ab\ncd")
	require.NoError(t, b.InsertAt(NextLineStart{Line: 0}, "X"))
	assert.Equal(t, "ab\nXcd", b.Text())

	require.NoError(t, b.InsertAt(NextLineStart{Line: 1}, "\nZ"))
	assert.Equal(t, "ab\nXcd\nZ", b.Text(), "on the last line the text goes to the end")

	require.NoError(t, b.InsertAt(At{Line: 0, Col: 0}, ">"))
	assert.Equal(t, ">ab\nXcd\nZ", b.Text())

	assert.ErrorIs(t, b.InsertAt(nil, "x"), ErrInvalidArgument)
}

func TestContractViolationsDoNotMutate(t *testing.T) {
	b := newBuffer("ab\ncd")
	rec := &recording{name: "l"}
	require.NoError(t, b.AddListener(rec))

	requireRangeError(t, b.Insert(2, 0, "x"), RangeLine)
	requireRangeError(t, b.Insert(-1, 0, "x"), RangeLine)
	requireRangeError(t, b.Insert(0, 3, "x"), RangeColumn)
	requireRangeError(t, b.Insert(0, -1, "x"), RangeColumn)
	requireRangeError(t, b.Delete(1, 0, 0, 1), RangeOrder)
	requireRangeError(t, b.Delete(0, 2, 0, 1), RangeOrder)
	requireRangeError(t, b.Delete(0, 0, 1, 3), RangeColumn)
	requireRangeError(t, b.Replace(0, 0, 3, 0, "x"), RangeLine)

	assert.Equal(t, "ab\ncd", b.Text())
	assert.Equal(t, uint64(0), b.Version())
	assert.Empty(t, rec.calls, "no notifications for rejected edits")
}

func TestReads(t *testing.T) {
	b := newBuffer("ab\ncdé")

	r, err := b.CharAt(0, 2)
	require.NoError(t, err)
	assert.Equal(t, '\n', r, "virtual line break")

	r, err = b.CharAt(1, 2)
	require.NoError(t, err)
	assert.Equal(t, 'é', r)

	_, err = b.CharAt(1, 3)
	requireRangeError(t, err, RangeColumn)

	r, err = b.CharAtIndex(3)
	require.NoError(t, err)
	assert.Equal(t, 'c', r)

	_, err = b.CharAtIndex(b.Len())
	requireRangeError(t, err, RangeIndex)

	text, err := b.TextRange(0, 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, "b\ncd", text)

	line, err := b.LineText(1)
	require.NoError(t, err)
	assert.Equal(t, "cdé", line)

	off, err := b.ByteOffset(1, 3)
	require.NoError(t, err)
	assert.Equal(t, len("ab\ncdé"), off)

	assert.Panics(t, func() { b.ColumnCount(2) })
}

func TestCharAtColumnBound(t *testing.T) {
	b := newBuffer("ab\n")

	_, err := b.CharAt(1, 0)
	requireRangeError(t, err, RangeColumn)
	assert.Contains(t, err.Error(), "[0, 0)")
	assert.NotContains(t, err.Error(), "-1")

	_, err = b.CharAt(0, 3)
	requireRangeError(t, err, RangeColumn)
	assert.Contains(t, err.Error(), "[0, 2]", "the line break is readable")
}

func TestPositionIndexRoundTrip(t *testing.T) {
	b := newBuffer("package main\n\nfunc main() {\n\tprintln(\"hé\")\n}\n")
	check := func() {
		for i := 0; i <= b.Len(); i++ {
			p, err := b.PositionOf(i)
			require.NoError(t, err)
			back, err := b.IndexOf(p.Line, p.Col)
			require.NoError(t, err)
			require.Equal(t, i, back, "index %d -> %s", i, p)
		}
	}
	check()
	require.NoError(t, b.BeginStreamCharGetting(b.Len()/2))
	assert.True(t, b.Streaming())
	check()
	b.EndStreamCharGetting()
	assert.False(t, b.Streaming())
	check()
}

func TestStreamingIndexerFollowsEdits(t *testing.T) {
	b := newBuffer("ab\ncd\nef")
	require.NoError(t, b.BeginStreamCharGetting(7))

	p, err := b.PositionOf(7)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Line)

	require.NoError(t, b.Delete(0, 0, 1, 0))
	p, err = b.PositionOf(4)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Line)
	assert.Equal(t, 1, p.Col)

	requireRangeError(t, b.BeginStreamCharGetting(b.Len()+1), RangeIndex)
}

func TestBatchDepth(t *testing.T) {
	b := newBuffer("")
	assert.Equal(t, uint64(0), b.BatchID())
	assert.True(t, b.BeginBatchEdit())
	id := b.BatchID()
	assert.NotZero(t, id)
	assert.True(t, b.BeginBatchEdit())
	assert.Equal(t, id, b.BatchID(), "nested batches share the outer id")
	assert.True(t, b.EndBatchEdit())
	assert.False(t, b.EndBatchEdit())
	assert.False(t, b.EndBatchEdit(), "unbalanced end is clamped")
	assert.Equal(t, 0, b.BatchDepth())

	b.BeginBatchEdit()
	assert.NotEqual(t, id, b.BatchID())
}

func TestSnapshotIsolation(t *testing.T) {
	b := newBuffer("ab\ncd")
	snap := b.Snapshot()
	require.NoError(t, b.Insert(0, 1, "XYZ\n"))
	require.NoError(t, b.Delete(1, 0, 2, 0))

	assert.Equal(t, "ab\ncd", snap.Text())
	assert.Equal(t, uint64(0), snap.Version())
	assert.Equal(t, 2, snap.LineCount())
	assert.Equal(t, 5, snap.Len())
	assert.NotEqual(t, snap.Text(), b.Text())

	off, err := snap.ByteOffset(1, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, off)
}

func TestSnapshotColumnAtByte(t *testing.T) {
	snap := newBuffer("aéb").Snapshot()
	assert.Equal(t, 0, snap.ColumnAtByte(0, 0))
	assert.Equal(t, 1, snap.ColumnAtByte(0, 1))
	assert.Equal(t, 1, snap.ColumnAtByte(0, 2), "inside é rounds down")
	assert.Equal(t, 2, snap.ColumnAtByte(0, 3))
	assert.Equal(t, 3, snap.ColumnAtByte(0, 4))
}

// TestRandomEdits checks the structural invariants over a random edit
// sequence: the cached length matches the text, there is always a line, and
// inserting then deleting the inserted range restores the text.
func TestRandomEdits(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	b := newBuffer("seed\ntext")
	alphabet := []string{"a", "é", "\n", "xy", "\n\n", "z\nq"}

	for i := 0; i < 500; i++ {
		line := rng.Intn(b.LineCount())
		col := rng.Intn(b.ColumnCount(line) + 1)
		before := b.Text()

		text := alphabet[rng.Intn(len(alphabet))]
		require.NoError(t, b.Insert(line, col, text))
		require.Equal(t, utf8.RuneCountInString(b.Text()), b.Len())

		endLine := line + strings.Count(text, "\n")
		endCol := col + utf8.RuneCountInString(text)
		if idx := strings.LastIndexByte(text, '\n'); idx >= 0 {
			endCol = utf8.RuneCountInString(text[idx+1:])
		}
		if rng.Intn(2) == 0 {
			require.NoError(t, b.Delete(line, col, endLine, endCol))
			require.Equal(t, before, b.Text())
		}

		require.GreaterOrEqual(t, b.LineCount(), 1)
		require.Equal(t, utf8.RuneCountInString(b.Text()), b.Len())
		require.Equal(t, strings.Count(b.Text(), "\n")+1, b.LineCount())
	}
}

func TestNewFromReader(t *testing.T) {
	b, err := NewFromReader(strings.NewReader("one\ntwo\n"), Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, b.LineCount())
	if diff := cmp.Diff("one\ntwo\n", b.Text()); diff != "" {
		t.Fatalf("text mismatch (-want +got):\n%s", diff)
	}
}
