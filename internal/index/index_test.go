package index

import (
	"errors"
	"math/rand"
	"testing"
	"unicode/utf8"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/tide/internal/types"
)

// lines is a minimal LineSource over fixed strings.
type lines []string

func (l lines) LineCount() int { return len(l) }

func (l lines) ColumnCount(line int) int { return utf8.RuneCountInString(l[line]) }

func (l lines) Len() int {
	n := len(l) - 1
	for _, s := range l {
		n += utf8.RuneCountInString(s)
	}
	return n
}

var sample = lines{"ab", "", "cdé", "f"}

func TestRecomputingPositionOf(t *testing.T) {
	r := NewRecomputing(sample)

	tests := []struct {
		index int
		want  types.Position
	}{
		{0, types.Position{Index: 0, Line: 0, Col: 0}},
		{2, types.Position{Index: 2, Line: 0, Col: 2}},
		{3, types.Position{Index: 3, Line: 1, Col: 0}},
		{4, types.Position{Index: 4, Line: 2, Col: 0}},
		{7, types.Position{Index: 7, Line: 2, Col: 3}},
		{8, types.Position{Index: 8, Line: 3, Col: 0}},
		{9, types.Position{Index: 9, Line: 3, Col: 1}},
	}
	for _, tt := range tests {
		got, err := r.PositionOf(tt.index)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "index %d", tt.index)
	}
}

func TestRecomputingIndexOf(t *testing.T) {
	r := NewRecomputing(sample)

	got, err := r.IndexOf(2, 1)
	require.NoError(t, err)
	assert.Equal(t, 5, got)

	got, err = r.IndexOf(3, 1)
	require.NoError(t, err)
	assert.Equal(t, sample.Len(), got)
}

func TestOutOfRange(t *testing.T) {
	for name, ix := range map[string]Indexer{
		"recomputing": NewRecomputing(sample),
		"cached":      mustCached(t, sample, 0),
	} {
		t.Run(name, func(t *testing.T) {
			_, err := ix.PositionOf(-1)
			assert.True(t, errors.Is(err, ErrOutOfRange))
			_, err = ix.PositionOf(sample.Len() + 1)
			assert.True(t, errors.Is(err, ErrOutOfRange))
			_, err = ix.IndexOf(4, 0)
			assert.True(t, errors.Is(err, ErrOutOfRange))
			_, err = ix.IndexOf(0, 3)
			assert.True(t, errors.Is(err, ErrOutOfRange))
		})
	}
}

func mustCached(t *testing.T, src LineSource, at int) *Cached {
	t.Helper()
	c, err := NewCached(src, at)
	require.NoError(t, err)
	return c
}

func TestCachedMatchesRecomputing(t *testing.T) {
	doc := lines{"package main", "", "func main() {", "\tprintln(\"héllo\")", "}", ""}
	r := NewRecomputing(doc)
	c := mustCached(t, doc, doc.Len()/2)

	rng := rand.New(rand.NewSource(7))
	var want, got []types.Position
	// Forward scan, backward scan, then random jumps.
	var queries []int
	for i := 0; i <= doc.Len(); i++ {
		queries = append(queries, i)
	}
	for i := doc.Len(); i >= 0; i-- {
		queries = append(queries, i)
	}
	for i := 0; i < 200; i++ {
		queries = append(queries, rng.Intn(doc.Len()+1))
	}

	for _, q := range queries {
		w, err := r.PositionOf(q)
		require.NoError(t, err)
		g, err := c.PositionOf(q)
		require.NoError(t, err)
		want = append(want, w)
		got = append(got, g)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("cached indexer disagrees (-recomputing +cached):\n%s", diff)
	}

	for line := range doc {
		for col := 0; col <= doc.ColumnCount(line); col++ {
			w, err := r.IndexOf(line, col)
			require.NoError(t, err)
			g, err := c.IndexOf(line, col)
			require.NoError(t, err)
			assert.Equal(t, w, g, "line %d col %d", line, col)
		}
	}
}

func TestCachedAfterEdit(t *testing.T) {
	doc := lines{"abc", "def"}
	c := mustCached(t, doc, 5)
	assert.Equal(t, types.Position{Index: 5, Line: 1, Col: 1}, c.Last())

	c.AfterEdit(1, 1)
	assert.Equal(t, 5, c.Last().Index, "edit at the cached position keeps the cache")

	c.AfterEdit(0, 2)
	assert.Equal(t, types.Position{}, c.Last(), "edit before the cached position resets it")
}
