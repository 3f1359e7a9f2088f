package wordcount

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/tide/internal/core"
	"github.com/bethropolis/tide/internal/event"
	"github.com/bethropolis/tide/internal/plugin"
)

func TestLiveCounts(t *testing.T) {
	doc, err := core.New(core.WithText("hello world\n"), core.WithEventManager(event.NewManager()))
	require.NoError(t, err)

	m := plugin.NewManager()
	wc := New().(*WordCount)
	require.NoError(t, m.Register(wc))
	host, err := plugin.NewHost(doc, m)
	require.NoError(t, err)
	require.NoError(t, host.Start())

	assert.Equal(t, Stats{Lines: 2, Words: 2, Chars: 12}, wc.Stats())

	require.NoError(t, doc.Insert(1, 0, "one more\nline"))
	assert.Equal(t, Stats{Lines: 3, Words: 5, Chars: 25}, wc.Stats())

	require.NoError(t, doc.Delete(0, 5, 1, 3))
	assert.Equal(t, Stats{Lines: 2, Words: 3, Chars: 15}, wc.Stats())
	assert.Equal(t, "hello more\nline", doc.Text())

	require.NoError(t, doc.Undo())
	assert.Equal(t, Stats{Lines: 3, Words: 5, Chars: 25}, wc.Stats())

	require.NoError(t, host.Execute("wc", nil))
	assert.Equal(t, "Lines: 3, Words: 5, Chars: 25", host.StatusMessage())

	require.NoError(t, host.Close())
	require.NoError(t, doc.Insert(0, 0, "x"))
	assert.Equal(t, 25, wc.Stats().Chars, "no updates after shutdown")
}
