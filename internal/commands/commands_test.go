package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bethropolis/tide/internal/core"
	"github.com/bethropolis/tide/internal/event"
	"github.com/bethropolis/tide/internal/plugin"
)

func newHost(t *testing.T, text string) (*core.Document, *plugin.Host) {
	t.Helper()
	doc, err := core.New(core.WithText(text), core.WithEventManager(event.NewManager()))
	require.NoError(t, err)
	host, err := plugin.NewHost(doc, plugin.NewManager())
	require.NoError(t, err)
	require.NoError(t, Register(host, doc))
	return doc, host
}

func TestParse(t *testing.T) {
	tests := []struct {
		line string
		name string
		args []string
	}{
		{":undo", "undo", []string{}},
		{"  :undo 3 ", "undo", []string{"3"}},
		{"goto 12", "goto", []string{"12"}},
		{":s/a/b/", "s", []string{"/a/b/"}},
		{":%s/a b/c/g", "%s", []string{"/a b/c/g"}},
	}
	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			name, args, err := Parse(tt.line)
			require.NoError(t, err)
			assert.Equal(t, tt.name, name)
			assert.Equal(t, tt.args, args)
		})
	}

	_, _, err := Parse(" : ")
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestBuiltins(t *testing.T) {
	doc, host := newHost(t, "foo = 1\nfoo = foo + 1\nbar")

	require.NoError(t, Execute(host.Execute, ":goto 2"))
	assert.Equal(t, 1, doc.Cursor().Position().Line)

	require.NoError(t, Execute(host.Execute, ":s/foo/x/g"))
	assert.Equal(t, "foo = 1\nx = x + 1\nbar", doc.Text())
	assert.Equal(t, "2 substitutions", host.StatusMessage())

	require.NoError(t, Execute(host.Execute, ":%s/(\\w+) =/$1 :=/"))
	assert.Equal(t, "foo := 1\nx := x + 1\nbar", doc.Text())

	require.NoError(t, Execute(host.Execute, ":undo 2"))
	assert.Equal(t, "foo = 1\nfoo = foo + 1\nbar", doc.Text())
	require.NoError(t, Execute(host.Execute, ":redo"))
	assert.Equal(t, "foo = 1\nx = x + 1\nbar", doc.Text())

	doc.Cursor().SetPosition(0, 0)
	require.NoError(t, Execute(host.Execute, ":find bar"))
	assert.Equal(t, 2, doc.Cursor().Position().Line)
	assert.Equal(t, "1 matches, at 3:1", host.StatusMessage())

	require.NoError(t, Execute(host.Execute, ":find nope"))
	assert.Equal(t, "Pattern not found: nope", host.StatusMessage())

	assert.Error(t, Execute(host.Execute, ":goto zero"))
	assert.Error(t, Execute(host.Execute, ":undo 5"))
	assert.ErrorIs(t, Execute(host.Execute, ":nope"), plugin.ErrUnknownCommand)
}
