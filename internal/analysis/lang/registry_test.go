package lang

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForFile(t *testing.T) {
	r := Default()
	tests := []struct {
		path string
		want string
	}{
		{"main.go", "Go"},
		{"SCRIPT.PY", "Python"},
		{"app.mjs", "JavaScript"},
		{"package.json", "JSON"},
		{"lib.rs", "Rust"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			l := r.ForFile(tt.path)
			require.NotNil(t, l)
			assert.Equal(t, tt.want, l.Name)
		})
	}
	assert.Nil(t, r.ForFile("notes.txt"))
}

func TestDetectFallsBackToContent(t *testing.T) {
	r := Default()

	l := r.Detect("tool", []byte("#!/usr/bin/env python3\nprint('hi')\n"))
	require.NotNil(t, l)
	assert.Equal(t, "Python", l.Name)

	assert.Nil(t, r.Detect("README", []byte("just some words")))
	assert.Equal(t, "plain text", r.Detect("README", nil).String())
}

func TestRegisterOverrides(t *testing.T) {
	r := NewRegistry()
	r.Register(&Language{Name: "A", Extensions: []string{".x"}})
	r.Register(&Language{Name: "B", Extensions: []string{".X"}})

	assert.Equal(t, "B", r.ForFile("f.x").Name)
	assert.Equal(t, "A", r.ForName("a").Name)
	assert.Len(t, r.All(), 2)
}
