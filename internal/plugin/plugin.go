// Package plugin lets optional features hook into a document through a narrow
// API: reads, edits, events, commands and a status line.
package plugin

import (
	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/event"
	"github.com/bethropolis/tide/internal/types"
)

// CommandFunc is a command registered by a plugin.
type CommandFunc func(args []string) error

// EditorAPI is what plugins may do with the document they are attached to.
type EditorAPI interface {
	// --- Reads ---
	LineCount() int
	LineText(line int) (string, error)
	Text() string
	Snapshot() *buffer.Snapshot

	// --- Edits ---
	Insert(line, col int, text string) error
	Delete(startLine, startCol, endLine, endCol int) error
	Replace(startLine, startCol, endLine, endCol int, text string) error

	// --- Cursor ---
	Cursor() types.Position
	SetCursor(line, col int)

	// --- Events ---
	DispatchEvent(eventType event.Type, data interface{})
	SubscribeEvent(eventType event.Type, handler event.Handler) event.SubscriptionID
	UnsubscribeEvent(id event.SubscriptionID)

	// --- Commands ---
	RegisterCommand(name string, fn CommandFunc) error

	// --- Status ---
	SetStatusMessage(format string, args ...interface{})
}

// Plugin is implemented by every plugin.
type Plugin interface {
	// Name returns the unique name of the plugin.
	Name() string

	// Initialize is called once, after all plugins are registered. Plugins
	// subscribe to events and register commands here.
	Initialize(api EditorAPI) error

	// Shutdown is called once when the host is closing.
	Shutdown() error
}
