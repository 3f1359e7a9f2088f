// Package event is a small synchronous event bus. Documents publish their
// changes on it so plugins and tools can follow along without registering as
// buffer listeners.
package event

import (
	"github.com/google/uuid"

	"github.com/bethropolis/tide/internal/buffer"
)

// Type identifies the kind of event.
type Type int

const (
	TypeUnknown Type = iota

	// Document events
	TypeTextInserted // text was inserted (including undo/redo replays)
	TypeTextDeleted  // text was removed (including undo/redo replays)
	TypeUndo         // an undo step completed
	TypeRedo         // a redo step completed

	// Background analysis
	TypeAnalysisReady // a complete token set was published

	// Plugin lifecycle
	TypePluginsReady
	TypeShutdown
)

func (t Type) String() string {
	switch t {
	case TypeTextInserted:
		return "text-inserted"
	case TypeTextDeleted:
		return "text-deleted"
	case TypeUndo:
		return "undo"
	case TypeRedo:
		return "redo"
	case TypeAnalysisReady:
		return "analysis-ready"
	case TypePluginsReady:
		return "plugins-ready"
	case TypeShutdown:
		return "shutdown"
	default:
		return "unknown"
	}
}

// Event is the structure passed through the bus.
type Event struct {
	Type Type
	Data interface{}
}

// TextChangedData is the payload of TypeTextInserted and TypeTextDeleted.
type TextChangedData struct {
	DocumentID uuid.UUID
	Edit       buffer.Edit
	Version    uint64
}

// HistoryData is the payload of TypeUndo and TypeRedo.
type HistoryData struct {
	DocumentID  uuid.UUID
	Description string
}

// AnalysisReadyData is the payload of TypeAnalysisReady.
type AnalysisReadyData struct {
	DocumentID uuid.UUID
	Version    uint64
	Language   string
	Tokens     int
}
