package core

import (
	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/core/history"
	"github.com/bethropolis/tide/internal/event"
)

// Option configures a Document.
type Option func(*options)

type options struct {
	buffer  buffer.Options
	history history.Options
	events  *event.Manager
	text    string
}

func defaultOptions() options {
	return options{
		buffer:  buffer.Options{InitialLineCapacity: buffer.DefaultInitialLineCapacity},
		history: history.DefaultOptions(),
	}
}

// WithInitialLineCapacity pre-sizes the line array.
func WithInitialLineCapacity(n int) Option {
	return func(o *options) { o.buffer.InitialLineCapacity = n }
}

// WithUndoEnabled turns the undo log on or off.
func WithUndoEnabled(enabled bool) Option {
	return func(o *options) { o.history.Enabled = enabled }
}

// WithMaxUndoStackSize limits the undo log. n must be at least 1.
func WithMaxUndoStackSize(n int) Option {
	return func(o *options) { o.history.MaxSize = n }
}

// WithMergeLimit caps the number of characters merged into one undo step.
func WithMergeLimit(n int) Option {
	return func(o *options) { o.history.MergeLimit = n }
}

// WithEventManager publishes document events on m.
func WithEventManager(m *event.Manager) Option {
	return func(o *options) { o.events = m }
}

// WithText seeds the document. Seeding is not recorded in the undo log.
func WithText(text string) Option {
	return func(o *options) { o.text = text }
}
