package core

import (
	"github.com/bethropolis/tide/internal/buffer"
	"github.com/bethropolis/tide/internal/event"
)

// forwarder republishes buffer changes on the document's event manager.
type forwarder struct {
	doc *Document
}

func (f *forwarder) BeforeReplace(*buffer.Buffer) {}

func (f *forwarder) AfterInsert(b *buffer.Buffer, e buffer.Edit) {
	f.doc.dispatch(event.TypeTextInserted, event.TextChangedData{DocumentID: f.doc.id, Edit: e, Version: b.Version()})
}

func (f *forwarder) AfterDelete(b *buffer.Buffer, e buffer.Edit) {
	f.doc.dispatch(event.TypeTextDeleted, event.TextChangedData{DocumentID: f.doc.id, Edit: e, Version: b.Version()})
}

func (d *Document) dispatch(t event.Type, data interface{}) {
	if d.events != nil {
		d.events.Dispatch(t, data)
	}
}
