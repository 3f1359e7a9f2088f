package buffer

import "fmt"

// Origin tells listeners why an edit happened.
type Origin int

const (
	// OriginEdit is a regular edit issued by a caller.
	OriginEdit Origin = iota
	// OriginReplay is an edit applied through a Replay guard (undo/redo).
	OriginReplay
)

// Edit is the payload of an after-notification. Coordinates are those of the
// range before the mutation for a delete and of the inserted range for an
// insert; Text is exactly the text that was inserted or removed. That is
// enough for a listener to replay the edit on its own shadow state.
type Edit struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	Text      string
	Origin    Origin
}

func (e Edit) String() string {
	return fmt.Sprintf("%d:%d-%d:%d %q", e.StartLine, e.StartCol, e.EndLine, e.EndCol, e.Text)
}

// ChangeListener is notified around every mutation. Callbacks run
// synchronously on the mutating goroutine and must not retain the *Buffer
// beyond the call unless they are the buffer's owner.
type ChangeListener interface {
	// BeforeReplace runs on the unmodified buffer before the delete half of a replace.
	BeforeReplace(b *Buffer)
	AfterInsert(b *Buffer, e Edit)
	AfterDelete(b *Buffer, e Edit)
}

// PositionTracker is the role of collaborators that keep positions (carets,
// marks) valid across edits. Trackers also see the "before" side of inserts
// and deletes, which plain listeners do not.
type PositionTracker interface {
	ChangeListener
	BeforeInsert(b *Buffer, line, col int, text string)
	BeforeDelete(b *Buffer, startLine, startCol, endLine, endCol int)
}

// SetRecorder installs the edit log. It is always notified first. Passing nil
// detaches it.
func (b *Buffer) SetRecorder(r ChangeListener) {
	b.recorder = r
}

// AddTracker registers a position tracker. Trackers run after the recorder
// and before the indexer. Registering twice is a no-op.
func (b *Buffer) AddTracker(t PositionTracker) error {
	if t == nil {
		return fmt.Errorf("add tracker: %w", ErrInvalidArgument)
	}
	for _, existing := range b.trackers {
		if existing == t {
			return nil
		}
	}
	b.trackers = append(b.trackers, t)
	return nil
}

// RemoveTracker unregisters a tracker. Unknown trackers are ignored.
func (b *Buffer) RemoveTracker(t PositionTracker) {
	for i, existing := range b.trackers {
		if existing == t {
			b.trackers = append(b.trackers[:i:i], b.trackers[i+1:]...)
			return
		}
	}
}

// AddListener registers an external listener. Listeners run last, in
// registration order. Registering the same listener twice is a no-op.
func (b *Buffer) AddListener(l ChangeListener) error {
	if l == nil {
		return fmt.Errorf("add listener: %w", ErrInvalidArgument)
	}
	for _, existing := range b.listeners {
		if existing == l {
			return nil
		}
	}
	b.listeners = append(b.listeners, l)
	return nil
}

// RemoveListener unregisters a listener. Removing an unknown listener is a no-op.
func (b *Buffer) RemoveListener(l ChangeListener) {
	for i, existing := range b.listeners {
		if existing == l {
			// Copy so a dispatch already iterating the old slice is unaffected.
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

// --- dispatch, in fixed order: recorder, trackers, indexer, listeners ---

func (b *Buffer) notifyBeforeReplace() {
	if b.recorder != nil {
		b.recorder.BeforeReplace(b)
	}
	for _, t := range b.trackers {
		t.BeforeReplace(b)
	}
	for _, l := range b.listeners {
		l.BeforeReplace(b)
	}
}

func (b *Buffer) notifyBeforeInsert(line, col int, text string) {
	for _, t := range b.trackers {
		t.BeforeInsert(b, line, col, text)
	}
}

func (b *Buffer) notifyBeforeDelete(startLine, startCol, endLine, endCol int) {
	for _, t := range b.trackers {
		t.BeforeDelete(b, startLine, startCol, endLine, endCol)
	}
}

func (b *Buffer) notifyAfterInsert(e Edit) {
	if b.recorder != nil {
		b.recorder.AfterInsert(b, e)
	}
	for _, t := range b.trackers {
		t.AfterInsert(b, e)
	}
	b.indexerAfterEdit(e)
	for _, l := range b.listeners {
		l.AfterInsert(b, e)
	}
}

func (b *Buffer) notifyAfterDelete(e Edit) {
	if b.recorder != nil {
		b.recorder.AfterDelete(b, e)
	}
	for _, t := range b.trackers {
		t.AfterDelete(b, e)
	}
	b.indexerAfterEdit(e)
	for _, l := range b.listeners {
		l.AfterDelete(b, e)
	}
}
