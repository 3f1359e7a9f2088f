package buffer

// Replay applies edits on behalf of the edit log. Edits made through it reach
// listeners with Origin set to OriginReplay, which the log uses to avoid
// recording its own undo and redo. Only one Replay can be open per buffer.
type Replay struct {
	b     *Buffer
	ended bool
}

// BeginReplay opens a replay scope. Close it with End, typically deferred.
func (b *Buffer) BeginReplay() (*Replay, error) {
	if b.replay != nil {
		return nil, ErrReplayActive
	}
	r := &Replay{b: b}
	b.replay = r
	return r, nil
}

// Replaying reports whether a replay scope is open.
func (b *Buffer) Replaying() bool {
	return b.replay != nil
}

// Insert inserts text at (line, col) as a replayed edit.
func (r *Replay) Insert(line, col int, text string) error {
	if r.ended {
		return ErrReplayClosed
	}
	return r.b.insert(line, col, text, OriginReplay)
}

// Delete removes [start, end) as a replayed edit.
func (r *Replay) Delete(startLine, startCol, endLine, endCol int) error {
	if r.ended {
		return ErrReplayClosed
	}
	return r.b.delete(startLine, startCol, endLine, endCol, OriginReplay)
}

// End closes the scope. Calling it more than once is harmless.
func (r *Replay) End() {
	if r.ended {
		return
	}
	r.ended = true
	if r.b.replay == r {
		r.b.replay = nil
	}
}
