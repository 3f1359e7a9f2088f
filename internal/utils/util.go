// Package utils holds small helpers shared across packages.
package utils

import (
	"sync"
	"time"
)

// Debouncer runs a function once calls have stopped arriving for a while.
type Debouncer struct {
	mutex sync.Mutex
	timer *time.Timer
}

// Debounce calls fn after duration, canceling any call still pending. A
// non-positive duration runs fn immediately on the calling goroutine.
func (d *Debouncer) Debounce(duration time.Duration, fn func()) {
	d.mutex.Lock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	if duration <= 0 {
		d.mutex.Unlock()
		fn()
		return
	}
	d.timer = time.AfterFunc(duration, func() {
		d.mutex.Lock()
		d.timer = nil
		d.mutex.Unlock()
		fn()
	})
	d.mutex.Unlock()
}

// Stop cancels a pending call. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	return stopped
}
