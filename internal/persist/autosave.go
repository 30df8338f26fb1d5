package persist

import (
	"context"
	"sync"
	"time"
)

// DefaultAutoSaveDelay is the quiet period before an auto-save.
const DefaultAutoSaveDelay = 5 * time.Second

// Saver is the save entry point used by AutoSaver; *Bridge implements it.
type Saver interface {
	Save(ctx context.Context, silent bool) error
}

// AutoSaver debounces scene changes into silent saves. Each Notify cancels
// the pending timer and schedules a new one, so a burst of changes yields a
// single save once the scene has been quiet for the delay.
type AutoSaver struct {
	saver Saver
	delay time.Duration

	mu      sync.Mutex
	enabled bool
	timer   *time.Timer
	gen     uint64 // bumped on every schedule or cancel; stale timers compare unequal
	stopped bool
}

// NewAutoSaver creates an enabled auto-saver. A non-positive delay selects
// DefaultAutoSaveDelay.
func NewAutoSaver(s Saver, delay time.Duration) *AutoSaver {
	if delay <= 0 {
		delay = DefaultAutoSaveDelay
	}
	return &AutoSaver{saver: s, delay: delay, enabled: true}
}

// Notify reports that the scene changed and now holds count annotations.
// Empty scenes are never auto-saved.
func (a *AutoSaver) Notify(count int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.cancelLocked()
	if !a.enabled || a.stopped || count <= 0 {
		return
	}

	gen := a.gen
	a.timer = time.AfterFunc(a.delay, func() { a.fire(gen) })
}

func (a *AutoSaver) fire(gen uint64) {
	a.mu.Lock()
	if gen != a.gen || a.stopped {
		a.mu.Unlock()
		return
	}
	a.timer = nil
	a.mu.Unlock()

	// Errors are reported by the saver; auto-save never retries.
	_ = a.saver.Save(context.Background(), true)
}

// SetEnabled turns auto-save on or off. Disabling cancels a pending save.
func (a *AutoSaver) SetEnabled(on bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enabled = on
	if !on {
		a.cancelLocked()
	}
}

// Enabled reports whether auto-save is on.
func (a *AutoSaver) Enabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.enabled
}

// Pending reports whether a save is scheduled.
func (a *AutoSaver) Pending() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.timer != nil
}

// Stop cancels any pending save and ignores further notifications.
func (a *AutoSaver) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.cancelLocked()
	a.stopped = true
}

func (a *AutoSaver) cancelLocked() {
	a.gen++
	if a.timer != nil {
		a.timer.Stop()
		a.timer = nil
	}
}
