// Package history provides the bounded undo/redo stack of the annotation editor.
package history

import (
	"site-mapper/internal/annotation"
)

// MaxHistory is the default number of snapshots retained.
const MaxHistory = 50

// History is a fixed-capacity ring buffer of annotation snapshots.
//
// Entries are addressed by logical index 0..size-1, oldest first; the
// physical slot of logical index i is (head+i) % capacity. step is the
// logical index of the current entry and always satisfies 0 <= step < size.
type History struct {
	entries []annotation.List
	head    int
	size    int
	step    int
}

// New creates a history holding initial as entry 0. A non-positive capacity
// selects MaxHistory.
func New(capacity int, initial annotation.List) *History {
	if capacity <= 0 {
		capacity = MaxHistory
	}
	h := &History{entries: make([]annotation.List, capacity)}
	h.entries[0] = initial.Clone()
	h.size = 1
	return h
}

// Snapshot records list as the newest entry. Entries after the current step
// are discarded first; when the buffer is full the oldest entry is evicted.
func (h *History) Snapshot(list annotation.List) {
	h.size = h.step + 1

	if h.size == len(h.entries) {
		h.entries[h.head] = nil
		h.head = (h.head + 1) % len(h.entries)
		h.size--
	}

	h.entries[h.slot(h.size)] = list.Clone()
	h.size++
	h.step = h.size - 1
}

// Undo moves one entry back and returns a copy of it.
// It returns false when already at the oldest entry.
func (h *History) Undo() (annotation.List, bool) {
	if h.step == 0 {
		return nil, false
	}
	h.step--
	return h.Current(), true
}

// Redo moves one entry forward and returns a copy of it.
// It returns false when already at the newest entry.
func (h *History) Redo() (annotation.List, bool) {
	if h.step == h.size-1 {
		return nil, false
	}
	h.step++
	return h.Current(), true
}

// Current returns a copy of the entry at the current step.
func (h *History) Current() annotation.List {
	return h.entries[h.slot(h.step)].Clone()
}

// Reset discards every entry and starts over from initial.
func (h *History) Reset(initial annotation.List) {
	for i := range h.entries {
		h.entries[i] = nil
	}
	h.head, h.step = 0, 0
	h.entries[0] = initial.Clone()
	h.size = 1
}

func (h *History) CanUndo() bool { return h.step > 0 }
func (h *History) CanRedo() bool { return h.step < h.size-1 }
func (h *History) Len() int      { return h.size }
func (h *History) Step() int     { return h.step }
func (h *History) Capacity() int { return len(h.entries) }

func (h *History) slot(i int) int {
	return (h.head + i) % len(h.entries)
}
