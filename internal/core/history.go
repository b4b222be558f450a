// History retains recent generations so a run can be rewound.
// Thread-safe for concurrent access.
package core

import (
	"sync"

	"github.com/comalice/lsystemx/internal/sequence"
)

// History keeps the most recent generations of a run, oldest first. Entries are
// copy-on-write copies, so retaining them costs no cloning until someone mutates one.
type History struct {
	mu       sync.RWMutex
	capacity int
	entries  []historyEntry
}

type historyEntry struct {
	generation int
	seq        *sequence.Sequence
}

// NewHistory creates a History holding at most capacity generations.
func NewHistory(capacity int) *History {
	return &History{capacity: max(capacity, 0)}
}

// Record stores s as the given generation, evicting the oldest entry when full.
// Recording a generation at or before the newest entry discards the newer ones.
func (h *History) Record(generation int, s *sequence.Sequence) {
	if h.capacity == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for len(h.entries) > 0 && h.entries[len(h.entries)-1].generation >= generation {
		h.entries = h.entries[:len(h.entries)-1]
	}
	if len(h.entries) == h.capacity {
		h.entries = append(h.entries[:0], h.entries[1:]...)
	}
	h.entries = append(h.entries, historyEntry{generation: generation, seq: s.Copy()})
}

// Restore returns a copy of the recorded generation, if still held.
func (h *History) Restore(generation int) (*sequence.Sequence, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.entries {
		if e.generation == generation {
			return e.seq.Copy(), true
		}
	}
	return nil, false
}

// Generations lists the recorded generation numbers, oldest first.
func (h *History) Generations() []int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]int, len(h.entries))
	for i, e := range h.entries {
		out[i] = e.generation
	}
	return out
}

// Clear drops every entry.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.entries = nil
}
