package realtime

import (
	"sort"

	"github.com/comalice/lsystemx/internal/core"
)

// Edit changes the engine between generations, e.g. re-weighting a rule.
type Edit func(e *core.Engine) error

// EditWithMeta adds sequencing metadata for deterministic ordering
type EditWithMeta struct {
	Edit        Edit
	SequenceNum uint64
	Priority    int
}

// sortEdits orders edits by priority, then FIFO.
func sortEdits(edits []EditWithMeta) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Priority != edits[j].Priority {
			return edits[i].Priority > edits[j].Priority
		}
		return edits[i].SequenceNum < edits[j].SequenceNum
	})
}
