package realtime

import (
	"context"
)

// processTick applies queued edits, grows one generation and notifies callbacks.
// It reports whether another tick should follow.
func (g *Grower) processTick(ctx context.Context) bool {
	if g.capped() {
		return false
	}

	// Phase 1: collect and order edits
	edits := g.collectEdits()
	sortEdits(edits)

	// Phase 2: apply them between generations
	for _, em := range edits {
		if err := em.Edit(g.engine); err != nil {
			g.logger.Warn("edit rejected", "seq", em.SequenceNum, "err", err)
		}
	}

	// Phase 3: one generation
	stable, err := g.engine.IterateContext(ctx, nil, 1)
	if err != nil {
		if ctx.Err() == nil {
			g.logger.Error("generation failed", "err", err)
			g.fail(err)
		}
		return false
	}

	g.mu.Lock()
	g.tickNum++
	frame := Frame{Tick: g.tickNum, Generation: g.engine.Generation(), Sequence: g.engine.Current(), Stable: stable}
	callbacks := append([]func(Frame)(nil), g.callbacks...)
	g.mu.Unlock()

	// Phase 4: notify
	for _, fn := range callbacks {
		fn(frame)
	}
	g.logger.Debug("tick", "tick", frame.Tick, "generation", frame.Generation, "length", frame.Sequence.Len())

	if stable {
		g.logger.Info("stable", "generation", frame.Generation)
		return false
	}
	return !g.capped()
}

// collectEdits atomically retrieves and clears the edit queue
func (g *Grower) collectEdits() []EditWithMeta {
	g.mu.Lock()
	defer g.mu.Unlock()
	edits := g.edits
	g.edits = make([]EditWithMeta, 0, cap(g.edits))
	return edits
}
