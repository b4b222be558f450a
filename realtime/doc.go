// Package realtime grows an L-system on a fixed tick.
//
// A Grower advances its engine by exactly one generation per tick, which suits
// animation and simulation loops that render each generation as a frame:
//   - Edits (rule weight changes, rule swaps) are queued and applied at tick
//     boundaries, never in the middle of a pass
//   - Queued edits are ordered by priority, then submission order
//   - The loop ends on its own once the sequence is stable or a generation cap
//     is reached
//
// # Example Usage
//
//	e, axiom, _ := grammar.Compile(cfg)
//	g := realtime.NewGrower(e, axiom, realtime.Config{
//		TickRate:       100 * time.Millisecond,
//		MaxGenerations: 8,
//	})
//	g.OnGeneration(func(f realtime.Frame) { render(f.Sequence) })
//	g.Start(ctx)
//	<-g.Done()
//
// # Edit Ordering Guarantees
//
// Edits are ordered deterministically using:
//  1. Priority (higher priority applied first)
//  2. Sequence number (FIFO for same priority)
//
// Given the same axiom, seed and sequence of Submit calls between the same ticks,
// a Grower always produces the same frames regardless of wall-clock jitter.
package realtime
