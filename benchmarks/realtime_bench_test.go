// Package benchmarks provides tick runtime benchmarks.
package benchmarks

import (
	"context"
	"testing"
	"time"

	"github.com/comalice/lsystemx/internal/core"
	"github.com/comalice/lsystemx/realtime"
	"github.com/comalice/lsystemx/testutil"
)

// BenchmarkGrowerTicks measures wall time for a Grower to reach a generation cap at a
// 1ms tick; the floor is MaxGenerations ticks.
func BenchmarkGrowerTicks(b *testing.B) {
	for range b.N {
		e, axiom := MustCompile(testutil.Algae())
		g := realtime.NewGrower(e, axiom, realtime.Config{TickRate: time.Millisecond, MaxGenerations: 10})
		if err := g.Start(context.Background()); err != nil {
			b.Fatal(err)
		}
		<-g.Done()
		if err := g.Stop(); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkGrowerEdits measures queuing edits between ticks.
func BenchmarkGrowerEdits(b *testing.B) {
	e, axiom := MustCompile(testutil.Stochastic(5))
	g := realtime.NewGrower(e, axiom, realtime.Config{TickRate: time.Hour, MaxEditsPerTick: b.N})
	edit := func(e *core.Engine) error { return e.SetRuleWeight("lean-left", 3) }
	b.ReportAllocs()
	for i := range b.N {
		if err := g.SubmitWithPriority(edit, i%4); err != nil {
			b.Fatal(err)
		}
	}
}
