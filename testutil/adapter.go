package testutil

import (
	"context"
	"time"

	"github.com/comalice/lsystemx/internal/core"
	"github.com/comalice/lsystemx/internal/grammar"
	"github.com/comalice/lsystemx/internal/primitives"
	"github.com/comalice/lsystemx/internal/sequence"
	"github.com/comalice/lsystemx/realtime"
)

// GrowthAdapter provides a common interface for direct and tick-based growth.
// This allows running the same test suite against both.
type GrowthAdapter interface {
	Grow(ctx context.Context, generations int) error
	Current() *sequence.Sequence
	Generation() int
}

// DirectAdapter calls Engine.IterateContext.
type DirectAdapter struct {
	engine *core.Engine
	axiom  *sequence.Sequence
}

// NewDirectAdapter compiles cfg for direct iteration.
func NewDirectAdapter(cfg *primitives.GrammarConfig, opts ...core.Option) (*DirectAdapter, error) {
	e, axiom, err := grammar.Compile(cfg, grammar.WithEngineOptions(opts...))
	if err != nil {
		return nil, err
	}
	return &DirectAdapter{engine: e, axiom: axiom}, nil
}

func (a *DirectAdapter) Grow(ctx context.Context, generations int) error {
	_, err := a.engine.IterateContext(ctx, a.axiom, generations)
	return err
}

func (a *DirectAdapter) Current() *sequence.Sequence { return a.engine.Current() }
func (a *DirectAdapter) Generation() int             { return a.engine.Generation() }

// TickAdapter grows through a realtime.Grower.
type TickAdapter struct {
	engine   *core.Engine
	axiom    *sequence.Sequence
	tickRate time.Duration
}

// NewTickAdapter compiles cfg for tick-driven growth.
func NewTickAdapter(cfg *primitives.GrammarConfig, tickRate time.Duration, opts ...core.Option) (*TickAdapter, error) {
	e, axiom, err := grammar.Compile(cfg, grammar.WithEngineOptions(opts...))
	if err != nil {
		return nil, err
	}
	return &TickAdapter{engine: e, axiom: axiom, tickRate: tickRate}, nil
}

// Grow runs a Grower capped at generations and waits for it to finish.
func (a *TickAdapter) Grow(ctx context.Context, generations int) error {
	if generations == 0 {
		_, err := a.engine.IterateContext(ctx, a.axiom, 0)
		return err
	}
	g := realtime.NewGrower(a.engine, a.axiom, realtime.Config{
		TickRate:       a.tickRate,
		MaxGenerations: generations,
	})
	if err := g.Start(ctx); err != nil {
		return err
	}
	select {
	case <-g.Done():
	case <-ctx.Done():
	}
	if err := g.Stop(); err != nil {
		return err
	}
	return ctx.Err()
}

func (a *TickAdapter) Current() *sequence.Sequence { return a.engine.Current() }
func (a *TickAdapter) Generation() int             { return a.engine.Generation() }
