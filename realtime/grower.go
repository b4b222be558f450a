package realtime

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/comalice/lsystemx/internal/core"
	"github.com/comalice/lsystemx/internal/sequence"
)

// ErrQueueFull is returned by Submit when a tick's edit budget is used up.
var ErrQueueFull = errors.New("edit queue full")

// Config configures a Grower.
type Config struct {
	TickRate        time.Duration // time between generations (default 100ms)
	MaxGenerations  int           // stop after this many generations; 0 means until stable
	MaxEditsPerTick int           // edit queue capacity (default 64)
	Logger          *log.Logger
}

// Frame is what OnGeneration callbacks see after each tick.
type Frame struct {
	Tick       uint64
	Generation int
	Sequence   *sequence.Sequence
	Stable     bool
}

// Grower steps an engine one generation per tick.
type Grower struct {
	engine *core.Engine
	axiom  *sequence.Sequence
	cfg    Config
	logger *log.Logger

	mu        sync.Mutex
	edits     []EditWithMeta
	seqNum    uint64
	tickNum   uint64
	callbacks []func(Frame)
	err       error

	ticker  *time.Ticker
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
}

// NewGrower creates a Grower. A nil axiom continues from the engine's current
// sequence.
func NewGrower(e *core.Engine, axiom *sequence.Sequence, cfg Config) *Grower {
	if cfg.TickRate <= 0 {
		cfg.TickRate = 100 * time.Millisecond
	}
	if cfg.MaxEditsPerTick <= 0 {
		cfg.MaxEditsPerTick = 64
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Grower{
		engine:  e,
		axiom:   axiom,
		cfg:     cfg,
		logger:  logger.With("component", "grower"),
		edits:   make([]EditWithMeta, 0, cfg.MaxEditsPerTick),
		stopped: make(chan struct{}),
	}
}

// OnGeneration registers a callback run after every tick. Register before Start.
func (g *Grower) OnGeneration(fn func(Frame)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.callbacks = append(g.callbacks, fn)
}

// Start adopts the axiom and begins ticking.
func (g *Grower) Start(ctx context.Context) error {
	if g.ctx != nil {
		return errors.New("grower already started")
	}
	if g.axiom != nil {
		if _, err := g.engine.IterateContext(ctx, g.axiom, 0); err != nil {
			return err
		}
	} else if g.engine.Current() == nil {
		return errors.New("grower has no axiom and the engine has no current sequence")
	}

	g.ctx, g.cancel = context.WithCancel(ctx)
	if g.capped() {
		g.logger.Info("generation cap already reached", "generation", g.engine.Generation())
		g.cancel()
		close(g.stopped)
		return nil
	}
	g.ticker = time.NewTicker(g.cfg.TickRate)
	go g.tickLoop()
	return nil
}

func (g *Grower) capped() bool {
	return g.cfg.MaxGenerations > 0 && g.engine.Generation() >= g.cfg.MaxGenerations
}

// Stop ends the tick loop and waits for it to exit. It returns the error that ended
// growth, if any.
func (g *Grower) Stop() error {
	if g.cancel == nil {
		return nil
	}
	g.cancel()
	<-g.stopped
	return g.Err()
}

// Done is closed once the loop exits: stable, capped, stopped or failed.
func (g *Grower) Done() <-chan struct{} { return g.stopped }

// Err reports the error that stopped growth.
func (g *Grower) Err() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.err
}

// Submit queues an edit for the next tick.
func (g *Grower) Submit(edit Edit) error { return g.SubmitWithPriority(edit, 0) }

// SubmitWithPriority queues an edit; higher priorities apply first.
func (g *Grower) SubmitWithPriority(edit Edit, priority int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.edits) >= cap(g.edits) {
		return ErrQueueFull
	}
	g.edits = append(g.edits, EditWithMeta{Edit: edit, SequenceNum: g.seqNum, Priority: priority})
	g.seqNum++
	return nil
}

// TickNumber returns how many ticks have run.
func (g *Grower) TickNumber() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.tickNum
}

func (g *Grower) tickLoop() {
	defer close(g.stopped)
	defer g.ticker.Stop()
	defer g.cancel()

	for {
		select {
		case <-g.ctx.Done():
			return
		case <-g.ticker.C:
			if !g.safeTick() {
				return
			}
		}
	}
}

// safeTick runs one tick, turning a panicking handler or callback into an error.
func (g *Grower) safeTick() (more bool) {
	defer func() {
		if r := recover(); r != nil {
			g.logger.Error("tick panicked", "tick", g.TickNumber(), "panic", r)
			g.fail(errors.New("tick panicked"))
			more = false
		}
	}()
	return g.processTick(g.ctx)
}

func (g *Grower) fail(err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.err == nil {
		g.err = err
	}
}
