// Package core provides the rewriting engine: the rule registry, generation-by-generation
// rewriting and command dispatch over the final sequence.
// Dependencies: internal/primitives, internal/sequence.
//go:generate go test ./... -race

package core

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/comalice/lsystemx/internal/primitives"
	"github.com/comalice/lsystemx/internal/sequence"
)

// Engine owns an alphabet and a ruleset and rewrites a sequence one generation at a
// time. Every pass reads only the previous generation, so all occurrences are
// rewritten simultaneously.
// Safe for concurrent use; handlers, post-processors and procedures must not call
// back into the engine.
type Engine struct {
	mu         sync.RWMutex
	alpha      *primitives.Alphabet
	rules      *Ruleset
	current    *sequence.Sequence
	generation int
	stable     bool

	rng        *rand.Rand
	workers    int
	logger     *log.Logger
	runner     CommandRunner
	persister  Persister
	publishers []Publisher
	post       []PostProcessor
	history    *History
	runID      string
	grammarID  string
}

// NewEngine creates an engine over alpha. A nil alpha starts an empty, modifiable one.
func NewEngine(alpha *primitives.Alphabet, opts ...Option) *Engine {
	if alpha == nil {
		alpha, _ = primitives.NewAlphabet()
	}
	e := &Engine{
		alpha:   alpha,
		rules:   NewRuleset(),
		rng:     rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
		workers: 1,
		logger:  log.New(io.Discard),
		runner:  procedureRunner{},
		history: NewHistory(0),
		runID:   uuid.NewString(),
	}

	// Apply functional options
	for _, opt := range opts {
		opt(e)
	}

	return e
}

// procedureRunner calls the module's procedure directly.
type procedureRunner struct{}

func (procedureRunner) Run(_ context.Context, m primitives.Module) error {
	if proc := m.Symbol().Procedure(); proc != nil {
		proc(m.Args())
	}
	return nil
}

// AddSymbol registers a prebuilt symbol in the engine's alphabet.
func (e *Engine) AddSymbol(sym *primitives.Symbol) (*primitives.Symbol, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alpha.Add(sym)
}

// DefineSymbol builds and registers a symbol in the engine's alphabet.
func (e *Engine) DefineSymbol(glyph rune, opts ...primitives.SymbolOption) (*primitives.Symbol, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.alpha.Define(glyph, opts...)
}

// DropSymbol removes a symbol that no rule and no module of the current sequence uses.
func (e *Engine) DropSymbol(key string) (*primitives.Symbol, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.alpha.Final() {
		return nil, fmt.Errorf("%w: cannot drop %q", primitives.ErrPermission, key)
	}
	sym, err := e.alpha.Get(key)
	if err != nil {
		return nil, err
	}
	if e.rules.Has(sym.Glyph()) {
		return nil, fmt.Errorf("%w: symbol %q is the subject of %d rules", primitives.ErrConfiguration, sym.Name(), len(e.rules.For(sym.Glyph())))
	}
	if e.current != nil {
		for _, m := range e.current.Modules() {
			if m.Glyph() == sym.Glyph() {
				return nil, fmt.Errorf("%w: symbol %q occurs in the current sequence", primitives.ErrValidation, sym.Name())
			}
		}
	}
	return e.alpha.Drop(key)
}

// Symbol resolves a symbol by glyph or name.
func (e *Engine) Symbol(key string) (*primitives.Symbol, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.alpha.Get(key)
}

// LookupSymbol is Symbol that reports a miss as ok == false.
func (e *Engine) LookupSymbol(key string) (*primitives.Symbol, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.alpha.Lookup(key)
}

// AddRule registers a production for the symbol named by subject. Rules of one subject
// are tried in registration order unless they all carry weights, in which case one
// is drawn per occurrence.
func (e *Engine) AddRule(subject string, h Handler, opts ...RuleOption) (*Rule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	sym, err := e.alpha.Get(subject)
	if err != nil {
		return nil, err
	}
	if h == nil {
		return nil, fmt.Errorf("%w: nil handler for %q", primitives.ErrValidation, sym.Name())
	}
	r := &Rule{subject: sym, handler: h}
	for _, opt := range opts {
		opt(r)
	}
	if r.pre < 0 || r.post < 0 {
		return nil, fmt.Errorf("%w: context widths must be non-negative, got pre=%d post=%d", primitives.ErrValidation, r.pre, r.post)
	}
	if r.weight != nil {
		if err := validateWeight(*r.weight); err != nil {
			return nil, err
		}
	}
	if r.name == "" {
		r.name = e.defaultRuleName(sym)
	}
	if err := e.rules.Add(r); err != nil {
		return nil, err
	}
	return r, nil
}

func (e *Engine) defaultRuleName(sym *primitives.Symbol) string {
	for n := len(e.rules.For(sym.Glyph())) + 1; ; n++ {
		name := fmt.Sprintf("%s/%d", sym.Name(), n)
		if _, err := e.rules.Get(name); err != nil {
			return name
		}
	}
}

// DropRule removes a rule by name.
func (e *Engine) DropRule(name string) (*Rule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.Drop(name)
}

// SetRuleWeight changes the weight of a stochastic rule.
func (e *Engine) SetRuleWeight(name string, w float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.SetWeight(name, w)
}

// ClearRuleWeight removes a rule's weight. See Ruleset.ClearWeight.
func (e *Engine) ClearRuleWeight(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rules.ClearWeight(name)
}

// Rule resolves a rule by name.
func (e *Engine) Rule(name string) (*Rule, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules.Get(name)
}

// LookupRule is Rule that reports a miss as ok == false.
func (e *Engine) LookupRule(name string) (*Rule, bool) {
	r, err := e.Rule(name)
	return r, err == nil
}

// RulesFor returns the rules of a subject in registration order. A known symbol with
// no rules yields an empty slice.
func (e *Engine) RulesFor(key string) ([]*Rule, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	sym, err := e.alpha.Get(key)
	if err != nil {
		return nil, err
	}
	return e.rules.For(sym.Glyph()), nil
}

// LookupRulesFor is RulesFor that reports an unknown symbol as ok == false.
func (e *Engine) LookupRulesFor(key string) ([]*Rule, bool) {
	rules, err := e.RulesFor(key)
	return rules, err == nil
}

// Rules returns every rule in registration order.
func (e *Engine) Rules() []*Rule {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.rules.Rules()
}

// Variables returns the symbols that have at least one rule, in alphabet order.
func (e *Engine) Variables() []*primitives.Symbol { return e.partition(true) }

// Constants returns the symbols without rules, in alphabet order.
func (e *Engine) Constants() []*primitives.Symbol { return e.partition(false) }

func (e *Engine) partition(variables bool) []*primitives.Symbol {
	e.mu.RLock()
	defer e.mu.RUnlock()
	var out []*primitives.Symbol
	for s := range e.alpha.All() {
		if e.rules.Has(s.Glyph()) == variables {
			out = append(out, s)
		}
	}
	return out
}

// Alphabet returns the engine's alphabet.
func (e *Engine) Alphabet() *primitives.Alphabet {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.alpha
}

// Has reports whether key names a symbol (by glyph or name) or a rule.
func (e *Engine) Has(key string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.alpha.Has(key) {
		return true
	}
	_, err := e.rules.Get(key)
	return err == nil
}

// Current returns a copy of the current sequence, or nil before the first Iterate.
func (e *Engine) Current() *sequence.Sequence {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.current == nil {
		return nil
	}
	return e.current.Copy()
}

// Generation returns the index of the current sequence; the axiom is generation 0.
func (e *Engine) Generation() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.generation
}

// Stable reports whether the last pass left the sequence unchanged.
func (e *Engine) Stable() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.stable
}

// RunID identifies this run in snapshots and events.
func (e *Engine) RunID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.runID
}

// Iterate rewrites up to generations times. A non-nil axiom restarts the run from it;
// otherwise the current sequence is continued. It returns true as soon as a pass
// changes nothing.
func (e *Engine) Iterate(axiom *sequence.Sequence, generations int) (bool, error) {
	return e.IterateContext(context.Background(), axiom, generations)
}

// IterateContext is Iterate with a context that is checked between generations and
// handed to persisters and publishers.
func (e *Engine) IterateContext(ctx context.Context, axiom *sequence.Sequence, generations int) (bool, error) {
	if generations < 0 {
		return false, fmt.Errorf("%w: generations must be non-negative, got %d", primitives.ErrValidation, generations)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if axiom != nil {
		seed, err := e.adopt(axiom)
		if err != nil {
			return false, fmt.Errorf("axiom: %w", err)
		}
		e.current, e.generation, e.stable = seed, 0, false
		e.history.Clear()
		e.history.Record(0, seed)
	} else if e.current == nil {
		return false, fmt.Errorf("%w: no axiom and no current sequence", primitives.ErrValidation)
	}

	for range generations {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		start := time.Now()
		next, fired, err := e.rewrite(ctx, e.current)
		if err != nil {
			return false, fmt.Errorf("generation %d: %w", e.generation+1, err)
		}
		stable := next.Equal(e.current)
		event := GenerationEvent{
			RunID:     e.runID,
			GrammarID: e.grammarID,
			Length:    next.Len(),
			Fired:     fired,
			Stable:    stable,
			Duration:  time.Since(start),
			Timestamp: time.Now(),
		}

		e.stable = stable
		if !stable {
			e.current = next
			e.generation++
			e.history.Record(e.generation, next)
			for _, fn := range e.post {
				fn(e.generation, next.Copy())
			}
		}
		event.Generation = e.generation
		e.logger.Debug("pass", "generation", e.generation, "length", event.Length, "fired", fired, "stable", stable)

		if err := e.persist(ctx); err != nil {
			return false, err
		}
		e.publish(ctx, event)
		if stable {
			return true, nil
		}
	}
	return false, nil
}

// adopt binds an axiom to the engine alphabet, rebinding modules from a compatible one.
func (e *Engine) adopt(axiom *sequence.Sequence) (*sequence.Sequence, error) {
	if axiom.Alphabet() == e.alpha {
		return axiom.Copy(), nil
	}
	seed := sequence.New(e.alpha)
	if err := seed.AppendSequence(axiom); err != nil {
		return nil, err
	}
	return seed, nil
}

// rewrite builds the next generation from cur. Stochastic draws happen up front in
// sequence order, so the outcome does not depend on the worker count.
func (e *Engine) rewrite(ctx context.Context, cur *sequence.Sequence) (*sequence.Sequence, int, error) {
	mods := cur.Modules()
	plans := make([][]*Rule, len(mods))
	for i, m := range mods {
		plans[i] = e.rules.candidates(m.Glyph(), e.rng)
	}

	results := make([]Result, len(mods))
	eval := func(i int) error {
		for _, r := range plans[i] {
			res, err := r.Apply(mods, i)
			if err != nil {
				return fmt.Errorf("rule %q at index %d: %w", r.name, i, err)
			}
			if res.matched {
				results[i] = res
				return nil
			}
		}
		return nil
	}

	if e.workers <= 1 || len(mods) < 2 {
		for i := range mods {
			if err := eval(i); err != nil {
				return nil, 0, err
			}
		}
	} else {
		g, gCtx := errgroup.WithContext(ctx)
		g.SetLimit(e.workers)
		chunk := (len(mods) + e.workers - 1) / e.workers
		for lo := 0; lo < len(mods); lo += chunk {
			hi := min(lo+chunk, len(mods))
			g.Go(func() error {
				for i := lo; i < hi; i++ {
					if err := gCtx.Err(); err != nil {
						return err
					}
					if err := eval(i); err != nil {
						return err
					}
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, 0, err
		}
	}

	b := sequence.NewBuilder(e.alpha, len(mods))
	fired := 0
	for i, m := range mods {
		if !results[i].matched {
			if err := b.Add(m); err != nil {
				return nil, 0, fmt.Errorf("index %d: %w", i, err)
			}
			continue
		}
		fired++
		for _, out := range results[i].mods {
			if err := b.Add(out); err != nil {
				return nil, 0, fmt.Errorf("replacement for index %d: %w", i, err)
			}
		}
	}
	return b.Build(), fired, nil
}

func (e *Engine) persist(ctx context.Context) error {
	if e.persister == nil {
		return nil
	}
	snapshot := e.snapshot()
	if err := e.persister.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("persist generation %d: %w", e.generation, err)
	}
	return nil
}

func (e *Engine) publish(ctx context.Context, event GenerationEvent) {
	for _, pb := range e.publishers {
		if err := pb.Publish(ctx, event); err != nil {
			e.logger.Warn("publish failed", "generation", event.Generation, "err", err)
		}
	}
}

func (e *Engine) snapshot() GenerationSnapshot {
	return GenerationSnapshot{
		RunID:      e.runID,
		GrammarID:  e.grammarID,
		Generation: e.generation,
		Sequence:   e.current.String(),
		Stable:     e.stable,
		Timestamp:  time.Now(),
	}
}

// Snapshot returns the serializable state of the current generation.
func (e *Engine) Snapshot() (GenerationSnapshot, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.current == nil {
		return GenerationSnapshot{}, fmt.Errorf("%w: no current sequence", primitives.ErrValidation)
	}
	return e.snapshot(), nil
}

// Restore resumes a run from a snapshot taken by an engine with the same alphabet.
func (e *Engine) Restore(snapshot GenerationSnapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.grammarID != "" && snapshot.GrammarID != "" && e.grammarID != snapshot.GrammarID {
		return fmt.Errorf("%w: have %q, snapshot %q", ErrSnapshotMismatch, e.grammarID, snapshot.GrammarID)
	}
	seq, err := sequence.Parse(e.alpha, snapshot.Sequence)
	if err != nil {
		return fmt.Errorf("restore generation %d: %w", snapshot.Generation, err)
	}
	e.current, e.generation, e.stable = seq, snapshot.Generation, snapshot.Stable
	if snapshot.RunID != "" {
		e.runID = snapshot.RunID
	}
	e.history.Clear()
	e.history.Record(e.generation, seq)
	return nil
}

// Rewind makes a generation kept by WithHistory current again.
func (e *Engine) Rewind(generation int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	seq, ok := e.history.Restore(generation)
	if !ok {
		return fmt.Errorf("%w: generation %d is not in history (have %v)", primitives.ErrNotFound, generation, e.history.Generations())
	}
	e.current, e.generation, e.stable = seq, generation, false
	return nil
}

// History lists the generations available to Rewind.
func (e *Engine) History() []int { return e.history.Generations() }

// Execute walks the current sequence and hands each module to the command runner, in
// order. The default runner calls the symbol's procedure and skips modules without
// one. The context is checked between modules.
func (e *Engine) Execute(ctx context.Context) error {
	cur := e.Current()
	if cur == nil {
		return fmt.Errorf("%w: nothing to execute", primitives.ErrValidation)
	}
	e.mu.RLock()
	runner := e.runner
	e.mu.RUnlock()

	for i, m := range cur.All() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runner.Run(ctx, m); err != nil {
			return fmt.Errorf("execute %s at index %d: %w", m, i, err)
		}
	}
	return nil
}

func (e *Engine) String() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	length := 0
	if e.current != nil {
		length = e.current.Len()
	}
	return fmt.Sprintf("lsystem[symbols=%d, rules=%d, generation=%d, length=%d]",
		e.alpha.Len(), e.rules.Len(), e.generation, length)
}
