// Options for configuring Engine instances.
package core

import (
	"math/rand/v2"

	"github.com/charmbracelet/log"
)

// Option applies configuration to Engine via functional options pattern.
type Option func(*Engine)

// WithLogger sets the logger for per-generation diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithSeed seeds the random source used by stochastic rules.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithRand sets the random source used by stochastic rules.
func WithRand(r *rand.Rand) Option {
	return func(e *Engine) {
		if r != nil {
			e.rng = r
		}
	}
}

// WithWorkers evaluates rule handlers on up to n goroutines per pass. Output does not
// depend on n.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		e.workers = max(n, 1)
	}
}

// WithCommandRunner configures the Engine with a custom CommandRunner.
func WithCommandRunner(r CommandRunner) Option {
	return func(e *Engine) {
		if r != nil {
			e.runner = r
		}
	}
}

// WithPersister configures the Engine with a custom Persister.
func WithPersister(p Persister) Option {
	return func(e *Engine) {
		e.persister = p
	}
}

// WithPublisher adds a Publisher. May be given more than once.
func WithPublisher(pb Publisher) Option {
	return func(e *Engine) {
		if pb != nil {
			e.publishers = append(e.publishers, pb)
		}
	}
}

// WithPostProcessor adds a hook run after each generation that changes the sequence.
// A pass that finds the sequence stable produces no new generation, so the hook is
// not called for it.
func WithPostProcessor(fn PostProcessor) Option {
	return func(e *Engine) {
		if fn != nil {
			e.post = append(e.post, fn)
		}
	}
}

// WithRunID overrides the generated run identifier.
func WithRunID(id string) Option {
	return func(e *Engine) {
		if id != "" {
			e.runID = id
		}
	}
}

// WithGrammarID tags snapshots and events with the grammar they came from.
func WithGrammarID(id string) Option {
	return func(e *Engine) {
		e.grammarID = id
	}
}

// WithHistory keeps the last n generations available to Rewind.
func WithHistory(n int) Option {
	return func(e *Engine) {
		e.history = NewHistory(n)
	}
}
