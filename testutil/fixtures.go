// Package testutil holds grammar fixtures and adapters shared by tests, benchmarks
// and examples.
package testutil

import (
	"github.com/comalice/lsystemx/internal/primitives"
)

// Algae is Lindenmayer's original system: A -> AB, B -> A.
func Algae() *primitives.GrammarConfig {
	return &primitives.GrammarConfig{
		ID:          "algae",
		Axiom:       "A",
		Generations: 7,
		Symbols:     []primitives.SymbolConfig{{Glyph: "A"}, {Glyph: "B"}},
		Rules: []primitives.RuleConfig{
			{Name: "grow", Subject: "A", Produce: "AB"},
			{Name: "mature", Subject: "B", Produce: "A"},
		},
	}
}

// AlgaeLengths are the sequence lengths of Algae for generations 0 through 7.
var AlgaeLengths = []int{1, 2, 3, 5, 8, 13, 21, 34}

// FractalPlant is the bracketed plant from The Algorithmic Beauty of Plants.
func FractalPlant() *primitives.GrammarConfig {
	return &primitives.GrammarConfig{
		ID:          "fractal-plant",
		Axiom:       "X",
		Generations: 5,
		Symbols: []primitives.SymbolConfig{
			{Glyph: "X", Name: "bud"},
			{Glyph: "F", Name: "forward", Command: "draw"},
			{Glyph: "+", Command: "left"},
			{Glyph: "-", Command: "right"},
			{Glyph: "[", Command: "push"},
			{Glyph: "]", Command: "pop"},
		},
		Rules: []primitives.RuleConfig{
			{Name: "branch", Subject: "X", Produce: "F+[[X]-X]-F[-FX]+X"},
			{Name: "double", Subject: "F", Produce: "FF"},
		},
	}
}

// Stochastic is a two-way weighted branching system with a fixed seed.
func Stochastic(seed uint64) *primitives.GrammarConfig {
	left, right := 2.0, 1.0
	return &primitives.GrammarConfig{
		ID:          "stochastic",
		Axiom:       "F",
		Generations: 4,
		Seed:        seed,
		Symbols: []primitives.SymbolConfig{
			{Glyph: "F", Name: "forward"},
			{Glyph: "+"},
			{Glyph: "-"},
			{Glyph: "["},
			{Glyph: "]"},
		},
		Rules: []primitives.RuleConfig{
			{Name: "lean-left", Subject: "F", Produce: "F[+F]F", Weight: &left},
			{Name: "lean-right", Subject: "F", Produce: "F[-F]F", Weight: &right},
		},
	}
}
