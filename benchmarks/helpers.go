// Package benchmarks provides shared helpers for benchmark tests.
package benchmarks

import (
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/comalice/lsystemx/internal/core"
	"github.com/comalice/lsystemx/internal/grammar"
	"github.com/comalice/lsystemx/internal/primitives"
	"github.com/comalice/lsystemx/internal/sequence"
)

// GenChainConfig creates n symbols where each rewrites to itself and its successor,
// so every generation roughly doubles the sequence.
func GenChainConfig(n int) *primitives.GrammarConfig {
	if n < 1 {
		n = 1
	}
	cfg := &primitives.GrammarConfig{
		ID:    fmt.Sprintf("chain_%d", n),
		Axiom: string(glyph(0)),
	}
	for i := range n {
		cfg.Symbols = append(cfg.Symbols, primitives.SymbolConfig{Glyph: string(glyph(i))})
		cfg.Rules = append(cfg.Rules, primitives.RuleConfig{
			Subject: string(glyph(i)),
			Produce: string(glyph(i)) + string(glyph((i+1)%n)),
		})
	}
	return cfg
}

// GenWideRules creates one parametric symbol with n guarded rules; only the last one
// matches, so every occurrence tries them all.
func GenWideRules(n int) *primitives.GrammarConfig {
	if n < 1 {
		n = 1
	}
	cfg := &primitives.GrammarConfig{
		ID:      fmt.Sprintf("wide_%d", n),
		Axiom:   strings.Repeat("A(0)", 64),
		Symbols: []primitives.SymbolConfig{{Glyph: "A", Params: []string{"n:int"}}},
	}
	for i := range n {
		cond := fmt.Sprintf("n == %d", i+1)
		if i == n-1 {
			cond = "n >= 0"
		}
		cfg.Rules = append(cfg.Rules, primitives.RuleConfig{Subject: "A", Condition: cond, Produce: "A(n)"})
	}
	return cfg
}

// MustCompile compiles cfg or panics.
func MustCompile(cfg *primitives.GrammarConfig, opts ...core.Option) (*core.Engine, *sequence.Sequence) {
	e, axiom, err := grammar.Compile(cfg, grammar.WithEngineOptions(opts...))
	if err != nil {
		panic(err)
	}
	return e, axiom
}

// GenSnapshotYAML generates YAML bytes for a snapshot after the given generations of a
// chain grammar.
func GenSnapshotYAML(generations int) []byte {
	e, axiom := MustCompile(GenChainConfig(3))
	if _, err := e.Iterate(axiom, generations); err != nil {
		panic(err)
	}
	snap, err := e.Snapshot()
	if err != nil {
		panic(err)
	}
	snap.Timestamp = time.Time{}
	data, err := yaml.Marshal(snap)
	if err != nil {
		panic(err)
	}
	return data
}

func glyph(i int) rune { return 'a' + rune(i%26) }
