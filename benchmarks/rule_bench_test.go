// Package benchmarks provides rule selection benchmarks.
package benchmarks

import (
	"fmt"
	"testing"

	"github.com/comalice/lsystemx/testutil"
)

// BenchmarkOrderedRules measures a pass where each occurrence tries n guarded rules.
func BenchmarkOrderedRules(b *testing.B) {
	for _, n := range []int{1, 8, 64} {
		b.Run(fmt.Sprintf("rules=%d", n), func(b *testing.B) {
			e, axiom := MustCompile(GenWideRules(n))
			if _, err := e.Iterate(axiom, 0); err != nil {
				b.Fatal(err)
			}
			b.ReportAllocs()
			b.ResetTimer()
			for range b.N {
				if _, err := e.Iterate(nil, 1); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkStochasticRules(b *testing.B) {
	e, axiom := MustCompile(testutil.Stochastic(3))
	if _, err := e.Iterate(axiom, 5); err != nil {
		b.Fatal(err)
	}
	big := e.Current()
	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		if _, err := e.Iterate(big, 1); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkContextRules(b *testing.B) {
	cfg := GenChainConfig(3)
	for i := range cfg.Rules {
		cfg.Rules[i].Left = cfg.Rules[(i+2)%3].Subject
	}
	// Without a left neighbour the first module never matches, so seed with a pair.
	cfg.Axiom = "cab"
	e, axiom := MustCompile(cfg)
	if _, err := e.Iterate(axiom, 12); err != nil {
		b.Fatal(err)
	}
	big := e.Current()
	b.ReportAllocs()
	b.ResetTimer()
	for range b.N {
		if _, err := e.Iterate(big, 1); err != nil {
			b.Fatal(err)
		}
	}
}
