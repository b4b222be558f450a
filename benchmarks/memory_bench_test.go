// Package benchmarks provides memory footprint benchmarks.
package benchmarks

import (
	"fmt"
	"runtime"
	"testing"

	"github.com/comalice/lsystemx/internal/core"
	"gopkg.in/yaml.v3"
)

// BenchmarkSequenceMemory reports heap bytes per module for generations of growing size.
func BenchmarkSequenceMemory(b *testing.B) {
	for _, gens := range []int{8, 12, 16} {
		b.Run(fmt.Sprintf("generations=%d", gens), func(b *testing.B) {
			e, axiom := MustCompile(GenChainConfig(2))
			for range b.N {
				var before runtime.MemStats
				runtime.GC()
				runtime.ReadMemStats(&before)
				if _, err := e.Iterate(axiom, gens); err != nil {
					b.Fatal(err)
				}
				var after runtime.MemStats
				runtime.ReadMemStats(&after)
				n := e.Current().Len()
				b.ReportMetric(float64(after.TotalAlloc-before.TotalAlloc)/float64(n), "B/module")
			}
		})
	}
}

// BenchmarkHistoryMemory measures the cost of keeping rewindable generations.
func BenchmarkHistoryMemory(b *testing.B) {
	for _, depth := range []int{0, 4, 16} {
		b.Run(fmt.Sprintf("history=%d", depth), func(b *testing.B) {
			e, axiom := MustCompile(GenChainConfig(2), core.WithHistory(depth))
			b.ReportAllocs()
			for range b.N {
				if _, err := e.Iterate(axiom, 14); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkSnapshotYAML(b *testing.B) {
	data := GenSnapshotYAML(12)
	b.SetBytes(int64(len(data)))
	b.ReportAllocs()
	for range b.N {
		var snap core.GenerationSnapshot
		if err := yaml.Unmarshal(data, &snap); err != nil {
			b.Fatal(err)
		}
	}
}
