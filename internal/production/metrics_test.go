package production

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/comalice/lsystemx/internal/core"
)

func TestMetricsPublisher_Publish(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetricsPublisher(reg)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	events := []core.GenerationEvent{
		{GrammarID: "algae", Generation: 1, Length: 2, Fired: 1, Duration: time.Millisecond},
		{GrammarID: "algae", Generation: 2, Length: 3, Fired: 2, Duration: time.Millisecond},
		{GrammarID: "algae", Generation: 2, Length: 3, Fired: 0, Stable: true},
	}
	for _, ev := range events {
		if err := m.Publish(ctx, ev); err != nil {
			t.Fatal(err)
		}
	}

	if got := testutil.ToFloat64(m.generations.WithLabelValues("algae")); got != 2 {
		t.Errorf("generations = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.fired.WithLabelValues("algae")); got != 3 {
		t.Errorf("fired = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.length.WithLabelValues("algae")); got != 3 {
		t.Errorf("length = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.stable.WithLabelValues("algae")); got != 1 {
		t.Errorf("stable = %v, want 1", got)
	}
	if n := testutil.CollectAndCount(m.duration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestMetricsPublisher_UnknownGrammarLabel(t *testing.T) {
	m, err := NewMetricsPublisher(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	_ = m.Publish(context.Background(), core.GenerationEvent{Length: 7})
	if got := testutil.ToFloat64(m.length.WithLabelValues("unknown")); got != 7 {
		t.Errorf("length = %v, want 7", got)
	}
}

func TestMetricsPublisher_ReRegisterSharesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewMetricsPublisher(reg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := NewMetricsPublisher(reg)
	if err != nil {
		t.Fatalf("second registration failed: %v", err)
	}
	_ = first.Publish(context.Background(), core.GenerationEvent{GrammarID: "g", Generation: 1})
	_ = second.Publish(context.Background(), core.GenerationEvent{GrammarID: "g", Generation: 2})
	if got := testutil.ToFloat64(first.generations.WithLabelValues("g")); got != 2 {
		t.Errorf("shared generations = %v, want 2", got)
	}
}

func TestMetricsPublisher_Integration_Engine(t *testing.T) {
	m, err := NewMetricsPublisher(prometheus.NewRegistry())
	if err != nil {
		t.Fatal(err)
	}
	e, axiom := algaeEngine(t, core.WithPublisher(m))
	if _, err := e.Iterate(axiom, 5); err != nil {
		t.Fatal(err)
	}
	if got := testutil.ToFloat64(m.generations.WithLabelValues("algae")); got != 5 {
		t.Errorf("generations = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.length.WithLabelValues("algae")); got != 13 {
		t.Errorf("length = %v, want 13", got)
	}
}
