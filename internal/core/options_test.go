package core

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/comalice/lsystemx/internal/primitives"
)

type memPersister struct {
	mu    sync.Mutex
	saved []GenerationSnapshot
	err   error
}

func (p *memPersister) Save(_ context.Context, s GenerationSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.saved = append(p.saved, s)
	return nil
}

func (p *memPersister) Load(_ context.Context, runID string) (GenerationSnapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for i := len(p.saved) - 1; i >= 0; i-- {
		if p.saved[i].RunID == runID {
			return p.saved[i], nil
		}
	}
	return GenerationSnapshot{}, ErrSnapshotNotFound
}

type memPublisher struct {
	events []GenerationEvent
	err    error
}

func (p *memPublisher) Publish(_ context.Context, ev GenerationEvent) error {
	p.events = append(p.events, ev)
	return p.err
}

func (p *memPublisher) Close() error { return nil }

func TestEngine_PersistAndPublish(t *testing.T) {
	alpha := newAlphabet(t, "AB")
	persister := &memPersister{}
	pub := &memPublisher{}
	failing := &memPublisher{err: errors.New("subscriber gone")}
	var logs strings.Builder
	logger := log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel})

	e := NewEngine(alpha,
		WithPersister(persister),
		WithPublisher(pub),
		WithPublisher(failing),
		WithRunID("run-1"),
		WithGrammarID("algae"),
		WithLogger(logger),
	)
	mustRule(t, e, "A", produce(t, alpha, "AB"))
	mustRule(t, e, "B", produce(t, alpha, "A"))
	if _, err := e.Iterate(parse(t, alpha, "A"), 3); err != nil {
		t.Fatal(err)
	}

	if len(persister.saved) != 3 {
		t.Fatalf("saved %d snapshots, want 3", len(persister.saved))
	}
	last, err := persister.Load(context.Background(), "run-1")
	if err != nil {
		t.Fatal(err)
	}
	if last.Generation != 3 || last.Sequence != "ABAAB" || last.GrammarID != "algae" {
		t.Errorf("last snapshot = %+v", last)
	}

	if len(pub.events) != 3 || len(failing.events) != 3 {
		t.Fatalf("events = %d/%d, want 3 each", len(pub.events), len(failing.events))
	}
	ev := pub.events[2]
	if ev.Generation != 3 || ev.Length != 5 || ev.Fired != 3 || ev.Stable || ev.RunID != "run-1" {
		t.Errorf("event = %+v", ev)
	}
	if !strings.Contains(logs.String(), "publish failed") {
		t.Error("publisher failure was not logged")
	}
	if !strings.Contains(logs.String(), "generation=3") {
		t.Errorf("debug log missing generation: %s", logs.String())
	}
}

func TestEngine_PersistErrorStopsIteration(t *testing.T) {
	alpha := newAlphabet(t, "X")
	boom := errors.New("disk full")
	e := NewEngine(alpha, WithPersister(&memPersister{err: boom}))
	mustRule(t, e, "X", produce(t, alpha, "XX"))
	if _, err := e.Iterate(parse(t, alpha, "X"), 3); !errors.Is(err, boom) {
		t.Errorf("Iterate() error = %v", err)
	}
}

func TestEngine_Restore(t *testing.T) {
	alpha := newAlphabet(t, "AB")
	build := func(opts ...Option) *Engine {
		e := NewEngine(alpha, append([]Option{WithGrammarID("algae")}, opts...)...)
		mustRule(t, e, "A", produce(t, alpha, "AB"))
		mustRule(t, e, "B", produce(t, alpha, "A"))
		return e
	}

	straight := build()
	if _, err := straight.Iterate(parse(t, alpha, "A"), 5); err != nil {
		t.Fatal(err)
	}

	first := build(WithRunID("resumable"))
	if _, err := first.Iterate(parse(t, alpha, "A"), 2); err != nil {
		t.Fatal(err)
	}
	snap, err := first.Snapshot()
	if err != nil {
		t.Fatal(err)
	}

	resumed := build()
	if err := resumed.Restore(snap); err != nil {
		t.Fatal(err)
	}
	if resumed.RunID() != "resumable" || resumed.Generation() != 2 {
		t.Errorf("restored run=%s generation=%d", resumed.RunID(), resumed.Generation())
	}
	if _, err := resumed.Iterate(nil, 3); err != nil {
		t.Fatal(err)
	}
	if !resumed.Current().Equal(straight.Current()) {
		t.Errorf("resumed = %s, straight = %s", resumed.Current(), straight.Current())
	}

	snap.GrammarID = "other"
	if err := resumed.Restore(snap); !errors.Is(err, ErrSnapshotMismatch) {
		t.Errorf("Restore(other grammar) error = %v", err)
	}
	if _, err := NewEngine(alpha).Snapshot(); err == nil {
		t.Error("Snapshot() before Iterate succeeded")
	}
}

func TestEngine_RestoreScaledFloats(t *testing.T) {
	alpha := primitives.NewAlphabetBuilder().Symbol('F').Param("len", primitives.FloatArg).MustBuild()
	tests := []struct {
		name   string
		factor float64
		gens   int
	}{
		{"shrinking", 0.5, 15},
		{"growing", 1000, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scale := func(c Capture) (Result, error) {
				m, err := c.Subject.WithArgs(primitives.Args{"len": c.Subject.Args().Float("len") * tt.factor})
				if err != nil {
					return Result{}, err
				}
				return Replace(m), nil
			}
			e := NewEngine(alpha)
			mustRule(t, e, "F", scale)
			if _, err := e.Iterate(parse(t, alpha, "F(1)"), tt.gens); err != nil {
				t.Fatal(err)
			}
			snap, err := e.Snapshot()
			if err != nil {
				t.Fatal(err)
			}
			resumed := NewEngine(alpha)
			if err := resumed.Restore(snap); err != nil {
				t.Fatalf("Restore(%q) error = %v", snap.Sequence, err)
			}
			if !resumed.Current().Equal(e.Current()) {
				t.Errorf("restored %s, want %s", resumed.Current(), e.Current())
			}
		})
	}
}

func TestEngine_HistoryRewind(t *testing.T) {
	alpha := newAlphabet(t, "X")
	e := NewEngine(alpha, WithHistory(3))
	mustRule(t, e, "X", produce(t, alpha, "XX"))
	if _, err := e.Iterate(parse(t, alpha, "X"), 4); err != nil {
		t.Fatal(err)
	}
	got := e.History()
	if len(got) != 3 || got[0] != 2 || got[2] != 4 {
		t.Fatalf("History() = %v, want [2 3 4]", got)
	}
	if err := e.Rewind(0); err == nil {
		t.Error("Rewind(0) succeeded after eviction")
	}
	if err := e.Rewind(2); err != nil {
		t.Fatal(err)
	}
	if e.Current().Len() != 4 || e.Generation() != 2 {
		t.Errorf("after rewind len=%d generation=%d", e.Current().Len(), e.Generation())
	}
	// Growing again replaces the discarded future.
	if _, err := e.Iterate(nil, 1); err != nil {
		t.Fatal(err)
	}
	if got := e.History(); len(got) != 2 || got[1] != 3 {
		t.Errorf("History() after regrow = %v, want [2 3]", got)
	}
}

func TestHistory_Concurrent(t *testing.T) {
	alpha := newAlphabet(t, "X")
	h := NewHistory(8)
	seq := parse(t, alpha, "XX")
	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Record(i, seq.Clone())
			h.Restore(i)
			h.Generations()
		}()
	}
	wg.Wait()
	if n := len(h.Generations()); n == 0 || n > 8 {
		t.Errorf("kept %d entries", n)
	}
}

func TestWithRandIsUsed(t *testing.T) {
	alpha := newAlphabet(t, "XAB")
	run := func() string {
		e := NewEngine(alpha, WithRand(rand.New(rand.NewPCG(1, 2))))
		mustRule(t, e, "X", produce(t, alpha, "A"), WithWeight(1))
		mustRule(t, e, "X", produce(t, alpha, "B"), WithWeight(1))
		if _, err := e.Iterate(parse(t, alpha, "XXXXXXXXXXXXXXXX"), 1); err != nil {
			t.Fatal(err)
		}
		return e.Current().String()
	}
	if run() != run() {
		t.Error("same random source produced different output")
	}
}
