// Tests for ChannelPublisher delivery and Engine integration.
package production

import (
	"context"
	"testing"
	"time"

	"github.com/comalice/lsystemx/internal/core"
)

func TestChannelPublisher_Delivery(t *testing.T) {
	ch := make(chan core.GenerationEvent, 10)
	p := NewChannelPublisher(ch)

	event := core.GenerationEvent{RunID: "run", Generation: 2, Length: 3, Fired: 2}
	if err := p.Publish(context.Background(), event); err != nil {
		t.Errorf("Publish failed: %v", err)
	}

	select {
	case got := <-ch:
		if got != event {
			t.Errorf("got %+v, want %+v", got, event)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No event delivered")
	}
}

func TestChannelPublisher_BackpressureDrop(t *testing.T) {
	ch := make(chan core.GenerationEvent, 1)
	p := NewChannelPublisher(ch)
	ch <- core.GenerationEvent{} // Fill buffer

	if err := p.Publish(context.Background(), core.GenerationEvent{Generation: 1}); err != nil {
		t.Errorf("Publish on full channel failed: %v", err)
	}
	if len(ch) != 1 {
		t.Errorf("len(ch) = %d, want 1", len(ch))
	}
}

func TestChannelPublisher_Close(t *testing.T) {
	ch := make(chan core.GenerationEvent, 1)
	p := NewChannelPublisher(ch)

	if err := p.Close(); err != nil {
		t.Errorf("Close failed: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("second Close failed: %v", err)
	}
	if _, ok := <-ch; ok {
		t.Error("channel still open")
	}
	if err := p.Publish(context.Background(), core.GenerationEvent{}); err != nil {
		t.Errorf("Publish after Close failed: %v", err)
	}
}

func TestChannelPublisher_Integration_EngineEvents(t *testing.T) {
	ch := make(chan core.GenerationEvent, 10)
	e, axiom := algaeEngine(t, core.WithPublisher(NewChannelPublisher(ch)), core.WithRunID("events"))

	if _, err := e.Iterate(axiom, 4); err != nil {
		t.Fatal(err)
	}

	wantLen := []int{2, 3, 5, 8}
	for i, want := range wantLen {
		select {
		case got := <-ch:
			if got.Generation != i+1 || got.Length != want || got.RunID != "events" || got.GrammarID != "algae" {
				t.Errorf("event %d = %+v, want generation %d length %d", i, got, i+1, want)
			}
		default:
			t.Fatalf("missing event %d", i)
		}
	}
}
