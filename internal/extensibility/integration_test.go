package extensibility

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/comalice/lsystemx/internal/core"
	"github.com/comalice/lsystemx/internal/primitives"
	"github.com/comalice/lsystemx/internal/sequence"
)

func TestEngineWithCustomExtensibility(t *testing.T) {
	// A bud A(n) grows while n < 3, then stops; each growth leaves a segment F.
	var drawn []int
	alpha, err := primitives.NewAlphabetBuilder().
		Symbol('A').Name("bud").Param("n", primitives.IntArg).
		Symbol('F').Name("segment").Param("n", primitives.IntArg).
		Build()
	if err != nil {
		t.Fatal(err)
	}
	bud, _ := alpha.Get("bud")
	seg, _ := alpha.Get("segment")

	cond, err := NewConditionEvaluator().Compile(bud, "n < 3")
	if err != nil {
		t.Fatal(err)
	}

	var logs strings.Builder
	runner := NewLoggingCommandRunner(&DefaultCommandRunner{Commands: map[string]primitives.Procedure{
		"segment": func(a primitives.Args) { drawn = append(drawn, a.Int("n")) },
	}}, log.NewWithOptions(&logs, log.Options{Level: log.DebugLevel}))

	e := core.NewEngine(alpha, core.WithCommandRunner(runner))
	if _, err := e.AddRule("bud", func(c core.Capture) (core.Result, error) {
		args := c.Subject.Args()
		if !cond(args) {
			return core.NoMatch(), nil
		}
		n := args.Int("n")
		return core.Replace(
			primitives.MustModule(seg, primitives.Args{"n": n}),
			primitives.MustModule(bud, primitives.Args{"n": n + 1}),
		), nil
	}); err != nil {
		t.Fatal(err)
	}

	stable, err := e.Iterate(sequence.MustParse(alpha, "A(0)"), 10)
	if err != nil {
		t.Fatal(err)
	}
	if !stable || e.Generation() != 3 {
		t.Fatalf("stable=%v generation=%d", stable, e.Generation())
	}
	if got := e.Current().String(); got != "F(0)F(1)F(2)A(3)" {
		t.Errorf("Current() = %q", got)
	}

	if err := e.Execute(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(drawn) != 3 || drawn[0] != 0 || drawn[2] != 2 {
		t.Errorf("drawn = %v, want [0 1 2]", drawn)
	}
	if strings.Count(logs.String(), "command completed") != 4 {
		t.Errorf("expected one log line per module:\n%s", logs.String())
	}
}
