package production

import (
	"testing"

	"github.com/comalice/lsystemx/internal/core"
	"github.com/comalice/lsystemx/internal/primitives"
	"github.com/comalice/lsystemx/internal/sequence"
)

func algaeEngine(t *testing.T, opts ...core.Option) (*core.Engine, *sequence.Sequence) {
	t.Helper()
	alpha := primitives.NewAlphabetBuilder().Symbol('A').Symbol('B').MustBuild()
	e := core.NewEngine(alpha, append([]core.Option{core.WithGrammarID("algae")}, opts...)...)
	rules := map[string]string{"A": "AB", "B": "A"}
	for _, subject := range []string{"A", "B"} {
		mods, err := primitives.ParseModules(alpha, rules[subject])
		if err != nil {
			t.Fatal(err)
		}
		if _, err := e.AddRule(subject, func(core.Capture) (core.Result, error) {
			return core.Replace(mods...), nil
		}); err != nil {
			t.Fatal(err)
		}
	}
	return e, sequence.MustParse(alpha, "A")
}
