package lsystemx

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestGrammarBuilder_Algae(t *testing.T) {
	e, axiom, err := NewGrammarBuilder("algae", "A").
		Symbol("AB").
		Rule("A", "AB").Named("grow").
		Rule("B", "A").Named("mature").
		Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if _, err := e.Iterate(axiom, 5); err != nil {
		t.Fatal(err)
	}
	if got := e.Current().String(); got != "ABAABABAABAAB" {
		t.Errorf("Current() = %q", got)
	}
	if !e.Has("grow") || !e.Has("B") {
		t.Error("Has() misses a declared rule or symbol")
	}
}

func TestGrammarBuilder_Parametric(t *testing.T) {
	b := NewGrammarBuilder("apex", "A(0,1)")
	b.Symbol("A").Name("apex").Params("age:int", "w:float").
		Symbol("F").Params("len:float").Command("forward").
		Symbol("[]+")
	b.Rule("A", "F(w)[+A(age,w)]A(age,w)").When("age >= 0").When("age < 1")
	cfg, err := b.Config()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Rules[0].Condition != "age >= 0 && age < 1" {
		t.Errorf("Condition = %q", cfg.Rules[0].Condition)
	}
	if len(cfg.Symbols) != 5 || cfg.Symbols[1].Command != "forward" {
		t.Errorf("Symbols = %+v", cfg.Symbols)
	}

	e, axiom, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Iterate(axiom, 1); err != nil {
		t.Fatal(err)
	}
	if got := e.Current().String(); got != "F(1)[+A(0,1)]A(0,1)" {
		t.Errorf("Current() = %q", got)
	}
}

func TestGrammarBuilder_ContextAndWeight(t *testing.T) {
	cfg, err := NewGrammarBuilder("ctx", "abc").
		Symbol("abcX").
		Rule("b", "X").After("a").Before("c").Weight(1).
		Rule("b", "b").Weight(0).
		Seed(9).Generations(1).
		Config()
	if err != nil {
		t.Fatal(err)
	}
	r := cfg.Rules[0]
	if r.Left != "a" || r.Right != "c" || r.Weight == nil || *r.Weight != 1 {
		t.Errorf("rule = %+v", r)
	}
	if cfg.Seed != 9 || cfg.Generations != 1 {
		t.Errorf("cfg = %+v", cfg)
	}
	e, axiom, err := Compile(cfg)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Iterate(axiom, 1); err != nil {
		t.Fatal(err)
	}
	if got := e.Current().String(); got != "aXc" {
		t.Errorf("Current() = %q, want aXc", got)
	}
}

func TestGrammarBuilder_Errors(t *testing.T) {
	if _, _, err := NewGrammarBuilder("g", "A").Symbol("").Build(); err == nil {
		t.Error("empty glyph string accepted")
	}
	_, _, err := NewGrammarBuilder("g", "A").Symbol("A").Rule("A", "Q").Build()
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown produce glyph error = %v", err)
	}
	_, _, err = NewGrammarBuilder("g", "A").Symbol("AB").
		Rule("A", "B").Weight(1).
		Rule("A", "A").
		Build()
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("mixed weights error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "koch.toml")
	src := `id = "koch"
axiom = "F"

[[symbols]]
glyph = "F"

[[symbols]]
glyph = "+"

[[symbols]]
glyph = "-"

[[rules]]
subject = "F"
produce = "F+F-F-F+F"
`
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	e, axiom, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Iterate(axiom, 2); err != nil {
		t.Fatal(err)
	}
	// Five F each become nine modules, plus the four turns between them.
	if got := e.Current().Len(); got != 49 {
		t.Errorf("Len() = %d, want 49", got)
	}
}

func TestFacade_EngineByHand(t *testing.T) {
	alpha := NewAlphabetBuilder().Symbol('a').Symbol('b').MustBuild()
	e := NewEngine(alpha)
	b, _ := alpha.Get("b")
	if _, err := e.AddRule("a", func(c Capture) (Result, error) {
		if c.Index%2 == 0 {
			return NoMatch(), nil
		}
		m, err := NewModule(b, nil)
		return Replace(m), err
	}); err != nil {
		t.Fatal(err)
	}
	axiom, err := Parse(alpha, "aaaa")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.Iterate(axiom, 1); err != nil {
		t.Fatal(err)
	}
	if got := e.Current().String(); got != "abab" {
		t.Errorf("Current() = %q, want abab", got)
	}
}
