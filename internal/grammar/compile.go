package grammar

import (
	"fmt"
	"unicode/utf8"

	"github.com/comalice/lsystemx/internal/core"
	"github.com/comalice/lsystemx/internal/extensibility"
	"github.com/comalice/lsystemx/internal/primitives"
	"github.com/comalice/lsystemx/internal/sequence"
)

type compileOptions struct {
	procedures map[string]primitives.Procedure
	fallback   func(*primitives.SymbolConfig) primitives.Procedure
	engine     []core.Option
}

// CompileOption configures Compile.
type CompileOption func(*compileOptions)

// WithProcedures binds commands by symbol glyph or name.
func WithProcedures(procs map[string]primitives.Procedure) CompileOption {
	return func(o *compileOptions) {
		if o.procedures == nil {
			o.procedures = make(map[string]primitives.Procedure, len(procs))
		}
		for k, p := range procs {
			o.procedures[k] = p
		}
	}
}

// WithDefaultProcedure supplies commands for symbols WithProcedures does not name.
func WithDefaultProcedure(fn func(*primitives.SymbolConfig) primitives.Procedure) CompileOption {
	return func(o *compileOptions) { o.fallback = fn }
}

// WithEngineOptions passes options through to core.NewEngine. They are applied after
// the grammar's own ID and seed, so they win.
func WithEngineOptions(opts ...core.Option) CompileOption {
	return func(o *compileOptions) { o.engine = append(o.engine, opts...) }
}

// Compile builds an engine from a grammar: a finalized alphabet, one rule per textual
// rule, and the parsed axiom.
func Compile(cfg *primitives.GrammarConfig, opts ...CompileOption) (*core.Engine, *sequence.Sequence, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	var o compileOptions
	for _, opt := range opts {
		opt(&o)
	}

	alpha, err := cfg.Alphabet(func(sc primitives.SymbolConfig) primitives.Procedure {
		if p, ok := o.procedures[sc.Glyph]; ok {
			return p
		}
		if p, ok := o.procedures[sc.Name]; ok && sc.Name != "" {
			return p
		}
		if o.fallback != nil {
			return o.fallback(&sc)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	engineOpts := []core.Option{core.WithGrammarID(cfg.ID)}
	if cfg.Seed != 0 {
		engineOpts = append(engineOpts, core.WithSeed(cfg.Seed))
	}
	e := core.NewEngine(alpha, append(engineOpts, o.engine...)...)

	conditions := extensibility.NewConditionEvaluator()
	for i, rc := range cfg.Rules {
		h, subject, err := compileRule(alpha, conditions, rc)
		if err != nil {
			return nil, nil, fmt.Errorf("rule %d: %w", i, err)
		}
		ruleOpts := []core.RuleOption{core.WithContext(utf8.RuneCountInString(rc.Left), utf8.RuneCountInString(rc.Right))}
		if rc.Name != "" {
			ruleOpts = append(ruleOpts, core.WithRuleName(rc.Name))
		}
		if rc.Weight != nil {
			ruleOpts = append(ruleOpts, core.WithWeight(*rc.Weight))
		}
		if _, err := e.AddRule(subject.Name(), h, ruleOpts...); err != nil {
			return nil, nil, fmt.Errorf("rule %d: %w", i, err)
		}
	}

	axiom, err := sequence.Parse(alpha, cfg.Axiom)
	if err != nil {
		return nil, nil, fmt.Errorf("axiom: %w", err)
	}
	return e, axiom, nil
}

func compileRule(alpha *primitives.Alphabet, conditions *extensibility.ConditionEvaluator, rc primitives.RuleConfig) (core.Handler, *primitives.Symbol, error) {
	subject, err := alpha.Get(rc.Subject)
	if err != nil {
		return nil, nil, err
	}
	cond, err := conditions.Compile(subject, rc.Condition)
	if err != nil {
		return nil, nil, err
	}
	tmpl, err := compileTemplate(alpha, subject, rc.Produce)
	if err != nil {
		return nil, nil, fmt.Errorf("produce: %w", err)
	}
	left, right := []rune(rc.Left), []rune(rc.Right)

	return func(c core.Capture) (core.Result, error) {
		if !c.Complete() || !glyphsMatch(c.Pre, left) || !glyphsMatch(c.Post, right) {
			return core.NoMatch(), nil
		}
		args := c.Subject.Args()
		if !cond(args) {
			return core.NoMatch(), nil
		}
		mods, err := tmpl.expand(args)
		if err != nil {
			return core.Result{}, err
		}
		return core.Replace(mods...), nil
	}, subject, nil
}

func glyphsMatch(mods []primitives.Module, glyphs []rune) bool {
	if len(mods) != len(glyphs) {
		return false
	}
	for i, m := range mods {
		if m.Glyph() != glyphs[i] {
			return false
		}
	}
	return true
}
