package lsystemx

import (
	"errors"
	"fmt"
	"strings"
)

// GrammarBuilder provides a fluent API for declaring a grammar in code. It produces
// the same GrammarConfig a file would, so built and loaded grammars behave alike.
type GrammarBuilder struct {
	cfg  GrammarConfig
	errs []error
}

// SymbolBuilder configures one symbol declaration.
type SymbolBuilder struct {
	b   *GrammarBuilder
	idx int
}

// RuleBuilder configures one textual rule.
type RuleBuilder struct {
	b   *GrammarBuilder
	idx int
}

// NewGrammarBuilder starts a grammar with an ID and axiom.
func NewGrammarBuilder(id, axiom string) *GrammarBuilder {
	return &GrammarBuilder{cfg: GrammarConfig{ID: id, Axiom: axiom}}
}

// Generations sets the default number of generations.
func (b *GrammarBuilder) Generations(n int) *GrammarBuilder {
	b.cfg.Generations = n
	return b
}

// Seed fixes the seed for stochastic rules.
func (b *GrammarBuilder) Seed(seed uint64) *GrammarBuilder {
	b.cfg.Seed = seed
	return b
}

// Symbol declares each glyph in glyphs as a bare symbol and returns a builder for the
// last one.
func (b *GrammarBuilder) Symbol(glyphs string) *SymbolBuilder {
	if glyphs == "" {
		b.errs = append(b.errs, errors.New("symbol: empty glyph string"))
	}
	for _, g := range glyphs {
		b.cfg.Symbols = append(b.cfg.Symbols, SymbolConfig{Glyph: string(g)})
	}
	return &SymbolBuilder{b: b, idx: len(b.cfg.Symbols) - 1}
}

// Rule adds "subject -> produce" and returns a builder to refine it.
func (b *GrammarBuilder) Rule(subject, produce string) *RuleBuilder {
	b.cfg.Rules = append(b.cfg.Rules, RuleConfig{Subject: subject, Produce: produce})
	return &RuleBuilder{b: b, idx: len(b.cfg.Rules) - 1}
}

// Config returns a copy of the grammar declared so far.
func (b *GrammarBuilder) Config() (*GrammarConfig, error) {
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}
	cfg := b.cfg
	cfg.Symbols = append([]SymbolConfig(nil), b.cfg.Symbols...)
	cfg.Rules = append([]RuleConfig(nil), b.cfg.Rules...)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Build validates the grammar and compiles it.
func (b *GrammarBuilder) Build(opts ...CompileOption) (*Engine, *Sequence, error) {
	cfg, err := b.Config()
	if err != nil {
		return nil, nil, err
	}
	return Compile(cfg, opts...)
}

func (sb *SymbolBuilder) decl() *SymbolConfig {
	if sb.idx < 0 {
		return &SymbolConfig{}
	}
	return &sb.b.cfg.Symbols[sb.idx]
}

// Name sets the symbol's display name.
func (sb *SymbolBuilder) Name(name string) *SymbolBuilder {
	sb.decl().Name = name
	return sb
}

// Params sets the argument list in "name:type" form, e.g. "len:float".
func (sb *SymbolBuilder) Params(params ...string) *SymbolBuilder {
	sb.decl().Params = params
	return sb
}

// Command sets the label handed to execute hooks.
func (sb *SymbolBuilder) Command(command string) *SymbolBuilder {
	sb.decl().Command = command
	return sb
}

// Symbol declares more symbols.
func (sb *SymbolBuilder) Symbol(glyphs string) *SymbolBuilder { return sb.b.Symbol(glyphs) }

// Rule adds a rule.
func (sb *SymbolBuilder) Rule(subject, produce string) *RuleBuilder {
	return sb.b.Rule(subject, produce)
}

// Build compiles the grammar.
func (sb *SymbolBuilder) Build(opts ...CompileOption) (*Engine, *Sequence, error) {
	return sb.b.Build(opts...)
}

func (rb *RuleBuilder) decl() *RuleConfig { return &rb.b.cfg.Rules[rb.idx] }

// Named names the rule.
func (rb *RuleBuilder) Named(name string) *RuleBuilder {
	rb.decl().Name = name
	return rb
}

// After requires left to immediately precede the subject.
func (rb *RuleBuilder) After(left string) *RuleBuilder {
	rb.decl().Left = left
	return rb
}

// Before requires right to immediately follow the subject.
func (rb *RuleBuilder) Before(right string) *RuleBuilder {
	rb.decl().Right = right
	return rb
}

// When adds a condition over the subject's arguments. Repeated calls are joined
// with &&.
func (rb *RuleBuilder) When(condition string) *RuleBuilder {
	d := rb.decl()
	if d.Condition == "" {
		d.Condition = condition
	} else {
		d.Condition = strings.Join([]string{d.Condition, condition}, " && ")
	}
	return rb
}

// Weight makes the rule stochastic.
func (rb *RuleBuilder) Weight(w float64) *RuleBuilder {
	rb.decl().Weight = &w
	return rb
}

// Rule adds another rule.
func (rb *RuleBuilder) Rule(subject, produce string) *RuleBuilder {
	return rb.b.Rule(subject, produce)
}

// Build compiles the grammar.
func (rb *RuleBuilder) Build(opts ...CompileOption) (*Engine, *Sequence, error) {
	return rb.b.Build(opts...)
}

// String summarizes the declared grammar.
func (b *GrammarBuilder) String() string {
	return fmt.Sprintf("grammar[id=%q, symbols=%d, rules=%d]", b.cfg.ID, len(b.cfg.Symbols), len(b.cfg.Rules))
}
