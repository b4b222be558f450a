// Package primitives defines the foundational data structures for the L-system engine.
//
// GrammarConfig is the declarative, file-backed form of an L-system: its symbols, the
// axiom, and textual production rules. Validation checks every cross reference so a
// config that validates always compiles.

package primitives

import (
	"errors"
	"fmt"
	"math"
	"unicode/utf8"
)

// GrammarConfig defines a complete L-system.
type GrammarConfig struct {
	Version     string         `json:"version,omitempty" yaml:"version,omitempty" toml:"version,omitempty"`
	ID          string         `json:"id" yaml:"id" toml:"id"`
	Axiom       string         `json:"axiom" yaml:"axiom" toml:"axiom"`
	Generations int            `json:"generations,omitempty" yaml:"generations,omitempty" toml:"generations,omitempty"`
	Seed        uint64         `json:"seed,omitempty" yaml:"seed,omitempty" toml:"seed,omitempty"`
	Symbols     []SymbolConfig `json:"symbols" yaml:"symbols" toml:"symbols"`
	Rules       []RuleConfig   `json:"rules,omitempty" yaml:"rules,omitempty" toml:"rules,omitempty"`
}

// SymbolConfig declares one symbol. Params use the "name:type" form.
type SymbolConfig struct {
	Glyph   string   `json:"glyph" yaml:"glyph" toml:"glyph"`
	Name    string   `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Params  []string `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty"`
	Command string   `json:"command,omitempty" yaml:"command,omitempty" toml:"command,omitempty"` // label handed to the execute hook
}

// RuleConfig declares a textual production rule.
//
// Left and Right are glyph strings that must immediately precede/follow the subject.
// Condition is a comparison over the subject's arguments (see extensibility).
// Produce is a module string; argument tokens naming a subject argument copy its value.
type RuleConfig struct {
	Name      string   `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Subject   string   `json:"subject" yaml:"subject" toml:"subject"`
	Left      string   `json:"left,omitempty" yaml:"left,omitempty" toml:"left,omitempty"`
	Right     string   `json:"right,omitempty" yaml:"right,omitempty" toml:"right,omitempty"`
	Condition string   `json:"condition,omitempty" yaml:"condition,omitempty" toml:"condition,omitempty"`
	Produce   string   `json:"produce" yaml:"produce" toml:"produce"`
	Weight    *float64 `json:"weight,omitempty" yaml:"weight,omitempty" toml:"weight,omitempty"`
}

// Validate validates the entire grammar:
// - Non-empty ID and axiom, at least one symbol
// - Symbols valid and unique by glyph and name
// - Axiom and every production only use declared glyphs with the right arity
// - Rule subjects and context glyphs exist, explicit rule names are unique
// - Each subject's rules are all weighted or all unweighted
func (c *GrammarConfig) Validate() error {
	if c.ID == "" {
		return errors.New("grammar ID is required")
	}
	if c.Axiom == "" {
		return errors.New("axiom is required")
	}
	if len(c.Symbols) == 0 {
		return errors.New("symbols list is required and cannot be empty")
	}
	if c.Generations < 0 {
		return fmt.Errorf("%w: generations must be non-negative", ErrValidation)
	}

	alpha, err := c.Alphabet(nil)
	if err != nil {
		return err
	}

	if _, err := ParseModules(alpha, c.Axiom); err != nil {
		return fmt.Errorf("axiom: %w", err)
	}

	names := make(map[string]bool)
	weighted := make(map[rune]bool)
	seen := make(map[rune]bool)
	for i, r := range c.Rules {
		subject, err := alpha.Get(r.Subject)
		if err != nil {
			return fmt.Errorf("rule %d: subject: %w", i, err)
		}
		if r.Name != "" {
			if names[r.Name] {
				return fmt.Errorf("%w: duplicate rule name %q", ErrKeyConflict, r.Name)
			}
			names[r.Name] = true
		}
		for _, ctx := range []string{r.Left, r.Right} {
			for _, g := range ctx {
				if _, ok := alpha.Symbol(g); !ok {
					return fmt.Errorf("rule %d: %w: context glyph %q", i, ErrNotFound, string(g))
				}
			}
		}
		if err := checkModuleString(alpha, r.Produce); err != nil {
			return fmt.Errorf("rule %d: produce: %w", i, err)
		}
		if r.Weight != nil && (*r.Weight < 0 || math.IsNaN(*r.Weight) || math.IsInf(*r.Weight, 0)) {
			return fmt.Errorf("rule %d: %w: weight must be a non-negative number", i, ErrValidation)
		}
		g := subject.Glyph()
		if seen[g] && weighted[g] != (r.Weight != nil) {
			return fmt.Errorf("rule %d: %w: subject %q mixes weighted and unweighted rules", i, ErrConfiguration, subject.Name())
		}
		seen[g] = true
		weighted[g] = r.Weight != nil
	}

	return nil
}

// Alphabet builds a finalized alphabet from the symbol list. bind, if non-nil, supplies
// the procedure for each symbol.
func (c *GrammarConfig) Alphabet(bind func(SymbolConfig) Procedure) (*Alphabet, error) {
	b := NewAlphabetBuilder()
	for i, sc := range c.Symbols {
		if utf8.RuneCountInString(sc.Glyph) != 1 {
			return nil, fmt.Errorf("symbol %d: %w: glyph %q must be a single character", i, ErrValidation, sc.Glyph)
		}
		glyph, _ := utf8.DecodeRuneInString(sc.Glyph)
		sb := b.Symbol(glyph).Name(sc.Name)
		for _, ps := range sc.Params {
			p, err := ParseParam(ps)
			if err != nil {
				return nil, fmt.Errorf("symbol %q: %w", sc.Glyph, err)
			}
			sb.Param(p.Name, p.Type)
		}
		if bind != nil {
			sb.Procedure(bind(sc))
		}
	}
	alpha, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("symbols: %w", err)
	}
	return alpha, nil
}

// FindSymbol resolves a symbol declaration by glyph or name.
func (c *GrammarConfig) FindSymbol(key string) (*SymbolConfig, error) {
	if key == "" {
		return nil, fmt.Errorf("%w: empty symbol key", ErrValidation)
	}
	for i := range c.Symbols {
		sc := &c.Symbols[i]
		if sc.Glyph == key || (sc.Name != "" && sc.Name == key) {
			return sc, nil
		}
	}
	return nil, fmt.Errorf("%w: symbol %q", ErrNotFound, key)
}

// checkModuleString verifies glyphs and arity without coercing argument tokens, since
// productions may name subject arguments instead of literals.
func checkModuleString(alpha *Alphabet, text string) error {
	raws, err := ScanModules(text)
	if err != nil {
		return err
	}
	for _, raw := range raws {
		sym, ok := alpha.Symbol(raw.Glyph)
		if !ok {
			return fmt.Errorf("%w: glyph %q at offset %d", ErrNotFound, string(raw.Glyph), raw.Offset)
		}
		if len(raw.Tokens) != sym.Arity() {
			return fmt.Errorf("%w: symbol %q takes %d arguments, got %d", ErrValidation, sym.Name(), sym.Arity(), len(raw.Tokens))
		}
	}
	return nil
}
