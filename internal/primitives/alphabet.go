package primitives

import (
	"fmt"
	"iter"
	"slices"
	"strings"
	"unicode/utf8"
)

// Alphabet is a set of symbols unique by glyph and by name. Iteration follows
// insertion order so derived views are deterministic.
type Alphabet struct {
	symbols []*Symbol
	byGlyph map[rune]*Symbol
	byName  map[string]*Symbol
	final   bool
}

// NewAlphabet creates an empty, modifiable alphabet.
func NewAlphabet(symbols ...*Symbol) (*Alphabet, error) {
	a := &Alphabet{
		byGlyph: make(map[rune]*Symbol),
		byName:  make(map[string]*Symbol),
	}
	for _, s := range symbols {
		if _, err := a.Add(s); err != nil {
			return nil, err
		}
	}
	return a, nil
}

func (a *Alphabet) Len() int { return len(a.symbols) }

// Final reports whether the alphabet is read-only.
func (a *Alphabet) Final() bool { return a.final }

// Finalize marks the alphabet read-only. Idempotent and irreversible.
func (a *Alphabet) Finalize() { a.final = true }

// Add registers a prebuilt symbol.
func (a *Alphabet) Add(sym *Symbol) (*Symbol, error) {
	if sym == nil {
		return nil, fmt.Errorf("%w: nil symbol", ErrValidation)
	}
	if a.final {
		return nil, fmt.Errorf("%w: cannot add %q", ErrPermission, sym.name)
	}
	if _, ok := a.byGlyph[sym.glyph]; ok {
		return nil, fmt.Errorf("%w: glyph %q", ErrKeyConflict, string(sym.glyph))
	}
	if _, ok := a.byName[sym.name]; ok {
		return nil, fmt.Errorf("%w: name %q", ErrKeyConflict, sym.name)
	}
	a.insert(sym)
	return sym, nil
}

// Define constructs a symbol from a glyph and options and registers it.
func (a *Alphabet) Define(glyph rune, opts ...SymbolOption) (*Symbol, error) {
	if a.final {
		return nil, fmt.Errorf("%w: cannot define %q", ErrPermission, string(glyph))
	}
	sym, err := NewSymbol(glyph, opts...)
	if err != nil {
		return nil, err
	}
	return a.Add(sym)
}

// Drop removes a symbol by glyph (one character) or name.
func (a *Alphabet) Drop(key string) (*Symbol, error) {
	if a.final {
		return nil, fmt.Errorf("%w: cannot drop %q", ErrPermission, key)
	}
	sym, err := a.Get(key)
	if err != nil {
		return nil, err
	}
	delete(a.byGlyph, sym.glyph)
	delete(a.byName, sym.name)
	a.symbols = slices.DeleteFunc(a.symbols, func(s *Symbol) bool { return s == sym })
	return sym, nil
}

// Get resolves a symbol by glyph when key is a single character, otherwise by name.
func (a *Alphabet) Get(key string) (*Symbol, error) {
	switch utf8.RuneCountInString(key) {
	case 0:
		return nil, fmt.Errorf("%w: empty symbol key", ErrValidation)
	case 1:
		r, _ := utf8.DecodeRuneInString(key)
		if s, ok := a.byGlyph[r]; ok {
			return s, nil
		}
		return nil, fmt.Errorf("%w: glyph %q", ErrNotFound, key)
	default:
		if s, ok := a.byName[key]; ok {
			return s, nil
		}
		return nil, fmt.Errorf("%w: symbol name %q", ErrNotFound, key)
	}
}

// Lookup is Get without the error: ok is false for unknown or empty keys.
func (a *Alphabet) Lookup(key string) (*Symbol, bool) {
	s, err := a.Get(key)
	return s, err == nil
}

// Has reports membership by glyph or name. The empty key is never a member.
func (a *Alphabet) Has(key string) bool {
	_, ok := a.Lookup(key)
	return ok
}

// HasSymbol reports membership by glyph identity.
func (a *Alphabet) HasSymbol(sym *Symbol) bool {
	if sym == nil {
		return false
	}
	_, ok := a.byGlyph[sym.glyph]
	return ok
}

// Symbol resolves a glyph.
func (a *Alphabet) Symbol(glyph rune) (*Symbol, bool) {
	return a.symbolByGlyph(glyph)
}

func (a *Alphabet) symbolByGlyph(glyph rune) (*Symbol, bool) {
	if a == nil {
		return nil, false
	}
	s, ok := a.byGlyph[glyph]
	return s, ok
}

// All iterates symbols in insertion order.
func (a *Alphabet) All() iter.Seq[*Symbol] {
	symbols := slices.Clone(a.symbols)
	return slices.Values(symbols)
}

// Symbols returns the symbols in insertion order.
func (a *Alphabet) Symbols() []*Symbol { return slices.Clone(a.symbols) }

// SubsetOf reports whether every symbol of a is in other.
func (a *Alphabet) SubsetOf(other *Alphabet) bool {
	if len(a.symbols) > len(other.symbols) {
		return false
	}
	for _, s := range a.symbols {
		if !other.HasSymbol(s) {
			return false
		}
	}
	return true
}

// ProperSubsetOf reports a ⊂ other.
func (a *Alphabet) ProperSubsetOf(other *Alphabet) bool {
	return len(a.symbols) < len(other.symbols) && a.SubsetOf(other)
}

// SupersetOf reports a ⊇ other.
func (a *Alphabet) SupersetOf(other *Alphabet) bool { return other.SubsetOf(a) }

// ProperSupersetOf reports a ⊃ other.
func (a *Alphabet) ProperSupersetOf(other *Alphabet) bool { return other.ProperSubsetOf(a) }

// Equal reports whether both alphabets hold the same glyphs.
func (a *Alphabet) Equal(other *Alphabet) bool {
	return len(a.symbols) == len(other.symbols) && a.SubsetOf(other)
}

// Disjoint reports whether the alphabets share no glyph.
func (a *Alphabet) Disjoint(other *Alphabet) bool {
	for _, s := range a.symbols {
		if other.HasSymbol(s) {
			return false
		}
	}
	return true
}

// Intersect returns the symbols of a whose glyph is also in other.
func (a *Alphabet) Intersect(other *Alphabet) *Alphabet {
	res := a.empty()
	for _, s := range a.symbols {
		if other.HasSymbol(s) {
			res.insert(s)
		}
	}
	return res
}

// Difference returns the symbols of a whose glyph is not in other.
func (a *Alphabet) Difference(other *Alphabet) *Alphabet {
	res := a.empty()
	for _, s := range a.symbols {
		if !other.HasSymbol(s) {
			res.insert(s)
		}
	}
	return res
}

// Union returns every symbol of a followed by the symbols of other with new glyphs.
// Two different glyphs sharing a name cannot coexist and yield ErrKeyConflict.
func (a *Alphabet) Union(other *Alphabet) (*Alphabet, error) {
	res := a.empty()
	for _, s := range a.symbols {
		res.insert(s)
	}
	for _, s := range other.symbols {
		if res.HasSymbol(s) {
			continue
		}
		if clash, ok := res.byName[s.name]; ok {
			return nil, fmt.Errorf("%w: name %q used by glyphs %q and %q", ErrKeyConflict, s.name, string(clash.glyph), string(s.glyph))
		}
		res.insert(s)
	}
	return res, nil
}

// Clone returns a modifiable copy holding the same symbols.
func (a *Alphabet) Clone() *Alphabet {
	res := a.empty()
	for _, s := range a.symbols {
		res.insert(s)
	}
	return res
}

func (a *Alphabet) String() string {
	glyphs := make([]string, len(a.symbols))
	for i, s := range a.symbols {
		glyphs[i] = string(s.glyph)
	}
	return "{" + strings.Join(glyphs, ", ") + "}"
}

func (a *Alphabet) empty() *Alphabet {
	return &Alphabet{
		byGlyph: make(map[rune]*Symbol),
		byName:  make(map[string]*Symbol),
	}
}

func (a *Alphabet) insert(s *Symbol) {
	a.symbols = append(a.symbols, s)
	a.byGlyph[s.glyph] = s
	a.byName[s.name] = s
}
