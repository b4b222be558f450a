// Package primitives includes the fluent builder for finalized alphabets.
package primitives

// AlphabetBuilder builds a finalized Alphabet fluently. The first error is kept and
// reported by Build; later calls are no-ops.
type AlphabetBuilder struct {
	alpha   *Alphabet
	pending *SymbolBuilder
	err     error
}

// NewAlphabetBuilder creates a new AlphabetBuilder.
func NewAlphabetBuilder() *AlphabetBuilder {
	alpha, _ := NewAlphabet()
	return &AlphabetBuilder{alpha: alpha}
}

// Symbol starts a symbol definition, committing the previous one.
func (b *AlphabetBuilder) Symbol(glyph rune) *SymbolBuilder {
	b.commit()
	b.pending = &SymbolBuilder{b: b, glyph: glyph}
	return b.pending
}

// Add registers a prebuilt symbol.
func (b *AlphabetBuilder) Add(sym *Symbol) *AlphabetBuilder {
	b.commit()
	if b.err == nil {
		_, b.err = b.alpha.Add(sym)
	}
	return b
}

// Build finalizes the alphabet.
func (b *AlphabetBuilder) Build() (*Alphabet, error) {
	b.commit()
	if b.err != nil {
		return nil, b.err
	}
	b.alpha.Finalize()
	return b.alpha, nil
}

// MustBuild is Build that panics on error.
func (b *AlphabetBuilder) MustBuild() *Alphabet {
	a, err := b.Build()
	if err != nil {
		panic(err)
	}
	return a
}

func (b *AlphabetBuilder) commit() {
	sb := b.pending
	b.pending = nil
	if sb == nil || b.err != nil {
		return
	}
	opts := []SymbolOption{WithParams(sb.params...), WithProcedure(sb.proc)}
	if sb.name != "" {
		opts = append(opts, WithName(sb.name))
	}
	_, b.err = b.alpha.Define(sb.glyph, opts...)
}

// SymbolBuilder configures one pending symbol.
type SymbolBuilder struct {
	b      *AlphabetBuilder
	glyph  rune
	name   string
	params []Param
	proc   Procedure
}

// Name sets the display name.
func (sb *SymbolBuilder) Name(name string) *SymbolBuilder {
	sb.name = name
	return sb
}

// Param appends an argument to the argument list.
func (sb *SymbolBuilder) Param(name string, typ ArgType) *SymbolBuilder {
	sb.params = append(sb.params, Param{Name: name, Type: typ})
	return sb
}

// Procedure binds the execute-time command.
func (sb *SymbolBuilder) Procedure(proc Procedure) *SymbolBuilder {
	sb.proc = proc
	return sb
}

// Symbol commits this symbol and starts the next.
func (sb *SymbolBuilder) Symbol(glyph rune) *SymbolBuilder {
	return sb.b.Symbol(glyph)
}

// Add commits this symbol and registers a prebuilt one.
func (sb *SymbolBuilder) Add(sym *Symbol) *AlphabetBuilder {
	return sb.b.Add(sym)
}

// Build commits this symbol and finalizes the alphabet.
func (sb *SymbolBuilder) Build() (*Alphabet, error) {
	return sb.b.Build()
}

// MustBuild commits this symbol and finalizes the alphabet, panicking on error.
func (sb *SymbolBuilder) MustBuild() *Alphabet {
	return sb.b.MustBuild()
}
