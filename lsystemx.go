// Package lsystemx is an L-system engine: symbols with typed arguments, sequences of
// modules, and rule sets rewritten in parallel one generation at a time.
//
// The root package re-exports the pieces most programs need. Grammars can be built
// in code with NewGrammarBuilder, loaded from YAML, TOML or JSON with Load, or
// assembled rule by rule on an Engine with custom handlers.
package lsystemx

import (
	"github.com/comalice/lsystemx/internal/core"
	"github.com/comalice/lsystemx/internal/grammar"
	"github.com/comalice/lsystemx/internal/primitives"
	"github.com/comalice/lsystemx/internal/sequence"
)

type (
	Alphabet      = primitives.Alphabet
	Symbol        = primitives.Symbol
	Param         = primitives.Param
	ArgType       = primitives.ArgType
	Args          = primitives.Args
	Module        = primitives.Module
	Procedure     = primitives.Procedure
	GrammarConfig = primitives.GrammarConfig
	SymbolConfig  = primitives.SymbolConfig
	RuleConfig    = primitives.RuleConfig

	Sequence = sequence.Sequence

	Engine     = core.Engine
	Option     = core.Option
	Rule       = core.Rule
	RuleOption = core.RuleOption
	Handler    = core.Handler
	Capture    = core.Capture
	Result     = core.Result

	CompileOption = grammar.CompileOption
)

// Argument types.
const (
	IntArg   = primitives.IntArg
	FloatArg = primitives.FloatArg
	TextArg  = primitives.TextArg
)

// Error kinds. Match them with errors.Is.
var (
	ErrValidation       = primitives.ErrValidation
	ErrNotFound         = primitives.ErrNotFound
	ErrKeyConflict      = primitives.ErrKeyConflict
	ErrPermission       = primitives.ErrPermission
	ErrIndex            = primitives.ErrIndex
	ErrConfiguration    = primitives.ErrConfiguration
	ErrAlphabetMismatch = primitives.ErrAlphabetMismatch
)

// NewEngine creates an engine over alpha. A nil alphabet starts empty and modifiable.
func NewEngine(alpha *Alphabet, opts ...Option) *Engine { return core.NewEngine(alpha, opts...) }

// NewAlphabetBuilder starts a fluent alphabet definition.
func NewAlphabetBuilder() *primitives.AlphabetBuilder { return primitives.NewAlphabetBuilder() }

// NewModule binds args to sym.
func NewModule(sym *Symbol, args Args) (Module, error) { return primitives.NewModule(sym, args) }

// Parse reads a module string against alpha.
func Parse(alpha *Alphabet, text string) (*Sequence, error) { return sequence.Parse(alpha, text) }

// NoMatch and Replace build handler results.
func NoMatch() Result { return core.NoMatch() }

func Replace(mods ...Module) Result { return core.Replace(mods...) }

// Load reads a grammar file and compiles it.
func Load(path string, opts ...CompileOption) (*Engine, *Sequence, error) {
	cfg, err := grammar.Load(path)
	if err != nil {
		return nil, nil, err
	}
	return grammar.Compile(cfg, opts...)
}

// Compile builds an engine and axiom from a grammar.
func Compile(cfg *GrammarConfig, opts ...CompileOption) (*Engine, *Sequence, error) {
	return grammar.Compile(cfg, opts...)
}
