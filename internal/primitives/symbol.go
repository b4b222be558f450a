package primitives

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ArgType tags the primitive type of a symbol argument.
type ArgType int

const (
	IntArg ArgType = iota + 1
	FloatArg
	TextArg
)

func (t ArgType) String() string {
	switch t {
	case IntArg:
		return "int"
	case FloatArg:
		return "float"
	case TextArg:
		return "str"
	default:
		return fmt.Sprintf("ArgType(%d)", int(t))
	}
}

// ParseArgType resolves a type tag as written in grammar files.
func ParseArgType(s string) (ArgType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "int", "integer":
		return IntArg, nil
	case "float", "real":
		return FloatArg, nil
	case "str", "string", "text":
		return TextArg, nil
	}
	return 0, fmt.Errorf("%w: unknown argument type %q", ErrValidation, s)
}

// Param is one entry of a symbol's ordered argument list.
type Param struct {
	Name string
	Type ArgType
}

func (p Param) String() string {
	return p.Name + ":" + p.Type.String()
}

// Parse converts a notation token to a value of the parameter's type.
func (p Param) Parse(token string) (any, error) { return parseValue(p, token) }

// ParseParam parses the "name:type" form. A bare name is a float argument.
func ParseParam(s string) (Param, error) {
	name, typ, found := strings.Cut(s, ":")
	p := Param{Name: strings.TrimSpace(name), Type: FloatArg}
	if found {
		t, err := ParseArgType(typ)
		if err != nil {
			return Param{}, err
		}
		p.Type = t
	}
	if err := validateParamName(p.Name); err != nil {
		return Param{}, err
	}
	return p, nil
}

// Procedure is the command bound to a symbol, invoked once per occurrence by Engine.Execute.
type Procedure func(args Args)

// Symbol describes one glyph of an L-system alphabet. Symbols are immutable.
type Symbol struct {
	glyph   rune
	name    string
	params  []Param
	proc    Procedure
	pattern *regexp.Regexp
}

// SymbolOption configures a Symbol under construction.
type SymbolOption func(*Symbol)

// WithName sets the display name. Defaults to the glyph.
func WithName(name string) SymbolOption {
	return func(s *Symbol) {
		s.name = name
	}
}

// WithParams sets the ordered argument list.
func WithParams(params ...Param) SymbolOption {
	return func(s *Symbol) {
		s.params = append([]Param(nil), params...)
	}
}

// WithProcedure binds the command executed for each occurrence.
func WithProcedure(proc Procedure) SymbolOption {
	return func(s *Symbol) {
		s.proc = proc
	}
}

// NewSymbol creates a validated symbol.
func NewSymbol(glyph rune, opts ...SymbolOption) (*Symbol, error) {
	if err := validateGlyph(glyph); err != nil {
		return nil, err
	}
	s := &Symbol{glyph: glyph, name: string(glyph)}
	for _, opt := range opts {
		opt(s)
	}

	// A one-character name is only allowed when it is the glyph itself, otherwise
	// lookups by key would be ambiguous.
	if s.name == "" {
		return nil, fmt.Errorf("%w: symbol %q has an empty name", ErrValidation, string(glyph))
	}
	if utf8.RuneCountInString(s.name) == 1 && s.name != string(glyph) {
		return nil, fmt.Errorf("%w: symbol name %q must be the glyph or longer than one character", ErrValidation, s.name)
	}

	seen := make(map[string]bool, len(s.params))
	for _, p := range s.params {
		if err := validateParamName(p.Name); err != nil {
			return nil, err
		}
		if seen[p.Name] {
			return nil, fmt.Errorf("%w: duplicate parameter %q on symbol %q", ErrValidation, p.Name, s.name)
		}
		seen[p.Name] = true
		if p.Type < IntArg || p.Type > TextArg {
			return nil, fmt.Errorf("%w: parameter %q has unknown type %v", ErrValidation, p.Name, p.Type)
		}
	}
	s.pattern = regexp.MustCompile(s.patternSource())
	return s, nil
}

func (s *Symbol) Glyph() rune { return s.glyph }

func (s *Symbol) Name() string { return s.name }

// Params returns a copy of the ordered argument list.
func (s *Symbol) Params() []Param { return append([]Param(nil), s.params...) }

// Arity is the number of arguments an occurrence carries.
func (s *Symbol) Arity() int { return len(s.params) }

// Procedure returns the bound command, or nil.
func (s *Symbol) Procedure() Procedure { return s.proc }

// Param looks up a parameter by name.
func (s *Symbol) Param(name string) (Param, bool) {
	for _, p := range s.params {
		if p.Name == name {
			return p, true
		}
	}
	return Param{}, false
}

// Equal reports whether both symbols share a glyph.
func (s *Symbol) Equal(other *Symbol) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.glyph == other.glyph
}

// Pattern returns an anchored regular expression matching one textual occurrence of
// the symbol, with a named group per argument.
func (s *Symbol) Pattern() *regexp.Regexp { return s.pattern }

func (s *Symbol) patternSource() string {
	var b strings.Builder
	b.WriteString("^")
	b.WriteString(regexp.QuoteMeta(string(s.glyph)))
	if len(s.params) > 0 {
		b.WriteString(`\(`)
		for i, p := range s.params {
			if i > 0 {
				b.WriteString(",")
			}
			fmt.Fprintf(&b, `\s*(?P<%s>%s)\s*`, p.Name, argTokenSource)
		}
		b.WriteString(`\)`)
	}
	return b.String()
}

func (s *Symbol) String() string {
	parts := make([]string, len(s.params))
	for i, p := range s.params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("symbol[name=%q, glyph=%q, params=(%s)]", s.name, string(s.glyph), strings.Join(parts, ", "))
}

func validateGlyph(glyph rune) error {
	switch {
	case glyph == utf8.RuneError:
		return fmt.Errorf("%w: invalid glyph", ErrValidation)
	case unicode.IsSpace(glyph), glyph == '(', glyph == ')', glyph == ',':
		return fmt.Errorf("%w: glyph %q is reserved by the module notation", ErrValidation, string(glyph))
	case !unicode.IsPrint(glyph):
		return fmt.Errorf("%w: glyph %U is not printable", ErrValidation, glyph)
	}
	return nil
}

func validateParamName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty parameter name", ErrValidation)
	}
	for i, r := range name {
		if r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (i > 0 && r >= '0' && r <= '9') {
			continue
		}
		return fmt.Errorf("%w: invalid parameter name %q", ErrValidation, name)
	}
	return nil
}
