package primitives

import (
	"fmt"
	"maps"
	"math"
	"strconv"
	"strings"
)

// Args maps argument names to bound values. Values are int, float64 or string
// according to the parameter's ArgType.
type Args map[string]any

// Clone returns a shallow copy; values are immutable scalars so this is a full copy.
func (a Args) Clone() Args {
	if a == nil {
		return nil
	}
	return maps.Clone(a)
}

// Int returns an integer argument, or 0 if absent or of another type.
func (a Args) Int(name string) int {
	v, _ := a[name].(int)
	return v
}

// Float returns a float argument. Integer arguments are widened.
func (a Args) Float(name string) float64 {
	switch v := a[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

// Text returns a text argument, or "".
func (a Args) Text(name string) string {
	v, _ := a[name].(string)
	return v
}

// Equal compares two argument maps value by value.
func (a Args) Equal(other Args) bool {
	if len(a) != len(other) {
		return false
	}
	for k, v := range a {
		w, ok := other[k]
		if !ok || v != w {
			return false
		}
	}
	return true
}

// Module is one occurrence of a symbol with its bound arguments.
// The zero Module is invalid; build one with NewModule.
type Module struct {
	sym  *Symbol
	args Args
}

// NewModule binds args to sym. The argument keys must match the symbol's parameters
// exactly and each value must be convertible to the declared type without loss.
func NewModule(sym *Symbol, args Args) (Module, error) {
	if sym == nil {
		return Module{}, fmt.Errorf("%w: nil symbol", ErrValidation)
	}
	bound, err := bindArgs(sym, args)
	if err != nil {
		return Module{}, err
	}
	return Module{sym: sym, args: bound}, nil
}

// MustModule is like NewModule but panics on error. Intended for literals in tests and
// examples.
func MustModule(sym *Symbol, args Args) Module {
	m, err := NewModule(sym, args)
	if err != nil {
		panic(err)
	}
	return m
}

func (m Module) Symbol() *Symbol { return m.sym }

func (m Module) Glyph() rune { return m.sym.glyph }

// Valid reports whether the module was built by NewModule.
func (m Module) Valid() bool { return m.sym != nil }

// Args returns a copy of the bound arguments.
func (m Module) Args() Args { return m.args.Clone() }

// Arg returns one argument value.
func (m Module) Arg(name string) (any, bool) {
	v, ok := m.args[name]
	return v, ok
}

// WithArgs returns a module of the same symbol with new arguments.
func (m Module) WithArgs(args Args) (Module, error) {
	return NewModule(m.sym, args)
}

// Equal compares glyph and argument content.
func (m Module) Equal(other Module) bool {
	if m.sym == nil || other.sym == nil {
		return m.sym == other.sym
	}
	return m.sym.glyph == other.sym.glyph && m.args.Equal(other.args)
}

// String renders the module in textual notation: G or G(a1,a2,...).
func (m Module) String() string {
	if m.sym == nil {
		return "<invalid>"
	}
	if len(m.sym.params) == 0 {
		return string(m.sym.glyph)
	}
	var b strings.Builder
	b.WriteRune(m.sym.glyph)
	b.WriteByte('(')
	for i, p := range m.sym.params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(FormatValue(m.args[p.Name]))
	}
	b.WriteByte(')')
	return b.String()
}

// FormatValue renders an argument value as a notation token.
func FormatValue(v any) string {
	switch x := v.(type) {
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case string:
		return x
	}
	return fmt.Sprint(v)
}

func bindArgs(sym *Symbol, args Args) (Args, error) {
	if len(sym.params) == 0 {
		if len(args) > 0 {
			return nil, fmt.Errorf("%w: symbol %q takes no arguments, got %d", ErrValidation, sym.name, len(args))
		}
		return nil, nil
	}
	for k := range args {
		if _, ok := sym.Param(k); !ok {
			return nil, fmt.Errorf("%w: unexpected argument %q for symbol %q", ErrValidation, k, sym.name)
		}
	}
	bound := make(Args, len(sym.params))
	for _, p := range sym.params {
		v, ok := args[p.Name]
		if !ok {
			return nil, fmt.Errorf("%w: missing argument %q for symbol %q", ErrValidation, p.Name, sym.name)
		}
		nv, err := coerceValue(p, v)
		if err != nil {
			return nil, fmt.Errorf("symbol %q: %w", sym.name, err)
		}
		bound[p.Name] = nv
	}
	return bound, nil
}

func coerceValue(p Param, v any) (any, error) {
	switch p.Type {
	case IntArg:
		switch x := v.(type) {
		case int:
			return x, nil
		case int8:
			return int(x), nil
		case int16:
			return int(x), nil
		case int32:
			return int(x), nil
		case int64:
			return int(x), nil
		case uint8:
			return int(x), nil
		case uint16:
			return int(x), nil
		case uint32:
			return int(x), nil
		}
	case FloatArg:
		switch x := v.(type) {
		case float64:
			if math.IsNaN(x) {
				break
			}
			return x, nil
		case float32:
			return float64(x), nil
		}
	case TextArg:
		s, ok := v.(string)
		if !ok {
			break
		}
		// Text must stay a single notation token or the module cannot be parsed back.
		if !argToken.MatchString(s) {
			return nil, fmt.Errorf("%w: argument %q: text %q is not a notation token", ErrValidation, p.Name, s)
		}
		return s, nil
	}
	return nil, fmt.Errorf("%w: argument %q expects %s, got %T", ErrValidation, p.Name, p.Type, v)
}

// parseValue coerces a notation token to the parameter's type.
func parseValue(p Param, token string) (any, error) {
	switch p.Type {
	case IntArg:
		n, err := strconv.Atoi(token)
		if err != nil {
			return nil, fmt.Errorf("%w: argument %q: %q is not an integer", ErrValidation, p.Name, token)
		}
		return n, nil
	case FloatArg:
		f, err := strconv.ParseFloat(token, 64)
		if err != nil || math.IsNaN(f) {
			return nil, fmt.Errorf("%w: argument %q: %q is not a number", ErrValidation, p.Name, token)
		}
		return f, nil
	default:
		return token, nil
	}
}
