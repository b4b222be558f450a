package primitives

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// argTokenSource matches one argument token. It extends \w+ with a sign, a decimal
// point and an exponent so every float FormatValue writes, such as -4.5 or 1e-05,
// parses back.
const argTokenSource = `[-+]?[\w.]+(?:[eE][-+]?\d+)?`

var argToken = regexp.MustCompile(`^` + argTokenSource + `$`)

// RawModule is an occurrence scanned from text before it is bound to an alphabet.
type RawModule struct {
	Glyph  rune
	Tokens []string
	Offset int // byte offset of the glyph in the source text
}

// ScanModules splits a module string into raw occurrences without resolving symbols.
// Grammar templates use it directly because their tokens may name arguments rather
// than hold literal values.
func ScanModules(text string) ([]RawModule, error) {
	var out []RawModule
	i := 0
	for i < len(text) {
		r, size := utf8.DecodeRuneInString(text[i:])
		if unicode.IsSpace(r) {
			i += size
			continue
		}
		if r == utf8.RuneError && size <= 1 {
			return nil, fmt.Errorf("%w: invalid UTF-8 at offset %d", ErrValidation, i)
		}
		if r == '(' || r == ')' || r == ',' {
			return nil, fmt.Errorf("%w: unexpected %q at offset %d", ErrValidation, r, i)
		}
		raw := RawModule{Glyph: r, Offset: i}
		i += size
		if i < len(text) && text[i] == '(' {
			end := strings.IndexByte(text[i:], ')')
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated argument list for %q at offset %d", ErrValidation, string(r), raw.Offset)
			}
			body := text[i+1 : i+end]
			for _, tok := range strings.Split(body, ",") {
				tok = strings.TrimSpace(tok)
				if !argToken.MatchString(tok) {
					return nil, fmt.Errorf("%w: invalid argument token %q for %q at offset %d", ErrValidation, tok, string(r), raw.Offset)
				}
				raw.Tokens = append(raw.Tokens, tok)
			}
			i += end + 1
		}
		out = append(out, raw)
	}
	return out, nil
}

// ParseModules parses a module string such as "F(1.5) [+X] F" against an alphabet.
// Arguments are supplied positionally in the symbol's declared order.
func ParseModules(alpha *Alphabet, text string) ([]Module, error) {
	raws, err := ScanModules(text)
	if err != nil {
		return nil, err
	}
	mods := make([]Module, 0, len(raws))
	for _, raw := range raws {
		m, err := raw.Bind(alpha)
		if err != nil {
			return nil, err
		}
		mods = append(mods, m)
	}
	return mods, nil
}

// ParseModule parses exactly one occurrence.
func ParseModule(alpha *Alphabet, text string) (Module, error) {
	mods, err := ParseModules(alpha, text)
	if err != nil {
		return Module{}, err
	}
	if len(mods) != 1 {
		return Module{}, fmt.Errorf("%w: expected one module in %q, found %d", ErrValidation, text, len(mods))
	}
	return mods[0], nil
}

// Bind resolves the glyph in alpha and coerces the tokens to the declared types.
func (r RawModule) Bind(alpha *Alphabet) (Module, error) {
	sym, ok := alpha.symbolByGlyph(r.Glyph)
	if !ok {
		return Module{}, fmt.Errorf("%w: glyph %q at offset %d is not in the alphabet", ErrNotFound, string(r.Glyph), r.Offset)
	}
	if len(r.Tokens) != len(sym.params) {
		return Module{}, fmt.Errorf("%w: symbol %q takes %d arguments, got %d at offset %d",
			ErrValidation, sym.name, len(sym.params), len(r.Tokens), r.Offset)
	}
	if len(sym.params) == 0 {
		return Module{sym: sym}, nil
	}
	args := make(Args, len(sym.params))
	for i, p := range sym.params {
		v, err := parseValue(p, r.Tokens[i])
		if err != nil {
			return Module{}, fmt.Errorf("symbol %q at offset %d: %w", sym.name, r.Offset, err)
		}
		args[p.Name] = v
	}
	return Module{sym: sym, args: args}, nil
}

// FormatModules renders occurrences back to notation.
func FormatModules(mods []Module) string {
	var b strings.Builder
	for _, m := range mods {
		b.WriteString(m.String())
	}
	return b.String()
}
