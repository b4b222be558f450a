package grammar

import (
	"fmt"

	"github.com/comalice/lsystemx/internal/primitives"
)

// template is a compiled production. Each argument is either a literal or a reference
// to one of the subject's arguments.
type template []templateModule

type templateModule struct {
	sym  *primitives.Symbol
	args []templateArg
}

type templateArg struct {
	param   primitives.Param
	from    string // subject argument name; empty for a literal
	literal any
	widen   bool // int subject argument into a float parameter
}

// compileTemplate binds a produce string. A token naming a subject argument takes
// precedence over reading it as a literal.
func compileTemplate(alpha *primitives.Alphabet, subject *primitives.Symbol, text string) (template, error) {
	raws, err := primitives.ScanModules(text)
	if err != nil {
		return nil, err
	}
	tmpl := make(template, 0, len(raws))
	for _, raw := range raws {
		sym, ok := alpha.Symbol(raw.Glyph)
		if !ok {
			return nil, fmt.Errorf("%w: glyph %q", primitives.ErrNotFound, string(raw.Glyph))
		}
		params := sym.Params()
		if len(raw.Tokens) != len(params) {
			return nil, fmt.Errorf("%w: symbol %q takes %d arguments, got %d", primitives.ErrValidation, sym.Name(), len(params), len(raw.Tokens))
		}
		tm := templateModule{sym: sym, args: make([]templateArg, len(params))}
		for i, p := range params {
			tok := raw.Tokens[i]
			if sp, ok := subject.Param(tok); ok {
				widen := sp.Type == primitives.IntArg && p.Type == primitives.FloatArg
				if sp.Type != p.Type && !widen {
					return nil, fmt.Errorf("%w: %s argument %q cannot feed %s parameter %q of %q",
						primitives.ErrValidation, sp.Type, tok, p.Type, p.Name, sym.Name())
				}
				tm.args[i] = templateArg{param: p, from: tok, widen: widen}
				continue
			}
			v, err := p.Parse(tok)
			if err != nil {
				return nil, fmt.Errorf("symbol %q: %w", sym.Name(), err)
			}
			tm.args[i] = templateArg{param: p, literal: v}
		}
		tmpl = append(tmpl, tm)
	}
	return tmpl, nil
}

func (t template) expand(subject primitives.Args) ([]primitives.Module, error) {
	mods := make([]primitives.Module, len(t))
	for i, tm := range t {
		var args primitives.Args
		if len(tm.args) > 0 {
			args = make(primitives.Args, len(tm.args))
		}
		for _, a := range tm.args {
			v := a.literal
			if a.from != "" {
				v = subject[a.from]
				if a.widen {
					v = float64(subject.Int(a.from))
				}
			}
			args[a.param.Name] = v
		}
		m, err := primitives.NewModule(tm.sym, args)
		if err != nil {
			return nil, err
		}
		mods[i] = m
	}
	return mods, nil
}
