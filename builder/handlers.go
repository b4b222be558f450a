// Package builder provides small combinators for writing rule handlers in code.
package builder

import (
	"github.com/comalice/lsystemx/internal/core"
	"github.com/comalice/lsystemx/internal/primitives"
)

// Handler shortcut
type Handler = core.Handler

// Produce always replaces the subject with mods.
func Produce(mods ...primitives.Module) Handler {
	return func(core.Capture) (core.Result, error) { return core.Replace(mods...), nil }
}

// ProduceText parses text once and always replaces the subject with it.
func ProduceText(alpha *primitives.Alphabet, text string) (Handler, error) {
	mods, err := primitives.ParseModules(alpha, text)
	if err != nil {
		return nil, err
	}
	return Produce(mods...), nil
}

// MustProduceText is ProduceText for literals; it panics on a parse error.
func MustProduceText(alpha *primitives.Alphabet, text string) Handler {
	h, err := ProduceText(alpha, text)
	if err != nil {
		panic(err)
	}
	return h
}

// Delete removes the subject.
func Delete() Handler { return Produce() }

// When guards h with pred; the rule does not match when pred is false.
func When(pred func(core.Capture) bool, h Handler) Handler {
	return func(c core.Capture) (core.Result, error) {
		if !pred(c) {
			return core.NoMatch(), nil
		}
		return h(c)
	}
}

// Map derives the replacement from the subject, e.g. to grow an argument.
func Map(fn func(m primitives.Module) ([]primitives.Module, error)) Handler {
	return func(c core.Capture) (core.Result, error) {
		mods, err := fn(c.Subject)
		if err != nil {
			return core.Result{}, err
		}
		return core.Replace(mods...), nil
	}
}

// After matches only when the glyphs immediately before the subject spell left.
func After(left string) func(core.Capture) bool {
	want := []rune(left)
	return func(c core.Capture) bool {
		if len(c.Pre) < len(want) {
			return false
		}
		pre := c.Pre[len(c.Pre)-len(want):]
		for i, m := range pre {
			if m.Glyph() != want[i] {
				return false
			}
		}
		return true
	}
}
