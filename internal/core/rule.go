package core

import (
	"fmt"
	"math"
	"slices"

	"github.com/comalice/lsystemx/internal/primitives"
)

// Result is what a rule handler reports for one occurrence: no match, or the modules
// that take the subject's place.
type Result struct {
	matched bool
	mods    []primitives.Module
}

// NoMatch leaves the subject unchanged.
func NoMatch() Result { return Result{} }

// Replace substitutes mods for the subject. Replace() with no modules deletes it.
func Replace(mods ...primitives.Module) Result {
	return Result{matched: true, mods: mods}
}

// Matched reports whether the handler fired.
func (r Result) Matched() bool { return r.matched }

// Modules returns the replacement.
func (r Result) Modules() []primitives.Module { return slices.Clone(r.mods) }

// Capture is the view a handler gets of one occurrence: the subject and up to pre/post
// neighbours from the generation being read. Near the sequence edges the slices are
// shorter than the rule's widths.
type Capture struct {
	Subject primitives.Module
	Pre     []primitives.Module
	Post    []primitives.Module
	Index   int

	pre, post int
}

// Complete reports whether the full context width is available on both sides.
func (c Capture) Complete() bool {
	return len(c.Pre) == c.pre && len(c.Post) == c.post
}

// Handler decides whether a rule applies to a captured occurrence. Handlers must be
// pure: they may run concurrently and must not call back into the engine.
type Handler func(c Capture) (Result, error)

// Rule is a named production for one subject symbol.
type Rule struct {
	name      string
	subject   *primitives.Symbol
	pre, post int
	handler   Handler
	weight    *float64
}

// RuleOption configures a rule at registration.
type RuleOption func(*Rule)

// WithRuleName names the rule. Unnamed rules get "<subject>/<n>".
func WithRuleName(name string) RuleOption {
	return func(r *Rule) { r.name = name }
}

// WithContext sets how many neighbours the handler sees on each side.
func WithContext(pre, post int) RuleOption {
	return func(r *Rule) { r.pre, r.post = pre, post }
}

// WithWeight makes the rule stochastic with the given relative weight.
func WithWeight(w float64) RuleOption {
	return func(r *Rule) { r.weight = &w }
}

func (r *Rule) Name() string                { return r.name }
func (r *Rule) Subject() *primitives.Symbol { return r.subject }
func (r *Rule) Pre() int                    { return r.pre }
func (r *Rule) Post() int                   { return r.post }

// Weight returns the rule's weight; ok is false for ordered rules.
func (r *Rule) Weight() (w float64, ok bool) {
	if r.weight == nil {
		return 0, false
	}
	return *r.weight, true
}

// Apply runs the handler against the occurrence at i of mods.
func (r *Rule) Apply(mods []primitives.Module, i int) (Result, error) {
	return r.handler(r.capture(mods, i))
}

func (r *Rule) capture(mods []primitives.Module, i int) Capture {
	lo := max(0, i-r.pre)
	hi := min(len(mods), i+1+r.post)
	return Capture{
		Subject: mods[i],
		Pre:     slices.Clone(mods[lo:i]),
		Post:    slices.Clone(mods[i+1 : hi]),
		Index:   i,
		pre:     r.pre,
		post:    r.post,
	}
}

func (r *Rule) String() string {
	s := fmt.Sprintf("rule[name=%q, subject=%q, pre=%d, post=%d", r.name, string(r.subject.Glyph()), r.pre, r.post)
	if r.weight != nil {
		s += fmt.Sprintf(", weight=%g", *r.weight)
	}
	return s + "]"
}

func validateWeight(w float64) error {
	if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("%w: weight %v must be a non-negative number", primitives.ErrValidation, w)
	}
	return nil
}
