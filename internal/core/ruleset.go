package core

import (
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/comalice/lsystemx/internal/primitives"
)

// Ruleset keeps rules in registration order, grouped by subject glyph. A group is
// either ordered (no weights) or stochastic (all weighted); never both.
type Ruleset struct {
	order  []*Rule
	byName map[string]*Rule
	groups map[rune][]*Rule
}

// NewRuleset creates an empty ruleset.
func NewRuleset() *Ruleset {
	return &Ruleset{
		byName: make(map[string]*Rule),
		groups: make(map[rune][]*Rule),
	}
}

func (rs *Ruleset) Len() int { return len(rs.order) }

// Add registers r at the end of its subject's group.
func (rs *Ruleset) Add(r *Rule) error {
	if _, ok := rs.byName[r.name]; ok {
		return fmt.Errorf("%w: rule name %q", primitives.ErrKeyConflict, r.name)
	}
	group := rs.groups[r.subject.Glyph()]
	if len(group) > 0 && stochastic(group) != (r.weight != nil) {
		return fmt.Errorf("%w: subject %q cannot mix weighted and unweighted rules", primitives.ErrConfiguration, r.subject.Name())
	}
	rs.order = append(rs.order, r)
	rs.byName[r.name] = r
	rs.groups[r.subject.Glyph()] = append(group, r)
	return nil
}

// Drop removes a rule by name.
func (rs *Ruleset) Drop(name string) (*Rule, error) {
	r, err := rs.Get(name)
	if err != nil {
		return nil, err
	}
	delete(rs.byName, name)
	rs.order = slices.DeleteFunc(rs.order, func(x *Rule) bool { return x == r })
	g := r.subject.Glyph()
	group := slices.DeleteFunc(rs.groups[g], func(x *Rule) bool { return x == r })
	if len(group) == 0 {
		delete(rs.groups, g)
	} else {
		rs.groups[g] = group
	}
	return r, nil
}

// Get resolves a rule by name.
func (rs *Ruleset) Get(name string) (*Rule, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty rule name", primitives.ErrValidation)
	}
	r, ok := rs.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: rule %q", primitives.ErrNotFound, name)
	}
	return r, nil
}

// For returns the group for a subject glyph in registration order.
func (rs *Ruleset) For(glyph rune) []*Rule { return slices.Clone(rs.groups[glyph]) }

// Rules returns every rule in registration order.
func (rs *Ruleset) Rules() []*Rule { return slices.Clone(rs.order) }

// Has reports whether any rule targets glyph.
func (rs *Ruleset) Has(glyph rune) bool { return len(rs.groups[glyph]) > 0 }

// SetWeight changes the weight of a stochastic rule. Giving an ordered rule a weight
// would change or mix its group's mode and is rejected.
func (rs *Ruleset) SetWeight(name string, w float64) error {
	r, err := rs.Get(name)
	if err != nil {
		return err
	}
	if err := validateWeight(w); err != nil {
		return err
	}
	if r.weight == nil {
		return fmt.Errorf("%w: rule %q is ordered; drop and re-add it to make it stochastic", primitives.ErrConfiguration, name)
	}
	*r.weight = w
	return nil
}

// ClearWeight removes a rule's weight. Clearing a weight always leaves a stochastic
// group mixed or flips it to ordered, so only ordered rules (a no-op) are accepted.
func (rs *Ruleset) ClearWeight(name string) error {
	r, err := rs.Get(name)
	if err != nil {
		return err
	}
	if r.weight != nil {
		return fmt.Errorf("%w: cannot clear the weight of stochastic rule %q", primitives.ErrConfiguration, name)
	}
	return nil
}

func stochastic(group []*Rule) bool {
	return len(group) > 0 && group[0].weight != nil
}

// candidates returns the rules to try, in order, for one occurrence of glyph. For a
// stochastic group it draws a single rule by normalized weight; a zero total weight
// yields none.
func (rs *Ruleset) candidates(glyph rune, rng *rand.Rand) []*Rule {
	group := rs.groups[glyph]
	if !stochastic(group) {
		return group
	}
	if r := pick(group, rng); r != nil {
		return []*Rule{r}
	}
	return nil
}

func pick(group []*Rule, rng *rand.Rand) *Rule {
	var total float64
	for _, r := range group {
		total += *r.weight
	}
	if total <= 0 {
		return nil
	}
	x := rng.Float64() * total
	for _, r := range group {
		if x < *r.weight {
			return r
		}
		x -= *r.weight
	}
	// Rounding can leave x just past the last bucket.
	for i := len(group) - 1; i >= 0; i-- {
		if *group[i].weight > 0 {
			return group[i]
		}
	}
	return nil
}
