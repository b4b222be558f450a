// Package sequence implements the module string rewritten by the engine: an ordered
// chain of modules bound to one alphabet.
//
// Modules live in an arena and link to their neighbours by index. Copies, substrings
// and iterators share the arena; a sequence that does not own its arena clones the
// chain it addresses before the first mutation, so a shared source never observes a
// change.
//
// Tests here use testify's require and assert, like the grammar and command packages
// layered on top. The engine packages keep plain table-driven tests.
package sequence

import (
	"fmt"
	"iter"

	"github.com/comalice/lsystemx/internal/primitives"
)

const none int32 = -1

type node struct {
	mod        primitives.Module
	prev, next int32
}

type arena struct {
	nodes []node
}

func (a *arena) push(m primitives.Module, prev int32) int32 {
	idx := int32(len(a.nodes))
	a.nodes = append(a.nodes, node{mod: m, prev: prev, next: none})
	if prev != none {
		a.nodes[prev].next = idx
	}
	return idx
}

// Sequence is an ordered collection of modules whose symbols all belong to one alphabet.
// The zero value is not usable; construct with New, FromModules or Parse.
type Sequence struct {
	alpha       *primitives.Alphabet
	store       *arena
	first, last int32
	n           int
	owned       bool
}

// New returns an empty sequence bound to alpha.
func New(alpha *primitives.Alphabet) *Sequence {
	return &Sequence{alpha: alpha, store: &arena{}, first: none, last: none, owned: true}
}

// FromModules builds a sequence from mods, checking each against alpha.
func FromModules(alpha *primitives.Alphabet, mods []primitives.Module) (*Sequence, error) {
	for i, m := range mods {
		if err := checkMember(alpha, m); err != nil {
			return nil, fmt.Errorf("module %d: %w", i, err)
		}
	}
	return fromTrusted(alpha, mods), nil
}

// Parse reads a module string such as "F(1) + X" into a new sequence.
func Parse(alpha *primitives.Alphabet, text string) (*Sequence, error) {
	mods, err := primitives.ParseModules(alpha, text)
	if err != nil {
		return nil, err
	}
	return fromTrusted(alpha, mods), nil
}

// MustParse is Parse that panics on error.
func MustParse(alpha *primitives.Alphabet, text string) *Sequence {
	s, err := Parse(alpha, text)
	if err != nil {
		panic(err)
	}
	return s
}

func fromTrusted(alpha *primitives.Alphabet, mods []primitives.Module) *Sequence {
	s := New(alpha)
	s.store.nodes = make([]node, 0, len(mods))
	for _, m := range mods {
		s.last = s.store.push(m, s.last)
		if s.first == none {
			s.first = s.last
		}
	}
	s.n = len(mods)
	return s
}

func checkMember(alpha *primitives.Alphabet, m primitives.Module) error {
	if !m.Valid() {
		return fmt.Errorf("%w: zero module", primitives.ErrValidation)
	}
	if sym, ok := alpha.Symbol(m.Glyph()); !ok || sym != m.Symbol() {
		return fmt.Errorf("%w: symbol %q is not in alphabet %s", primitives.ErrAlphabetMismatch, m.Symbol().Name(), alpha)
	}
	return nil
}

// Len returns the number of modules.
func (s *Sequence) Len() int { return s.n }

// Alphabet returns the alphabet the sequence is bound to.
func (s *Sequence) Alphabet() *primitives.Alphabet { return s.alpha }

// share marks the arena as shared so both parties clone on their next mutation.
func (s *Sequence) share() { s.owned = false }

// detach gives s a private, compacted copy of its chain if it does not own its arena.
func (s *Sequence) detach() {
	if s.owned {
		return
	}
	s.store = s.compact()
	s.first, s.last = none, none
	if s.n > 0 {
		s.first, s.last = 0, int32(s.n-1)
	}
	s.owned = true
}

func (s *Sequence) compact() *arena {
	a := &arena{nodes: make([]node, 0, s.n)}
	prev := none
	for _, m := range s.walk(s.first, s.n) {
		prev = a.push(m, prev)
	}
	return a
}

// walk yields count modules starting at node idx.
func (s *Sequence) walk(start int32, count int) iter.Seq2[int, primitives.Module] {
	store := s.store
	return func(yield func(int, primitives.Module) bool) {
		idx := start
		for i := 0; i < count && idx != none; i++ {
			nd := store.nodes[idx]
			if !yield(i, nd.mod) {
				return
			}
			idx = nd.next
		}
	}
}

// nodeAt walks from the nearer end. i must be in [0, n).
func (s *Sequence) nodeAt(i int) int32 {
	if i < s.n/2 || i == 0 {
		idx := s.first
		for ; i > 0; i-- {
			idx = s.store.nodes[idx].next
		}
		return idx
	}
	idx := s.last
	for j := s.n - 1; j > i; j-- {
		idx = s.store.nodes[idx].prev
	}
	return idx
}

// index resolves a possibly negative element index.
func (s *Sequence) index(i int) (int, error) {
	if i < 0 {
		i += s.n
	}
	if i < 0 || i >= s.n {
		return 0, fmt.Errorf("%w: index %d out of range for length %d", primitives.ErrIndex, i, s.n)
	}
	return i, nil
}

// insertPos converts an insert location to the position the first new module takes.
func (s *Sequence) insertPos(loc int) (int, error) {
	if s.n == 0 {
		if loc == 0 || loc == -1 {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: insert location %d on empty sequence", primitives.ErrIndex, loc)
	}
	if loc < -s.n || loc >= s.n {
		return 0, fmt.Errorf("%w: insert location %d out of range for length %d", primitives.ErrIndex, loc, s.n)
	}
	if loc < 0 {
		return s.n + loc + 1, nil
	}
	return loc, nil
}

// span resolves a [start, stop) range. Negative bounds count from the end.
func (s *Sequence) span(start, stop int) (int, int, error) {
	start, err := s.index(start)
	if err != nil {
		return 0, 0, err
	}
	if stop < 0 {
		stop += s.n
	}
	if stop < start || stop > s.n {
		return 0, 0, fmt.Errorf("%w: invalid range [%d:%d] for length %d", primitives.ErrIndex, start, stop, s.n)
	}
	return start, stop, nil
}

func (s *Sequence) splice(pos int, mods []primitives.Module) {
	if len(mods) == 0 {
		return
	}
	s.detach()
	before, after := none, s.first
	if pos > 0 {
		before = s.nodeAt(pos - 1)
		after = s.store.nodes[before].next
	}
	head := none
	prev := before
	for _, m := range mods {
		idx := s.store.push(m, none)
		s.store.nodes[idx].prev = prev
		if prev != none {
			s.store.nodes[prev].next = idx
		}
		if head == none {
			head = idx
		}
		prev = idx
	}
	s.store.nodes[prev].next = after
	if after != none {
		s.store.nodes[after].prev = prev
	} else {
		s.last = prev
	}
	if before == none {
		s.first = head
	}
	s.n += len(mods)
}

func (s *Sequence) cut(start, stop int) *Sequence {
	removed := New(s.alpha)
	if start == stop {
		return removed
	}
	s.detach()
	lo := s.nodeAt(start)
	count := stop - start
	idx := lo
	hi := lo
	for i := 0; i < count; i++ {
		hi = idx
		removed.last = removed.store.push(s.store.nodes[idx].mod, removed.last)
		idx = s.store.nodes[idx].next
	}
	removed.first = 0
	removed.n = count

	before, after := s.store.nodes[lo].prev, s.store.nodes[hi].next
	if before != none {
		s.store.nodes[before].next = after
	} else {
		s.first = after
	}
	if after != none {
		s.store.nodes[after].prev = before
	} else {
		s.last = before
	}
	s.n -= count
	if s.n == 0 {
		s.store = &arena{}
	}
	return removed
}

func (s *Sequence) module(key string, args primitives.Args) (primitives.Module, error) {
	sym, err := s.alpha.Get(key)
	if err != nil {
		return primitives.Module{}, err
	}
	return primitives.NewModule(sym, args)
}

func (s *Sequence) foreign(other *Sequence) ([]primitives.Module, error) {
	if other.alpha != s.alpha && !other.alpha.SubsetOf(s.alpha) {
		return nil, fmt.Errorf("%w: %s is not a subset of %s", primitives.ErrAlphabetMismatch, other.alpha, s.alpha)
	}
	mods := other.Modules()
	if other.alpha != s.alpha {
		// Rebind to this alphabet's symbols so membership checks hold by identity.
		for i, m := range mods {
			sym, _ := s.alpha.Symbol(m.Glyph())
			rebound, err := primitives.NewModule(sym, m.Args())
			if err != nil {
				return nil, fmt.Errorf("%w: %v", primitives.ErrAlphabetMismatch, err)
			}
			mods[i] = rebound
		}
	}
	return mods, nil
}

// Insert adds one module of the symbol named by key (glyph or name) at loc.
//
// A non-negative loc makes the module the element at that index; a negative loc
// inserts to the right of element len+loc. On an empty sequence only 0 and -1 are
// valid.
func (s *Sequence) Insert(loc int, key string, args primitives.Args) error {
	m, err := s.module(key, args)
	if err != nil {
		return err
	}
	return s.InsertModule(loc, m)
}

// InsertModule adds a prebuilt module at loc.
func (s *Sequence) InsertModule(loc int, m primitives.Module) error {
	if err := checkMember(s.alpha, m); err != nil {
		return err
	}
	pos, err := s.insertPos(loc)
	if err != nil {
		return err
	}
	s.splice(pos, []primitives.Module{m})
	return nil
}

// InsertSequence adds every module of other at loc. The other alphabet must be a
// subset of this one.
func (s *Sequence) InsertSequence(loc int, other *Sequence) error {
	mods, err := s.foreign(other)
	if err != nil {
		return err
	}
	pos, err := s.insertPos(loc)
	if err != nil {
		return err
	}
	s.splice(pos, mods)
	return nil
}

// Append adds a module at the end.
func (s *Sequence) Append(key string, args primitives.Args) error { return s.Insert(-1, key, args) }

// AppendModule adds a prebuilt module at the end.
func (s *Sequence) AppendModule(m primitives.Module) error { return s.InsertModule(-1, m) }

// AppendSequence adds every module of other at the end.
func (s *Sequence) AppendSequence(other *Sequence) error { return s.InsertSequence(-1, other) }

// Prepend adds a module at the front.
func (s *Sequence) Prepend(key string, args primitives.Args) error { return s.Insert(0, key, args) }

// PrependModule adds a prebuilt module at the front.
func (s *Sequence) PrependModule(m primitives.Module) error { return s.InsertModule(0, m) }

// PrependSequence adds every module of other at the front.
func (s *Sequence) PrependSequence(other *Sequence) error { return s.InsertSequence(0, other) }

// Remove detaches [start, stop) and returns it as its own sequence.
func (s *Sequence) Remove(start, stop int) (*Sequence, error) {
	start, stop, err := s.span(start, stop)
	if err != nil {
		return nil, err
	}
	return s.cut(start, stop), nil
}

// RemoveAt detaches the single module at i.
func (s *Sequence) RemoveAt(i int) (*Sequence, error) {
	i, err := s.index(i)
	if err != nil {
		return nil, err
	}
	return s.cut(i, i+1), nil
}

// Replace swaps [start, stop) for the modules of with and returns the removed range.
// Nothing changes if any argument is invalid.
func (s *Sequence) Replace(start, stop int, with *Sequence) (*Sequence, error) {
	mods, err := s.foreign(with)
	if err != nil {
		return nil, err
	}
	return s.replace(start, stop, mods)
}

// ReplaceAt swaps the module at loc for one built from key and args.
func (s *Sequence) ReplaceAt(loc int, key string, args primitives.Args) (*Sequence, error) {
	m, err := s.module(key, args)
	if err != nil {
		return nil, err
	}
	return s.ReplaceModule(loc, m)
}

// ReplaceModule swaps the module at loc for m.
func (s *Sequence) ReplaceModule(loc int, m primitives.Module) (*Sequence, error) {
	if err := checkMember(s.alpha, m); err != nil {
		return nil, err
	}
	i, err := s.index(loc)
	if err != nil {
		return nil, err
	}
	return s.replace(i, i+1, []primitives.Module{m})
}

func (s *Sequence) replace(start, stop int, mods []primitives.Module) (*Sequence, error) {
	start, stop, err := s.span(start, stop)
	if err != nil {
		return nil, err
	}
	removed := s.cut(start, stop)
	s.splice(start, mods)
	return removed, nil
}

// At returns the module at i.
func (s *Sequence) At(i int) (primitives.Module, error) {
	i, err := s.index(i)
	if err != nil {
		return primitives.Module{}, err
	}
	return s.store.nodes[s.nodeAt(i)].mod, nil
}

// SymbolAt returns the symbol of the module at i.
func (s *Sequence) SymbolAt(i int) (*primitives.Symbol, error) {
	m, err := s.At(i)
	if err != nil {
		return nil, err
	}
	return m.Symbol(), nil
}

// Params returns a copy of the arguments of the module at i.
func (s *Sequence) Params(i int) (primitives.Args, error) {
	m, err := s.At(i)
	if err != nil {
		return nil, err
	}
	return m.Args(), nil
}

// SetParams rebinds the arguments of the module at i.
func (s *Sequence) SetParams(i int, args primitives.Args) error {
	i, err := s.index(i)
	if err != nil {
		return err
	}
	m, err := s.store.nodes[s.nodeAt(i)].mod.WithArgs(args)
	if err != nil {
		return err
	}
	s.detach()
	s.store.nodes[s.nodeAt(i)].mod = m
	return nil
}

// Substring returns [start, stop) as a sequence sharing this one's storage.
func (s *Sequence) Substring(start, stop int) (*Sequence, error) {
	start, stop, err := s.span(start, stop)
	if err != nil {
		return nil, err
	}
	if start == stop {
		return New(s.alpha), nil
	}
	s.share()
	sub := &Sequence{alpha: s.alpha, store: s.store, n: stop - start}
	sub.first = s.nodeAt(start)
	sub.last = s.nodeAt(stop - 1)
	return sub, nil
}

// Copy returns a shallow copy. Both sequences clone before their next mutation.
func (s *Sequence) Copy() *Sequence {
	s.share()
	c := *s
	return &c
}

// Clone returns a deep copy with its own storage.
func (s *Sequence) Clone() *Sequence {
	c := &Sequence{alpha: s.alpha, store: s.compact(), first: none, last: none, n: s.n, owned: true}
	if s.n > 0 {
		c.first, c.last = 0, int32(s.n-1)
	}
	return c
}

// All iterates the modules present when All is called. Mutations made afterwards are
// not visible to the iterator.
func (s *Sequence) All() iter.Seq2[int, primitives.Module] {
	s.share()
	return s.walk(s.first, s.n)
}

// Modules returns the modules as a slice.
func (s *Sequence) Modules() []primitives.Module {
	out := make([]primitives.Module, 0, s.n)
	for _, m := range s.walk(s.first, s.n) {
		out = append(out, m)
	}
	return out
}

// Equal reports whether both sequences hold equal modules in the same order.
func (s *Sequence) Equal(other *Sequence) bool {
	if other == nil || s.n != other.n {
		return false
	}
	next, stop := iter.Pull2(other.walk(other.first, other.n))
	defer stop()
	for _, m := range s.walk(s.first, s.n) {
		_, o, ok := next()
		if !ok || !m.Equal(o) {
			return false
		}
	}
	return true
}

// String renders the sequence in textual module notation.
func (s *Sequence) String() string {
	return primitives.FormatModules(s.Modules())
}
