package sequence

import "github.com/comalice/lsystemx/internal/primitives"

// Builder appends modules to a fresh sequence in O(1) each. The engine uses it to
// assemble a generation.
type Builder struct {
	seq *Sequence
}

// NewBuilder returns a builder for a sequence over alpha with room for sizeHint modules.
func NewBuilder(alpha *primitives.Alphabet, sizeHint int) *Builder {
	s := New(alpha)
	s.store.nodes = make([]node, 0, max(sizeHint, 0))
	return &Builder{seq: s}
}

// Add appends m after checking it belongs to the alphabet.
func (b *Builder) Add(m primitives.Module) error {
	if err := checkMember(b.seq.alpha, m); err != nil {
		return err
	}
	s := b.seq
	s.last = s.store.push(m, s.last)
	if s.first == none {
		s.first = s.last
	}
	s.n++
	return nil
}

// Len returns the number of modules added so far.
func (b *Builder) Len() int { return b.seq.n }

// Build returns the sequence. The builder must not be used afterwards.
func (b *Builder) Build() *Sequence {
	s := b.seq
	b.seq = nil
	return s
}
