// Package primitives provides the foundational data structures for the L-system engine:
// symbols, alphabets, modules (symbol occurrences with bound arguments), the textual
// module notation, and the grammar file configuration.
//
// This package uses ONLY the Go standard library so it can be embedded anywhere the
// engine is.
//
// Core invariants:
//   - Symbols are immutable once constructed; equality is by glyph.
//   - An Alphabet never holds two symbols with the same glyph or the same name.
//   - A finalized Alphabet rejects every mutation.
//   - A Module's arguments match its symbol's parameter list exactly.
package primitives
