// Package secret provides the label-parameterized container for sensitive
// values and the checked-block surface around it.
//
// A Secret[T, L] holds a value of type T at secrecy level L. The value is
// reachable only from inside a checked block whose label dominates L, or
// through the explicit Declassify escape. The container itself never
// formats, compares, or serializes its contents: every format verb renders
// "(secret)".
//
// The bridge primitives (Wrap, Unwrap, UnwrapRef, UnwrapMutRef) take a
// Scope as their first argument. A Scope is the capability that proves the
// call sits inside a Block; the static checker is the authority that scopes
// are not forged and that every unwrap's label obligation holds. The
// runtime surface adds no checks, no tags, and no panics of its own.
package secret

import (
	"fmt"
	"io"

	"github.com/latticelabs/seclat/lattice"
)

// Secret holds a value of type T at secrecy level L. The zero value is a
// Secret of T's zero value.
type Secret[T any, L lattice.Label] struct {
	val T
}

// Scope is the in-block capability for label L. Blocks receive one; nothing
// else constructs a useful value of it. The checker rejects bridge calls
// whose scope did not come from the enclosing block's parameter.
type Scope[L lattice.Label] struct {
	_ [0]func() // occupies no space; prevents comparison
}

// New wraps a seed value at level L. It is the constructor for values that
// enter the labeled universe from ordinary code, and is not legal inside a
// checked block.
func New[L lattice.Label, T any](v T) Secret[T, L] {
	return Secret[T, L]{val: v}
}

// Block runs a checked block with label L and returns the secret its
// terminator produced. The body must be a function literal whose only
// return is `return secret.Wrap(sc, expr)`; the checker enforces the shape
// and discharges every operation in the body.
func Block[T any, L lattice.Label](body func(sc Scope[L]) Secret[T, L]) Secret[T, L] {
	return body(Scope[L]{})
}

// BlockUnit runs a checked block that produces no value. Used for blocks
// that mutate state reached through UnwrapMutRef.
func BlockUnit[L lattice.Label](body func(sc Scope[L])) {
	body(Scope[L]{})
}

// Wrap stamps the block's label onto v. Only legal as a block terminator.
func Wrap[T any, L lattice.Label](_ Scope[L], v T) Secret[T, L] {
	return Secret[T, L]{val: v}
}

// Unwrap moves the value out of s. The checker requires L to dominate LS.
func Unwrap[T any, LS, L lattice.Label](_ Scope[L], s Secret[T, LS]) T {
	return s.val
}

// UnwrapRef borrows the value inside s. The checker requires L to dominate LS.
func UnwrapRef[T any, LS, L lattice.Label](_ Scope[L], s *Secret[T, LS]) *T {
	return &s.val
}

// UnwrapMutRef borrows the value inside s for writing. The checker requires
// L to dominate LS and LS to dominate L: write access at a lower label
// would be a downward flow.
func UnwrapMutRef[T any, LS, L lattice.Label](_ Scope[L], s *Secret[T, LS]) *T {
	return &s.val
}

// Format renders the container without its contents for every verb.
// Implementing fmt.Formatter keeps numeric and reflection-driven verbs,
// which never consult Stringer, away from the value.
func (Secret[T, L]) Format(f fmt.State, verb rune) {
	io.WriteString(f, "(secret)")
}

// String renders the container without its contents.
func (Secret[T, L]) String() string { return "(secret)" }

// GoString renders the container without its contents.
func (Secret[T, L]) GoString() string { return "(secret)" }

// Declassified is the escape wrapper produced by Declassify. It exists so
// that the moment a value leaves the labeled universe is a distinct,
// greppable call site rather than an implicit conversion.
type Declassified[T any] struct {
	val T
}

// Declassify removes s's label. It is the only way a labeled value leaves
// the labeled universe, and is not legal inside a checked block.
func (s Secret[T, L]) Declassify() Declassified[T] {
	return Declassified[T]{val: s.val}
}

// GetValueConsume moves the raw value out of the wrapper.
func (d Declassified[T]) GetValueConsume() T { return d.val }

// Ref borrows the raw value.
func (d *Declassified[T]) Ref() *T { return &d.val }

// Unchecked splices an unrestricted host operation into a checked block.
// The checker does not walk op's body; its correctness is the author's
// obligation and its call sites are the audit surface.
func Unchecked[T any](op func() T) T { return op() }

// UncheckedUnit is Unchecked for operations with no result.
func UncheckedUnit(op func()) { op() }
