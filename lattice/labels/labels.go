// Package labels ships the example lattice: the powerset of {A, B, C}
// ordered by subset inclusion. Empty is the bottom (public) label and ABC is
// the top. Every non-reflexive pair in the order is enumerated below;
// reflexive pairs are implicit.
package labels

import "github.com/latticelabs/seclat/lattice"

// Empty is the public (bottom) label.
type Empty struct{ lattice.Marker }

// A, B, C are the atomic labels.
type (
	A struct{ lattice.Marker }
	B struct{ lattice.Marker }
	C struct{ lattice.Marker }
)

// AB, AC, BC are the two-element labels.
type (
	AB struct{ lattice.Marker }
	AC struct{ lattice.Marker }
	BC struct{ lattice.Marker }
)

// ABC is the top label.
type ABC struct{ lattice.Marker }

// Everything dominates Empty.
var (
	_ = lattice.Declare[A, Empty]()
	_ = lattice.Declare[B, Empty]()
	_ = lattice.Declare[C, Empty]()
	_ = lattice.Declare[AB, Empty]()
	_ = lattice.Declare[AC, Empty]()
	_ = lattice.Declare[BC, Empty]()
	_ = lattice.Declare[ABC, Empty]()
)

var (
	_ = lattice.Declare[AB, A]()
	_ = lattice.Declare[AC, A]()
	_ = lattice.Declare[ABC, A]()

	_ = lattice.Declare[AB, B]()
	_ = lattice.Declare[BC, B]()
	_ = lattice.Declare[ABC, B]()

	_ = lattice.Declare[AC, C]()
	_ = lattice.Declare[BC, C]()
	_ = lattice.Declare[ABC, C]()
)

var (
	_ = lattice.Declare[ABC, AB]()
	_ = lattice.Declare[ABC, AC]()
	_ = lattice.Declare[ABC, BC]()
)
