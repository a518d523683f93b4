package declare

import (
	"github.com/latticelabs/seclat/lattice"
	"github.com/latticelabs/seclat/lattice/labels"
)

// Internal sits above A in this project's lattice.
type Internal struct{ lattice.Marker }

var _ = lattice.Declare[Internal, labels.A]()

//ifc:sideeffectfree
func Scale(x int64, k int64) int64 {
	return x * k
}
