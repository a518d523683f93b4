// Package lattice defines secrecy labels and the partial order between them.
//
// A label is a zero-sized marker type that embeds Marker. The order is
// declared one pair at a time with Declare, conventionally as package-level
// facts:
//
//	var _ = lattice.Declare[AB, A]() // AB is at least as secret as A
//
// Reflexivity is implicit and never declared. Transitivity is not computed:
// the declarer enumerates every pair in the order, and Verify reports pairs
// that transitivity implies but the declarations omit. Keeping the relation
// explicit keeps obligation resolution decidable and makes a misdeclared
// lattice a test failure in the declaring package.
package lattice

import (
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
)

// Label is the marker interface for secrecy labels. Implement it by
// embedding Marker in a zero-sized struct.
type Label interface {
	SecrecyLabel()
}

// Marker is embedded by label types to satisfy Label.
type Marker struct{}

// SecrecyLabel marks the embedding type as a label. It carries no behavior.
func (Marker) SecrecyLabel() {}

// Fact is the value returned by Declare. It exists so declarations can be
// spelled as package-level variables, which makes them static artifacts the
// checker can read.
type Fact struct{}

type pair struct {
	hi reflect.Type
	lo reflect.Type
}

var (
	mu    sync.RWMutex
	order = make(map[pair]struct{})
)

// Declare records that Hi is at least as secret as Lo. Call it from a
// package-level var so the declaration is visible both to this registry and
// to the static checker:
//
//	var _ = lattice.Declare[ABC, AB]()
func Declare[Hi, Lo Label]() Fact {
	p := pair{hi: reflect.TypeFor[Hi](), lo: reflect.TypeFor[Lo]()}
	mu.Lock()
	order[p] = struct{}{}
	mu.Unlock()
	return Fact{}
}

// MoreSecret reports whether hi is at least as secret as lo: true when the
// two are the same label (reflexivity) or when the pair was declared.
func MoreSecret(hi, lo reflect.Type) bool {
	if hi == lo {
		return true
	}
	mu.RLock()
	_, ok := order[pair{hi: hi, lo: lo}]
	mu.RUnlock()
	return ok
}

// Dominates is the typed form of MoreSecret.
func Dominates[Hi, Lo Label]() bool {
	return MoreSecret(reflect.TypeFor[Hi](), reflect.TypeFor[Lo]())
}

// Declared returns every declared pair as "Hi>=Lo" strings, sorted. Used by
// tests and by Verify's error reporting.
func Declared() []string {
	mu.RLock()
	out := make([]string, 0, len(order))
	for p := range order {
		out = append(out, labelName(p.hi)+">="+labelName(p.lo))
	}
	mu.RUnlock()
	sort.Strings(out)
	return out
}

// Verify checks that the declared order is transitively closed: for every
// declared A>=B and B>=C, A>=C must also be declared. It returns an error
// listing every missing pair, or nil when the order is closed.
func Verify() error {
	mu.RLock()
	pairs := make([]pair, 0, len(order))
	for p := range order {
		pairs = append(pairs, p)
	}
	mu.RUnlock()

	var missing []string
	for _, ab := range pairs {
		for _, bc := range pairs {
			if ab.lo != bc.hi || ab.hi == bc.lo {
				continue
			}
			if !MoreSecret(ab.hi, bc.lo) {
				missing = append(missing, labelName(ab.hi)+">="+labelName(bc.lo))
			}
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("lattice is not transitively closed; missing declarations: %s",
		strings.Join(dedup(missing), ", "))
}

func labelName(t reflect.Type) string {
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.Name()
}

func dedup(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || sorted[i-1] != s {
			out = append(out, s)
		}
	}
	return out
}
