// Package purity classifies host types for use inside checked blocks.
//
// A type is invisibly side-effect free (ISEF) when its values, used with
// the operations the checker admits, produce no observable effect beyond
// returning a value. A type is visibly side-effect free (VSEF) when it
// carries no information at all; labels are VSEF.
//
// Classification is structural and happens over go/types during checking.
// Types the classifier cannot prove can be asserted ISEF explicitly with
// AssertISEF; an assertion is the one centralized place where authorship
// risk lives, and the checker treats its call sites as audit markers.
package purity

import (
	"reflect"
	"sort"
	"sync"
)

// Assertion is the value returned by AssertISEF and AssertVSEF so that
// assertions can be spelled as package-level variables:
//
//	var _ = purity.AssertISEF[vendored.Matrix]()
type Assertion struct{}

var (
	mu       sync.RWMutex
	asserted = make(map[string]struct{})
)

// AssertISEF declares that T is invisibly side-effect free even though the
// classifier cannot prove it. The declarer vouches that no operation the
// checker admits on T performs observable work.
func AssertISEF[T any]() Assertion {
	mu.Lock()
	asserted[typeName(reflect.TypeFor[T]())] = struct{}{}
	mu.Unlock()
	return Assertion{}
}

// AssertVSEF declares that T is a zero-information marker type. Every VSEF
// type is also ISEF.
func AssertVSEF[T any]() Assertion {
	return AssertISEF[T]()
}

// Asserted reports whether the fully-qualified type name has been asserted
// ISEF at runtime. The checker resolves assertions statically; this query
// backs tests and the standalone engine.
func Asserted(fullName string) bool {
	mu.RLock()
	_, ok := asserted[fullName]
	mu.RUnlock()
	return ok
}

// AssertedNames returns every asserted type name, sorted.
func AssertedNames() []string {
	mu.RLock()
	out := make([]string, 0, len(asserted))
	for n := range asserted {
		out = append(out, n)
	}
	mu.RUnlock()
	sort.Strings(out)
	return out
}

func typeName(t reflect.Type) string {
	if t.PkgPath() != "" {
		return t.PkgPath() + "." + t.Name()
	}
	return t.String()
}
