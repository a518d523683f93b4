package blocks

import (
	"strings"
	"sync"

	"github.com/latticelabs/seclat/lattice/labels"
	"github.com/latticelabs/seclat/safeops"
	"github.com/latticelabs/seclat/secret"
)

func RichestOfThree(a secret.Secret[int64, labels.A], b secret.Secret[int64, labels.B], c secret.Secret[int64, labels.C]) secret.Secret[int64, labels.ABC] {
	return secret.Block(func(sc secret.Scope[labels.ABC]) secret.Secret[int64, labels.ABC] {
		x := secret.Unwrap(sc, a)
		y := secret.Unwrap(sc, b)
		z := secret.Unwrap(sc, c)
		return secret.Wrap(sc, safeops.Max(safeops.Max(x, y), z))
	})
}

func Shout(name secret.Secret[string, labels.A]) secret.Secret[string, labels.A] {
	return secret.Block(func(sc secret.Scope[labels.A]) secret.Secret[string, labels.A] {
		return secret.Wrap(sc, strings.ToUpper(secret.Unwrap(sc, name)))
	})
}

func Nested(a secret.Secret[int64, labels.A], b secret.Secret[int64, labels.B]) secret.Secret[int64, labels.AB] {
	return secret.Block(func(sc secret.Scope[labels.AB]) secret.Secret[int64, labels.AB] {
		inner := secret.Block(func(in secret.Scope[labels.AB]) secret.Secret[int64, labels.AB] {
			return secret.Wrap(in, secret.Unwrap(in, a))
		})
		return secret.Wrap(sc, safeops.Add(secret.Unwrap(sc, inner), secret.Unwrap(sc, b)))
	})
}

//ifc:sideeffectfree
func twice(x int64) int64 { // want twice:"sideEffectFree"
	return x * 2
}

func UsesAnnotated(a secret.Secret[int64, labels.A]) secret.Secret[int64, labels.A] {
	return secret.Block(func(sc secret.Scope[labels.A]) secret.Secret[int64, labels.A] {
		return secret.Wrap(sc, twice(secret.Unwrap(sc, a)))
	})
}

func LocalClosure(a secret.Secret[int64, labels.A]) secret.Secret[int64, labels.A] {
	return secret.Block(func(sc secret.Scope[labels.A]) secret.Secret[int64, labels.A] {
		double := func(x int64) int64 { return x * 2 }
		return secret.Wrap(sc, double(secret.Unwrap(sc, a)))
	})
}

func Splice(a secret.Secret[int64, labels.A]) {
	secret.BlockUnit(func(sc secret.Scope[labels.A]) {
		v := secret.Unwrap(sc, a)
		secret.UncheckedUnit(func() {
			leak(v)
		})
	})
}

func MutWithinLabel(a *secret.Secret[int64, labels.A]) {
	secret.BlockUnit(func(sc secret.Scope[labels.A]) {
		p := secret.UnwrapMutRef(sc, a)
		*p = *p + 1
	})
}

func leak(int64) {}

// --- violations ---

func LeakByPrint(a secret.Secret[int64, labels.A]) {
	secret.BlockUnit(func(sc secret.Scope[labels.A]) {
		v := secret.Unwrap(sc, a)
		println(v) // want `built-in println is not permitted`
	})
}

type tally struct{ n int64 }

func (t *tally) bump(v int64) { t.n += v }

func LeakByMethod(a secret.Secret[int64, labels.A]) {
	var t tally
	secret.BlockUnit(func(sc secret.Scope[labels.A]) {
		t.bump(secret.Unwrap(sc, a)) // want `neither annotated`
	})
}

func LabelMismatch(ab secret.Secret[int64, labels.AB]) secret.Secret[int64, labels.A] {
	return secret.Block(func(sc secret.Scope[labels.A]) secret.Secret[int64, labels.A] {
		v := secret.Unwrap(sc, ab) // want `does not dominate`
		return secret.Wrap(sc, v)
	})
}

func MutTooHigh(a *secret.Secret[int64, labels.A]) {
	secret.BlockUnit(func(sc secret.Scope[labels.ABC]) {
		p := secret.UnwrapMutRef(sc, a) // want `mutable unwrap`
		*p = 7
	})
}

func EffectfulValue() {
	secret.BlockUnit(func(sc secret.Scope[labels.A]) {
		var mu sync.Mutex // want `sync.Mutex is a lock`
		_ = mu            // want `sync.Mutex is a lock`
	})
}

func EarlyReturn(a secret.Secret[int64, labels.A]) secret.Secret[int64, labels.A] {
	return secret.Block(func(sc secret.Scope[labels.A]) secret.Secret[int64, labels.A] {
		v := secret.Unwrap(sc, a)
		if v > 0 {
			return secret.Wrap(sc, v) // want `single terminating wrap`
		}
		return secret.Wrap(sc, int64(0))
	})
}

func NoTerminator() secret.Secret[int64, labels.A] {
	return secret.Block(func(sc secret.Scope[labels.A]) secret.Secret[int64, labels.A] {
		panic("no result") // want `built-in panic is not permitted`
	}) // want `must end in`
}

func WrapMisplaced(a secret.Secret[int64, labels.A]) secret.Secret[int64, labels.A] {
	return secret.Block(func(sc secret.Scope[labels.A]) secret.Secret[int64, labels.A] {
		v := secret.Wrap(sc, int64(1)) // want `only legal as the block`
		_ = v
		return secret.Wrap(sc, secret.Unwrap(sc, a))
	})
}

func MintInside() {
	secret.BlockUnit(func(sc secret.Scope[labels.A]) {
		s := secret.New[labels.A](int64(1)) // want `seeds values outside blocks`
		_ = s
	})
}

func DeclassifyInside(a secret.Secret[int64, labels.A]) {
	secret.BlockUnit(func(sc secret.Scope[labels.A]) {
		_ = a.Declassify() // want `declassification inside a checked block`
	})
}

func Exfiltrate(a secret.Secret[int64, labels.A], out chan int64) {
	secret.BlockUnit(func(sc secret.Scope[labels.A]) {
		out <- secret.Unwrap(sc, a) // want `channel send`
	})
}

func SpawnInside(a secret.Secret[int64, labels.A]) {
	secret.BlockUnit(func(sc secret.Scope[labels.A]) {
		v := secret.Unwrap(sc, a)
		go leak(v)    // want `go statement`
		defer leak(v) // want `defer runs after`
	})
}

func FuncValueIn(f func() int64) {
	secret.BlockUnit(func(sc secret.Scope[labels.A]) {
		v := f() // want `call through a function value`
		_ = v
	})
}

//ifc:sideeffectfree
func noisy(x int64) int64 { // want noisy:"sideEffectFree"
	println(x) // want `built-in println is not permitted`
	return x
}

var _ = noisy

func ForgedScope(a secret.Secret[int64, labels.ABC]) int64 {
	sc := secret.Scope[labels.ABC]{} // want `scope cannot be constructed`
	return secret.Unwrap(sc, a)      // want `bridge primitive`
}

func ForgedScopeInside() {
	secret.BlockUnit(func(sc secret.Scope[labels.A]) {
		forged := secret.Scope[labels.ABC]{} // want `scope cannot be constructed`
		_ = forged
	})
}

func ExportByAssign(a secret.Secret[int64, labels.A]) int64 {
	var out int64
	secret.BlockUnit(func(sc secret.Scope[labels.A]) {
		out = secret.Unwrap(sc, a) // want `declared outside the block`
	})
	return out
}

func WriteThroughBorrow(a *secret.Secret[int64, labels.A]) {
	secret.BlockUnit(func(sc secret.Scope[labels.A]) {
		p := secret.UnwrapRef(sc, a)
		*p = 9 // want `read-only borrow`
	})
}
