// Package safeops mirrors the host operators that may appear inside a
// checked block. Each function performs exactly the named operation and
// nothing else; the checker rewrites (and the shadow generator emits) the
// operators of a checked body into these forms so that every operation in a
// block is a call whose behavior is known.
//
// Arithmetic follows native Go semantics: integer overflow wraps, integer
// division or remainder by zero panics. Panics are a termination channel
// the framework does not close.
package safeops

// Integer matches the built-in integer types.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Float matches the built-in float types.
type Float interface {
	~float32 | ~float64
}

// Numeric matches all built-in numeric types.
type Numeric interface {
	Integer | Float
}

// Addable matches the types the + operator accepts.
type Addable interface {
	Numeric | ~string
}

// Ordered matches the types the comparison operators accept.
type Ordered interface {
	Numeric | ~string
}

// Add returns a + b.
func Add[T Addable](a, b T) T { return a + b }

// Sub returns a - b.
func Sub[T Numeric](a, b T) T { return a - b }

// Mul returns a * b.
func Mul[T Numeric](a, b T) T { return a * b }

// Div returns a / b. Integer division by zero panics.
func Div[T Numeric](a, b T) T { return a / b }

// Rem returns a % b. Remainder by zero panics.
func Rem[T Integer](a, b T) T { return a % b }

// Neg returns -a.
func Neg[T Numeric](a T) T { return -a }

// Not returns !a.
func Not[T ~bool](a T) T { return !a }

// BitNot returns ^a.
func BitNot[T Integer](a T) T { return ^a }

// BitAnd returns a & b.
func BitAnd[T Integer](a, b T) T { return a & b }

// BitOr returns a | b.
func BitOr[T Integer](a, b T) T { return a | b }

// BitXor returns a ^ b.
func BitXor[T Integer](a, b T) T { return a ^ b }

// AndNot returns a &^ b.
func AndNot[T Integer](a, b T) T { return a &^ b }

// Shl returns a << n.
func Shl[T Integer, S Integer](a T, n S) T { return a << n }

// Shr returns a >> n.
func Shr[T Integer, S Integer](a T, n S) T { return a >> n }

// Eq returns a == b.
func Eq[T comparable](a, b T) bool { return a == b }

// Ne returns a != b.
func Ne[T comparable](a, b T) bool { return a != b }

// Lt returns a < b.
func Lt[T Ordered](a, b T) bool { return a < b }

// Le returns a <= b.
func Le[T Ordered](a, b T) bool { return a <= b }

// Gt returns a > b.
func Gt[T Ordered](a, b T) bool { return a > b }

// Ge returns a >= b.
func Ge[T Ordered](a, b T) bool { return a >= b }

// Min returns the smaller of a and b.
func Min[T Ordered](a, b T) T {
	if a < b {
		return a
	}
	return b
}

// Max returns the larger of a and b.
func Max[T Ordered](a, b T) T {
	if a > b {
		return a
	}
	return b
}

// Index returns s[i]. Out-of-range indices panic, as with the host operator.
func Index[S ~[]E, E any](s S, i int) E { return s[i] }

// IndexMap returns m[k] and whether k was present.
func IndexMap[M ~map[K]V, K comparable, V any](m M, k K) (V, bool) {
	v, ok := m[k]
	return v, ok
}

// IndexString returns s[i].
func IndexString[S ~string](s S, i int) byte { return s[i] }

// Deref returns *p.
func Deref[T any](p *T) T { return *p }
