package purity

import (
	"fmt"
	"go/types"
)

// SecretPkgPath is the import path of the secret container package. The
// container is ISEF whenever its element type is, so the classifier knows
// it by name.
const SecretPkgPath = "github.com/latticelabs/seclat/secret"

// Types that hold locks, handles, or interior mutability. Structural
// classification would wrongly admit several of these (a Mutex is plain
// integers underneath), so they are denied by name.
var denied = map[string]string{
	"sync.Mutex":         "lock",
	"sync.RWMutex":       "lock",
	"sync.WaitGroup":     "synchronization primitive",
	"sync.Once":          "synchronization primitive",
	"sync.Cond":          "synchronization primitive",
	"sync.Map":           "interior-mutable map",
	"sync.Pool":          "allocation pool",
	"sync/atomic.Bool":   "interior-mutable cell",
	"sync/atomic.Int32":  "interior-mutable cell",
	"sync/atomic.Int64":  "interior-mutable cell",
	"sync/atomic.Uint32": "interior-mutable cell",
	"sync/atomic.Uint64": "interior-mutable cell",
	"sync/atomic.Value":  "interior-mutable cell",
	"os.File":            "OS handle",
	"os.Process":         "OS handle",
	"reflect.Value":      "runtime-tagged reference",
	"math/rand.Rand":     "stateful generator",
	"time.Timer":         "OS-backed timer",
	"time.Ticker":        "OS-backed timer",
}

// Classifier decides whether a go/types type is ISEF. It carries the set of
// explicitly asserted type names; structural rules cover everything else.
type Classifier struct {
	asserted map[string]struct{}
}

// NewClassifier builds a classifier over the given asserted type names
// (fully qualified, "pkg/path.Name").
func NewClassifier(assertedNames []string) *Classifier {
	c := &Classifier{asserted: make(map[string]struct{}, len(assertedNames))}
	for _, n := range assertedNames {
		c.asserted[n] = struct{}{}
	}
	return c
}

// Assert adds a type name to the asserted set.
func (c *Classifier) Assert(fullName string) {
	c.asserted[fullName] = struct{}{}
}

// AssertedNames returns the asserted type names in unspecified order.
func (c *Classifier) AssertedNames() []string {
	out := make([]string, 0, len(c.asserted))
	for n := range c.asserted {
		out = append(out, n)
	}
	return out
}

// ISEF reports whether t is invisibly side-effect free. A nil error means
// yes; otherwise the error names the path to the offending component.
func (c *Classifier) ISEF(t types.Type) error {
	return c.isef(t, make(map[*types.TypeName]bool))
}

func (c *Classifier) isef(t types.Type, onStack map[*types.TypeName]bool) error {
	switch t := types.Unalias(t).(type) {
	case *types.Basic:
		switch t.Kind() {
		case types.Invalid:
			return fmt.Errorf("invalid type")
		case types.UnsafePointer:
			return fmt.Errorf("unsafe.Pointer")
		default:
			return nil
		}

	case *types.Pointer:
		return c.isef(t.Elem(), onStack)

	case *types.Slice:
		return c.isef(t.Elem(), onStack)

	case *types.Array:
		return c.isef(t.Elem(), onStack)

	case *types.Map:
		if err := c.isef(t.Key(), onStack); err != nil {
			return fmt.Errorf("map key: %w", err)
		}
		if err := c.isef(t.Elem(), onStack); err != nil {
			return fmt.Errorf("map value: %w", err)
		}
		return nil

	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			f := t.Field(i)
			if err := c.isef(f.Type(), onStack); err != nil {
				return fmt.Errorf("field %s: %w", f.Name(), err)
			}
		}
		return nil

	case *types.Named:
		obj := t.Obj()
		name := qualifiedName(obj)
		if reason, ok := denied[name]; ok {
			return fmt.Errorf("%s is a %s", name, reason)
		}
		if _, ok := c.asserted[name]; ok {
			return nil
		}
		if obj.Pkg() != nil && obj.Pkg().Path() == SecretPkgPath {
			switch obj.Name() {
			case "Secret":
				// Secret[T, L] is ISEF iff T is.
				if args := t.TypeArgs(); args != nil && args.Len() > 0 {
					return c.isef(args.At(0), onStack)
				}
				return nil
			case "Scope":
				// The block capability is zero-information.
				return nil
			case "Declassified":
				return fmt.Errorf("%s is an escape wrapper and may not cross a block boundary", name)
			}
		}
		if onStack[obj] {
			// Recursive type: admissible if every other path is.
			return nil
		}
		onStack[obj] = true
		err := c.isef(t.Underlying(), onStack)
		delete(onStack, obj)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil

	case *types.Chan:
		return fmt.Errorf("channel")

	case *types.Signature:
		return fmt.Errorf("function value")

	case *types.Interface:
		if t.Empty() {
			return fmt.Errorf("empty interface (dynamic type unknown)")
		}
		return fmt.Errorf("interface (dynamic dispatch)")

	case *types.TypeParam:
		return fmt.Errorf("unconstrained type parameter %s", t.Obj().Name())

	default:
		return fmt.Errorf("unsupported type %T", t)
	}
}

// VSEF reports whether t carries no information at all: zero-sized structs
// and arrays of VSEF types. Labels must be VSEF.
func VSEF(t types.Type) bool {
	switch t := types.Unalias(t).(type) {
	case *types.Struct:
		for i := 0; i < t.NumFields(); i++ {
			if !VSEF(t.Field(i).Type()) {
				return false
			}
		}
		return true
	case *types.Array:
		return t.Len() == 0 || VSEF(t.Elem())
	case *types.Named:
		return VSEF(t.Underlying())
	default:
		return false
	}
}

func qualifiedName(obj *types.TypeName) string {
	if obj.Pkg() != nil {
		return obj.Pkg().Path() + "." + obj.Name()
	}
	return obj.Name()
}
