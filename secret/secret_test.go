package secret_test

import (
	"fmt"
	"testing"

	"github.com/latticelabs/seclat/lattice/labels"
	"github.com/latticelabs/seclat/safeops"
	"github.com/latticelabs/seclat/secret"
)

func TestWrapDeclassifyRoundTrip(t *testing.T) {
	s := secret.Block(func(sc secret.Scope[labels.A]) secret.Secret[int, labels.A] {
		return secret.Wrap(sc, 42)
	})
	got := s.Declassify().GetValueConsume()
	if got != 42 {
		t.Errorf("round trip = %d, want 42", got)
	}
}

func TestCompoundRoundTrip(t *testing.T) {
	type payload struct {
		N   int32
		Buf [4]uint8
	}
	want := payload{N: 1, Buf: [4]uint8{2, 2, 2, 2}}
	s := secret.Block(func(sc secret.Scope[labels.AB]) secret.Secret[payload, labels.AB] {
		return secret.Wrap(sc, payload{N: 1, Buf: [4]uint8{2, 2, 2, 2}})
	})
	if got := s.Declassify().GetValueConsume(); got != want {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestSecretNeverFormatsItsValue(t *testing.T) {
	s := secret.New[labels.A](12345)
	for _, verb := range []string{"%v", "%+v", "%#v", "%s", "%q", "%d", "%x", "%o", "%b"} {
		out := fmt.Sprintf(verb, s)
		if out != "(secret)" {
			t.Errorf("Sprintf(%q) = %q, want (secret)", verb, out)
		}
	}
	f := secret.New[labels.A](1.5)
	if out := fmt.Sprintf("%f", f); out != "(secret)" {
		t.Errorf("Sprintf(%%f) = %q, want (secret)", out)
	}
}

func TestDeclassifiedRef(t *testing.T) {
	s := secret.New[labels.B]("classified")
	d := s.Declassify()
	if got := *d.Ref(); got != "classified" {
		t.Errorf("Ref = %q, want classified", got)
	}
}

func TestUnwrapRefDoesNotMove(t *testing.T) {
	s := secret.New[labels.A]([]int{1, 2, 3})
	sum := secret.Block(func(sc secret.Scope[labels.AB]) secret.Secret[int, labels.AB] {
		xs := secret.UnwrapRef(sc, &s)
		total := 0
		for i := 0; i < len(*xs); i++ {
			total = safeops.Add(total, safeops.Index(*xs, i))
		}
		return secret.Wrap(sc, total)
	})
	if got := sum.Declassify().GetValueConsume(); got != 6 {
		t.Errorf("sum = %d, want 6", got)
	}
}

func TestUnwrapMutRefMutatesInPlace(t *testing.T) {
	s := secret.New[labels.C](10)
	secret.BlockUnit(func(sc secret.Scope[labels.C]) {
		p := secret.UnwrapMutRef(sc, &s)
		*p = safeops.Add(*p, 5)
	})
	if got := s.Declassify().GetValueConsume(); got != 15 {
		t.Errorf("after mutation = %d, want 15", got)
	}
}

// The millionaires scenario: three parties at labels A, B, C; the pairwise
// maximum is computed at the join label ABC.
func TestMillionaires(t *testing.T) {
	alice := secret.New[labels.A](10)
	bob := secret.New[labels.B](50)
	charlie := secret.New[labels.C](100)

	richest := secret.Block(func(sc secret.Scope[labels.ABC]) secret.Secret[int, labels.ABC] {
		a := secret.Unwrap(sc, alice)
		b := secret.Unwrap(sc, bob)
		c := secret.Unwrap(sc, charlie)
		best := safeops.Max(safeops.Max(a, b), c)
		return secret.Wrap(sc, best)
	})

	if got := richest.Declassify().GetValueConsume(); got != 100 {
		t.Errorf("richest = %d, want 100", got)
	}
}

// The calendar-overlap scenario: two availability maps at labels A and B;
// the count of days both are free is computed at AB.
func TestCalendarOverlap(t *testing.T) {
	days := []string{"Monday", "Tuesday", "Wednesday", "Thursday"}
	avail1 := secret.New[labels.A](map[string]bool{
		"Monday": true, "Tuesday": false, "Wednesday": true, "Thursday": false,
	})
	avail2 := secret.New[labels.B](map[string]bool{
		"Monday": true, "Tuesday": true, "Wednesday": true, "Thursday": false,
	})

	overlap := secret.Block(func(sc secret.Scope[labels.AB]) secret.Secret[int, labels.AB] {
		m1 := secret.UnwrapRef(sc, &avail1)
		m2 := secret.UnwrapRef(sc, &avail2)
		count := 0
		for i := 0; i < len(days); i++ {
			day := safeops.Index(days, i)
			free1, _ := safeops.IndexMap(*m1, day)
			free2, _ := safeops.IndexMap(*m2, day)
			if free1 && free2 {
				count = safeops.Add(count, 1)
			}
		}
		return secret.Wrap(sc, count)
	})

	if got := overlap.Declassify().GetValueConsume(); got != 2 {
		t.Errorf("overlap = %d, want 2", got)
	}
}

func TestUncheckedSplice(t *testing.T) {
	s := secret.Block(func(sc secret.Scope[labels.A]) secret.Secret[string, labels.A] {
		// Formatting allocates; it is the author's obligation here.
		v := secret.Unchecked(func() string {
			return fmt.Sprintf("n=%d", 7)
		})
		return secret.Wrap(sc, v)
	})
	if got := s.Declassify().GetValueConsume(); got != "n=7" {
		t.Errorf("unchecked splice = %q, want n=7", got)
	}
}

func TestTupleRoundTrip(t *testing.T) {
	type pair struct {
		First  int32
		Second [4]uint8
	}
	s := secret.Block(func(sc secret.Scope[labels.BC]) secret.Secret[pair, labels.BC] {
		return secret.Wrap(sc, pair{First: 1, Second: [4]uint8{2, 2, 2, 2}})
	})
	got := s.Declassify().GetValueConsume()
	if got.First != 1 || got.Second != [4]uint8{2, 2, 2, 2} {
		t.Errorf("tuple round trip = %+v", got)
	}
}
