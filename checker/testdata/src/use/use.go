package use

import (
	"declare"

	"github.com/latticelabs/seclat/lattice/labels"
	"github.com/latticelabs/seclat/secret"
)

// Raise relabels under a lattice pair and calls an annotated function, both
// declared in another package; the checker learns both through facts.
func Raise(a secret.Secret[int64, labels.A]) secret.Secret[int64, declare.Internal] {
	return secret.Block(func(sc secret.Scope[declare.Internal]) secret.Secret[int64, declare.Internal] {
		return secret.Wrap(sc, declare.Scale(secret.Unwrap(sc, a), 3))
	})
}

// Lower flows against the declared direction.
func Lower(s secret.Secret[int64, declare.Internal]) secret.Secret[int64, labels.A] {
	return secret.Block(func(sc secret.Scope[labels.A]) secret.Secret[int64, labels.A] {
		v := secret.Unwrap(sc, s) // want `does not dominate`
		return secret.Wrap(sc, v)
	})
}
