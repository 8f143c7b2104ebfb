package p384

import (
	fiat "gitlab.com/voikit/p384-voi/internal/fiat/p384montgomery"
	"gitlab.com/voikit/p384-voi/internal/helpers"
)

// Invert sets `fe = 1/a` and returns `fe, 1`.  If `a == 0`, `fe` is set
// to zero and Invert returns `fe, 0`.  The full fixed-iteration inversion
// is carried out regardless of the value of `a`, and the returned mask is
// derived from the input alone, so callers that need to can keep masking
// instead of branching.
func (fe *Element) Invert(a *Element) (*Element, uint64) {
	isValid := helpers.Uint64IsZero(a.IsZero())

	fiat.Invert(&fe.m, &a.m)

	return fe, isValid
}
