package p384

import (
	"gitlab.com/voikit/p384-voi/internal/helpers"
)

// (p+1)/4, the square root exponent for p = 3 mod 4.
var feSqrtExp = helpers.MustBytesFromHex("3fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffbfffffffc00000000000000040000000")

// Sqrt sets `fe` to a square root of `a` and returns `fe, 1`.  If `a` is
// not a quadratic residue, `fe` is set to the (meaningless) candidate
// root and Sqrt returns `fe, 0`.
func (fe *Element) Sqrt(a *Element) (*Element, uint64) {
	// Since p = 3 mod 4, the candidate root is `a^((p+1)/4)`, and
	// squaring it back tells if a root exists at all.
	candidate := NewElement().pow(a, feSqrtExp)

	var check Element
	check.Square(candidate)
	isSquare := check.Equal(a)

	fe.Set(candidate)

	return fe, isSquare
}

// pow sets `fe = a^e`, where `e` is a fixed big-endian exponent, and
// returns `fe`.  The exponent is public, so the bit-scan is allowed to
// branch on it.
func (fe *Element) pow(a *Element, e []byte) *Element {
	x := NewElementFrom(a)

	fe.One()
	for _, b := range e {
		for bit := 7; bit >= 0; bit-- {
			fe.Square(fe)
			if (b>>uint(bit))&1 == 1 {
				fe.Multiply(fe, x)
			}
		}
	}

	return fe
}
