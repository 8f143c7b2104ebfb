package p384

import (
	fiat "gitlab.com/voikit/p384-voi/internal/fiat/p384montgomery"
	"gitlab.com/voikit/p384-voi/internal/helpers"
)

// WideElementSize is the maximum size of a wide element in bytes.
const WideElementSize = 96

var (
	feTwo192 = NewElementFromCanonicalHex("0x1000000000000000000000000000000000000000000000000")
	feTwo384 = NewElementFromCanonicalHex("0x100000000ffffffffffffffff00000001") // 2^384 mod p
	feTwo576 = NewElementFromCanonicalHex("0x100000000ffffffffffffffff00000001000000000000000000000000000000000000000000000000")
)

// SetCanonicalBytesLE sets `fe = src`, where `src` is a 48-byte
// little-endian encoding of `fe`, and returns `fe`.  If `src` is not a
// canonical encoding of `fe`, SetCanonicalBytesLE returns nil and an
// error, and the receiver is unchanged.
func (fe *Element) SetCanonicalBytesLE(src *[ElementSize]byte) (*Element, error) {
	l := helpers.BytesToSaturatedLE(src)

	if !fe.setSaturated(&l) {
		return nil, errValueOutOfRange
	}

	return fe, nil
}

// BytesLE returns the canonical little-endian encoding of `fe`.
func (fe *Element) BytesLE() []byte {
	var dst [ElementSize]byte
	return fe.getBytesLE(&dst)
}

func (fe *Element) getBytesLE(dst *[ElementSize]byte) []byte {
	var nm fiat.NonMontgomeryDomainFieldElement
	fiat.FromMontgomery(&nm, &fe.m)

	*dst = helpers.SaturatedToBytesLE((*[6]uint64)(&nm))

	return dst[:]
}

// SetWideBytes sets `fe = src % p`, where `src` is a big-endian encoding
// of `fe` with a length in the range `[48,96]`-bytes, and returns `fe`.
// This routine exists to support standards that mandate wide reduction
// (eg. hash-to-field), and has no other practical use since p is close
// enough to `2^384-1` that the bias from a narrow reduction is minimal.
func (fe *Element) SetWideBytes(src []byte) *Element {
	sLen := len(src)
	switch {
	case sLen < ElementSize:
		panic("p384: wide element too short")
	case sLen <= WideElementSize:
		// Split the value into 192-bit chunks, each of which is
		// trivially canonical, and recombine against the precomputed
		// powers of 2^192 mod p.
		//
		// "I represent the value as a + b*2^192 + c*2^384 + d*2^576",
		// after the wide-reduction trick documented by Filippo
		// Valsorda at https://words.filippo.io/dispatches/wide-reduction/

		// First ensure that we are working with a 768-bit big-endian
		// value.
		var src768 [WideElementSize]byte
		copy(src768[WideElementSize-sLen:], src)

		fe.setShortBytes(src768[72:])                  // a
		b := NewElement().setShortBytes(src768[48:72]) // b
		c := NewElement().setShortBytes(src768[24:48]) // c
		d := NewElement().setShortBytes(src768[:24])   // d
		fe.Add(fe, b.Multiply(b, feTwo192))
		fe.Add(fe, c.Multiply(c, feTwo384))
		fe.Add(fe, d.Multiply(d, feTwo576))

		return fe
	default:
		panic("p384: wide element too large")
	}
}

func (fe *Element) setShortBytes(src []byte) *Element {
	sLen := len(src)
	if sLen >= ElementSize {
		panic("p384: short element too wide")
	}

	var src384 [ElementSize]byte
	copy(src384[ElementSize-sLen:], src)

	return fe.MustSetCanonicalBytes(&src384)
}
