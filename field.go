// Package p384 implements arithmetic modulo p = 2^384 - 2^128 - 2^96 + 2^32 - 1,
// the field underlying the NIST P-384 elliptic curve, with all operations
// running in constant time with respect to the values involved.
package p384

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"io"

	"gitlab.com/voikit/p384-voi/internal/disalloweq"
	fiat "gitlab.com/voikit/p384-voi/internal/fiat/p384montgomery"
	"gitlab.com/voikit/p384-voi/internal/helpers"
)

// ElementSize is the size of a field element in bytes.
const ElementSize = 48

var (
	mSat = func() [7]uint64 {
		var m [7]uint64
		fiat.Msat(&m)
		return m
	}()

	errValueOutOfRange = errors.New("p384: value out of range")
	errEntropySource   = errors.New("p384: entropy source failure")
)

// Element is a field element.  All arguments and receivers are allowed
// to alias.  The zero value is a valid zero element.
type Element struct {
	_ disalloweq.DisallowEqual
	m fiat.MontgomeryDomainFieldElement
}

// Zero sets `fe = 0` and returns `fe`.
func (fe *Element) Zero() *Element {
	for i := range fe.m {
		fe.m[i] = 0
	}
	return fe
}

// One sets `fe = 1` and returns `fe`.
func (fe *Element) One() *Element {
	fiat.SetOne(&fe.m)
	return fe
}

// Add sets `fe = a + b` and returns `fe`.
func (fe *Element) Add(a, b *Element) *Element {
	fiat.Add(&fe.m, &a.m, &b.m)
	return fe
}

// Subtract sets `fe = a - b` and returns `fe`.
func (fe *Element) Subtract(a, b *Element) *Element {
	fiat.Sub(&fe.m, &a.m, &b.m)
	return fe
}

// Negate sets `fe = -a` and returns `fe`.
func (fe *Element) Negate(a *Element) *Element {
	fiat.Opp(&fe.m, &a.m)
	return fe
}

// Multiply sets `fe = a * b` and returns `fe`.
func (fe *Element) Multiply(a, b *Element) *Element {
	fiat.Mul(&fe.m, &a.m, &b.m)
	return fe
}

// Square sets `fe = a * a` and returns `fe`.
func (fe *Element) Square(a *Element) *Element {
	fiat.Square(&fe.m, &a.m)
	return fe
}

// Double sets `fe = a + a` and returns `fe`.
func (fe *Element) Double(a *Element) *Element {
	fiat.Add(&fe.m, &a.m, &a.m)
	return fe
}

// Pow2k sets `fe = a ^ (2^k)` and returns `fe`.  k MUST be non-zero.
func (fe *Element) Pow2k(a *Element, k uint) *Element {
	if k == 0 {
		// This could just set fe = a, but "don't do that".
		panic("p384: k out of bounds")
	}

	fiat.Square(&fe.m, &a.m)
	for i := uint(1); i < k; i++ {
		fiat.Square(&fe.m, &fe.m)
	}

	return fe
}

// Set sets `fe = a` and returns `fe`.
func (fe *Element) Set(a *Element) *Element {
	copy(fe.m[:], a.m[:])
	return fe
}

// SetCanonicalBytes sets `fe = src`, where `src` is a 48-byte big-endian
// encoding of `fe`, and returns `fe`.  If `src` is not a canonical
// encoding of `fe`, SetCanonicalBytes returns nil and an error, and the
// receiver is unchanged.
func (fe *Element) SetCanonicalBytes(src *[ElementSize]byte) (*Element, error) {
	l := helpers.BytesToSaturated(src)

	if !fe.setSaturated(&l) {
		return nil, errValueOutOfRange
	}

	return fe, nil
}

// MustSetCanonicalBytes sets `fe = src`, where `src` MUST be a 48-byte
// big-endian canonical encoding of `fe`, and returns `fe`.
func (fe *Element) MustSetCanonicalBytes(src *[ElementSize]byte) *Element {
	if _, err := fe.SetCanonicalBytes(src); err != nil {
		panic(err)
	}
	return fe
}

// SetSaturated sets `fe = a`, where `a` is the little-endian saturated
// limb representation of `fe`, and returns `fe`.  If `a` is not in the
// range `[0, p)`, SetSaturated returns nil and an error, and the receiver
// is unchanged.
func (fe *Element) SetSaturated(a *[6]uint64) (*Element, error) {
	if !fe.setSaturated(a) {
		return nil, errValueOutOfRange
	}

	return fe, nil
}

// Bytes returns the canonical big-endian encoding of `fe`.
func (fe *Element) Bytes() []byte {
	// Blah blah blah outline blah escape analysis blah.
	var dst [ElementSize]byte
	return fe.getBytes(&dst)
}

func (fe *Element) getBytes(dst *[ElementSize]byte) []byte {
	var nm fiat.NonMontgomeryDomainFieldElement
	fiat.FromMontgomery(&nm, &fe.m)

	*dst = helpers.SaturatedToBytes((*[6]uint64)(&nm))

	return dst[:]
}

// ConditionalSelect sets `fe = a` iff `ctrl == 0`, `fe = b` otherwise,
// and returns `fe`.
func (fe *Element) ConditionalSelect(a, b *Element, ctrl uint64) *Element {
	fiat.Selectznz((*[6]uint64)(&fe.m), fiat.Uint64ToUint1(ctrl), (*[6]uint64)(&a.m), (*[6]uint64)(&b.m))
	return fe
}

// Equal returns 1 iff `fe == a`, 0 otherwise.
func (fe *Element) Equal(a *Element) uint64 {
	return helpers.FiatLimbsAreEqual((*[6]uint64)(&fe.m), (*[6]uint64)(&a.m))
}

// IsZero returns 1 iff `fe == 0`, 0 otherwise.
func (fe *Element) IsZero() uint64 {
	var ctrl uint64
	fiat.Nonzero(&ctrl, (*[6]uint64)(&fe.m))

	return helpers.Uint64IsZero(ctrl)
}

// IsOdd returns 1 iff `fe % 2 == 1`, 0 otherwise.
func (fe *Element) IsOdd() uint64 {
	// Parity is not preserved by the Montgomery transform, so this
	// needs the canonical representation.
	var nm fiat.NonMontgomeryDomainFieldElement
	fiat.FromMontgomery(&nm, &fe.m)

	return helpers.Uint64IsNonzero(nm[0] & 1)
}

// IsGreaterThan returns 1 iff `fe > a`, 0 otherwise, comparing the
// canonical representations in constant time.
func (fe *Element) IsGreaterThan(a *Element) uint64 {
	feSat, aSat := fe.canonicalSaturated(), a.canonicalSaturated()

	// fe > a iff a - fe borrows, and a >= fe otherwise.
	return (^helpers.SaturatedCmpGeq(&aSat, &feSat)) & 1
}

// IsLessThan returns 1 iff `fe < a`, 0 otherwise, comparing the
// canonical representations in constant time.
func (fe *Element) IsLessThan(a *Element) uint64 {
	feSat, aSat := fe.canonicalSaturated(), a.canonicalSaturated()

	return (^helpers.SaturatedCmpGeq(&feSat, &aSat)) & 1
}

func (fe *Element) canonicalSaturated() [6]uint64 {
	var nm fiat.NonMontgomeryDomainFieldElement
	fiat.FromMontgomery(&nm, &fe.m)
	return nm
}

// String returns the big-endian hex representation of `fe`.
func (fe *Element) String() string {
	return hex.EncodeToString(fe.Bytes())
}

func (fe *Element) setSaturated(a *[6]uint64) bool {
	if !saturatedInRange(a) {
		return false
	}
	fiat.ToMontgomery(&fe.m, (*fiat.NonMontgomeryDomainFieldElement)(a))
	return true
}

// SetRandom sets `fe` to a uniformly random element, drawn from the
// entropy source `rng`, and returns `fe`.  If `rng` is nil, the system
// entropy source will be used.  This is the only routine in this package
// where the amount of work done is value-dependent: candidates are drawn
// until one is in the range `[0, p)`, so that the result is unbiased.
func (fe *Element) SetRandom(rng io.Reader) (*Element, error) {
	if rng == nil {
		rng = rand.Reader
	}

	var b [ElementSize]byte
	for {
		if _, err := io.ReadFull(rng, b[:]); err != nil {
			return nil, errors.Join(errEntropySource, err)
		}
		if _, err := fe.SetCanonicalBytes(&b); err == nil {
			return fe, nil
		}
	}
}

// MustRandomize randomizes and returns `fe`, or panics.
func (fe *Element) MustRandomize() *Element {
	fe, err := fe.SetRandom(nil)
	if err != nil {
		panic(err)
	}
	return fe
}

// NewElement returns a new zero Element.
func NewElement() *Element {
	return &Element{}
}

// NewElementFrom creates a new Element from another.
func NewElementFrom(other *Element) *Element {
	return NewElement().Set(other)
}

// NewElementFromSaturated creates a new Element from the raw saturated
// representation, provided most-significant limb first.
func NewElementFromSaturated(l5, l4, l3, l2, l1, l0 uint64) *Element {
	var l [6]uint64
	l[0] = l0
	l[1] = l1
	l[2] = l2
	l[3] = l3
	l[4] = l4
	l[5] = l5

	// Yes, this panics if you fuck up.  Why are you using this for
	// anything but pre-computed constants?
	var fe Element
	if !fe.setSaturated(&l) {
		panic("p384: saturated limbs out of range")
	}

	return &fe
}

// NewElementFromCanonicalBytes creates a new Element from the canonical
// big-endian byte representation.
func NewElementFromCanonicalBytes(src *[ElementSize]byte) (*Element, error) {
	e, err := NewElement().SetCanonicalBytes(src)
	if err != nil {
		return nil, err
	}

	return e, nil
}

// NewElementFromCanonicalHex creates a new Element from the canonical
// big-endian hex representation, and panics on invalid input.  An `0x`
// prefix is allowed, leading zeros may be omitted.
func NewElementFromCanonicalHex(str string) *Element {
	b := helpers.MustBytesFromHex(str)
	if len(b) > ElementSize {
		panic("p384: hex element too large")
	}

	var src [ElementSize]byte
	copy(src[ElementSize-len(b):], b)

	return NewElement().MustSetCanonicalBytes(&src)
}

func saturatedInRange(a *[6]uint64) bool {
	// In range iff a - p borrows.
	m := (*[6]uint64)(mSat[:6])
	return helpers.SaturatedCmpGeq(a, m) == 0
}
