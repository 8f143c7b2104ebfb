// Package p384montgomery implements constant-time arithmetic modulo
// p = 2^384 - 2^128 - 2^96 + 2^32 - 1, the NIST P-384 base field.
//
// The API mirrors the word-by-word Montgomery code emitted by fiat-crypto,
// so the calling conventions (domain-tagged types, Selectznz, and the
// Msat/Divstep/DivstepPrecomp trio consumed by the safegcd inversion)
// line up with the upstream inversion templates, but the limbs are handled
// by ordinary hand-written carry chains over the math/bits intrinsics.
//
// All routines are constant time with respect to the values of their
// field-element arguments, and output pointers are allowed to alias input
// pointers.
package p384montgomery

import "math/bits"

// MontgomeryDomainFieldElement is a field element in the Montgomery domain.
//
// Bounds: the represented value is fully reduced (strictly less than p).
type MontgomeryDomainFieldElement [6]uint64

// NonMontgomeryDomainFieldElement is a field element NOT in the Montgomery
// domain.
//
// Bounds: the represented value is fully reduced (strictly less than p).
type NonMontgomeryDomainFieldElement [6]uint64

// Uint1 is a single bit carried in a word, per the fiat-crypto convention.
type Uint1 uint64

// Uint64ToUint1 converts a uint64 that MUST be in the range [0, 1] to
// a Uint1.
func Uint64ToUint1(x uint64) Uint1 {
	return Uint1(x)
}

var (
	// p, least-significant limb first.
	pSat = [6]uint64{
		0x00000000ffffffff,
		0xffffffff00000000,
		0xfffffffffffffffe,
		0xffffffffffffffff,
		0xffffffffffffffff,
		0xffffffffffffffff,
	}

	// R = 2^384 mod p, ie. 1 in the Montgomery domain.
	montOne = [6]uint64{
		0xffffffff00000001,
		0x00000000ffffffff,
		0x0000000000000001,
		0x0000000000000000,
		0x0000000000000000,
		0x0000000000000000,
	}

	// R^2 mod p, the to-Montgomery multiplier.
	montRR = [6]uint64{
		0xfffffffe00000001,
		0x0000000200000000,
		0xfffffffe00000000,
		0x0000000200000000,
		0x0000000000000001,
		0x0000000000000000,
	}

	// 2^-1110 * R mod p, the divstep scaling correction (see invert.go).
	divstepPrecomp = [6]uint64{
		0xfff69400fff18fff,
		0x0002b7feffffd3ff,
		0xfffedbfffffe97ff,
		0x0002840000002fff,
		0x0006040000050400,
		0xfffc480000038000,
	}
)

// -p^-1 mod 2^64, the Montgomery reduction factor.
const montN0 uint64 = 0x100000001

// cmovznzU64 returns `a` if `cond == 0` and `b` if `cond == 1`, without
// branching.  `cond` MUST be in the range [0, 1].
func cmovznzU64(cond, a, b uint64) uint64 {
	mask := -cond
	return a ^ (mask & (a ^ b))
}

// mac returns the low word of `z + x*y + c`, and the carry into the
// next word.
func mac(z, x, y, c uint64) (uint64, uint64) {
	hi, lo := bits.Mul64(x, y)
	lo, c1 := bits.Add64(lo, z, 0)
	lo, c2 := bits.Add64(lo, c, 0)
	return lo, hi + c1 + c2
}

// montMul sets `out = a * b * R^-1 mod p` via word-by-word (CIOS)
// Montgomery multiplication.  The interleaved reduction keeps the
// accumulator below 2p, so a single conditional subtraction at the end
// fully reduces the result.
func montMul(out, a, b *[6]uint64) {
	var t [8]uint64
	for i := 0; i < 6; i++ {
		var c uint64
		for j := 0; j < 6; j++ {
			t[j], c = mac(t[j], a[i], b[j], c)
		}
		var c2 uint64
		t[6], c2 = bits.Add64(t[6], c, 0)
		t[7] = c2

		m := t[0] * montN0
		_, c = mac(t[0], m, pSat[0], 0)
		for j := 1; j < 6; j++ {
			t[j-1], c = mac(t[j], m, pSat[j], c)
		}
		t[5], c2 = bits.Add64(t[6], c, 0)
		t[6] = t[7] + c2
		t[7] = 0
	}

	var (
		s      [6]uint64
		borrow uint64
	)
	for j := 0; j < 6; j++ {
		s[j], borrow = bits.Sub64(t[j], pSat[j], borrow)
	}
	_, borrow = bits.Sub64(t[6], 0, borrow)

	// borrow == 1 iff t < p (the subtraction was not needed).
	for j := 0; j < 6; j++ {
		out[j] = cmovznzU64(borrow, s[j], t[j])
	}
}

// modAdd sets `out = a + b mod p`.
func modAdd(out, a, b *[6]uint64) {
	var (
		s     [6]uint64
		carry uint64
	)
	for i := 0; i < 6; i++ {
		s[i], carry = bits.Add64(a[i], b[i], carry)
	}

	var (
		d      [6]uint64
		borrow uint64
	)
	for i := 0; i < 6; i++ {
		d[i], borrow = bits.Sub64(s[i], pSat[i], borrow)
	}
	_, borrow = bits.Sub64(carry, 0, borrow)

	// borrow == 1 iff a + b < p.
	for i := 0; i < 6; i++ {
		out[i] = cmovznzU64(borrow, d[i], s[i])
	}
}

// modSub sets `out = a - b mod p`.
func modSub(out, a, b *[6]uint64) {
	var (
		d      [6]uint64
		borrow uint64
	)
	for i := 0; i < 6; i++ {
		d[i], borrow = bits.Sub64(a[i], b[i], borrow)
	}

	// Add p back iff the subtraction borrowed.
	mask := -borrow
	var carry uint64
	for i := 0; i < 6; i++ {
		out[i], carry = bits.Add64(d[i], pSat[i]&mask, carry)
	}
}

// modOpp sets `out = -a mod p`.
func modOpp(out, a *[6]uint64) {
	var zero [6]uint64
	modSub(out, &zero, a)
}

// Add sets `out = a + b mod p`.
func Add(out, a, b *MontgomeryDomainFieldElement) {
	modAdd((*[6]uint64)(out), (*[6]uint64)(a), (*[6]uint64)(b))
}

// Sub sets `out = a - b mod p`.
func Sub(out, a, b *MontgomeryDomainFieldElement) {
	modSub((*[6]uint64)(out), (*[6]uint64)(a), (*[6]uint64)(b))
}

// Opp sets `out = -a mod p`.
func Opp(out, a *MontgomeryDomainFieldElement) {
	modOpp((*[6]uint64)(out), (*[6]uint64)(a))
}

// Mul sets `out = a * b mod p`, in the Montgomery domain.
func Mul(out, a, b *MontgomeryDomainFieldElement) {
	montMul((*[6]uint64)(out), (*[6]uint64)(a), (*[6]uint64)(b))
}

// Square sets `out = a * a mod p`, in the Montgomery domain.
func Square(out, a *MontgomeryDomainFieldElement) {
	montMul((*[6]uint64)(out), (*[6]uint64)(a), (*[6]uint64)(a))
}

// SetOne sets `out = 1`, in the Montgomery domain.
func SetOne(out *MontgomeryDomainFieldElement) {
	copy(out[:], montOne[:])
}

// ToMontgomery converts `a` into the Montgomery domain.
func ToMontgomery(out *MontgomeryDomainFieldElement, a *NonMontgomeryDomainFieldElement) {
	montMul((*[6]uint64)(out), (*[6]uint64)(a), &montRR)
}

// FromMontgomery converts `a` out of the Montgomery domain.
func FromMontgomery(out *NonMontgomeryDomainFieldElement, a *MontgomeryDomainFieldElement) {
	one := [6]uint64{1}
	montMul((*[6]uint64)(out), (*[6]uint64)(a), &one)
}

// Nonzero sets `out` to 0 iff `arg == 0`, and to a nonzero value otherwise.
func Nonzero(out *uint64, arg *[6]uint64) {
	var x uint64
	for _, l := range arg {
		x |= l
	}
	*out = x
}

// Selectznz sets `out = a` if `c == 0` and `out = b` if `c == 1`, without
// branching.
func Selectznz(out *[6]uint64, c Uint1, a, b *[6]uint64) {
	for i := 0; i < 6; i++ {
		out[i] = cmovznzU64(uint64(c), a[i], b[i])
	}
}

// Msat sets `out` to the modulus in the saturated (extended) limb
// representation used to seed the divstep `f` vector.
func Msat(out *[7]uint64) {
	copy(out[:6], pSat[:])
	out[6] = 0
}

// DivstepPrecomp sets `out` to the divstep scaling correction constant,
// in the Montgomery domain.
func DivstepPrecomp(out *[6]uint64) {
	copy(out[:], divstepPrecomp[:])
}

// Divstep advances the safegcd transition state by a single divstep.
//
// `d` is the signed delta word, `f` and `g` are two's-complement extended
// vectors, and `v` and `r` are fully reduced residues mod p accumulating
// the 2-adic inverse.  The outputs are a pure function of the inputs:
//
//	cond = (d > 0) && g odd
//	d'   = (cond ? -d : d) + 1
//	f'   = cond ? g : f
//	g~   = cond ? -f : g
//	g'   = (g~ + (g~ odd ? f' : 0)) >> 1  (arithmetic shift)
//	v'   = 2 * (cond ? r : v) mod p
//	r'   = (cond ? -v : r) + (g~ odd ? (cond ? r : v) : 0) mod p
func Divstep(outD *uint64, outF, outG *[7]uint64, outV, outR *[6]uint64, d uint64, f, g *[7]uint64, v, r *[6]uint64) {
	negD := -d
	cond := (negD >> 63) & (g[0] & 1)

	d1 := cmovznzU64(cond, d, negD) + 1

	var f1 [7]uint64
	for i := 0; i < 7; i++ {
		f1[i] = cmovznzU64(cond, f[i], g[i])
	}

	var (
		negF  [7]uint64
		carry uint64 = 1
	)
	for i := 0; i < 7; i++ {
		negF[i], carry = bits.Add64(^f[i], 0, carry)
	}

	var g1 [7]uint64
	for i := 0; i < 7; i++ {
		g1[i] = cmovznzU64(cond, g[i], negF[i])
	}

	var vPre [6]uint64
	for i := 0; i < 6; i++ {
		vPre[i] = cmovznzU64(cond, v[i], r[i])
	}

	var v1 [6]uint64
	modAdd(&v1, &vPre, &vPre)

	var oppV [6]uint64
	modOpp(&oppV, v)

	var rPre [6]uint64
	for i := 0; i < 6; i++ {
		rPre[i] = cmovznzU64(cond, r[i], oppV[i])
	}

	odd := g1[0] & 1

	var sum [7]uint64
	carry = 0
	for i := 0; i < 7; i++ {
		sum[i], carry = bits.Add64(g1[i], cmovznzU64(odd, 0, f1[i]), carry)
	}

	var g2 [7]uint64
	for i := 0; i < 6; i++ {
		g2[i] = (sum[i] >> 1) | (sum[i+1] << 63)
	}
	g2[6] = uint64(int64(sum[6]) >> 1)

	var addend [6]uint64
	for i := 0; i < 6; i++ {
		addend[i] = cmovznzU64(odd, 0, vPre[i])
	}
	var r1 [6]uint64
	modAdd(&r1, &rPre, &addend)

	*outD = d1
	*outF = f1
	*outG = g2
	*outV = v1
	*outR = r1
}
