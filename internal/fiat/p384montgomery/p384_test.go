package p384montgomery

import (
	"math/big"
	mrand "math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	bigP = mustBigFromHex("fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffeffffffff0000000000000000ffffffff")
	bigR = new(big.Int).Mod(new(big.Int).Lsh(big.NewInt(1), 384), bigP)
)

func mustBigFromHex(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 16)
	if !ok {
		panic("p384montgomery: invalid hex in test")
	}
	return n
}

func limbsToBig(l []uint64) *big.Int {
	n := new(big.Int)
	for i := len(l) - 1; i >= 0; i-- {
		n.Lsh(n, 64)
		n.Or(n, new(big.Int).SetUint64(l[i]))
	}
	return n
}

func bigToLimbs(n *big.Int, l []uint64) {
	tmp := new(big.Int).Set(n)
	mask := new(big.Int).SetUint64(^uint64(0))
	for i := range l {
		l[i] = new(big.Int).And(tmp, mask).Uint64()
		tmp.Rsh(tmp, 64)
	}
}

func randomBig(rnd *mrand.Rand) *big.Int {
	return new(big.Int).Rand(rnd, bigP)
}

func randomMont(rnd *mrand.Rand) (*MontgomeryDomainFieldElement, *big.Int) {
	// A random residue, interpreted directly as a Montgomery-domain
	// value.  The represented value is then a * R^-1, but for oracle
	// comparisons only the raw residue matters.
	n := randomBig(rnd)
	var fe MontgomeryDomainFieldElement
	bigToLimbs(n, fe[:])
	return &fe, n
}

func TestMulAgainstBig(t *testing.T) {
	rnd := mrand.New(mrand.NewSource(0x70384))
	rInv := new(big.Int).ModInverse(bigR, bigP)

	for i := 0; i < 1024; i++ {
		a, aBig := randomMont(rnd)
		b, bBig := randomMont(rnd)

		var out MontgomeryDomainFieldElement
		Mul(&out, a, b)

		expected := new(big.Int).Mul(aBig, bBig)
		expected.Mul(expected, rInv)
		expected.Mod(expected, bigP)

		require.Zero(t, limbsToBig(out[:]).Cmp(expected), "[%d]: Mul", i)

		// Square is the multiply kernel applied to (a, a).
		var sq, aa MontgomeryDomainFieldElement
		Square(&sq, a)
		Mul(&aa, a, a)
		require.Equal(t, aa, sq, "[%d]: Square == Mul(a, a)", i)
	}
}

func TestMulEdgeCases(t *testing.T) {
	rInv := new(big.Int).ModInverse(bigR, bigP)
	pMinusOne := new(big.Int).Sub(bigP, big.NewInt(1))

	for i, tc := range []struct{ a, b *big.Int }{
		{new(big.Int), new(big.Int)},
		{big.NewInt(1), big.NewInt(1)},
		{pMinusOne, pMinusOne},
		{pMinusOne, big.NewInt(1)},
		{new(big.Int), pMinusOne},
	} {
		var a, b, out MontgomeryDomainFieldElement
		bigToLimbs(tc.a, a[:])
		bigToLimbs(tc.b, b[:])
		Mul(&out, &a, &b)

		expected := new(big.Int).Mul(tc.a, tc.b)
		expected.Mul(expected, rInv)
		expected.Mod(expected, bigP)

		require.Zero(t, limbsToBig(out[:]).Cmp(expected), "[%d]: Mul edge", i)
	}
}

func TestAddSubOppAgainstBig(t *testing.T) {
	rnd := mrand.New(mrand.NewSource(0x70385))

	for i := 0; i < 1024; i++ {
		a, aBig := randomMont(rnd)
		b, bBig := randomMont(rnd)

		var out MontgomeryDomainFieldElement

		Add(&out, a, b)
		expected := new(big.Int).Add(aBig, bBig)
		expected.Mod(expected, bigP)
		require.Zero(t, limbsToBig(out[:]).Cmp(expected), "[%d]: Add", i)

		Sub(&out, a, b)
		expected.Sub(aBig, bBig)
		expected.Mod(expected, bigP)
		require.Zero(t, limbsToBig(out[:]).Cmp(expected), "[%d]: Sub", i)

		Opp(&out, a)
		expected.Neg(aBig)
		expected.Mod(expected, bigP)
		require.Zero(t, limbsToBig(out[:]).Cmp(expected), "[%d]: Opp", i)
	}

	// -0 must be 0, not p.
	var zero, out MontgomeryDomainFieldElement
	Opp(&out, &zero)
	require.Equal(t, zero, out, "Opp(0)")
}

func TestMontgomeryDomain(t *testing.T) {
	rnd := mrand.New(mrand.NewSource(0x70386))

	var one MontgomeryDomainFieldElement
	SetOne(&one)
	require.Zero(t, limbsToBig(one[:]).Cmp(bigR), "SetOne is R mod p")

	var oneN NonMontgomeryDomainFieldElement
	FromMontgomery(&oneN, &one)
	require.Zero(t, limbsToBig(oneN[:]).Cmp(big.NewInt(1)), "FromMontgomery(R)")

	for i := 0; i < 256; i++ {
		nBig := randomBig(rnd)
		var n, back NonMontgomeryDomainFieldElement
		var m MontgomeryDomainFieldElement
		bigToLimbs(nBig, n[:])

		ToMontgomery(&m, &n)
		expected := new(big.Int).Mul(nBig, bigR)
		expected.Mod(expected, bigP)
		require.Zero(t, limbsToBig(m[:]).Cmp(expected), "[%d]: ToMontgomery", i)

		FromMontgomery(&back, &m)
		require.Equal(t, n, back, "[%d]: FromMontgomery round trip", i)
	}
}

func TestMsat(t *testing.T) {
	var m [7]uint64
	Msat(&m)
	require.Zero(t, limbsToBig(m[:]).Cmp(bigP), "Msat is the modulus")
	require.Zero(t, m[6], "Msat extended limb")
}

func TestDivstepPrecomp(t *testing.T) {
	// precomp = 2^-iterations, in the Montgomery domain.
	var precomp MontgomeryDomainFieldElement
	DivstepPrecomp((*[6]uint64)(&precomp))

	var precompN NonMontgomeryDomainFieldElement
	FromMontgomery(&precompN, &precomp)

	expected := new(big.Int).Lsh(big.NewInt(1), uint(invIterations))
	expected.Mod(expected, bigP)
	expected.ModInverse(expected, bigP)

	require.Zero(t, limbsToBig(precompN[:]).Cmp(expected), "DivstepPrecomp")
}

func TestDivstepIterations(t *testing.T) {
	require.Equal(t, 1110, divstepIterations(384))
	require.Equal(t, 741, divstepIterations(256))
	require.Equal(t, invIterations, divstepIterations(invLenPrime))
}

// divstepModel mirrors the divstep transition in arbitrary precision.
func divstepModel(d int64, f, g, v, r *big.Int) (int64, *big.Int, *big.Int, *big.Int, *big.Int) {
	swap := d > 0 && g.Bit(0) == 1

	d1, f1, g1, v1, r1 := d, new(big.Int).Set(f), new(big.Int).Set(g), new(big.Int).Set(v), new(big.Int).Set(r)
	if swap {
		d1 = -d
		f1.Set(g)
		g1.Neg(f)
		v1.Set(r)
		r1.Neg(v)
		r1.Mod(r1, bigP)
	}
	d1++

	if g1.Bit(0) == 1 {
		g1.Add(g1, f1)
		r1.Add(r1, v1)
	}
	g1.Rsh(g1, 1)

	v1.Lsh(v1, 1)
	v1.Mod(v1, bigP)
	r1.Mod(r1, bigP)

	return d1, f1, g1, v1, r1
}

func satToBig(l *[7]uint64) *big.Int {
	n := limbsToBig(l[:])
	if l[6]>>63 != 0 {
		n.Sub(n, new(big.Int).Lsh(big.NewInt(1), 7*64))
	}
	return n
}

func bigToSat(n *big.Int, l *[7]uint64) {
	tmp := new(big.Int).Set(n)
	if tmp.Sign() < 0 {
		tmp.Add(tmp, new(big.Int).Lsh(big.NewInt(1), 7*64))
	}
	mask := new(big.Int).SetUint64(^uint64(0))
	for i := range l {
		l[i] = new(big.Int).And(tmp, mask).Uint64()
		tmp.Rsh(tmp, 64)
	}
}

func TestDivstepAgainstModel(t *testing.T) {
	rnd := mrand.New(mrand.NewSource(0x70387))

	// Run the model and the implementation in lockstep from the
	// inversion engine's starting state for a handful of inputs.
	for i := 0; i < 16; i++ {
		x := randomBig(rnd)

		d := uint64(1)
		var f, g [7]uint64
		Msat(&f)
		bigToSat(x, &g)
		var v, r [6]uint64
		var one MontgomeryDomainFieldElement
		SetOne(&one)
		copy(r[:], one[:])

		dM := int64(1)
		fM, gM := new(big.Int).Set(bigP), new(big.Int).Set(x)
		vM, rM := new(big.Int), new(big.Int).Set(bigR)

		for step := 0; step < 64; step++ {
			var (
				dOut   uint64
				fT, gT [7]uint64
				vT, rT [6]uint64
			)
			Divstep(&dOut, &fT, &gT, &vT, &rT, d, &f, &g, &v, &r)
			d, f, g, v, r = dOut, fT, gT, vT, rT

			dM, fM, gM, vM, rM = divstepModel(dM, fM, gM, vM, rM)

			require.Equal(t, dM, int64(d), "[%d/%d]: delta", i, step)
			require.Zero(t, satToBig(&f).Cmp(fM), "[%d/%d]: f", i, step)
			require.Zero(t, satToBig(&g).Cmp(gM), "[%d/%d]: g", i, step)
			require.Zero(t, limbsToBig(v[:]).Cmp(vM), "[%d/%d]: v", i, step)
			require.Zero(t, limbsToBig(r[:]).Cmp(rM), "[%d/%d]: r", i, step)
		}
	}
}

func TestInvert(t *testing.T) {
	rnd := mrand.New(mrand.NewSource(0x70388))

	var one MontgomeryDomainFieldElement
	SetOne(&one)

	t.Run("Random", func(t *testing.T) {
		for i := 0; i < 32; i++ {
			a, _ := randomMont(rnd)
			var aInv, product MontgomeryDomainFieldElement
			Invert(&aInv, a)
			Mul(&product, a, &aInv)
			require.Equal(t, one, product, "[%d]: a * 1/a", i)
		}
	})

	t.Run("One", func(t *testing.T) {
		var out MontgomeryDomainFieldElement
		Invert(&out, &one)
		require.Equal(t, one, out, "1/1")
	})

	t.Run("Zero", func(t *testing.T) {
		var zero, out MontgomeryDomainFieldElement
		Invert(&out, &zero)
		require.Equal(t, zero, out, "1/0 (by convention)")
	})

	t.Run("MinusOne", func(t *testing.T) {
		var mOne, out MontgomeryDomainFieldElement
		Opp(&mOne, &one)
		Invert(&out, &mOne)
		require.Equal(t, mOne, out, "1/-1")
	})
}

func TestSelectznzNonzero(t *testing.T) {
	a := [6]uint64{1, 2, 3, 4, 5, 6}
	b := [6]uint64{7, 8, 9, 10, 11, 12}

	var out [6]uint64
	Selectznz(&out, 0, &a, &b)
	require.Equal(t, a, out, "Selectznz(0)")
	Selectznz(&out, 1, &a, &b)
	require.Equal(t, b, out, "Selectznz(1)")

	var ctrl uint64
	Nonzero(&ctrl, &out)
	require.NotZero(t, ctrl, "Nonzero(nonzero)")
	var zero [6]uint64
	Nonzero(&ctrl, &zero)
	require.Zero(t, ctrl, "Nonzero(0)")
}

func BenchmarkP384Montgomery(b *testing.B) {
	rnd := mrand.New(mrand.NewSource(0x70389))

	b.Run("Mul", func(b *testing.B) {
		x, _ := randomMont(rnd)
		y, _ := randomMont(rnd)
		var out MontgomeryDomainFieldElement
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			Mul(&out, x, y)
		}
	})

	b.Run("Invert/safegcd", func(b *testing.B) {
		x, _ := randomMont(rnd)
		var out MontgomeryDomainFieldElement
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			Invert(&out, x)
		}
	})
}
