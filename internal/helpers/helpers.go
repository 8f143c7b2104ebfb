// Package helpers provides the byte/limb/bit-manipulation utility routines
// shared by the field element and the limb arithmetic engine.
package helpers

import (
	"encoding/binary"
	"encoding/hex"
	"math/bits"
	"strings"
)

// BytesToSaturated converts a 48-byte big-endian encoding to the
// little-endian saturated limb representation.
func BytesToSaturated(src *[48]byte) [6]uint64 {
	var dst [6]uint64
	for i := range dst {
		dst[i] = binary.BigEndian.Uint64(src[(5-i)*8:])
	}
	return dst
}

// BytesToSaturatedLE converts a 48-byte little-endian encoding to the
// little-endian saturated limb representation.
func BytesToSaturatedLE(src *[48]byte) [6]uint64 {
	var dst [6]uint64
	for i := range dst {
		dst[i] = binary.LittleEndian.Uint64(src[i*8:])
	}
	return dst
}

// SaturatedToBytes converts the little-endian saturated limb representation
// to a 48-byte big-endian encoding.
func SaturatedToBytes(src *[6]uint64) [48]byte {
	var dst [48]byte
	for i, l := range src {
		binary.BigEndian.PutUint64(dst[(5-i)*8:], l)
	}
	return dst
}

// SaturatedToBytesLE converts the little-endian saturated limb
// representation to a 48-byte little-endian encoding.
func SaturatedToBytesLE(src *[6]uint64) [48]byte {
	var dst [48]byte
	for i, l := range src {
		binary.LittleEndian.PutUint64(dst[i*8:], l)
	}
	return dst
}

// Uint64IsZero returns 1 iff `a == 0`, 0 otherwise.
func Uint64IsZero(a uint64) uint64 {
	return (^Uint64IsNonzero(a)) & 1
}

// Uint64IsNonzero returns 1 iff `a != 0`, 0 otherwise.
func Uint64IsNonzero(a uint64) uint64 {
	return (a | -a) >> 63
}

// Uint64Equal returns 1 iff `a == b`, 0 otherwise.
func Uint64Equal(a, b uint64) uint64 {
	return Uint64IsZero(a ^ b)
}

// FiatLimbsAreEqual returns 1 iff `a == b`, 0 otherwise.
func FiatLimbsAreEqual(a, b *[6]uint64) uint64 {
	var diff uint64
	for i := range a {
		diff |= a[i] ^ b[i]
	}
	return Uint64IsZero(diff)
}

// SaturatedCmpGeq returns 1 iff `a >= b`, 0 otherwise, where `a` and `b`
// are in the little-endian saturated limb representation.
func SaturatedCmpGeq(a, b *[6]uint64) uint64 {
	var borrow uint64
	for i := range a {
		_, borrow = bits.Sub64(a[i], b[i], borrow)
	}
	return Uint64IsZero(borrow)
}

// MustBytesFromHex decodes the hex string `str`, or panics.  An `0x`
// prefix is allowed, as are strings with an odd number of digits.
func MustBytesFromHex(str string) []byte {
	str = strings.TrimPrefix(str, "0x")
	if len(str)%2 != 0 {
		str = "0" + str
	}

	b, err := hex.DecodeString(str)
	if err != nil {
		panic("internal/helpers: failed to decode hex: " + err.Error())
	}

	return b
}
