// Package disalloweq provides a method for disallowing struct comparisons
// with the `==` operator.
package disalloweq

// DisallowEqual, when embedded in a struct, causes the compiler to reject
// attempts to compare instances of that struct with the `==` operator.
// Field elements must be compared in constant time, so accidental `==`
// over the limb representation is a bug worth a compile failure.
type DisallowEqual [0]func()
