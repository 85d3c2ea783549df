// Copyright 2021-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package arbmath

import (
	"encoding/binary"
	"math"
	"math/bits"
	"unsafe"
)

type Signed interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64
}

type Unsigned interface {
	~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

type Integer interface {
	Signed | Unsigned
}

// MinInt the minimum of two ints
func MinInt[T Integer](value, ceiling T) T {
	if value > ceiling {
		return ceiling
	}
	return value
}

// MaxInt the maximum of one or more ints
func MaxInt[T Integer](values ...T) T {
	max := values[0]
	for i := 1; i < len(values); i++ {
		value := values[i]
		if value > max {
			max = value
		}
	}
	return max
}

// Checks if two ints are sufficiently close to one another
func Within[T Unsigned](a, b, bound T) bool {
	min := MinInt(a, b)
	max := MaxInt(a, b)
	return max-min <= bound
}

// AbsDiff the distance between two unsigned ints
func AbsDiff[T Unsigned](a, b T) T {
	if a > b {
		return a - b
	}
	return b - a
}

// Log2floor the log2 of the int, rounded down. Zero maps to zero.
func Log2floor(value uint64) uint64 {
	if value == 0 {
		return 0
	}
	return uint64(63 - bits.LeadingZeros64(value))
}

func MaxSignedValue[T Signed]() T {
	return T((uint64(1) << (8*unsafe.Sizeof(T(0)) - 1)) - 1)
}

func MinSignedValue[T Signed]() T {
	return -MaxSignedValue[T]() - 1
}

// Negates an int without underflow
func SaturatingNeg[T Signed](value T) T {
	if value < 0 && value == MinSignedValue[T]() {
		return MaxSignedValue[T]()
	}
	return -value
}

// SaturatingUAdd add two integers without overflow
func SaturatingUAdd[T Unsigned](a, b T) T {
	sum := a + b
	if sum < a || sum < b {
		sum = ^T(0)
	}
	return sum
}

// SaturatingUSub subtract an integer from another without underflow
func SaturatingUSub[T Unsigned](a, b T) T {
	if b >= a {
		return 0
	}
	return a - b
}

// SaturatingUMul multiply two integers without over/underflow
func SaturatingUMul[T Unsigned](a, b T) T {
	product := a * b
	if b != 0 && product/b != a {
		product = ^T(0)
	}
	return product
}

// SaturatingCast cast an unsigned integer to a signed one, clipping to [0, S::MAX]
func SaturatingCast[S Signed, T Unsigned](value T) S {
	tBig := unsafe.Sizeof(T(0)) >= unsafe.Sizeof(S(0))
	bits := uint64(8 * unsafe.Sizeof(S(0)))
	sMax := T(1<<bits-1) >> 1
	if tBig && value > sMax {
		return S(sMax)
	}
	return S(value)
}

// SaturatingDelta returns after - before as a signed value, clipping to the int64 range
func SaturatingDelta(before, after uint64) int64 {
	if after >= before {
		return SaturatingCast[int64](after - before)
	}
	diff := before - after
	if diff > math.MaxInt64 {
		return math.MinInt64
	}
	return -int64(diff)
}

// Integer division but rounding up
func DivCeil[T Unsigned](value, divisor T) T {
	if value%divisor == 0 {
		return value / divisor
	}
	return value/divisor + 1
}

// UintToBytes casts a uint64 to its big-endian representation
func UintToBytes(value uint64) []byte {
	result := make([]byte, 8)
	binary.BigEndian.PutUint64(result, value)
	return result
}
