// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package arbmath

import (
	"errors"

	"github.com/holiman/uint256"
)

// Fixed-point values carry 18 decimal places in a uint256, so 1.0 is 10^18.
// Every operation here is integer-only and floors after each step, which makes the results
// identical on every machine that replays them.

const FixedDecimals = 18
const FixedOneUint64 uint64 = 1_000_000_000_000_000_000

// ln(2) rounded down to 18 decimals
const fixedLn2Uint64 uint64 = 693_147_180_559_945_309

// 2^191 * 2 still fits in 256 bits
const maxExp2Whole = 191

// Below 2^-64 a result is indistinguishable from zero at 18 decimals
const minExp2Whole = 64

// Integer exponents up to this bound take the exact repeated-squaring path
const maxIntegerPower = 64

var (
	ErrFixedOverflow   = errors.New("fixed-point overflow")
	ErrFixedDomain     = errors.New("fixed-point argument out of domain")
	ErrFixedDivByZero  = errors.New("fixed-point division by zero")
	ErrFixedNotUint64  = errors.New("fixed-point value does not fit in a uint64")
	fixedOne           = uint256.NewInt(FixedOneUint64)
	fixedTwo           = uint256.NewInt(2 * FixedOneUint64)
	fixedLn2           = uint256.NewInt(fixedLn2Uint64)
	fixedOneSquared    = new(uint256.Int).Mul(fixedOne, fixedOne)
	fixedMinExp2Cutoff = new(uint256.Int).Mul(uint256.NewInt(minExp2Whole), fixedOne)
)

// FixedOne returns a fresh 1.0
func FixedOne() *uint256.Int {
	return new(uint256.Int).Set(fixedOne)
}

// UintToFixed converts an integer to fixed point
func UintToFixed(value uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(value), fixedOne)
}

// FracToFixed returns numerator/denominator in fixed point, rounded down
func FracToFixed(numerator, denominator uint64) (*uint256.Int, error) {
	if denominator == 0 {
		return nil, ErrFixedDivByZero
	}
	result := new(uint256.Int).Mul(uint256.NewInt(numerator), fixedOne)
	return result.Div(result, uint256.NewInt(denominator)), nil
}

// FixedMul multiplies two fixed-point values, rounding down
func FixedMul(a, b *uint256.Int) (*uint256.Int, error) {
	result, overflow := new(uint256.Int).MulDivOverflow(a, b, fixedOne)
	if overflow {
		return nil, ErrFixedOverflow
	}
	return result, nil
}

// FixedDiv divides two fixed-point values, rounding down
func FixedDiv(a, b *uint256.Int) (*uint256.Int, error) {
	if b.IsZero() {
		return nil, ErrFixedDivByZero
	}
	result, overflow := new(uint256.Int).MulDivOverflow(a, fixedOne, b)
	if overflow {
		return nil, ErrFixedOverflow
	}
	return result, nil
}

// FixedCeilToUint rounds a fixed-point value up to the nearest integer
func FixedCeilToUint(value *uint256.Int) (uint64, error) {
	whole, frac := new(uint256.Int).DivMod(value, fixedOne, new(uint256.Int))
	if !frac.IsZero() {
		whole.AddUint64(whole, 1)
	}
	if !whole.IsUint64() {
		return 0, ErrFixedNotUint64
	}
	return whole.Uint64(), nil
}

// FixedFloorToUint rounds a fixed-point value down to the nearest integer
func FixedFloorToUint(value *uint256.Int) (uint64, error) {
	whole := new(uint256.Int).Div(value, fixedOne)
	if !whole.IsUint64() {
		return 0, ErrFixedNotUint64
	}
	return whole.Uint64(), nil
}

// FixedLog2 returns log2(x) for x >= 1.
// The integer part comes from the bit length; each fractional bit from one squaring step.
func FixedLog2(x *uint256.Int) (*uint256.Int, error) {
	if x.Lt(fixedOne) {
		return nil, ErrFixedDomain
	}
	whole := new(uint256.Int).Div(x, fixedOne)
	msb := uint(whole.BitLen() - 1)
	result := new(uint256.Int).Mul(uint256.NewInt(uint64(msb)), fixedOne)

	// y is now in [1, 2)
	y := new(uint256.Int).Rsh(x, msb)
	if y.Eq(fixedOne) {
		return result, nil
	}
	delta := new(uint256.Int).Rsh(fixedOne, 1)
	for !delta.IsZero() {
		y.Mul(y, y)
		y.Div(y, fixedOne)
		if !y.Lt(fixedTwo) {
			result.Add(result, delta)
			y.Rsh(y, 1)
		}
		delta.Rsh(delta, 1)
	}
	return result, nil
}

// FixedExp2 returns 2^x for x >= 0.
// Whole powers are shifts; the fractional power is e^(f*ln2) summed as a Maclaurin series
// until the next term rounds to zero.
func FixedExp2(x *uint256.Int) (*uint256.Int, error) {
	whole, frac := new(uint256.Int).DivMod(x, fixedOne, new(uint256.Int))
	if !whole.IsUint64() || whole.Uint64() > maxExp2Whole {
		return nil, ErrFixedOverflow
	}

	exponent := new(uint256.Int).Mul(frac, fixedLn2)
	exponent.Div(exponent, fixedOne)

	sum := new(uint256.Int).Set(fixedOne)
	term := new(uint256.Int).Set(fixedOne)
	for i := uint64(1); !term.IsZero(); i++ {
		term.Mul(term, exponent)
		term.Div(term, fixedOne)
		term.Div(term, uint256.NewInt(i))
		sum.Add(sum, term)
	}
	return sum.Lsh(sum, uint(whole.Uint64())), nil
}

// FixedExp2Neg returns 2^-x for x >= 0
func FixedExp2Neg(x *uint256.Int) (*uint256.Int, error) {
	if !x.Lt(fixedMinExp2Cutoff) {
		return new(uint256.Int), nil
	}
	denominator, err := FixedExp2(x)
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).Div(fixedOneSquared, denominator), nil
}

// FixedPow returns base^exponent for a non-negative base and exponent.
// Integer exponents are computed by repeated squaring; others as 2^(exponent*log2(base)).
func FixedPow(base, exponent *uint256.Int) (*uint256.Int, error) {
	if exponent.IsZero() {
		return FixedOne(), nil
	}
	if base.IsZero() {
		return new(uint256.Int), nil
	}

	whole, frac := new(uint256.Int).DivMod(exponent, fixedOne, new(uint256.Int))
	if frac.IsZero() && whole.IsUint64() && whole.Uint64() <= maxIntegerPower {
		return fixedPowInt(base, whole.Uint64())
	}

	if !base.Lt(fixedOne) {
		log, err := FixedLog2(base)
		if err != nil {
			return nil, err
		}
		product, overflow := new(uint256.Int).MulDivOverflow(log, exponent, fixedOne)
		if overflow {
			return nil, ErrFixedOverflow
		}
		return FixedExp2(product)
	}

	// base < 1, so work with its reciprocal to keep the logarithm non-negative
	inverse := new(uint256.Int).Div(fixedOneSquared, base)
	log, err := FixedLog2(inverse)
	if err != nil {
		return nil, err
	}
	product, overflow := new(uint256.Int).MulDivOverflow(log, exponent, fixedOne)
	if overflow {
		return new(uint256.Int), nil
	}
	return FixedExp2Neg(product)
}

func fixedPowInt(base *uint256.Int, power uint64) (*uint256.Int, error) {
	result := FixedOne()
	square := new(uint256.Int).Set(base)
	var overflow bool
	for power > 0 {
		if power&1 == 1 {
			result, overflow = new(uint256.Int).MulDivOverflow(result, square, fixedOne)
			if overflow {
				return nil, ErrFixedOverflow
			}
		}
		power >>= 1
		if power > 0 {
			square, overflow = new(uint256.Int).MulDivOverflow(square, square, fixedOne)
			if overflow {
				return nil, ErrFixedOverflow
			}
		}
	}
	return result, nil
}
