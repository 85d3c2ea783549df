// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package powerup

import (
	"errors"
	"testing"

	"github.com/offchainlabs/powerup/util/arbmath"
	"github.com/offchainlabs/powerup/util/testhelpers"
)

const (
	testWeight   uint64 = 1_000_000_000_000
	testMaxPrice uint64 = 1_000_000
)

func curveState(exponent, minPrice, maxPrice, utilization, adjusted uint64) ResourceState {
	return ResourceState{
		Weight:              testWeight,
		Exponent:            exponent,
		MinPrice:            minPrice,
		MaxPrice:            maxPrice,
		Utilization:         utilization,
		AdjustedUtilization: adjusted,
	}
}

func TestRentalFeeScenario(t *testing.T) {
	state := curveState(2*arbmath.FixedOneUint64, 0, testMaxPrice, 0, 0)
	fee, err := RentalFee(state, testWeight/100)
	Require(t, err)
	if fee != 50 {
		Fail(t, "expected a fee of 50 for 1% but got", fee)
	}

	fee, err = RentalFee(state, testWeight/50)
	Require(t, err)
	if fee != 200 {
		Fail(t, "expected a fee of 200 for 2% but got", fee)
	}

	state.Utilization = testWeight / 100
	state.AdjustedUtilization = testWeight / 100
	fee, err = RentalFee(state, testWeight/100)
	Require(t, err)
	if fee != 150 {
		Fail(t, "expected a fee of 150 for the second 1% but got", fee)
	}
}

func TestRentalFeePremium(t *testing.T) {
	// adjusted utilization at 5% charges p(0.05) = 50000 per full weight
	state := curveState(2*arbmath.FixedOneUint64, 0, testMaxPrice, 0, testWeight/20)
	fee, err := RentalFee(state, testWeight/100)
	Require(t, err)
	if fee != 500 {
		Fail(t, "expected the flat premium of 500 but got", fee)
	}

	// 5% at the premium, then the integral from 5% to 10%
	fee, err = RentalFee(state, testWeight/10)
	Require(t, err)
	if fee != 2500+3750 {
		Fail(t, "expected a fee of 6250 but got", fee)
	}
}

func TestRentalFeeLinear(t *testing.T) {
	state := curveState(arbmath.FixedOneUint64, 0, testMaxPrice, 0, 0)
	fee, err := RentalFee(state, testWeight/100)
	Require(t, err)
	if fee != testMaxPrice/100 {
		Fail(t, "exponent 1 must charge max price throughout", fee)
	}

	price, err := PriceAt(state.CurveParams(), testWeight/2)
	Require(t, err)
	if !price.Eq(arbmath.UintToFixed(testMaxPrice)) {
		Fail(t, "exponent 1 must price at max", price)
	}
}

func TestRentalFeeTinyIncrease(t *testing.T) {
	state := curveState(2*arbmath.FixedOneUint64, 1, testMaxPrice, 0, 0)
	fee, err := RentalFee(state, 1)
	Require(t, err)
	if fee != 1 {
		Fail(t, "a single unit at a nonzero min price must cost something", fee)
	}
	fee, err = RentalFee(state, 0)
	Require(t, err)
	if fee != 0 {
		Fail(t, "nothing rented must cost nothing", fee)
	}
}

func TestRentalFeeZeroWeight(t *testing.T) {
	state := curveState(2*arbmath.FixedOneUint64, 0, testMaxPrice, 0, 0)
	state.Weight = 0
	if _, err := RentalFee(state, 1); !errors.Is(err, ErrInvalidMarketState) {
		Fail(t, "expected invalid market state but got", err)
	}
	if _, err := PriceIntegralDelta(state.CurveParams(), 0, 1); !errors.Is(err, ErrInvalidMarketState) {
		Fail(t, "expected invalid market state but got", err)
	}
}

var testExponents = []uint64{
	arbmath.FixedOneUint64,
	3 * arbmath.FixedOneUint64 / 2,
	2 * arbmath.FixedOneUint64,
	5 * arbmath.FixedOneUint64 / 2,
	3_700_000_000_000_000_000,
	8 * arbmath.FixedOneUint64,
}

func TestRentalFeeAdditivity(t *testing.T) {
	source := testhelpers.NewPseudoRandomDataSource(t, 1)
	for _, exponent := range testExponents {
		for i := 0; i < 50; i++ {
			minPrice := source.GetUint64Between(0, testMaxPrice/10)
			b := source.GetUint64Between(1, testWeight)
			a := source.GetUint64Between(0, b)

			whole, err := RentalFee(curveState(exponent, minPrice, testMaxPrice, 0, 0), b)
			Require(t, err)
			first, err := RentalFee(curveState(exponent, minPrice, testMaxPrice, 0, 0), a)
			Require(t, err)
			second, err := RentalFee(curveState(exponent, minPrice, testMaxPrice, a, a), b-a)
			Require(t, err)
			if !arbmath.Within(first+second, whole, 1) {
				Fail(t, "integral not additive", exponent, a, b, first, second, whole)
			}
		}
	}
}

func TestRentalFeeMonotonic(t *testing.T) {
	for _, exponent := range testExponents {
		state := curveState(exponent, 10, testMaxPrice, testWeight/4, testWeight/3)
		previous := uint64(0)
		for step := uint64(1); step <= 100; step++ {
			fee, err := RentalFee(state, step*(testWeight/200))
			Require(t, err)
			if fee < previous {
				Fail(t, "fee decreased", exponent, step, previous, fee)
			}
			previous = fee
		}
	}
}

func TestPriceAtBounds(t *testing.T) {
	for _, exponent := range testExponents {
		params := CurveParams{Weight: testWeight, Exponent: exponent, MinPrice: 100, MaxPrice: testMaxPrice}
		low, err := PriceAt(params, 0)
		Require(t, err)
		high, err := PriceAt(params, testWeight)
		Require(t, err)
		if exponent != arbmath.FixedOneUint64 && !low.Eq(arbmath.UintToFixed(100)) {
			Fail(t, "an empty market must price at min", exponent, low)
		}
		highPrice, err := arbmath.FixedFloorToUint(high)
		Require(t, err)
		if !arbmath.Within(highPrice, testMaxPrice, 1) {
			Fail(t, "a full market must price at max", exponent, high)
		}
	}
}
