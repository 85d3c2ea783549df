// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package powerup

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/offchainlabs/powerup/util/arbmath"
)

// FracScale is 1.0 for weight ratios and rental fractions.
const FracScale uint64 = 1_000_000_000_000_000

// Curve exponents are fixed-point with 18 decimals and bounded to keep u^e representable.
const (
	MinExponent uint64 = arbmath.FixedOneUint64
	MaxExponent uint64 = 16 * arbmath.FixedOneUint64
)

// CurveParams are the parts of a resource that shape its price curve.
//
// The price of a unit at utilization fraction u is p(u) = min + (max-min)*u^(e-1),
// and its integral is f(u) = min*u + (max-min)/e * u^e.
type CurveParams struct {
	Weight   uint64
	Exponent uint64
	MinPrice uint64
	MaxPrice uint64
}

func (p CurveParams) validate() error {
	if p.Weight == 0 {
		return fmt.Errorf("%w: zero weight can't be priced", ErrInvalidMarketState)
	}
	if p.Exponent < MinExponent || p.Exponent > MaxExponent {
		return fmt.Errorf("%w: exponent %v out of range", ErrInvalidMarketState, p.Exponent)
	}
	if p.MinPrice > p.MaxPrice {
		return fmt.Errorf("%w: min price %v exceeds max price %v", ErrInvalidMarketState, p.MinPrice, p.MaxPrice)
	}
	return nil
}

// utilizationFraction returns utilization/weight in fixed point
func (p CurveParams) utilizationFraction(utilization uint64) *uint256.Int {
	u, _ := arbmath.FracToFixed(utilization, p.Weight)
	return u
}

// PriceAt returns p(utilization/weight) in fixed point
func PriceAt(params CurveParams, utilization uint64) (*uint256.Int, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	if params.Exponent == arbmath.FixedOneUint64 {
		return arbmath.UintToFixed(params.MaxPrice), nil
	}
	exponent := uint256.NewInt(params.Exponent - arbmath.FixedOneUint64)
	power, err := arbmath.FixedPow(params.utilizationFraction(utilization), exponent)
	if err != nil {
		return nil, err
	}
	price := power.Mul(power, uint256.NewInt(params.MaxPrice-params.MinPrice))
	return price.Add(price, arbmath.UintToFixed(params.MinPrice)), nil
}

// PriceIntegralDelta returns f(end/weight) - f(start/weight) in fixed point.
// The linear term is exact, so tiny increases are never lost before the caller rounds.
func PriceIntegralDelta(params CurveParams, start, end uint64) (*uint256.Int, error) {
	if err := params.validate(); err != nil {
		return nil, err
	}
	if end <= start {
		return new(uint256.Int), nil
	}

	// linear prices integrate exactly
	linearPrice := params.MinPrice
	if params.Exponent == arbmath.FixedOneUint64 {
		linearPrice = params.MaxPrice
	}
	result := new(uint256.Int).Mul(uint256.NewInt(linearPrice), uint256.NewInt(end-start))
	result.Mul(result, arbmath.FixedOne())
	result.Div(result, uint256.NewInt(params.Weight))
	if params.Exponent == arbmath.FixedOneUint64 {
		return result, nil
	}

	exponent := uint256.NewInt(params.Exponent)
	powerStart, err := arbmath.FixedPow(params.utilizationFraction(start), exponent)
	if err != nil {
		return nil, err
	}
	powerEnd, err := arbmath.FixedPow(params.utilizationFraction(end), exponent)
	if err != nil {
		return nil, err
	}
	if powerEnd.Gt(powerStart) {
		// (max-min)/e * (u_end^e - u_start^e)
		diff := new(uint256.Int).Sub(powerEnd, powerStart)
		scaledRange := arbmath.UintToFixed(params.MaxPrice - params.MinPrice)
		term, overflow := new(uint256.Int).MulDivOverflow(diff, scaledRange, exponent)
		if overflow {
			return nil, arbmath.ErrFixedOverflow
		}
		result.Add(result, term)
	}
	return result, nil
}

// RentalFee is the fee, in minor units, for raising a resource's utilization by increase.
// Any part of the increase below the adjusted utilization is charged the flat price at the adjusted
// utilization; only the rest is integrated along the curve. The sum is rounded up once.
func RentalFee(state ResourceState, increase uint64) (uint64, error) {
	if increase == 0 {
		return 0, nil
	}
	params := state.CurveParams()
	start := state.Utilization
	end, err := arbmath.SafeUAdd(start, increase)
	if err != nil {
		return 0, fmt.Errorf("%w: utilization overflow", ErrInsufficientCapacity)
	}

	fee := new(uint256.Int)
	if start < state.AdjustedUtilization {
		price, err := PriceAt(params, state.AdjustedUtilization)
		if err != nil {
			return 0, err
		}
		premium := arbmath.MinInt(increase, state.AdjustedUtilization-start)
		fee.Mul(price, uint256.NewInt(premium))
		fee.Div(fee, uint256.NewInt(params.Weight))
		start = state.AdjustedUtilization
	}
	if start < end {
		integral, err := PriceIntegralDelta(params, start, end)
		if err != nil {
			return 0, err
		}
		fee.Add(fee, integral)
	}
	return arbmath.FixedCeilToUint(fee)
}
