// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package powerup

import (
	"github.com/holiman/uint256"

	"github.com/offchainlabs/powerup/util/arbmath"
)

// After this many half-lives any uint64 excess has decayed away
const maxDecayHalfLives = 64

// DecayAdjustedUtilization moves the adjusted utilization toward the utilization, halving the excess
// every halfLife seconds. A zero half-life decays instantly. The result never drops below utilization.
func DecayAdjustedUtilization(utilization, adjusted, elapsed, halfLife uint64) uint64 {
	if adjusted <= utilization || halfLife == 0 {
		return utilization
	}
	if elapsed == 0 {
		return adjusted
	}
	halfLives := elapsed / halfLife
	if halfLives >= maxDecayHalfLives {
		return utilization
	}
	excess := (adjusted - utilization) >> halfLives

	remainder := elapsed % halfLife
	if remainder != 0 {
		fraction, _ := arbmath.FracToFixed(remainder, halfLife)
		factor, err := arbmath.FixedExp2Neg(fraction)
		if err != nil {
			// fraction < 1 so 2^fraction always fits
			panic(err)
		}
		scaled := new(uint256.Int).Mul(uint256.NewInt(excess), factor)
		excess = scaled.Div(scaled, arbmath.FixedOne()).Uint64()
	}
	return utilization + excess
}
