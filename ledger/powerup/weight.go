// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package powerup

import (
	"github.com/holiman/uint256"
)

// CalcWeightRatio interpolates linearly from the initial ratio to the target ratio, flooring the
// distance travelled. The target is reached, and kept, at the target timestamp.
func CalcWeightRatio(initialRatio, targetRatio, initialTimestamp, targetTimestamp, now uint64) uint64 {
	if now >= targetTimestamp {
		return targetRatio
	}
	if now <= initialTimestamp {
		return initialRatio
	}
	elapsed := uint256.NewInt(now - initialTimestamp)
	window := uint256.NewInt(targetTimestamp - initialTimestamp)
	if targetRatio >= initialRatio {
		travelled := new(uint256.Int).Mul(uint256.NewInt(targetRatio-initialRatio), elapsed)
		return initialRatio + travelled.Div(travelled, window).Uint64()
	}
	travelled := new(uint256.Int).Mul(uint256.NewInt(initialRatio-targetRatio), elapsed)
	return initialRatio - travelled.Div(travelled, window).Uint64()
}

// CalcWeight applies a weight ratio to the assumed stake
func CalcWeight(ratio, assumedStakeWeight uint64) uint64 {
	weight := new(uint256.Int).Mul(uint256.NewInt(ratio), uint256.NewInt(assumedStakeWeight))
	weight.Div(weight, uint256.NewInt(FracScale))
	if !weight.IsUint64() {
		return ^uint64(0)
	}
	return weight.Uint64()
}
