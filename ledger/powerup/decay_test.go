// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package powerup

import (
	"testing"

	"github.com/offchainlabs/powerup/util/arbmath"
	"github.com/offchainlabs/powerup/util/testhelpers"
)

const testHalfLife = 86_400

func TestDecayWholeHalfLives(t *testing.T) {
	if adjusted := DecayAdjustedUtilization(100, 1_100, 0, testHalfLife); adjusted != 1_100 {
		Fail(t, "nothing may decay without time passing", adjusted)
	}
	if adjusted := DecayAdjustedUtilization(100, 1_100, testHalfLife, testHalfLife); adjusted != 600 {
		Fail(t, "expected half the excess after one half-life", adjusted)
	}
	if adjusted := DecayAdjustedUtilization(100, 1_100, 2*testHalfLife, testHalfLife); adjusted != 350 {
		Fail(t, "expected a quarter of the excess after two half-lives", adjusted)
	}
	if adjusted := DecayAdjustedUtilization(100, ^uint64(0), 64*testHalfLife, testHalfLife); adjusted != 100 {
		Fail(t, "any excess must vanish after 64 half-lives", adjusted)
	}
	if adjusted := DecayAdjustedUtilization(100, 1_100, ^uint64(0), testHalfLife); adjusted != 100 {
		Fail(t, "unexpected adjusted utilization after forever", adjusted)
	}
}

func TestDecayPartialHalfLife(t *testing.T) {
	// 2^-0.5 = 0.70710678...
	adjusted := DecayAdjustedUtilization(0, 1_000_000, testHalfLife/2, testHalfLife)
	if !arbmath.Within(adjusted, 707_106, 1) {
		Fail(t, "unexpected decay over half a half-life", adjusted)
	}
	adjusted = DecayAdjustedUtilization(500, 500+1_000_000, testHalfLife+testHalfLife/2, testHalfLife)
	if !arbmath.Within(adjusted, 500+353_553, 1) {
		Fail(t, "unexpected decay over one and a half half-lives", adjusted)
	}
}

func TestDecayDegenerateCases(t *testing.T) {
	if adjusted := DecayAdjustedUtilization(100, 1_100, 1, 0); adjusted != 100 {
		Fail(t, "a zero half-life must decay instantly", adjusted)
	}
	if adjusted := DecayAdjustedUtilization(100, 1_100, 0, 0); adjusted != 100 {
		Fail(t, "a zero half-life must decay instantly", adjusted)
	}
	if adjusted := DecayAdjustedUtilization(100, 50, testHalfLife, testHalfLife); adjusted != 100 {
		Fail(t, "adjusted utilization can't be below utilization", adjusted)
	}
	if adjusted := DecayAdjustedUtilization(100, 100, testHalfLife, testHalfLife); adjusted != 100 {
		Fail(t, "nothing to decay", adjusted)
	}
}

func TestDecayComposes(t *testing.T) {
	source := testhelpers.NewPseudoRandomDataSource(t, 2)
	for i := 0; i < 200; i++ {
		utilization := source.GetUint64Between(0, 1_000_000_000_000)
		adjusted := utilization + source.GetUint64Between(0, 1_000_000_000_000)
		first := source.GetUint64Between(0, 3*testHalfLife)
		second := source.GetUint64Between(0, 3*testHalfLife)

		stepwise := DecayAdjustedUtilization(utilization, adjusted, first, testHalfLife)
		stepwise = DecayAdjustedUtilization(utilization, stepwise, second, testHalfLife)
		whole := DecayAdjustedUtilization(utilization, adjusted, first+second, testHalfLife)
		if !arbmath.Within(stepwise, whole, 4) {
			Fail(t, "decay does not compose", utilization, adjusted, first, second, stepwise, whole)
		}
		if whole < utilization || whole > adjusted {
			Fail(t, "decay left its bounds", utilization, adjusted, whole)
		}
	}
}

func TestDecayMonotonic(t *testing.T) {
	previous := uint64(1_000_000_000)
	for elapsed := uint64(0); elapsed <= 10*testHalfLife; elapsed += testHalfLife / 7 {
		adjusted := DecayAdjustedUtilization(1_000, 1_000_000_000, elapsed, testHalfLife)
		if adjusted > previous {
			Fail(t, "decay increased with time", elapsed, previous, adjusted)
		}
		if adjusted < 1_000 {
			Fail(t, "decay fell below utilization", elapsed, adjusted)
		}
		previous = adjusted
	}
}
