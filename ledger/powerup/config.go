// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package powerup

import (
	"fmt"
)

// ResourceConfig is a partial update to one resource's market. Nil fields keep their current values.
type ResourceConfig struct {
	// Fraction of the assumed stake available now, scaled by FracScale. Defaults to the live ratio.
	CurrentWeightRatio *uint64 `json:"current_weight_ratio,omitempty"`
	// Fraction the weight moves to by TargetTimestamp. Defaults to the current target, or the current ratio.
	TargetWeightRatio  *uint64 `json:"target_weight_ratio,omitempty"`
	AssumedStakeWeight *uint64 `json:"assumed_stake_weight,omitempty"`
	// Ignored when the current and target ratios are equal.
	TargetTimestamp *uint64 `json:"target_timestamp,omitempty"`
	// Curve steepness, fixed point with 18 decimals.
	Exponent *uint64 `json:"exponent,omitempty"`
	// Half-life of the adjusted utilization, in seconds.
	DecaySecs *uint64 `json:"decay_secs,omitempty"`
	MinPrice  *uint64 `json:"min_price,omitempty"`
	MaxPrice  *uint64 `json:"max_price,omitempty"`
}

// Config is a partial update to the whole market.
type Config struct {
	Net        ResourceConfig `json:"net"`
	CPU        ResourceConfig `json:"cpu"`
	RentDays   *uint32        `json:"rent_days,omitempty"`
	MinRentFee *uint64        `json:"min_rent_fee,omitempty"`
}

func invalidConfig(resource string, format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s %s", ErrInvalidConfig, resource, fmt.Sprintf(format, args...))
}

// apply validates an update against a resource's live state, which must already be advanced to now.
// On success the returned state restarts its weight schedule at now from the current ratio.
func (c *ResourceConfig) apply(name string, state ResourceState, now uint64) (ResourceState, error) {
	configured := state.AssumedStakeWeight != 0

	currentRatio := state.WeightRatio
	if c.CurrentWeightRatio != nil {
		currentRatio = *c.CurrentWeightRatio
	} else if !configured {
		return state, invalidConfig(name, "current_weight_ratio does not have a default value")
	}

	targetRatio := state.TargetWeightRatio
	if c.TargetWeightRatio != nil {
		targetRatio = *c.TargetWeightRatio
	} else if !configured {
		targetRatio = currentRatio
	}

	stake := state.AssumedStakeWeight
	if c.AssumedStakeWeight != nil {
		stake = *c.AssumedStakeWeight
	} else if !configured {
		return state, invalidConfig(name, "assumed_stake_weight does not have a default value")
	}

	var targetTimestamp uint64
	if currentRatio == targetRatio {
		targetTimestamp = now
	} else if c.TargetTimestamp != nil {
		targetTimestamp = *c.TargetTimestamp
	} else if configured && state.TargetTimestamp > now {
		targetTimestamp = state.TargetTimestamp
	} else {
		return state, invalidConfig(name, "target_timestamp does not have a default value")
	}

	exponent := state.Exponent
	if c.Exponent != nil {
		exponent = *c.Exponent
	} else if !configured {
		return state, invalidConfig(name, "exponent does not have a default value")
	}

	decaySecs := state.DecaySecs
	if c.DecaySecs != nil {
		decaySecs = *c.DecaySecs
	}

	maxPrice := state.MaxPrice
	if c.MaxPrice != nil {
		maxPrice = *c.MaxPrice
	} else if !configured {
		return state, invalidConfig(name, "max_price does not have a default value")
	}

	minPrice := state.MinPrice
	if c.MinPrice != nil {
		minPrice = *c.MinPrice
	}

	if currentRatio == 0 {
		return state, invalidConfig(name, "current_weight_ratio is too small")
	}
	if currentRatio > FracScale {
		return state, invalidConfig(name, "current_weight_ratio is too large")
	}
	if targetRatio == 0 {
		return state, invalidConfig(name, "target_weight_ratio is too small")
	}
	if targetRatio > FracScale {
		return state, invalidConfig(name, "target_weight_ratio is too large")
	}
	if stake == 0 {
		return state, invalidConfig(name, "assumed_stake_weight must be at least 1; a much larger value is recommended")
	}
	if CalcWeight(currentRatio, stake) == 0 || CalcWeight(targetRatio, stake) == 0 {
		return state, invalidConfig(name, "assumed_stake_weight is too small for the weight ratios")
	}
	if targetTimestamp <= now && currentRatio != targetRatio {
		return state, invalidConfig(name, "target_timestamp must be in the future")
	}
	if exponent < MinExponent {
		return state, invalidConfig(name, "exponent must be >= 1")
	}
	if exponent > MaxExponent {
		return state, invalidConfig(name, "exponent must be <= 16")
	}
	if maxPrice == 0 {
		return state, invalidConfig(name, "max_price must be positive")
	}
	if minPrice > maxPrice {
		return state, invalidConfig(name, "min_price cannot exceed max_price")
	}

	state.AssumedStakeWeight = stake
	state.InitialWeightRatio = currentRatio
	state.TargetWeightRatio = targetRatio
	state.InitialTimestamp = now
	state.TargetTimestamp = targetTimestamp
	state.Exponent = exponent
	state.DecaySecs = decaySecs
	state.MinPrice = minPrice
	state.MaxPrice = maxPrice
	return state, nil
}

func (c *Config) rentTerms(rentDays uint32, minRentFee uint64) (uint32, uint64, error) {
	if c.RentDays != nil {
		rentDays = *c.RentDays
	} else if rentDays == 0 {
		return 0, 0, fmt.Errorf("%w: rent_days does not have a default value", ErrInvalidConfig)
	}
	if c.MinRentFee != nil {
		minRentFee = *c.MinRentFee
	} else if minRentFee == 0 {
		return 0, 0, fmt.Errorf("%w: min_rent_fee does not have a default value", ErrInvalidConfig)
	}
	if rentDays == 0 {
		return 0, 0, fmt.Errorf("%w: rent_days must be > 0", ErrInvalidConfig)
	}
	if minRentFee == 0 {
		return 0, 0, fmt.Errorf("%w: min_rent_fee must be positive", ErrInvalidConfig)
	}
	return rentDays, minRentFee, nil
}
