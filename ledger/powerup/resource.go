// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package powerup

import (
	"fmt"

	"github.com/holiman/uint256"

	"github.com/offchainlabs/powerup/ledger/storage"
	"github.com/offchainlabs/powerup/util/arbmath"
)

// ResourceState is a snapshot of one resource's market.
type ResourceState struct {
	Weight               uint64 `json:"weight"`
	WeightRatio          uint64 `json:"weight_ratio"`
	AssumedStakeWeight   uint64 `json:"assumed_stake_weight"`
	InitialWeightRatio   uint64 `json:"initial_weight_ratio"`
	TargetWeightRatio    uint64 `json:"target_weight_ratio"`
	InitialTimestamp     uint64 `json:"initial_timestamp"`
	TargetTimestamp      uint64 `json:"target_timestamp"`
	Exponent             uint64 `json:"exponent"`
	DecaySecs            uint64 `json:"decay_secs"`
	MinPrice             uint64 `json:"min_price"`
	MaxPrice             uint64 `json:"max_price"`
	Utilization          uint64 `json:"utilization"`
	AdjustedUtilization  uint64 `json:"adjusted_utilization"`
	UtilizationTimestamp uint64 `json:"utilization_timestamp"`
	Fee                  uint64 `json:"fee"`
}

func (s *ResourceState) CurveParams() CurveParams {
	return CurveParams{
		Weight:   s.Weight,
		Exponent: s.Exponent,
		MinPrice: s.MinPrice,
		MaxPrice: s.MaxPrice,
	}
}

// updateWeight applies the weight schedule at now and returns the change in weight
func (s *ResourceState) updateWeight(now uint64) int64 {
	s.WeightRatio = CalcWeightRatio(s.InitialWeightRatio, s.TargetWeightRatio, s.InitialTimestamp, s.TargetTimestamp, now)
	weight := CalcWeight(s.WeightRatio, s.AssumedStakeWeight)
	delta := arbmath.SaturatingDelta(s.Weight, weight)
	s.Weight = weight
	return delta
}

// updateUtilization decays the adjusted utilization up to now
func (s *ResourceState) updateUtilization(now uint64) {
	if now <= s.UtilizationTimestamp {
		s.AdjustedUtilization = arbmath.MaxInt(s.AdjustedUtilization, s.Utilization)
		return
	}
	elapsed := now - s.UtilizationTimestamp
	s.AdjustedUtilization = DecayAdjustedUtilization(s.Utilization, s.AdjustedUtilization, elapsed, s.DecaySecs)
	s.UtilizationTimestamp = now
}

// amountForFraction converts a fraction of the current weight into an amount of the resource
func (s *ResourceState) amountForFraction(frac uint64) uint64 {
	amount := new(uint256.Int).Mul(uint256.NewInt(frac), uint256.NewInt(s.Weight))
	return amount.Div(amount, uint256.NewInt(FracScale)).Uint64()
}

// quote prices renting frac of the resource without changing it
func (s *ResourceState) quote(frac uint64) (amount uint64, fee uint64, err error) {
	if frac == 0 {
		return 0, 0, nil
	}
	if s.Weight == 0 {
		return 0, 0, fmt.Errorf("%w: zero weight", ErrInvalidMarketState)
	}
	amount = s.amountForFraction(frac)
	if s.Utilization > s.Weight || amount > s.Weight-s.Utilization {
		return 0, 0, fmt.Errorf("%w: requested %v, available %v", ErrInsufficientCapacity, amount, arbmath.SaturatingUSub(s.Weight, s.Utilization))
	}
	fee, err = RentalFee(*s, amount)
	return amount, fee, err
}

// rent commits a quoted rental
func (s *ResourceState) rent(amount, fee uint64) {
	s.Utilization += amount
	s.AdjustedUtilization = arbmath.MaxInt(s.AdjustedUtilization, s.Utilization)
	s.Fee = arbmath.SaturatingUAdd(s.Fee, fee)
}

// release returns an expired rental's amount.
// It reports false if the amount exceeded utilization, which is then clamped to zero.
func (s *ResourceState) release(amount uint64) bool {
	if amount > s.Utilization {
		s.Utilization = 0
		return false
	}
	s.Utilization -= amount
	return true
}

const (
	weightOffset uint64 = iota
	weightRatioOffset
	assumedStakeWeightOffset
	initialWeightRatioOffset
	targetWeightRatioOffset
	initialTimestampOffset
	targetTimestampOffset
	exponentOffset
	decaySecsOffset
	minPriceOffset
	maxPriceOffset
	utilizationOffset
	adjustedUtilizationOffset
	utilizationTimestampOffset
	feeOffset
	numResourceFields
)

// resource is a ResourceState laid out in storage, one slot per field.
type resource struct {
	fields [numResourceFields]storage.StorageBackedUint64
}

func openResource(sto *storage.Storage) *resource {
	r := &resource{}
	for offset := uint64(0); offset < numResourceFields; offset++ {
		r.fields[offset] = sto.OpenStorageBackedUint64(offset)
	}
	return r
}

func (s *ResourceState) slots() [numResourceFields]*uint64 {
	return [numResourceFields]*uint64{
		weightOffset:               &s.Weight,
		weightRatioOffset:          &s.WeightRatio,
		assumedStakeWeightOffset:   &s.AssumedStakeWeight,
		initialWeightRatioOffset:   &s.InitialWeightRatio,
		targetWeightRatioOffset:    &s.TargetWeightRatio,
		initialTimestampOffset:     &s.InitialTimestamp,
		targetTimestampOffset:      &s.TargetTimestamp,
		exponentOffset:             &s.Exponent,
		decaySecsOffset:            &s.DecaySecs,
		minPriceOffset:             &s.MinPrice,
		maxPriceOffset:             &s.MaxPrice,
		utilizationOffset:          &s.Utilization,
		adjustedUtilizationOffset:  &s.AdjustedUtilization,
		utilizationTimestampOffset: &s.UtilizationTimestamp,
		feeOffset:                  &s.Fee,
	}
}

func (r *resource) Load() (ResourceState, error) {
	var state ResourceState
	for offset, field := range state.slots() {
		value, err := r.fields[offset].Get()
		if err != nil {
			return ResourceState{}, err
		}
		*field = value
	}
	return state, nil
}

// Store writes only the fields that differ from before
func (r *resource) Store(before, after ResourceState) error {
	old := before.slots()
	for offset, field := range after.slots() {
		if *field == *old[offset] {
			continue
		}
		if err := r.fields[offset].Set(*field); err != nil {
			return err
		}
	}
	return nil
}
