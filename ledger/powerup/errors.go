// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package powerup

import "errors"

var (
	ErrInvalidConfig        = errors.New("invalid market configuration")
	ErrExceedsMaxPayment    = errors.New("calculated fee exceeds max payment")
	ErrBelowMinimumFee      = errors.New("calculated fee is below minimum; try renting more")
	ErrInvalidMarketState   = errors.New("invalid market state")
	ErrQueueConsistency     = errors.New("rent order queue disagrees with utilization")
	ErrMarketNotActive      = errors.New("market has not been activated")
	ErrInvalidDays          = errors.New("days doesn't match configuration")
	ErrInvalidFraction      = errors.New("rental fraction out of range")
	ErrInvalidPayment       = errors.New("max payment must be positive")
	ErrInsufficientCapacity = errors.New("market doesn't have enough resources available")
	ErrOrderNotFound        = errors.New("rent order not found")
)
