// Copyright 2024-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package arbmath

const SecondsPerDay uint64 = 24 * 60 * 60

func DaysToSeconds[T Unsigned](days T) uint64 {
	return SaturatingUMul(uint64(days), SecondsPerDay)
}
