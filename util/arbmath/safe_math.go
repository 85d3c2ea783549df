// Copyright 2022-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package arbmath

import "errors"

var ErrUintOverflow = errors.New("uint64 overflow")

// SafeUAdd adds two uint64's, failing on overflow
func SafeUAdd(augend uint64, addend uint64) (uint64, error) {
	sum := augend + addend
	if sum < augend || sum < addend {
		return 0, ErrUintOverflow
	}
	return sum, nil
}

// SafeUMul multiplies two uint64's, failing on overflow
func SafeUMul(multiplicand uint64, multiplier uint64) (uint64, error) {
	product := multiplicand * multiplier
	if multiplier != 0 && product/multiplier != multiplicand {
		return 0, ErrUintOverflow
	}
	return product, nil
}
