// Copyright 2021-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var ErrReadOnly = errors.New("write to read-only storage")

// Implementation note for StorageBackedInt64: Conversions between big.Int and common.Hash give weird results
// for negative values, so we cast to uint64 before writing to storage and cast back to int64 after reading.
type StorageBackedInt64 struct {
	StorageSlot
}

func (s *Storage) OpenStorageBackedInt64(offset uint64) StorageBackedInt64 {
	return StorageBackedInt64{s.NewSlot(offset)}
}

func (sbi *StorageBackedInt64) Get() (int64, error) {
	raw, err := sbi.StorageSlot.Get()
	big := raw.Big()
	if !big.IsUint64() {
		panic("invalid value found in StorageBackedInt64 storage")
	}
	return int64(big.Uint64()), err // see implementation note above
}

func (sbi *StorageBackedInt64) Set(value int64) error {
	return sbi.StorageSlot.Set(UintToHash(uint64(value))) // see implementation note above
}

type StorageBackedUint64 struct {
	StorageSlot
}

func (s *Storage) OpenStorageBackedUint64(offset uint64) StorageBackedUint64 {
	return StorageBackedUint64{s.NewSlot(offset)}
}

func (sbu *StorageBackedUint64) Get() (uint64, error) {
	raw, err := sbu.StorageSlot.Get()
	big := raw.Big()
	if !big.IsUint64() {
		panic("expected uint64 compatible value in storage")
	}
	return big.Uint64(), err
}

func (sbu *StorageBackedUint64) Set(value uint64) error {
	return sbu.StorageSlot.Set(UintToHash(value))
}

func (sbu *StorageBackedUint64) Clear() error {
	return sbu.StorageSlot.Set(common.Hash{})
}

func (sbu *StorageBackedUint64) Increment() (uint64, error) {
	old, err := sbu.Get()
	if err != nil {
		return 0, err
	}
	if old+1 < old {
		panic("Overflow in StorageBackedUint64::Increment")
	}
	return old + 1, sbu.Set(old + 1)
}

func (sbu *StorageBackedUint64) Decrement() (uint64, error) {
	old, err := sbu.Get()
	if err != nil {
		return 0, err
	}
	if old == 0 {
		panic("Underflow in StorageBackedUint64::Decrement")
	}
	return old - 1, sbu.Set(old - 1)
}

type StorageBackedUint32 struct {
	StorageSlot
}

func (s *Storage) OpenStorageBackedUint32(offset uint64) StorageBackedUint32 {
	return StorageBackedUint32{s.NewSlot(offset)}
}

func (sbu *StorageBackedUint32) Get() (uint32, error) {
	raw, err := sbu.StorageSlot.Get()
	big := raw.Big()
	if !big.IsUint64() || big.Uint64() > 0xFFFFFFFF {
		panic(fmt.Sprintf("expected uint32 compatible value in storage but got %v", big))
	}
	return uint32(big.Uint64()), err
}

func (sbu *StorageBackedUint32) Set(value uint32) error {
	return sbu.StorageSlot.Set(UintToHash(uint64(value)))
}

type StorageBackedAddress struct {
	StorageSlot
}

func (s *Storage) OpenStorageBackedAddress(offset uint64) StorageBackedAddress {
	return StorageBackedAddress{s.NewSlot(offset)}
}

func (sba *StorageBackedAddress) Get() (common.Address, error) {
	value, err := sba.StorageSlot.Get()
	return common.BytesToAddress(value.Bytes()), err
}

func (sba *StorageBackedAddress) Set(val common.Address) error {
	return sba.StorageSlot.Set(common.BytesToHash(val.Bytes()))
}
