// Copyright 2021-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"errors"
	"math"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"github.com/offchainlabs/powerup/ledger/burn"
	"github.com/offchainlabs/powerup/util/testhelpers"
)

func requirePanic(t *testing.T, testCase interface{}, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatal("panic expected but function exited successfully for test case", testCase)
		}
	}()
	f()
}

func TestStorageBackedInt64(t *testing.T) {
	sto := NewMemoryBacked(burn.NewSystemBurner(false))
	sbi := sto.OpenStorageBackedInt64(0)
	for _, in := range []int64{0, 1, -1, 33, -31591083, math.MaxInt64, math.MinInt64} {
		Require(t, sbi.Set(in))
		out, err := sbi.Get()
		Require(t, err)
		if in != out {
			t.Fatal(in, out)
		}
	}
}

func TestStorageBackedUint64(t *testing.T) {
	sto := NewMemoryBacked(burn.NewSystemBurner(false))
	sbu := sto.OpenStorageBackedUint64(3)
	Require(t, sbu.Set(math.MaxUint64-1))
	value, err := sbu.Increment()
	Require(t, err)
	if value != math.MaxUint64 {
		t.Fatal(value)
	}
	requirePanic(t, "increment past max", func() { _, _ = sbu.Increment() })

	Require(t, sbu.Clear())
	requirePanic(t, "decrement below zero", func() { _, _ = sbu.Decrement() })

	raw, err := sto.GetUint64ByUint64(3)
	Require(t, err)
	if raw != 0 {
		t.Fatal("slot must be visible through the raw accessors", raw)
	}
}

func TestStorageBackedUint32AndAddress(t *testing.T) {
	sto := NewMemoryBacked(burn.NewSystemBurner(false))
	days := sto.OpenStorageBackedUint32(0)
	Require(t, days.Set(30))
	got, err := days.Get()
	Require(t, err)
	if got != 30 {
		t.Fatal(got)
	}
	Require(t, sto.SetUint64ByUint64(0, math.MaxUint32+1))
	requirePanic(t, "uint32 overflow", func() { _, _ = days.Get() })

	address := testhelpers.RandomAddress()
	sba := sto.OpenStorageBackedAddress(1)
	Require(t, sba.Set(address))
	gotAddress, err := sba.Get()
	Require(t, err)
	if gotAddress != address {
		t.Fatal(address, gotAddress)
	}
}

func TestSubStoragesAreDisjoint(t *testing.T) {
	sto := NewMemoryBacked(burn.NewSystemBurner(false))
	left := sto.OpenSubStorage([]byte("left"))
	right := sto.OpenSubStorage([]byte("right"))
	Require(t, left.SetUint64ByUint64(0, 7))
	Require(t, right.SetUint64ByUint64(0, 9))

	for _, tc := range []struct {
		sto      *Storage
		expected uint64
	}{{sto, 0}, {left, 7}, {right, 9}} {
		value, err := tc.sto.GetUint64ByUint64(0)
		Require(t, err)
		if value != tc.expected {
			t.Fatal("expected", tc.expected, "got", value)
		}
	}
	if left.GetStorageSlot(common.Hash{}) == right.GetStorageSlot(common.Hash{}) {
		t.Fatal("sub-storages share a slot")
	}
}

func TestCheckpointRevert(t *testing.T) {
	sto := NewMemoryBacked(burn.NewSystemBurner(false))
	Require(t, sto.SetUint64ByUint64(0, 1))
	checkpoint := sto.Checkpoint()
	Require(t, sto.SetUint64ByUint64(0, 2))
	Require(t, sto.OpenSubStorage([]byte("child")).SetUint64ByUint64(5, 3))
	sto.RevertToCheckpoint(checkpoint)

	value, err := sto.GetUint64ByUint64(0)
	Require(t, err)
	if value != 1 {
		t.Fatal("revert did not restore the value", value)
	}
	child, err := sto.OpenSubStorage([]byte("child")).GetUint64ByUint64(5)
	Require(t, err)
	if child != 0 {
		t.Fatal("revert did not discard the child write", child)
	}
}

func TestBurnerMetering(t *testing.T) {
	budget := StorageReadCost + StorageWriteCost
	sto := NewMemoryBacked(burn.NewBudgetBurner(budget, false))
	_, err := sto.GetByUint64(0)
	Require(t, err)
	Require(t, sto.SetUint64ByUint64(0, 1))
	if sto.Burner().Burned() != budget {
		t.Fatal("unexpected work", sto.Burner().Burned())
	}
	if _, err := sto.GetByUint64(0); !errors.Is(err, burn.ErrOutOfBudget) {
		t.Fatal("expected out of budget but got", err)
	}

	unmetered := sto.WithBurner(burn.NewSystemBurner(false))
	value, err := unmetered.GetUint64ByUint64(0)
	Require(t, err)
	if value != 1 {
		t.Fatal("views must share the backing storage", value)
	}

	readOnly := sto.WithBurner(burn.NewSystemBurner(true))
	if err := readOnly.SetUint64ByUint64(0, 2); !errors.Is(err, ErrReadOnly) {
		t.Fatal("expected read-only failure but got", err)
	}
}

func Require(t *testing.T, err error, printables ...interface{}) {
	t.Helper()
	testhelpers.RequireImpl(t, err, printables...)
}

func Fail(t *testing.T, printables ...interface{}) {
	t.Helper()
	testhelpers.FailImpl(t, printables...)
}
