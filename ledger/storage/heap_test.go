// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"errors"
	"math/rand"
	"sort"
	"testing"

	"github.com/offchainlabs/powerup/ledger/burn"
)

func TestExpirationHeapOrder(t *testing.T) {
	sto := NewMemoryBacked(burn.NewSystemBurner(false))
	heap := OpenExpirationHeap(sto.OpenSubStorage([]byte("queue")))

	if _, err := heap.Pop(); !errors.Is(err, ErrHeapEmpty) {
		Fail(t, "expected empty heap but got", err)
	}
	_, found, err := heap.Peek()
	Require(t, err)
	if found {
		Fail(t, "empty heap has a front")
	}

	rng := rand.New(rand.NewSource(7))
	var entries []HeapEntry
	for id := uint64(0); id < 200; id++ {
		// few distinct expirations so ties are common
		entry := HeapEntry{Expiration: 1000 + uint64(rng.Intn(20)), ID: id}
		entries = append(entries, entry)
		Require(t, heap.Push(entry))
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Less(entries[j]) })

	size, err := heap.Size()
	Require(t, err)
	if size != uint64(len(entries)) {
		Fail(t, "wrong size", size)
	}
	for i, expected := range entries {
		front, found, err := heap.Peek()
		Require(t, err)
		if !found || front != expected {
			Fail(t, "wrong front at", i, front, expected)
		}
		popped, err := heap.Pop()
		Require(t, err)
		if popped != expected {
			Fail(t, "wrong pop at", i, popped, expected)
		}
	}
	empty, err := heap.IsEmpty()
	Require(t, err)
	if !empty {
		Fail(t, "heap should be drained")
	}
}

func TestExpirationHeapInterleaved(t *testing.T) {
	sto := NewMemoryBacked(burn.NewSystemBurner(false))
	heap := OpenExpirationHeap(sto)

	Require(t, heap.Push(HeapEntry{Expiration: 50, ID: 1}))
	Require(t, heap.Push(HeapEntry{Expiration: 10, ID: 2}))
	Require(t, heap.Push(HeapEntry{Expiration: 30, ID: 3}))
	first, err := heap.Pop()
	Require(t, err)
	if first.ID != 2 {
		Fail(t, "expected order 2 first", first)
	}
	Require(t, heap.Push(HeapEntry{Expiration: 20, ID: 4}))
	Require(t, heap.Push(HeapEntry{Expiration: 30, ID: 0}))

	var ids []uint64
	for {
		empty, err := heap.IsEmpty()
		Require(t, err)
		if empty {
			break
		}
		entry, err := heap.Pop()
		Require(t, err)
		ids = append(ids, entry.ID)
	}
	expected := []uint64{4, 0, 3, 1}
	for i := range expected {
		if ids[i] != expected[i] {
			Fail(t, "wrong order", ids)
		}
	}

	// popped slots are cleared
	for offset := uint64(0); offset < 12; offset++ {
		value, err := sto.GetUint64ByUint64(offset)
		Require(t, err)
		if value != 0 {
			Fail(t, "slot", offset, "not cleared", value)
		}
	}
}
