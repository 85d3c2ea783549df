// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"errors"
)

const expirationHeapSizeOffset uint64 = 0
const expirationHeapSlotsPerEntry uint64 = 2

var ErrHeapEmpty = errors.New("expiration heap: can't pop empty")

// HeapEntry is an item scheduled to expire at a timestamp.
// Entries are ordered by expiration, then by ID.
type HeapEntry struct {
	Expiration uint64
	ID         uint64
}

func (e HeapEntry) Less(other HeapEntry) bool {
	if e.Expiration != other.Expiration {
		return e.Expiration < other.Expiration
	}
	return e.ID < other.ID
}

// ExpirationHeap is a binary min-heap laid out in a storage space.
// Slot 0 holds the size; entry i occupies slots 1+2i (expiration) and 2+2i (ID).
type ExpirationHeap struct {
	storage *Storage
	size    StorageBackedUint64
}

func OpenExpirationHeap(sto *Storage) *ExpirationHeap {
	return &ExpirationHeap{
		sto,
		sto.OpenStorageBackedUint64(expirationHeapSizeOffset),
	}
}

func (h *ExpirationHeap) Size() (uint64, error) {
	return h.size.Get()
}

func (h *ExpirationHeap) IsEmpty() (bool, error) {
	size, err := h.size.Get()
	return size == 0, err
}

func (h *ExpirationHeap) offset(index uint64) uint64 {
	return 1 + index*expirationHeapSlotsPerEntry
}

func (h *ExpirationHeap) get(index uint64) (HeapEntry, error) {
	offset := h.offset(index)
	expiration, err := h.storage.GetUint64ByUint64(offset)
	if err != nil {
		return HeapEntry{}, err
	}
	id, err := h.storage.GetUint64ByUint64(offset + 1)
	return HeapEntry{expiration, id}, err
}

func (h *ExpirationHeap) set(index uint64, entry HeapEntry) error {
	offset := h.offset(index)
	if err := h.storage.SetUint64ByUint64(offset, entry.Expiration); err != nil {
		return err
	}
	return h.storage.SetUint64ByUint64(offset+1, entry.ID)
}

func (h *ExpirationHeap) clear(index uint64) error {
	offset := h.offset(index)
	if err := h.storage.ClearByUint64(offset); err != nil {
		return err
	}
	return h.storage.ClearByUint64(offset + 1)
}

// Peek returns the earliest entry, or false if the heap is empty
func (h *ExpirationHeap) Peek() (HeapEntry, bool, error) {
	size, err := h.size.Get()
	if err != nil || size == 0 {
		return HeapEntry{}, false, err
	}
	entry, err := h.get(0)
	return entry, err == nil, err
}

func (h *ExpirationHeap) Push(entry HeapEntry) error {
	size, err := h.size.Get()
	if err != nil {
		return err
	}
	if err := h.size.Set(size + 1); err != nil {
		return err
	}

	// sift up, moving parents down until the entry's place is found
	index := size
	for index > 0 {
		parentIndex := (index - 1) / 2
		parent, err := h.get(parentIndex)
		if err != nil {
			return err
		}
		if !entry.Less(parent) {
			break
		}
		if err := h.set(index, parent); err != nil {
			return err
		}
		index = parentIndex
	}
	return h.set(index, entry)
}

// Pop removes and returns the earliest entry
func (h *ExpirationHeap) Pop() (HeapEntry, error) {
	size, err := h.size.Get()
	if err != nil {
		return HeapEntry{}, err
	}
	if size == 0 {
		return HeapEntry{}, ErrHeapEmpty
	}
	top, err := h.get(0)
	if err != nil {
		return HeapEntry{}, err
	}
	last, err := h.get(size - 1)
	if err != nil {
		return HeapEntry{}, err
	}
	if err := h.clear(size - 1); err != nil {
		return HeapEntry{}, err
	}
	size--
	if err := h.size.Set(size); err != nil {
		return HeapEntry{}, err
	}
	if size == 0 {
		return top, nil
	}

	// sift the former last entry down from the root
	index := uint64(0)
	for {
		smallest := last
		smallestIndex := index
		for _, childIndex := range []uint64{2*index + 1, 2*index + 2} {
			if childIndex >= size {
				continue
			}
			child, err := h.get(childIndex)
			if err != nil {
				return HeapEntry{}, err
			}
			if child.Less(smallest) {
				smallest = child
				smallestIndex = childIndex
			}
		}
		if smallestIndex == index {
			break
		}
		if err := h.set(index, smallest); err != nil {
			return HeapEntry{}, err
		}
		index = smallestIndex
	}
	return top, h.set(index, last)
}
