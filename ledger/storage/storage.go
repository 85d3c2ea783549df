// Copyright 2021-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package storage

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/params"

	"github.com/offchainlabs/powerup/ledger/burn"
)

// Storage allows the ledger to store data persistently in an Ethereum-compatible stateDB. This is represented
// in the stateDB as the storage of a fictional account at address 0xB0E7FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF.
//
// The storage is logically a tree of storage spaces which can be nested hierarchically, with each storage space
// containing a key-value store with 256-bit keys and values. Uninitialized storage spaces and uninitialized keys
// within initialized storage spaces are deemed to be filled with zeroes.
//
// A storage space (represented by a Storage object) has a byte-slice storageKey which distinguishes it from other
// storage spaces. The root Storage has its storageKey as the empty string. The storageKey of a child is
// keccak256(parent.storageKey, name). The contents of key within a storage space are stored at location
// keccak256(storageKey, key) in the account's flat key-value store.
//
// Every access is charged to the storage's burner, so a call can be bounded by the work it may do.
type Storage struct {
	account    common.Address
	db         StateDB
	storageKey []byte
	burner     burn.Burner
}

// StateDB is the part of geth's state.StateDB the storage tree needs.
type StateDB interface {
	GetState(addr common.Address, key common.Hash) common.Hash
	SetState(addr common.Address, key common.Hash, value common.Hash)
	GetNonce(addr common.Address) uint64
	SetNonce(addr common.Address, nonce uint64)
	Snapshot() int
	RevertToSnapshot(revid int)
}

const StorageReadCost = params.SloadGasEIP2200
const StorageWriteCost = params.SstoreSetGasEIP2200
const StorageWriteZeroCost = params.SstoreResetGasEIP2200

var LedgerAccount = common.HexToAddress("0xB0E7FFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFFF")

// NewGeth uses a Geth database to create a key-value store
func NewGeth(statedb StateDB, burner burn.Burner) *Storage {
	if statedb.GetNonce(LedgerAccount) == 0 {
		statedb.SetNonce(LedgerAccount, 1) // setting the nonce ensures Geth won't treat the account as empty
	}
	return &Storage{
		account:    LedgerAccount,
		db:         statedb,
		storageKey: []byte{},
		burner:     burner,
	}
}

// NewMemoryBacked uses Geth's memory-backed database to create a key-value store
func NewMemoryBacked(burner burn.Burner) *Storage {
	return NewGeth(NewMemoryBackedStateDB(), burner)
}

// NewMemoryBackedStateDB uses Geth's memory-backed database to create a statedb
func NewMemoryBackedStateDB() *state.StateDB {
	raw := rawdb.NewMemoryDatabase()
	db := state.NewDatabase(raw)
	statedb, err := state.New(common.Hash{}, db, nil)
	if err != nil {
		panic("failed to init empty statedb")
	}
	return statedb
}

// We map addresses using "pages" of 256 storage slots. We hash over the page number but not the offset within
// a page, to preserve contiguity within a page.
// Because page numbers are 248 bits, this gives us 124-bit security against collision attacks.
func mapAddress(storageKey []byte, key common.Hash) common.Hash {
	keyBytes := key.Bytes()
	boundary := common.HashLength - 1
	mapped := make([]byte, 0, common.HashLength)
	mapped = append(mapped, crypto.Keccak256(storageKey, keyBytes[:boundary])[:boundary]...)
	mapped = append(mapped, keyBytes[boundary])
	return common.BytesToHash(mapped)
}

func writeCost(value common.Hash) uint64 {
	if value == (common.Hash{}) {
		return StorageWriteZeroCost
	}
	return StorageWriteCost
}

func UintToHash(val uint64) common.Hash {
	return common.BigToHash(new(big.Int).SetUint64(val))
}

func (s *Storage) Account() common.Address {
	return s.account
}

func (s *Storage) Burner() burn.Burner {
	return s.burner
}

// WithBurner returns a view of the same storage space that charges a different burner
func (s *Storage) WithBurner(burner burn.Burner) *Storage {
	return &Storage{s.account, s.db, s.storageKey, burner}
}

func (s *Storage) Get(key common.Hash) (common.Hash, error) {
	err := s.burner.Burn(StorageReadCost)
	if err != nil {
		return common.Hash{}, err
	}
	return s.db.GetState(s.account, mapAddress(s.storageKey, key)), nil
}

func (s *Storage) GetStorageSlot(key common.Hash) common.Hash {
	return mapAddress(s.storageKey, key)
}

func (s *Storage) GetUint64(key common.Hash) (uint64, error) {
	value, err := s.Get(key)
	return value.Big().Uint64(), err
}

func (s *Storage) GetByUint64(key uint64) (common.Hash, error) {
	return s.Get(UintToHash(key))
}

func (s *Storage) GetUint64ByUint64(key uint64) (uint64, error) {
	return s.GetUint64(UintToHash(key))
}

func (s *Storage) Set(key common.Hash, value common.Hash) error {
	if s.burner.ReadOnly() {
		return ErrReadOnly
	}
	err := s.burner.Burn(writeCost(value))
	if err != nil {
		return err
	}
	s.db.SetState(s.account, mapAddress(s.storageKey, key), value)
	return nil
}

func (s *Storage) SetByUint64(key uint64, value common.Hash) error {
	return s.Set(UintToHash(key), value)
}

func (s *Storage) SetUint64ByUint64(key uint64, value uint64) error {
	return s.Set(UintToHash(key), UintToHash(value))
}

func (s *Storage) Clear(key common.Hash) error {
	return s.Set(key, common.Hash{})
}

func (s *Storage) ClearByUint64(key uint64) error {
	return s.Set(UintToHash(key), common.Hash{})
}

func (s *Storage) Swap(key common.Hash, newValue common.Hash) (common.Hash, error) {
	oldValue, err := s.Get(key)
	if err != nil {
		return common.Hash{}, err
	}
	return oldValue, s.Set(key, newValue)
}

func (s *Storage) OpenSubStorage(id []byte) *Storage {
	return &Storage{
		s.account,
		s.db,
		crypto.Keccak256(s.storageKey, id),
		s.burner,
	}
}

// Checkpoint marks the current state of the whole backing database.
// Reverting to it discards every write made through any storage space since.
func (s *Storage) Checkpoint() int {
	return s.db.Snapshot()
}

func (s *Storage) RevertToCheckpoint(checkpoint int) {
	s.db.RevertToSnapshot(checkpoint)
}

type StorageSlot struct {
	account common.Address
	db      StateDB
	slot    common.Hash
	burner  burn.Burner
}

func (s *Storage) NewSlot(offset uint64) StorageSlot {
	return StorageSlot{s.account, s.db, mapAddress(s.storageKey, UintToHash(offset)), s.burner}
}

func (ss *StorageSlot) Get() (common.Hash, error) {
	err := ss.burner.Burn(StorageReadCost)
	if err != nil {
		return common.Hash{}, err
	}
	return ss.db.GetState(ss.account, ss.slot), nil
}

func (ss *StorageSlot) Set(value common.Hash) error {
	if ss.burner.ReadOnly() {
		return ErrReadOnly
	}
	err := ss.burner.Burn(writeCost(value))
	if err != nil {
		return err
	}
	ss.db.SetState(ss.account, ss.slot, value)
	return nil
}
