// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package powerup

import (
	"encoding/binary"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/offchainlabs/powerup/ledger/storage"
)

// RentOrder is capacity granted to a receiver until its expiration.
type RentOrder struct {
	ID         uint64         `json:"id"`
	Payer      common.Address `json:"payer"`
	Receiver   common.Address `json:"receiver"`
	NetAmount  uint64         `json:"net_amount"`
	CPUAmount  uint64         `json:"cpu_amount"`
	Expiration uint64         `json:"expiration"`
}

const (
	orderPayerOffset uint64 = iota
	orderReceiverOffset
	orderNetAmountOffset
	orderCPUAmountOffset
	orderExpirationOffset
)

// orderTable keeps each order in its own storage space, keyed by ID.
type orderTable struct {
	storage *storage.Storage
}

type storedOrder struct {
	payer      storage.StorageBackedAddress
	receiver   storage.StorageBackedAddress
	netAmount  storage.StorageBackedUint64
	cpuAmount  storage.StorageBackedUint64
	expiration storage.StorageBackedUint64
}

func (t *orderTable) open(id uint64) *storedOrder {
	sto := t.storage.OpenSubStorage(binary.BigEndian.AppendUint64(nil, id))
	return &storedOrder{
		payer:      sto.OpenStorageBackedAddress(orderPayerOffset),
		receiver:   sto.OpenStorageBackedAddress(orderReceiverOffset),
		netAmount:  sto.OpenStorageBackedUint64(orderNetAmountOffset),
		cpuAmount:  sto.OpenStorageBackedUint64(orderCPUAmountOffset),
		expiration: sto.OpenStorageBackedUint64(orderExpirationOffset),
	}
}

func (t *orderTable) Insert(order RentOrder) error {
	stored := t.open(order.ID)
	if err := stored.payer.Set(order.Payer); err != nil {
		return err
	}
	if err := stored.receiver.Set(order.Receiver); err != nil {
		return err
	}
	if err := stored.netAmount.Set(order.NetAmount); err != nil {
		return err
	}
	if err := stored.cpuAmount.Set(order.CPUAmount); err != nil {
		return err
	}
	return stored.expiration.Set(order.Expiration)
}

func (t *orderTable) Get(id uint64) (RentOrder, error) {
	stored := t.open(id)
	// a live order never has a zero expiration
	expiration, err := stored.expiration.Get()
	if err != nil {
		return RentOrder{}, err
	}
	if expiration == 0 {
		return RentOrder{}, fmt.Errorf("%w: %v", ErrOrderNotFound, id)
	}
	order := RentOrder{ID: id, Expiration: expiration}
	if order.Payer, err = stored.payer.Get(); err != nil {
		return RentOrder{}, err
	}
	if order.Receiver, err = stored.receiver.Get(); err != nil {
		return RentOrder{}, err
	}
	if order.NetAmount, err = stored.netAmount.Get(); err != nil {
		return RentOrder{}, err
	}
	if order.CPUAmount, err = stored.cpuAmount.Get(); err != nil {
		return RentOrder{}, err
	}
	return order, nil
}

func (t *orderTable) Delete(id uint64) error {
	stored := t.open(id)
	if err := stored.payer.Set(common.Address{}); err != nil {
		return err
	}
	if err := stored.receiver.Set(common.Address{}); err != nil {
		return err
	}
	if err := stored.netAmount.Clear(); err != nil {
		return err
	}
	if err := stored.cpuAmount.Clear(); err != nil {
		return err
	}
	return stored.expiration.Clear()
}
