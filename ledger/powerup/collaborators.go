// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package powerup

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/offchainlabs/powerup/util/arbmath"
)

// CapacityLedger moves rented capacity between the market's reserve and receivers.
type CapacityLedger interface {
	Grant(receiver common.Address, net, cpu uint64) error
	Revoke(receiver common.Address, net, cpu uint64) error
	// AdjustReserve follows changes in the market's total weight.
	AdjustReserve(netDelta, cpuDelta int64) error
}

// FeeSettler collects rental fees from payers.
type FeeSettler interface {
	SettleFee(payer common.Address, fee uint64) error
}

// ResultObserver is told about every completed purchase. It can't fail the purchase.
type ResultObserver interface {
	PurchaseResult(receipt Receipt)
}

// Collaborators bundles the market's side effects. Nil members are skipped.
type Collaborators struct {
	Capacity CapacityLedger
	Fees     FeeSettler
	Observer ResultObserver
}

func (c *Collaborators) grant(receiver common.Address, net, cpu uint64) error {
	if c.Capacity == nil {
		return nil
	}
	return c.Capacity.Grant(receiver, net, cpu)
}

func (c *Collaborators) revoke(receiver common.Address, net, cpu uint64) error {
	if c.Capacity == nil {
		return nil
	}
	return c.Capacity.Revoke(receiver, net, cpu)
}

func (c *Collaborators) adjustReserve(netDelta, cpuDelta int64) error {
	if c.Capacity == nil || (netDelta == 0 && cpuDelta == 0) {
		return nil
	}
	return c.Capacity.AdjustReserve(netDelta, cpuDelta)
}

func (c *Collaborators) settleFee(payer common.Address, fee uint64) error {
	if c.Fees == nil {
		return nil
	}
	return c.Fees.SettleFee(payer, fee)
}

func (c *Collaborators) purchaseResult(receipt Receipt) {
	if c.Observer != nil {
		c.Observer.PurchaseResult(receipt)
	}
}

// sideEffects applies collaborator calls in order, remembering how to undo each one.
// When a call fails the earlier ones are undone, newest first. Fees are never undone.
type sideEffects struct {
	collaborators *Collaborators
	undo          []func() error
}

func (e *sideEffects) run(f func() error) error {
	if err := f(); err != nil {
		for i := len(e.undo) - 1; i >= 0; i-- {
			if undoErr := e.undo[i](); undoErr != nil {
				log.Error("failed to undo collaborator call", "err", undoErr, "cause", err)
			}
		}
		e.undo = nil
		return err
	}
	e.undo = nil
	return nil
}

func (e *sideEffects) revoke(receiver common.Address, net, cpu uint64) error {
	if err := e.collaborators.revoke(receiver, net, cpu); err != nil {
		return err
	}
	e.undo = append(e.undo, func() error { return e.collaborators.grant(receiver, net, cpu) })
	return nil
}

func (e *sideEffects) grant(receiver common.Address, net, cpu uint64) error {
	if err := e.collaborators.grant(receiver, net, cpu); err != nil {
		return err
	}
	e.undo = append(e.undo, func() error { return e.collaborators.revoke(receiver, net, cpu) })
	return nil
}

func (e *sideEffects) adjustReserve(netDelta, cpuDelta int64) error {
	if err := e.collaborators.adjustReserve(netDelta, cpuDelta); err != nil {
		return err
	}
	e.undo = append(e.undo, func() error {
		return e.collaborators.adjustReserve(arbmath.SaturatingNeg(netDelta), arbmath.SaturatingNeg(cpuDelta))
	})
	return nil
}

func (e *sideEffects) settleFee(payer common.Address, fee uint64) error {
	return e.collaborators.settleFee(payer, fee)
}
