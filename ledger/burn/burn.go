// Copyright 2021-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package burn

import (
	"errors"
	"fmt"

	glog "github.com/ethereum/go-ethereum/log"
)

var ErrOutOfBudget = errors.New("work budget exhausted")

// Burner meters the storage work done on behalf of a single ledger call.
type Burner interface {
	Burn(amount uint64) error
	Burned() uint64
	Restrict(err error)
	HandleError(err error) error
	ReadOnly() bool
}

// SystemBurner is unmetered. It is used for work the ledger itself performs, such as
// configuration and initialization, and for read-only queries.
type SystemBurner struct {
	workBurnt uint64
	readOnly  bool
}

func NewSystemBurner(readOnly bool) *SystemBurner {
	return &SystemBurner{
		readOnly: readOnly,
	}
}

func (burner *SystemBurner) Burn(amount uint64) error {
	burner.workBurnt += amount
	return nil
}

func (burner *SystemBurner) Burned() uint64 {
	return burner.workBurnt
}

func (burner *SystemBurner) Restrict(err error) {
	if err != nil {
		glog.Error("Restrict() received an error", "err", err)
	}
}

func (burner *SystemBurner) HandleError(err error) error {
	panic(fmt.Sprintf("fatal error in system burner: %v", err))
}

func (burner *SystemBurner) ReadOnly() bool {
	return burner.readOnly
}

// BudgetBurner fails once the work charged to it would exceed its budget.
// The work that caused the failure is not recorded as burnt.
type BudgetBurner struct {
	budget    uint64
	workBurnt uint64
	readOnly  bool
}

func NewBudgetBurner(budget uint64, readOnly bool) *BudgetBurner {
	return &BudgetBurner{
		budget:   budget,
		readOnly: readOnly,
	}
}

func (burner *BudgetBurner) Burn(amount uint64) error {
	if amount > burner.Remaining() {
		return fmt.Errorf("%w: need %v, have %v", ErrOutOfBudget, amount, burner.Remaining())
	}
	burner.workBurnt += amount
	return nil
}

func (burner *BudgetBurner) Burned() uint64 {
	return burner.workBurnt
}

func (burner *BudgetBurner) Remaining() uint64 {
	return burner.budget - burner.workBurnt
}

func (burner *BudgetBurner) Restrict(err error) {
	if err != nil {
		glog.Debug("budget burner restricted", "err", err, "burnt", burner.workBurnt)
	}
}

func (burner *BudgetBurner) HandleError(err error) error {
	return err
}

func (burner *BudgetBurner) ReadOnly() bool {
	return burner.readOnly
}
