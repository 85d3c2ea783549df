// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package powerup

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/offchainlabs/powerup/ledger/burn"
	"github.com/offchainlabs/powerup/ledger/storage"
	"github.com/offchainlabs/powerup/util/arbmath"
)

const CurrentVersion uint64 = 1

// Every purchase first returns this many expired orders to the pool
const purchaseQueueDrain = 2

const (
	versionOffset uint64 = iota
	rentDaysOffset
	minRentFeeOffset
	nextOrderIDOffset
)

var (
	netKey    = []byte{0}
	cpuKey    = []byte{1}
	ordersKey = []byte{2}
	queueKey  = []byte{3}
)

// Market rents NET and CPU capacity along a bonding curve. All of its state lives in the
// storage space it was opened on, and all of its work is charged to that storage's burner.
type Market struct {
	storage       *storage.Storage
	version       storage.StorageBackedUint64
	rentDays      storage.StorageBackedUint32
	minRentFee    storage.StorageBackedUint64
	nextOrderID   storage.StorageBackedUint64
	net           *resource
	cpu           *resource
	orders        *orderTable
	queue         *storage.ExpirationHeap
	collaborators Collaborators
	dryRun        bool
}

// MarketState is a snapshot of the whole market.
type MarketState struct {
	Version    uint64        `json:"version"`
	Net        ResourceState `json:"net"`
	CPU        ResourceState `json:"cpu"`
	RentDays   uint32        `json:"rent_days"`
	MinRentFee uint64        `json:"min_rent_fee"`
}

// Active reports whether the market has been configured and accepts purchases
func (s *MarketState) Active() bool {
	return s.RentDays > 0
}

// PurchaseRequest rents fractions of each resource's current weight, scaled by FracScale.
type PurchaseRequest struct {
	Payer      common.Address
	Receiver   common.Address
	Days       uint32
	NetFrac    uint64
	CPUFrac    uint64
	MaxPayment uint64
}

// Receipt describes a completed purchase.
type Receipt struct {
	Fee        uint64 `json:"fee"`
	NetFee     uint64 `json:"net_fee"`
	CPUFee     uint64 `json:"cpu_fee"`
	RentedNet  uint64 `json:"rented_net"`
	RentedCPU  uint64 `json:"rented_cpu"`
	OrderID    uint64 `json:"order_id"`
	Expiration uint64 `json:"expiration"`
}

func InitializeMarket(sto *storage.Storage) error {
	return sto.SetUint64ByUint64(versionOffset, CurrentVersion)
}

func OpenMarket(sto *storage.Storage, collaborators Collaborators) (*Market, error) {
	market := openMarket(sto, collaborators)
	version, err := market.version.Get()
	if err != nil {
		return nil, err
	}
	if version == 0 {
		return nil, fmt.Errorf("%w: market not initialized", ErrInvalidMarketState)
	}
	if version > CurrentVersion {
		return nil, fmt.Errorf("%w: unsupported version %v", ErrInvalidMarketState, version)
	}
	return market, nil
}

func openMarket(sto *storage.Storage, collaborators Collaborators) *Market {
	return &Market{
		storage:       sto,
		version:       sto.OpenStorageBackedUint64(versionOffset),
		rentDays:      sto.OpenStorageBackedUint32(rentDaysOffset),
		minRentFee:    sto.OpenStorageBackedUint64(minRentFeeOffset),
		nextOrderID:   sto.OpenStorageBackedUint64(nextOrderIDOffset),
		net:           openResource(sto.OpenSubStorage(netKey)),
		cpu:           openResource(sto.OpenSubStorage(cpuKey)),
		orders:        &orderTable{sto.OpenSubStorage(ordersKey)},
		queue:         storage.OpenExpirationHeap(sto.OpenSubStorage(queueKey)),
		collaborators: collaborators,
	}
}

// WithBurner returns a handle on the same market that charges its work to burner
func (m *Market) WithBurner(burner burn.Burner) *Market {
	return openMarket(m.storage.WithBurner(burner), m.collaborators)
}

func (m *Market) State() (MarketState, error) {
	var state MarketState
	var err error
	if state.Version, err = m.version.Get(); err != nil {
		return MarketState{}, err
	}
	if state.RentDays, err = m.rentDays.Get(); err != nil {
		return MarketState{}, err
	}
	if state.MinRentFee, err = m.minRentFee.Get(); err != nil {
		return MarketState{}, err
	}
	if state.Net, err = m.net.Load(); err != nil {
		return MarketState{}, err
	}
	if state.CPU, err = m.cpu.Load(); err != nil {
		return MarketState{}, err
	}
	return state, nil
}

func (m *Market) Order(id uint64) (RentOrder, error) {
	return m.orders.Get(id)
}

func (m *Market) QueueLength() (uint64, error) {
	return m.queue.Size()
}

// NextExpiration returns when the earliest outstanding order expires, or false if there are none
func (m *Market) NextExpiration() (uint64, bool, error) {
	entry, found, err := m.queue.Peek()
	return entry.Expiration, found, err
}

// atomically reverts every write f made if f fails
func (m *Market) atomically(f func() error) error {
	checkpoint := m.storage.Checkpoint()
	if err := f(); err != nil {
		m.storage.RevertToCheckpoint(checkpoint)
		return err
	}
	return nil
}

// Configure applies a partial configuration at now. The first configuration activates the market.
func (m *Market) Configure(now uint64, config Config) error {
	err := m.atomically(func() error {
		state, err := m.State()
		if err != nil {
			return err
		}
		rentDays, minRentFee, err := config.rentTerms(state.RentDays, state.MinRentFee)
		if err != nil {
			return err
		}

		// bring the live values up to now, then restart both schedules from them
		net, cpu := state.Net, state.CPU
		net.updateWeight(now)
		cpu.updateWeight(now)
		net.updateUtilization(now)
		cpu.updateUtilization(now)
		if net, err = config.Net.apply("net", net, now); err != nil {
			return err
		}
		if cpu, err = config.CPU.apply("cpu", cpu, now); err != nil {
			return err
		}
		net.updateWeight(now)
		cpu.updateWeight(now)

		if err := m.net.Store(state.Net, net); err != nil {
			return err
		}
		if err := m.cpu.Store(state.CPU, cpu); err != nil {
			return err
		}
		if err := m.rentDays.Set(rentDays); err != nil {
			return err
		}
		if err := m.minRentFee.Set(minRentFee); err != nil {
			return err
		}
		netDelta := arbmath.SaturatingDelta(state.Net.Weight, net.Weight)
		cpuDelta := arbmath.SaturatingDelta(state.CPU.Weight, cpu.Weight)
		return m.collaborators.adjustReserve(netDelta, cpuDelta)
	})
	if err != nil {
		log.Warn("rejected market configuration", "err", err)
		return err
	}
	log.Info("market configured", "now", now)
	return nil
}

// Purchase rents capacity for the configured number of days. Either the whole purchase happens,
// side effects included, or the market is left untouched.
func (m *Market) Purchase(now uint64, req PurchaseRequest) (Receipt, error) {
	var receipt Receipt
	err := m.atomically(func() error {
		var err error
		receipt, err = m.purchase(now, req)
		return err
	})
	if err != nil {
		purchaseRejectedCounter.Inc(1)
		log.Debug("purchase rejected", "payer", req.Payer, "receiver", req.Receiver, "err", err)
		return Receipt{}, err
	}
	purchaseCounter.Inc(1)
	feeCollectedCounter.Inc(arbmath.SaturatingCast[int64](receipt.Fee))
	log.Debug(
		"purchased capacity",
		"payer", req.Payer,
		"receiver", req.Receiver,
		"fee", receipt.Fee,
		"net", receipt.RentedNet,
		"cpu", receipt.RentedCPU,
		"order", receipt.OrderID,
	)
	m.collaborators.purchaseResult(receipt)
	return receipt, nil
}

// Quote returns the receipt Purchase would produce at now, without keeping any change or
// contacting collaborators. The storage must be writable.
func (m *Market) Quote(now uint64, req PurchaseRequest) (Receipt, error) {
	receipt, _, err := m.Simulate(now, req)
	return receipt, err
}

// Simulate is Quote that also returns the state the purchase would leave the market in
func (m *Market) Simulate(now uint64, req PurchaseRequest) (Receipt, MarketState, error) {
	dryRun := *m
	dryRun.collaborators = Collaborators{}
	dryRun.dryRun = true
	checkpoint := m.storage.Checkpoint()
	defer m.storage.RevertToCheckpoint(checkpoint)
	receipt, err := dryRun.purchase(now, req)
	if err != nil {
		return Receipt{}, MarketState{}, err
	}
	after, err := dryRun.State()
	if err != nil {
		return Receipt{}, MarketState{}, err
	}
	return receipt, after, nil
}

func (m *Market) purchase(now uint64, req PurchaseRequest) (Receipt, error) {
	rentDays, err := m.rentDays.Get()
	if err != nil {
		return Receipt{}, err
	}
	if rentDays == 0 {
		return Receipt{}, ErrMarketNotActive
	}
	if req.Days != rentDays {
		return Receipt{}, fmt.Errorf("%w: requested %v, configured %v", ErrInvalidDays, req.Days, rentDays)
	}
	if req.NetFrac > FracScale || req.CPUFrac > FracScale {
		return Receipt{}, fmt.Errorf("%w: fractions can't exceed %v", ErrInvalidFraction, FracScale)
	}
	if req.NetFrac == 0 && req.CPUFrac == 0 {
		return Receipt{}, fmt.Errorf("%w: nothing to rent", ErrInvalidFraction)
	}
	if req.MaxPayment == 0 {
		return Receipt{}, ErrInvalidPayment
	}

	drained, err := m.drainExpired(now, purchaseQueueDrain)
	if err != nil {
		return Receipt{}, err
	}

	state, err := m.State()
	if err != nil {
		return Receipt{}, err
	}
	net, cpu := state.Net, state.CPU
	netDelta := net.updateWeight(now)
	cpuDelta := cpu.updateWeight(now)
	net.updateUtilization(now)
	cpu.updateUtilization(now)

	var receipt Receipt
	if receipt.RentedNet, receipt.NetFee, err = net.quote(req.NetFrac); err != nil {
		return Receipt{}, fmt.Errorf("net: %w", err)
	}
	if receipt.RentedCPU, receipt.CPUFee, err = cpu.quote(req.CPUFrac); err != nil {
		return Receipt{}, fmt.Errorf("cpu: %w", err)
	}
	if receipt.Fee, err = arbmath.SafeUAdd(receipt.NetFee, receipt.CPUFee); err != nil {
		return Receipt{}, fmt.Errorf("%w: fee overflow", ErrExceedsMaxPayment)
	}
	if receipt.Fee > req.MaxPayment {
		return Receipt{}, fmt.Errorf("%w: fee %v, max payment %v", ErrExceedsMaxPayment, receipt.Fee, req.MaxPayment)
	}
	if receipt.Fee < state.MinRentFee {
		return Receipt{}, fmt.Errorf("%w: fee %v, minimum %v", ErrBelowMinimumFee, receipt.Fee, state.MinRentFee)
	}

	net.rent(receipt.RentedNet, receipt.NetFee)
	cpu.rent(receipt.RentedCPU, receipt.CPUFee)
	if err := m.net.Store(state.Net, net); err != nil {
		return Receipt{}, err
	}
	if err := m.cpu.Store(state.CPU, cpu); err != nil {
		return Receipt{}, err
	}

	if receipt.OrderID, err = m.nextOrderID.Increment(); err != nil {
		return Receipt{}, err
	}
	receipt.Expiration = arbmath.SaturatingUAdd(now, arbmath.DaysToSeconds(rentDays))
	order := RentOrder{
		ID:         receipt.OrderID,
		Payer:      req.Payer,
		Receiver:   req.Receiver,
		NetAmount:  receipt.RentedNet,
		CPUAmount:  receipt.RentedCPU,
		Expiration: receipt.Expiration,
	}
	if err := m.orders.Insert(order); err != nil {
		return Receipt{}, err
	}
	if err := m.queue.Push(storage.HeapEntry{Expiration: order.Expiration, ID: order.ID}); err != nil {
		return Receipt{}, err
	}

	effects := sideEffects{collaborators: &m.collaborators}
	err = effects.run(func() error {
		for _, expired := range drained {
			order := &expired.order
			if err := effects.revoke(order.Receiver, order.NetAmount, order.CPUAmount); err != nil {
				return err
			}
		}
		if err := effects.adjustReserve(netDelta, cpuDelta); err != nil {
			return err
		}
		if err := effects.grant(req.Receiver, receipt.RentedNet, receipt.RentedCPU); err != nil {
			return err
		}
		return effects.settleFee(req.Payer, receipt.Fee)
	})
	if err != nil {
		return Receipt{}, err
	}

	for _, expired := range drained {
		m.reportExpired(expired)
	}
	if !m.dryRun {
		updateUtilizationGauges(&net, &cpu)
	}
	return receipt, nil
}
