// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package powerup

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/offchainlabs/powerup/ledger/burn"
)

// QueueResult reports how far a ProcessQueue call got.
type QueueResult struct {
	Processed uint64 `json:"processed"`
	// More is set when another expired order may be waiting; callers should invoke ProcessQueue again.
	More bool `json:"more"`
}

// ProcessQueue returns the capacity of up to maxOrders expired rent orders to the pool, earliest
// expiration first. Each order is committed on its own, so when the burner's budget runs out the
// orders already processed stay processed and the call returns without error.
//
// An order returning more than a resource's utilization is still removed. The utilization is
// clamped to zero and ErrQueueConsistency is returned alongside the result.
func (m *Market) ProcessQueue(caller common.Address, now uint64, maxOrders uint64) (QueueResult, error) {
	var result QueueResult
	var inconsistencies []error
	for result.Processed < maxOrders {
		checkpoint := m.storage.Checkpoint()
		expired, err := m.popExpired(now)
		if err == nil && expired != nil {
			order := &expired.order
			err = m.collaborators.revoke(order.Receiver, order.NetAmount, order.CPUAmount)
		}
		if err != nil {
			m.storage.RevertToCheckpoint(checkpoint)
			if errors.Is(err, burn.ErrOutOfBudget) {
				log.Debug("rent order queue ran out of budget", "caller", caller, "processed", result.Processed)
				result.More = true
				return result, errors.Join(inconsistencies...)
			}
			log.Warn("failed to expire rent order", "caller", caller, "processed", result.Processed, "err", err)
			return result, errors.Join(append(inconsistencies, err)...)
		}
		if expired == nil {
			break
		}
		m.reportExpired(expired)
		result.Processed++
		if expired.inconsistency != nil {
			inconsistencies = append(inconsistencies, expired.inconsistency)
		}
	}

	more, err := m.hasExpired(now)
	if errors.Is(err, burn.ErrOutOfBudget) {
		more, err = true, nil
	}
	if err != nil {
		return result, errors.Join(append(inconsistencies, err)...)
	}
	result.More = more
	if result.Processed > 0 {
		log.Debug("expired rent orders", "caller", caller, "processed", result.Processed, "more", result.More)
	}
	return result, errors.Join(inconsistencies...)
}

func (m *Market) hasExpired(now uint64) (bool, error) {
	expiration, found, err := m.NextExpiration()
	return found && expiration <= now, err
}

// expiredOrder is an order popExpired removed from storage. Revoking its capacity and
// reporting it are left to the caller, once the removal is sure to commit.
type expiredOrder struct {
	order RentOrder
	net   ResourceState
	cpu   ResourceState
	// set when the order returned more than a resource's utilization
	inconsistency error
	netBefore     uint64
	cpuBefore     uint64
}

// drainExpired removes up to maxOrders expired orders as part of an enclosing atomic operation
func (m *Market) drainExpired(now uint64, maxOrders uint64) ([]*expiredOrder, error) {
	var drained []*expiredOrder
	for i := uint64(0); i < maxOrders; i++ {
		expired, err := m.popExpired(now)
		if err != nil {
			return nil, err
		}
		if expired == nil {
			break
		}
		drained = append(drained, expired)
	}
	return drained, nil
}

// popExpired removes the earliest order from storage if it has expired and returns its capacity
// to the pool. It returns nil when nothing has expired.
func (m *Market) popExpired(now uint64) (*expiredOrder, error) {
	entry, found, err := m.queue.Peek()
	if err != nil || !found || entry.Expiration > now {
		return nil, err
	}
	if _, err := m.queue.Pop(); err != nil {
		return nil, err
	}
	order, err := m.orders.Get(entry.ID)
	if err != nil {
		return nil, err
	}
	if err := m.orders.Delete(entry.ID); err != nil {
		return nil, err
	}

	netBefore, err := m.net.Load()
	if err != nil {
		return nil, err
	}
	cpuBefore, err := m.cpu.Load()
	if err != nil {
		return nil, err
	}
	net, cpu := netBefore, cpuBefore
	net.updateUtilization(now)
	cpu.updateUtilization(now)
	netConsistent := net.release(order.NetAmount)
	cpuConsistent := cpu.release(order.CPUAmount)
	if err := m.net.Store(netBefore, net); err != nil {
		return nil, err
	}
	if err := m.cpu.Store(cpuBefore, cpu); err != nil {
		return nil, err
	}

	expired := &expiredOrder{
		order:     order,
		net:       net,
		cpu:       cpu,
		netBefore: netBefore.Utilization,
		cpuBefore: cpuBefore.Utilization,
	}
	if !netConsistent || !cpuConsistent {
		expired.inconsistency = fmt.Errorf(
			"%w: order %v returns net %v cpu %v, utilization net %v cpu %v",
			ErrQueueConsistency, order.ID, order.NetAmount, order.CPUAmount, netBefore.Utilization, cpuBefore.Utilization,
		)
	}
	return expired, nil
}

// reportExpired logs and counts an expired order whose removal has committed
func (m *Market) reportExpired(expired *expiredOrder) {
	if m.dryRun {
		return
	}
	if expired.inconsistency != nil {
		queueConsistencyCounter.Inc(1)
		log.Error(
			"expired rent order exceeds utilization",
			"order", expired.order.ID,
			"receiver", expired.order.Receiver,
			"net", expired.order.NetAmount,
			"netUtilization", expired.netBefore,
			"cpu", expired.order.CPUAmount,
			"cpuUtilization", expired.cpuBefore,
		)
	}
	queueProcessedCounter.Inc(1)
	updateUtilizationGauges(&expired.net, &expired.cpu)
}
