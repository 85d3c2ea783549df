// Copyright 2025-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package powerup

import (
	"github.com/ethereum/go-ethereum/metrics"

	"github.com/offchainlabs/powerup/util/arbmath"
)

var (
	purchaseCounter         = metrics.NewRegisteredCounter("powerup/purchase/count", nil)
	purchaseRejectedCounter = metrics.NewRegisteredCounter("powerup/purchase/rejected", nil)
	feeCollectedCounter     = metrics.NewRegisteredCounter("powerup/fee/collected", nil)
	queueProcessedCounter   = metrics.NewRegisteredCounter("powerup/queue/processed", nil)
	queueConsistencyCounter = metrics.NewRegisteredCounter("powerup/queue/consistency", nil)
	netUtilizationGauge     = metrics.NewRegisteredGauge("powerup/net/utilization", nil)
	cpuUtilizationGauge     = metrics.NewRegisteredGauge("powerup/cpu/utilization", nil)
)

func updateUtilizationGauges(net, cpu *ResourceState) {
	netUtilizationGauge.Update(arbmath.SaturatingCast[int64](net.Utilization))
	cpuUtilizationGauge.Update(arbmath.SaturatingCast[int64](cpu.Utilization))
}
