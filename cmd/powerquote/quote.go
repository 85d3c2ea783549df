// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package main

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/r3labs/diff/v3"

	"github.com/offchainlabs/powerup/ledger/burn"
	"github.com/offchainlabs/powerup/ledger/powerup"
	"github.com/offchainlabs/powerup/ledger/storage"
	"github.com/offchainlabs/powerup/util/colors"
)

// QuoteReport is what a purchase would cost and how it would change the market.
type QuoteReport struct {
	Receipt powerup.Receipt
	Before  powerup.MarketState
	After   powerup.MarketState
	Changes diff.Changelog
}

func newMarket(config *PowerQuoteConfig) (*powerup.Market, error) {
	marketConfig, err := config.Market.toConfig(config.Start, config.Precision)
	if err != nil {
		return nil, err
	}
	sto := storage.NewMemoryBacked(burn.NewSystemBurner(false))
	if err := powerup.InitializeMarket(sto); err != nil {
		return nil, err
	}
	market, err := powerup.OpenMarket(sto, powerup.Collaborators{})
	if err != nil {
		return nil, err
	}
	if err := market.Configure(config.Start, marketConfig); err != nil {
		return nil, err
	}

	netUtilization, err := toUnits("market.net.utilization", config.Market.Net.Utilization, fracDecimals)
	if err != nil {
		return nil, err
	}
	cpuUtilization, err := toUnits("market.cpu.utilization", config.Market.CPU.Utilization, fracDecimals)
	if err != nil {
		return nil, err
	}
	if netUtilization != 0 || cpuUtilization != 0 {
		receipt, err := market.Purchase(config.Start, powerup.PurchaseRequest{
			Days:       config.Market.RentDays,
			NetFrac:    netUtilization,
			CPUFrac:    cpuUtilization,
			MaxPayment: math.MaxUint64,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to rent the starting utilization: %w", err)
		}
		log.Info("rented starting utilization", "net", receipt.RentedNet, "cpu", receipt.RentedCPU, "fee", receipt.Fee)
	}
	return market, nil
}

func (c *PowerQuoteConfig) purchaseRequest() (powerup.PurchaseRequest, error) {
	netFrac, err := toUnits("net-frac", c.NetFrac, fracDecimals)
	if err != nil {
		return powerup.PurchaseRequest{}, err
	}
	cpuFrac, err := toUnits("cpu-frac", c.CPUFrac, fracDecimals)
	if err != nil {
		return powerup.PurchaseRequest{}, err
	}
	maxPayment := uint64(math.MaxUint64)
	if c.MaxPayment != "" {
		if maxPayment, err = toUnits("max-payment", c.MaxPayment, c.Precision); err != nil {
			return powerup.PurchaseRequest{}, err
		}
	}
	return powerup.PurchaseRequest{
		Days:       c.Market.RentDays,
		NetFrac:    netFrac,
		CPUFrac:    cpuFrac,
		MaxPayment: maxPayment,
	}, nil
}

// runQuote simulates the configured purchase on a fresh in-memory market
func runQuote(config *PowerQuoteConfig) (*QuoteReport, error) {
	market, err := newMarket(config)
	if err != nil {
		return nil, err
	}
	req, err := config.purchaseRequest()
	if err != nil {
		return nil, err
	}
	before, err := market.State()
	if err != nil {
		return nil, err
	}
	receipt, after, err := market.Simulate(config.Start+config.At, req)
	if err != nil {
		return nil, err
	}
	changes, err := diff.Diff(before, after)
	if err != nil {
		return nil, err
	}
	return &QuoteReport{
		Receipt: receipt,
		Before:  before,
		After:   after,
		Changes: changes,
	}, nil
}

func (c *PowerQuoteConfig) formatFee(fee uint64) string {
	return fromUnits(fee, c.Precision).StringFixed(c.Precision) + " " + c.Symbol
}

func printReport(w io.Writer, config *PowerQuoteConfig, report *QuoteReport) {
	receipt := report.Receipt
	fmt.Fprintf(w, "net   rented %-20v fee %v\n", receipt.RentedNet, config.formatFee(receipt.NetFee))
	fmt.Fprintf(w, "cpu   rented %-20v fee %v\n", receipt.RentedCPU, config.formatFee(receipt.CPUFee))
	fmt.Fprintf(w, "total %v\n", colors.Sprint(colors.Mint, config.formatFee(receipt.Fee)))
	fmt.Fprintf(w, "order %v expires at %v\n", receipt.OrderID, receipt.Expiration)
	if len(report.Changes) == 0 {
		return
	}
	fmt.Fprintln(w, "changes:")
	for _, change := range report.Changes {
		line := fmt.Sprintf("  %-6v %v: %v -> %v", change.Type, strings.Join(change.Path, "."), change.From, change.To)
		fmt.Fprintln(w, colors.Sprint(colors.Grey, line))
	}
}
