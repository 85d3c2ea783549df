// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/offchainlabs/powerup/ledger/powerup"
	"github.com/offchainlabs/powerup/util/colors"
	"github.com/offchainlabs/powerup/util/testhelpers"
)

func TestToUnits(t *testing.T) {
	for value, expected := range map[string]uint64{
		"0":      0,
		"1":      10_000,
		"1.2345": 12_345,
		"0.0001": 1,
		"100.00": 1_000_000,
	} {
		units, err := toUnits("price", value, 4)
		Require(t, err, value)
		if units != expected {
			Fail(t, "unexpected units for", value, units)
		}
		if back := fromUnits(units, 4); !back.Equal(fromUnits(expected, 4)) {
			Fail(t, "round trip changed", value, back)
		}
	}
	for _, value := range []string{"1.23456", "-1", "one", "18446744073709551616", ""} {
		if _, err := toUnits("price", value, 4); err == nil {
			Fail(t, "expected an invalid amount to be rejected", value)
		}
	}
	if units, err := toUnits("exponent", "2.5", 18); err != nil || units != 2_500_000_000_000_000_000 {
		Fail(t, "unexpected exponent", units, err)
	}
}

func quote(t *testing.T, args ...string) (*QuoteReport, string) {
	t.Helper()
	config, err := ParsePowerQuote(args)
	Require(t, err)
	report, err := runQuote(config)
	Require(t, err)
	var output bytes.Buffer
	printReport(&output, config, report)
	return report, colors.Uncolor(output.String())
}

func TestDefaultQuote(t *testing.T) {
	report, output := quote(t)
	if report.Receipt.Fee != 50 || report.Receipt.NetFee != 50 {
		Fail(t, "unexpected fee", report.Receipt)
	}
	if !strings.Contains(output, "total 0.0050 SYS") {
		Fail(t, "total missing from output", output)
	}
	if !strings.Contains(output, "update Net.Utilization: 0 -> 10000000000") {
		Fail(t, "utilization change missing from output", output)
	}
	if report.Before.Net.Utilization != 0 || report.After.Net.Utilization != 10_000_000_000 {
		Fail(t, "unexpected snapshots", report.Before.Net, report.After.Net)
	}
}

func TestQuoteWithStartingUtilization(t *testing.T) {
	report, output := quote(t, "--market.net.utilization", "0.01", "--symbol", "TST")
	if report.Receipt.Fee != 150 {
		Fail(t, "expected the second percent to cost more", report.Receipt.Fee)
	}
	if !strings.Contains(output, "total 0.0150 TST") {
		Fail(t, "total missing from output", output)
	}
	if report.Receipt.OrderID != 2 {
		Fail(t, "starting utilization not rented first", report.Receipt.OrderID)
	}
}

func TestQuoteFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "market.yaml")
	contents := `
market:
  net:
    exponent: "1"
    max-price: "2.5"
  rent-days: 7
  min-rent-fee: "0.01"
net-frac: "0.1"
precision: 2
`
	Require(t, os.WriteFile(path, []byte(contents), 0600))
	report, output := quote(t, "--conf.file", path)
	if report.Receipt.Fee != 25 {
		Fail(t, "a linear curve must charge max price", report.Receipt.Fee)
	}
	if report.Receipt.Expiration != 7*24*60*60 {
		Fail(t, "rent days not applied", report.Receipt.Expiration)
	}
	if !strings.Contains(output, "total 0.25 SYS") {
		Fail(t, "total missing from output", output)
	}
}

func TestQuoteRejections(t *testing.T) {
	cases := map[string]struct {
		args     []string
		expected error
	}{
		"max payment":  {[]string{"--max-payment", "0.0049"}, powerup.ErrExceedsMaxPayment},
		"fraction":     {[]string{"--net-frac", "1.5"}, powerup.ErrInvalidFraction},
		"nothing":      {[]string{"--net-frac", "0"}, powerup.ErrInvalidFraction},
		"min fee":      {[]string{"--market.min-rent-fee", "1"}, powerup.ErrBelowMinimumFee},
		"bad exponent": {[]string{"--market.cpu.exponent", "17"}, powerup.ErrInvalidConfig},
	}
	for name, test := range cases {
		config, err := ParsePowerQuote(test.args)
		Require(t, err, name)
		if _, err := runQuote(config); !errors.Is(err, test.expected) {
			Fail(t, "unexpected error", name, err)
		}
	}

	if _, err := ParsePowerQuote([]string{"--precision", "19"}); err == nil {
		Fail(t, "expected an invalid precision to be rejected")
	}
	config, err := ParsePowerQuote([]string{"--market.net.max-price", "1.00001"})
	Require(t, err)
	if _, err := runQuote(config); err == nil {
		Fail(t, "expected a price finer than the precision to be rejected")
	}
}

func Require(t *testing.T, err error, printables ...interface{}) {
	t.Helper()
	testhelpers.RequireImpl(t, err, printables...)
}

func Fail(t *testing.T, printables ...interface{}) {
	t.Helper()
	testhelpers.FailImpl(t, printables...)
}
