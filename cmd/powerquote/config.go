// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package main

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
	flag "github.com/spf13/pflag"

	"github.com/offchainlabs/powerup/cmd/genericconf"
	"github.com/offchainlabs/powerup/cmd/util/confighelpers"
	"github.com/offchainlabs/powerup/ledger/powerup"
	"github.com/offchainlabs/powerup/util/arbmath"
)

// Decimal places of weight ratios and rental fractions
const fracDecimals = 15

var errConfigDumped = errors.New("configuration dumped")

type ResourceConfig struct {
	WeightRatio       string `koanf:"weight-ratio"`
	TargetWeightRatio string `koanf:"target-weight-ratio"`
	TargetIn          uint64 `koanf:"target-in"`
	AssumedStake      uint64 `koanf:"assumed-stake"`
	Exponent          string `koanf:"exponent"`
	DecaySecs         uint64 `koanf:"decay-secs"`
	MinPrice          string `koanf:"min-price"`
	MaxPrice          string `koanf:"max-price"`
	Utilization       string `koanf:"utilization"`
}

var ResourceConfigDefault = ResourceConfig{
	WeightRatio:       "1",
	TargetWeightRatio: "",
	TargetIn:          0,
	AssumedStake:      1_000_000_000_000,
	Exponent:          "2",
	DecaySecs:         arbmath.SecondsPerDay,
	MinPrice:          "0",
	MaxPrice:          "100",
	Utilization:       "0",
}

func ResourceConfigAddOptions(prefix string, f *flag.FlagSet) {
	f.String(prefix+".weight-ratio", ResourceConfigDefault.WeightRatio, "fraction of the assumed stake available to the market")
	f.String(prefix+".target-weight-ratio", ResourceConfigDefault.TargetWeightRatio, "fraction the weight moves to over target-in seconds (empty = weight-ratio)")
	f.Uint64(prefix+".target-in", ResourceConfigDefault.TargetIn, "seconds after start at which the target weight ratio is reached")
	f.Uint64(prefix+".assumed-stake", ResourceConfigDefault.AssumedStake, "assumed total stake weight of the resource")
	f.String(prefix+".exponent", ResourceConfigDefault.Exponent, "price curve exponent, between 1 and 16")
	f.Uint64(prefix+".decay-secs", ResourceConfigDefault.DecaySecs, "half-life of the adjusted utilization in seconds")
	f.String(prefix+".min-price", ResourceConfigDefault.MinPrice, "price of the whole weight at zero utilization")
	f.String(prefix+".max-price", ResourceConfigDefault.MaxPrice, "price of the whole weight at full utilization")
	f.String(prefix+".utilization", ResourceConfigDefault.Utilization, "fraction of the weight already rented at start")
}

type MarketConfig struct {
	Net        ResourceConfig `koanf:"net"`
	CPU        ResourceConfig `koanf:"cpu"`
	RentDays   uint32         `koanf:"rent-days"`
	MinRentFee string         `koanf:"min-rent-fee"`
}

var MarketConfigDefault = MarketConfig{
	Net:        ResourceConfigDefault,
	CPU:        ResourceConfigDefault,
	RentDays:   30,
	MinRentFee: "0.0001",
}

func MarketConfigAddOptions(prefix string, f *flag.FlagSet) {
	ResourceConfigAddOptions(prefix+".net", f)
	ResourceConfigAddOptions(prefix+".cpu", f)
	f.Uint32(prefix+".rent-days", MarketConfigDefault.RentDays, "number of days each rental lasts")
	f.String(prefix+".min-rent-fee", MarketConfigDefault.MinRentFee, "smallest fee a purchase may pay")
}

type PowerQuoteConfig struct {
	Conf        genericconf.ConfConfig        `koanf:"conf"`
	LogLevel    string                        `koanf:"log-level"`
	LogType     string                        `koanf:"log-type"`
	FileLogging genericconf.FileLoggingConfig `koanf:"file-logging"`
	Market      MarketConfig                  `koanf:"market"`
	Start       uint64                        `koanf:"start"`
	At          uint64                        `koanf:"at"`
	NetFrac     string                        `koanf:"net-frac"`
	CPUFrac     string                        `koanf:"cpu-frac"`
	MaxPayment  string                        `koanf:"max-payment"`
	Precision   int32                         `koanf:"precision"`
	Symbol      string                        `koanf:"symbol"`
	Color       bool                          `koanf:"color"`
}

var PowerQuoteConfigDefault = PowerQuoteConfig{
	Conf:        genericconf.ConfConfigDefault,
	LogLevel:    "warn",
	LogType:     "plaintext",
	FileLogging: genericconf.DefaultFileLoggingConfig,
	Market:      MarketConfigDefault,
	Start:       0,
	At:          0,
	NetFrac:     "0.01",
	CPUFrac:     "0",
	MaxPayment:  "",
	Precision:   4,
	Symbol:      "SYS",
	Color:       true,
}

func PowerQuoteConfigAddOptions(f *flag.FlagSet) {
	genericconf.ConfConfigAddOptions("conf", f)
	f.String("log-level", PowerQuoteConfigDefault.LogLevel, "log level, one of trace, debug, info, warn, error or crit")
	f.String("log-type", PowerQuoteConfigDefault.LogType, "log type (plaintext or json)")
	genericconf.FileLoggingConfigAddOptions("file-logging", f)
	MarketConfigAddOptions("market", f)
	f.Uint64("start", PowerQuoteConfigDefault.Start, "unix time at which the market is configured")
	f.Uint64("at", PowerQuoteConfigDefault.At, "seconds after start at which to quote")
	f.String("net-frac", PowerQuoteConfigDefault.NetFrac, "fraction of the net weight to rent")
	f.String("cpu-frac", PowerQuoteConfigDefault.CPUFrac, "fraction of the cpu weight to rent")
	f.String("max-payment", PowerQuoteConfigDefault.MaxPayment, "most the purchase may pay (empty = unlimited)")
	f.Int32("precision", PowerQuoteConfigDefault.Precision, "decimal places of the fee token")
	f.String("symbol", PowerQuoteConfigDefault.Symbol, "symbol of the fee token")
	f.Bool("color", PowerQuoteConfigDefault.Color, "color the output")
}

func (c *PowerQuoteConfig) Validate() error {
	if c.Precision < 0 || c.Precision > 18 {
		return fmt.Errorf("precision %v must be between 0 and 18", c.Precision)
	}
	if c.Market.RentDays == 0 {
		return errors.New("market.rent-days must be positive")
	}
	return nil
}

func ParsePowerQuote(args []string) (*PowerQuoteConfig, error) {
	f := flag.NewFlagSet("powerquote", flag.ContinueOnError)
	PowerQuoteConfigAddOptions(f)

	k, err := confighelpers.BeginCommonParse(f, args)
	if err != nil {
		return nil, err
	}
	var config PowerQuoteConfig
	if err := confighelpers.EndCommonParse(k, &config); err != nil {
		return nil, err
	}
	if config.Conf.Dump {
		if err := confighelpers.DumpConfig(k); err != nil {
			return nil, err
		}
		return nil, errConfigDumped
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// toUnits converts a non-negative decimal string into a count of 10^-decimals units
func toUnits(name string, value string, decimals int32) (uint64, error) {
	amount, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	if amount.IsNegative() {
		return 0, fmt.Errorf("%s %q can't be negative", name, value)
	}
	scaled := amount.Shift(decimals)
	if !scaled.IsInteger() {
		return 0, fmt.Errorf("%s %q has more than %v decimal places", name, value, decimals)
	}
	units := scaled.BigInt()
	if !units.IsUint64() {
		return 0, fmt.Errorf("%s %q is too large", name, value)
	}
	return units.Uint64(), nil
}

// fromUnits is the inverse of toUnits
func fromUnits(units uint64, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(units), -decimals)
}

func (c *ResourceConfig) toConfig(name string, start uint64, precision int32) (powerup.ResourceConfig, error) {
	ratio, err := toUnits(name+".weight-ratio", c.WeightRatio, fracDecimals)
	if err != nil {
		return powerup.ResourceConfig{}, err
	}
	target := ratio
	if c.TargetWeightRatio != "" {
		if target, err = toUnits(name+".target-weight-ratio", c.TargetWeightRatio, fracDecimals); err != nil {
			return powerup.ResourceConfig{}, err
		}
	}
	exponent, err := toUnits(name+".exponent", c.Exponent, arbmath.FixedDecimals)
	if err != nil {
		return powerup.ResourceConfig{}, err
	}
	minPrice, err := toUnits(name+".min-price", c.MinPrice, precision)
	if err != nil {
		return powerup.ResourceConfig{}, err
	}
	maxPrice, err := toUnits(name+".max-price", c.MaxPrice, precision)
	if err != nil {
		return powerup.ResourceConfig{}, err
	}
	stake, decaySecs := c.AssumedStake, c.DecaySecs
	config := powerup.ResourceConfig{
		CurrentWeightRatio: &ratio,
		TargetWeightRatio:  &target,
		AssumedStakeWeight: &stake,
		Exponent:           &exponent,
		DecaySecs:          &decaySecs,
		MinPrice:           &minPrice,
		MaxPrice:           &maxPrice,
	}
	if target != ratio {
		targetTimestamp := arbmath.SaturatingUAdd(start, c.TargetIn)
		config.TargetTimestamp = &targetTimestamp
	}
	return config, nil
}

func (c *MarketConfig) toConfig(start uint64, precision int32) (powerup.Config, error) {
	net, err := c.Net.toConfig("market.net", start, precision)
	if err != nil {
		return powerup.Config{}, err
	}
	cpu, err := c.CPU.toConfig("market.cpu", start, precision)
	if err != nil {
		return powerup.Config{}, err
	}
	minRentFee, err := toUnits("market.min-rent-fee", c.MinRentFee, precision)
	if err != nil {
		return powerup.Config{}, err
	}
	rentDays := c.RentDays
	return powerup.Config{
		Net:        net,
		CPU:        cpu,
		RentDays:   &rentDays,
		MinRentFee: &minRentFee,
	}, nil
}
