// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package confighelpers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	flag "github.com/spf13/pflag"

	"github.com/offchainlabs/powerup/cmd/genericconf"
	"github.com/offchainlabs/powerup/util/testhelpers"
)

type testMarketConfig struct {
	RentDays uint32 `koanf:"rent-days"`
	MaxPrice string `koanf:"max-price"`
}

type testConfig struct {
	Conf   genericconf.ConfConfig `koanf:"conf"`
	Symbol string                 `koanf:"symbol"`
	Market testMarketConfig       `koanf:"market"`
}

func parse(t *testing.T, args ...string) (*testConfig, error) {
	t.Helper()
	f := flag.NewFlagSet("", flag.ContinueOnError)
	genericconf.ConfConfigAddOptions("conf", f)
	f.String("symbol", "SYS", "fee symbol")
	f.Uint32("market.rent-days", 30, "rental length")
	f.String("market.max-price", "1.0000", "max price")
	k, err := BeginCommonParse(f, args)
	if err != nil {
		return nil, err
	}
	var config testConfig
	if err := EndCommonParse(k, &config); err != nil {
		return nil, err
	}
	return &config, nil
}

func writeFile(t *testing.T, name string, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	Require(t, os.WriteFile(path, []byte(contents), 0600))
	return path
}

func TestDefaults(t *testing.T) {
	config, err := parse(t)
	Require(t, err)
	if config.Symbol != "SYS" || config.Market.RentDays != 30 || config.Market.MaxPrice != "1.0000" {
		Fail(t, "unexpected defaults", config)
	}
}

func TestConfigFiles(t *testing.T) {
	jsonFile := writeFile(t, "market.json", `{"market": {"rent-days": 7, "max-price": "2.5000"}}`)
	yamlFile := writeFile(t, "symbol.yaml", "symbol: TST\nmarket:\n  rent-days: 14\n")

	config, err := parse(t, "--conf.file", jsonFile)
	Require(t, err)
	if config.Market.RentDays != 7 || config.Market.MaxPrice != "2.5000" {
		Fail(t, "json file not applied", config)
	}

	// later files win
	config, err = parse(t, "--conf.file", jsonFile+","+yamlFile)
	Require(t, err)
	if config.Symbol != "TST" || config.Market.RentDays != 14 || config.Market.MaxPrice != "2.5000" {
		Fail(t, "yaml file not layered over json", config)
	}

	// flags override files
	config, err = parse(t, "--conf.file", yamlFile, "--market.rent-days", "3")
	Require(t, err)
	if config.Market.RentDays != 3 || config.Symbol != "TST" {
		Fail(t, "command line did not override the file", config)
	}

	if _, err := parse(t, "--conf.file", writeFile(t, "market.toml", "")); err == nil {
		Fail(t, "expected an unsupported file type to be rejected")
	}
}

func TestConfigString(t *testing.T) {
	config, err := parse(t, "--conf.string", `{"symbol": "STR"}`)
	Require(t, err)
	if config.Symbol != "STR" {
		Fail(t, "config string not applied", config)
	}
}

func TestEnvironmentVariables(t *testing.T) {
	t.Setenv("PQTEST_MARKET_RENT__DAYS", "9")
	t.Setenv("PQTEST_SYMBOL", "ENV")
	config, err := parse(t, "--conf.env-prefix", "PQTEST")
	Require(t, err)
	if config.Market.RentDays != 9 || config.Symbol != "ENV" {
		Fail(t, "environment not applied", config)
	}

	config, err = parse(t, "--conf.env-prefix", "PQTEST", "--symbol", "FLAG")
	Require(t, err)
	if config.Symbol != "FLAG" {
		Fail(t, "command line did not override the environment", config)
	}
}

func TestRejectedInput(t *testing.T) {
	if _, err := parse(t, "--help"); !errors.Is(err, ErrHelpRequested) {
		Fail(t, "expected help to be requested", err)
	}
	if _, err := parse(t, "stray"); err == nil {
		Fail(t, "expected a positional argument to be rejected")
	}
	if _, err := parse(t, "--conf.string", `{"market": {"bogus": 1}}`); err == nil {
		Fail(t, "expected an unknown key to be rejected")
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
