// Copyright 2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

// powerquote prices a capacity rental against a market built from configuration, and shows the
// state change the purchase would cause.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"

	"github.com/offchainlabs/powerup/cmd/genericconf"
	"github.com/offchainlabs/powerup/cmd/util/confighelpers"
	"github.com/offchainlabs/powerup/util/colors"
)

func printSampleUsage(progname string) {
	fmt.Printf("\n")
	fmt.Printf("Sample usage: %s --conf.file market.yaml --net-frac 0.01 --at 3600\n", progname)
	fmt.Printf("              %s --help\n", progname)
}

func main() {
	os.Exit(mainImpl())
}

// Returns the exit code
func mainImpl() int {
	config, err := ParsePowerQuote(os.Args[1:])
	if errors.Is(err, errConfigDumped) {
		return 0
	}
	if err != nil {
		printSampleUsage(os.Args[0])
		if !errors.Is(err, confighelpers.ErrHelpRequested) {
			colors.PrintRed(err)
			return 1
		}
		return 0
	}
	if !config.Color {
		colors.Disable()
	}
	if err := genericconf.InitLog(config.LogType, config.LogLevel, &config.FileLogging, genericconf.DefaultPathResolver("")); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		return 1
	}
	defer func() {
		if err := genericconf.CloseFileLogger(); err != nil {
			fmt.Fprintf(os.Stderr, "Error closing log file: %v\n", err)
		}
	}()

	report, err := runQuote(config)
	if err != nil {
		log.Error("quote failed", "err", err)
		colors.PrintRed("quote failed: ", err)
		return 1
	}
	printReport(os.Stdout, config, report)
	return 0
}
