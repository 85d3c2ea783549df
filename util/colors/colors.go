// Copyright 2021-2026, Offchain Labs, Inc.
// For license information, see https://github.com/OffchainLabs/nitro/blob/master/LICENSE.md

package colors

import (
	"fmt"
	"regexp"
)

var Red = "\033[31;1m"
var Blue = "\033[34;1m"
var Yellow = "\033[33;1m"
var Pink = "\033[38;5;161;1m"
var Mint = "\033[38;5;48;1m"
var Grey = "\033[90m"

var Clear = "\033[0;0m"

var uncolor = regexp.MustCompile("\x1b\\[([0-9]+;)*[0-9]+m")
var unwhite = regexp.MustCompile(`\s+`)

// Disable turns every color into the empty string, for output that isn't a terminal
func Disable() {
	Red, Blue, Yellow, Pink, Mint, Grey, Clear = "", "", "", "", "", "", ""
}

// Sprint renders args in color, resetting afterward
func Sprint(color string, args ...interface{}) string {
	return color + fmt.Sprint(args...) + Clear
}

// Sprintf formats in color, resetting afterward
func Sprintf(color string, format string, args ...interface{}) string {
	return color + fmt.Sprintf(format, args...) + Clear
}

func PrintRed(args ...interface{}) {
	fmt.Println(Sprint(Red, args...))
}

func PrintYellow(args ...interface{}) {
	fmt.Println(Sprint(Yellow, args...))
}

// Uncolor strips color codes and collapses whitespace
func Uncolor(text string) string {
	text = uncolor.ReplaceAllString(text, "")
	return unwhite.ReplaceAllString(text, " ")
}
