package ui

import (
	"os"

	"golang.org/x/term"
)

// ShouldUseColor reports whether stdout should receive ANSI color codes.
// Precedence: NO_COLOR (https://no-color.org) wins, then CLICOLOR_FORCE=1,
// then CLICOLOR=0, then whether stdout is a terminal.
func ShouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if v := os.Getenv("CLICOLOR_FORCE"); v != "" && v != "0" {
		return true
	}
	if os.Getenv("CLICOLOR") == "0" {
		return false
	}
	return term.IsTerminal(int(os.Stdout.Fd()))
}
