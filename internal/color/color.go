// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package color

import (
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// Code is an ANSI SGR parameter.
type Code int

const (
	// NoColor is the environment variable that disables color output.
	NoColor = "NO_COLOR"
	// ForceColor is the environment variable that forces color output.
	ForceColor = "FORCE_COLOR"
)

// SGR parameters used by the console and the log handler.
const (
	Bold      Code = 1
	FgRed     Code = 31
	FgGreen   Code = 32
	FgYellow  Code = 33
	FgCyan    Code = 36
	FgWhite   Code = 37
	FgHiWhite Code = 97
)

// Status is the outcome a console line reports.
type Status int

// Statuses.
const (
	StatusOk Status = iota
	StatusWarn
	StatusError
)

var badges = map[Status]struct {
	text  string
	codes []Code
}{
	StatusOk:    {text: "✓", codes: []Code{FgGreen, Bold}},
	StatusWarn:  {text: "WARN:", codes: []Code{FgYellow, Bold}},
	StatusError: {text: "ERROR:", codes: []Code{FgRed, Bold}},
}

var enabled = isColorCapable()

// Colorize wraps str in the given codes followed by a reset.
// It returns str unchanged when color output is disabled.
func Colorize(str string, codes ...Code) string {
	if !enabled {
		return str
	}

	return Wrap(str, codes...)
}

// Wrap is Colorize regardless of whether color output is enabled.
func Wrap(str string, codes ...Code) string {
	if len(codes) == 0 {
		return str
	}

	params := make([]string, len(codes))
	for i, c := range codes {
		params[i] = strconv.Itoa(int(c))
	}

	return "\033[" + strings.Join(params, ";") + "m" + str + "\033[0m"
}

// Badge returns the prefix printed in front of a console line with status s.
func Badge(s Status) string {
	b, ok := badges[s]
	if !ok {
		return ""
	}

	return Colorize(b.text, b.codes...)
}

// Enabled reports whether color output is enabled. It is decided once at start.
func Enabled() bool {
	return enabled
}

// isColorCapable honours NO_COLOR over FORCE_COLOR. Otherwise both stdout and
// stderr must be terminals: stdout is often captured by the shell hook.
func isColorCapable() bool {
	if os.Getenv(NoColor) != "" {
		return false
	}

	if os.Getenv(ForceColor) != "" {
		return true
	}

	return term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
}
