// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package console prints the user-facing status lines of the tool.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/matt-FFFFFF/commands-wrapper/internal/color"
	"github.com/matt-FFFFFF/commands-wrapper/internal/diag"
)

// Console writes informational lines to out and problems to err.
type Console struct {
	out io.Writer
	err io.Writer
}

// New creates a Console.
func New(out, err io.Writer) *Console {
	return &Console{out: out, err: err}
}

// Default writes to the standard streams.
func Default() *Console {
	return New(os.Stdout, os.Stderr)
}

// Out is the stream for regular output.
func (c *Console) Out() io.Writer {
	return c.out
}

// Ok prints a success line.
func (c *Console) Ok(msg string) {
	fmt.Fprintln(c.out, color.Badge(color.StatusOk), msg) //nolint:errcheck
}

// Info prints a plain line.
func (c *Console) Info(msg string) {
	fmt.Fprintln(c.out, msg) //nolint:errcheck
}

// Warn prints a warning line.
func (c *Console) Warn(msg string) {
	fmt.Fprintln(c.err, color.Badge(color.StatusWarn), msg) //nolint:errcheck
}

// Error prints an error line.
func (c *Console) Error(msg string) {
	fmt.Fprintln(c.err, color.Badge(color.StatusError), msg) //nolint:errcheck
}

// Report prints diagnostics in order and reports whether any was an error.
func (c *Console) Report(msgs diag.Diagnostics) bool {
	for _, m := range msgs {
		if m.Severity == diag.Error {
			c.Error(m.Text)
			continue
		}

		c.Warn(m.Text)
	}

	return msgs.HasErrors()
}
