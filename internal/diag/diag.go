// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package diag carries advisory messages that do not abort an operation.
package diag

import "strings"

// Severity classifies a Diagnostic.
type Severity int

// Severities.
const (
	Warning Severity = iota
	Error
)

// String implements fmt.Stringer.
func (s Severity) String() string {
	if s == Error {
		return "error"
	}

	return "warning"
}

// Diagnostic is a single advisory message.
type Diagnostic struct {
	Severity Severity
	Text     string
}

// NewWarning returns a warning.
func NewWarning(text string) Diagnostic {
	return Diagnostic{Severity: Warning, Text: text}
}

// NewError returns an error.
func NewError(text string) Diagnostic {
	return Diagnostic{Severity: Error, Text: text}
}

// Diagnostics is an ordered list of messages.
type Diagnostics []Diagnostic

// HasErrors reports whether any message is an error.
func (d Diagnostics) HasErrors() bool {
	for _, m := range d {
		if m.Severity == Error {
			return true
		}
	}

	return false
}

// Contains reports whether any message contains substr.
func (d Diagnostics) Contains(substr string) bool {
	for _, m := range d {
		if strings.Contains(m.Text, substr) {
			return true
		}
	}

	return false
}
