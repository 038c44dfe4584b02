// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commands

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
)

var (
	// ErrInvalidRecord is the parent of every validation failure.
	ErrInvalidRecord = errors.New("invalid command definition")
	// ErrEmptyName is returned for a name that is empty after trimming.
	ErrEmptyName = errors.New("command name is empty")
	// ErrReservedName is returned when a command would shadow the tool itself.
	ErrReservedName = errors.New("command name is reserved")
	// ErrNoSteps is returned for a record without steps.
	ErrNoSteps = errors.New("command has no steps")
	// ErrFirstStepNotCommand is returned when the first step does not start a process.
	ErrFirstStepNotCommand = errors.New("first step must be a command step")
)

// Record is a named, ordered list of steps.
type Record struct {
	Name        string
	Description string
	Timeout     time.Duration // zero means no bound
	Steps       []Step
	Source      string // file the record was loaded from, never persisted
}

// InvalidRecordError reports why a record failed validation.
type InvalidRecordError struct {
	Name string
	Err  error
}

// Error implements the error interface.
func (e *InvalidRecordError) Error() string {
	return fmt.Sprintf("%s '%s': %s", ErrInvalidRecord, e.Name, e.Err)
}

// Unwrap allows errors.Is to match both ErrInvalidRecord and the reason.
func (e *InvalidRecordError) Unwrap() []error {
	return []error{ErrInvalidRecord, e.Err}
}

// NewInvalidRecordError creates an InvalidRecordError.
func NewInvalidRecordError(name string, err error) error {
	return &InvalidRecordError{Name: name, Err: err}
}

// ValidateName checks that name can be stored as a command name.
func ValidateName(name string) error {
	switch trimmed := strings.TrimSpace(name); {
	case trimmed == "":
		return NewInvalidRecordError(name, ErrEmptyName)
	case settings.IsPrimaryName(trimmed):
		return NewInvalidRecordError(name, fmt.Errorf("%w: '%s'", ErrReservedName, settings.PrimaryName))
	}

	return nil
}

// Validate checks the record invariants.
func (r Record) Validate() error {
	if err := ValidateName(r.Name); err != nil {
		return err
	}

	switch {
	case len(r.Steps) == 0:
		return NewInvalidRecordError(r.Name, ErrNoSteps)
	case r.Steps[0].Kind != StepCommand:
		return NewInvalidRecordError(r.Name, ErrFirstStepNotCommand)
	case r.Timeout < 0:
		return NewInvalidRecordError(r.Name, ErrInvalidTimeout)
	}

	for i, s := range r.Steps {
		if err := s.Validate(); err != nil {
			return NewInvalidRecordError(r.Name, fmt.Errorf("step %d: %w", i+1, err))
		}
	}

	return nil
}

// CommandLine is the shell line of the first step.
func (r Record) CommandLine() string {
	if len(r.Steps) == 0 {
		return ""
	}

	return r.Steps[0].Value
}

// DirChange reports whether the record only changes directory, and the raw
// argument of the cd. An empty argument means the home directory.
func (r Record) DirChange() (string, bool) {
	if len(r.Steps) != 1 || r.Steps[0].Kind != StepCommand {
		return "", false
	}

	line := strings.TrimSpace(r.Steps[0].Value)
	if strings.ContainsAny(line, ";&|<>`\n") {
		return "", false
	}

	words, err := shellquote.Split(line)
	if err != nil || len(words) == 0 || words[0] != "cd" {
		return "", false
	}

	switch len(words) {
	case 1:
		return "", true
	case 2:
		if words[1] == "-" {
			return "", false
		}

		return words[1], true
	default:
		return "", false
	}
}
