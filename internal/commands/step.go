// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commands

import (
	"errors"
	"fmt"
	"regexp"
	"time"
)

// StepKind names the action of a step.
type StepKind string

// Step kinds.
const (
	StepCommand  StepKind = "command"
	StepSend     StepKind = "send"
	StepPressKey StepKind = "press_key"
	StepExpect   StepKind = "expect"
)

var (
	// ErrInvalidStep is returned for a step with an unknown or missing action.
	ErrInvalidStep = errors.New("invalid step")
	// ErrInvalidTimeout is returned for negative or unparsable timeouts.
	ErrInvalidTimeout = errors.New("invalid timeout")
)

// Step is one action of a record.
type Step struct {
	Kind    StepKind
	Value   string
	Timeout time.Duration // expect only
}

// Validate checks that the step is well formed.
func (s Step) Validate() error {
	switch s.Kind {
	case StepCommand, StepPressKey:
		if s.Value == "" {
			return fmt.Errorf("%w: %s is empty", ErrInvalidStep, s.Kind)
		}
	case StepSend:
	case StepExpect:
		if _, err := regexp.Compile(s.Value); err != nil {
			return fmt.Errorf("%w: expect pattern: %w", ErrInvalidStep, err)
		}
	default:
		return fmt.Errorf("%w: unknown action '%s'", ErrInvalidStep, s.Kind)
	}

	if s.Timeout < 0 {
		return ErrInvalidTimeout
	}

	return nil
}

// String renders the step for listings.
func (s Step) String() string {
	if s.Timeout > 0 {
		return fmt.Sprintf("%s: %s (%s)", s.Kind, s.Value, s.Timeout)
	}

	return fmt.Sprintf("%s: %s", s.Kind, s.Value)
}
