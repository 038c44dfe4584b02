// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stepexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"

	"github.com/matt-FFFFFF/commands-wrapper/internal/outputbuf"
)

// stream holds the input and output side shared by both backends.
type stream struct {
	in      io.Writer
	out     *outputbuf.Buffer
	newline string
}

// Send types text followed by a newline.
func (s *stream) Send(text string) error {
	return s.write(text + s.newline)
}

// PressKey types the sequence of a named key, without a newline.
func (s *stream) PressKey(name string) error {
	return s.write(KeySequence(name, s.newline))
}

// Expect waits for re in the output produced since the previous match.
func (s *stream) Expect(ctx context.Context, re *regexp.Regexp) error {
	err := s.out.Match(ctx, re)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: timed out waiting for '%s'", ErrExpect, re)
	default:
		return fmt.Errorf("%w: '%s': %w", ErrExpect, re, err)
	}
}

// Output is the buffer the process output is copied into.
func (s *stream) Output() *outputbuf.Buffer {
	return s.out
}

func (s *stream) write(data string) error {
	if s.in == nil {
		return ErrSendInput
	}

	if _, err := io.WriteString(s.in, data); err != nil {
		return &inputError{err: err}
	}

	return nil
}

// inputError hides the transport error from the message but keeps it for errors.Is.
type inputError struct {
	err error
}

func (e *inputError) Error() string {
	return ErrSendInput.Error()
}

func (e *inputError) Unwrap() []error {
	return []error{ErrSendInput, e.err}
}
