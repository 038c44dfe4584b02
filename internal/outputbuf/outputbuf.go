// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package outputbuf

import (
	"bytes"
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"
)

const (
	// WindowSize is how much unmatched output is retained. Match only sees
	// the most recent WindowSize bytes since the previous match.
	WindowSize = 64 * 1024

	// maxLineLength bounds the tracked last and partial lines. The most
	// recent bytes are kept.
	maxLineLength = 4 * 1024
)

// ErrClosed is returned by Match when the output ends before the pattern matched.
var ErrClosed = errors.New("output closed before pattern matched")

// Buffer collects the output of a child process. It tracks the last complete
// line and lets a caller wait for a pattern in the output that arrived since
// the previous match. It is safe for concurrent use.
type Buffer struct {
	mu       sync.Mutex
	pending  bytes.Buffer // unmatched output, at most WindowSize bytes
	lastLine string
	partial  string // incomplete trailing line
	notify   chan struct{}
	closed   bool
}

// New creates an empty Buffer.
func New() *Buffer {
	return &Buffer{notify: make(chan struct{})}
}

// Write implements io.Writer. It never fails.
func (b *Buffer) Write(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.retain(p)
	b.processNewData(string(p))
	b.broadcast()

	return len(p), nil
}

// Close marks the end of the output and wakes every waiter.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.closed {
		b.closed = true
		b.broadcast()
	}

	return nil
}

// Match blocks until re matches output that arrived since the previous match,
// the output is closed, or ctx is done. On success the matched output is consumed.
// A match that would start before the retained window is not found.
func (b *Buffer) Match(ctx context.Context, re *regexp.Regexp) error {
	for {
		b.mu.Lock()

		if loc := re.FindIndex(b.pending.Bytes()); loc != nil {
			b.pending.Next(loc[1])
			b.mu.Unlock()

			return nil
		}

		if b.closed {
			b.mu.Unlock()
			return ErrClosed
		}

		ch := b.notify
		b.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// LastLine returns the last complete line, or the pending partial line when no
// line has completed yet. If maxLength > 3 the result is truncated with "...".
func (b *Buffer) LastLine(maxLength int) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	result := b.lastLine
	if result == "" {
		result = b.partial
	}

	result = strings.TrimRight(result, "\r")

	if maxLength > 3 && len(result) > maxLength {
		result = result[:maxLength-3] + "..."
	}

	return result
}

// Pending returns a copy of the output that has not been matched yet.
func (b *Buffer) Pending() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	return bytes.Clone(b.pending.Bytes())
}

// retain appends p to the unmatched output and drops the oldest bytes past
// WindowSize. Must be called with the lock held.
func (b *Buffer) retain(p []byte) {
	if len(p) >= WindowSize {
		b.pending.Reset()
		b.pending.Write(p[len(p)-WindowSize:])

		return
	}

	if over := b.pending.Len() + len(p) - WindowSize; over > 0 {
		b.pending.Next(over)
	}

	b.pending.Write(p)
}

// processNewData updates the last line from a new chunk only. Must be called
// with the lock held.
func (b *Buffer) processNewData(data string) {
	nl := strings.LastIndexByte(data, '\n')
	if nl < 0 {
		b.partial = tail(b.partial + data)
		return
	}

	before := data[:nl]
	if prev := strings.LastIndexByte(before, '\n'); prev >= 0 {
		b.lastLine = tail(before[prev+1:])
	} else {
		b.lastLine = tail(b.partial + before)
	}

	b.partial = tail(data[nl+1:])
}

// broadcast wakes the current waiters. Must be called with the lock held.
func (b *Buffer) broadcast() {
	close(b.notify)
	b.notify = make(chan struct{})
}

func tail(s string) string {
	if len(s) <= maxLineLength {
		return s
	}

	cut := len(s) - maxLineLength
	for cut < len(s) && !utf8.RuneStart(s[cut]) {
		cut++
	}

	return s[cut:]
}
