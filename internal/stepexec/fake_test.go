// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stepexec

import (
	"bytes"
	"context"
	"os"
	"sync"

	"github.com/matt-FFFFFF/commands-wrapper/internal/outputbuf"
)

// fakeBackend records what the executor asks of it. Wait blocks until the
// process is released or killed.
type fakeBackend struct {
	stream

	spawnErr  error
	exitCode  int
	exitKnown bool
	sent      *bytes.Buffer

	mu      sync.Mutex
	spawned SpawnRequest
	signals []os.Signal
	killed  bool
	release chan struct{}
	once    sync.Once
}

func newFakeBackend() *fakeBackend {
	sent := &bytes.Buffer{}

	return &fakeBackend{
		stream:    stream{in: sent, out: outputbuf.New(), newline: "\n"},
		sent:      sent,
		exitKnown: true,
		release:   make(chan struct{}),
	}
}

func (f *fakeBackend) factory(Stdio) Backend { return f }

func (f *fakeBackend) Spawn(_ context.Context, req SpawnRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.spawned = req

	return f.spawnErr
}

func (f *fakeBackend) Interact(context.Context) error { return errNotInteractive }

func (f *fakeBackend) Wait(ctx context.Context) error {
	select {
	case <-f.release:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeBackend) Exited() bool {
	select {
	case <-f.release:
		return true
	default:
		return false
	}
}

func (f *fakeBackend) ExitCode() (int, bool) { return f.exitCode, f.exitKnown }

func (f *fakeBackend) Signal(sig os.Signal) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.signals = append(f.signals, sig)

	return nil
}

func (f *fakeBackend) Kill() error {
	f.mu.Lock()
	f.killed = true
	f.mu.Unlock()

	f.finish()

	return nil
}

func (f *fakeBackend) Close() error { return nil }

func (f *fakeBackend) finish() {
	f.once.Do(func() { close(f.release) })
}

func (f *fakeBackend) receivedSignals() []os.Signal {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]os.Signal(nil), f.signals...)
}

func (f *fakeBackend) wasKilled() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.killed
}
