// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package stepexec

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
	"time"

	"github.com/creack/pty"
	"github.com/matt-FFFFFF/commands-wrapper/internal/ctxlog"
	"github.com/matt-FFFFFF/commands-wrapper/internal/outputbuf"
	"golang.org/x/term"
)

// drainTimeout bounds the wait for the output pump after the process exits.
// A grandchild holding the terminal open would otherwise block forever.
const drainTimeout = 500 * time.Millisecond

// ptyBackend runs the process on a pseudo terminal so it can read single keystrokes.
type ptyBackend struct {
	stream

	stdio  Stdio
	cmd    *exec.Cmd
	master *os.File

	exited   chan struct{}
	pumpDone chan struct{}
}

func probePTY() bool {
	master, tty, err := pty.Open()
	if err != nil {
		return false
	}

	_ = tty.Close()
	_ = master.Close()

	return true
}

func newPTYBackend(stdio Stdio) Backend {
	return &ptyBackend{
		stream:   stream{out: outputbuf.New(), newline: "\r"},
		stdio:    stdio,
		exited:   make(chan struct{}),
		pumpDone: make(chan struct{}),
	}
}

func (b *ptyBackend) Spawn(_ context.Context, req SpawnRequest) error {
	if len(req.Argv) == 0 {
		return errors.New("empty command line")
	}

	cmd := exec.Command(req.Argv[0], req.Argv[1:]...) //nolint:gosec
	cmd.Dir = req.Dir

	master, err := pty.Start(cmd)
	if err != nil {
		return err
	}

	if b.stdio.In != nil {
		_ = pty.InheritSize(b.stdio.In, master)
	}

	b.cmd = cmd
	b.master = master
	b.in = master

	go func() {
		defer close(b.pumpDone)

		// EIO marks the end of output on Linux once the terminal is closed.
		_, _ = io.Copy(io.MultiWriter(writerOrDiscard(b.stdio.Out), b.out), master)
		_ = b.out.Close()
	}()

	go func() {
		_ = cmd.Wait()
		close(b.exited)
	}()

	return nil
}

// Interact connects the user's terminal to the process until it exits.
func (b *ptyBackend) Interact(ctx context.Context) error {
	if b.Exited() || b.stdio.In == nil {
		return errNotInteractive
	}

	fd := int(b.stdio.In.Fd())
	if !term.IsTerminal(fd) {
		return errNotInteractive
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("%w: %w", errNotInteractive, err)
	}
	defer term.Restore(fd, oldState) //nolint:errcheck

	ctxlog.SetRawTerminal(true)
	defer ctxlog.SetRawTerminal(false)

	winch := make(chan os.Signal, 1)
	signal.Notify(winch, syscall.SIGWINCH)

	defer signal.Stop(winch)

	// The copy from stdin stays blocked in Read after the process exits and
	// ends with the invocation.
	go func() {
		_, _ = io.Copy(b.master, b.stdio.In)
	}()

	for {
		select {
		case <-winch:
			_ = pty.InheritSize(b.stdio.In, b.master)
		case <-b.exited:
			b.drain()
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (b *ptyBackend) Wait(ctx context.Context) error {
	select {
	case <-b.exited:
		b.drain()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *ptyBackend) drain() {
	select {
	case <-b.pumpDone:
	case <-time.After(drainTimeout):
	}
}

func (b *ptyBackend) Exited() bool {
	select {
	case <-b.exited:
		return true
	default:
		return false
	}
}

func (b *ptyBackend) ExitCode() (int, bool) {
	if !b.Exited() {
		return 0, false
	}

	return exitStatus(b.cmd.ProcessState)
}

// Signal forwards sig to the process group of the terminal session.
func (b *ptyBackend) Signal(sig os.Signal) error {
	if b.cmd == nil || b.cmd.Process == nil {
		return nil
	}

	return signalGroup(b.cmd.Process, sig)
}

func (b *ptyBackend) Kill() error {
	if b.cmd == nil || b.cmd.Process == nil {
		return nil
	}

	return killGroup(b.cmd.Process)
}

func (b *ptyBackend) Close() error {
	if b.master == nil {
		return nil
	}

	return b.master.Close()
}
