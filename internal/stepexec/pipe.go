// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stepexec

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/matt-FFFFFF/commands-wrapper/internal/outputbuf"
)

// waitDelay bounds how long output is drained after the process exits.
const waitDelay = 2 * time.Second

// pipeBackend runs the process with plain pipes. A process that is not
// scripted inherits stdin so the user can still type into it.
type pipeBackend struct {
	stream

	stdio    Stdio
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	ownGroup bool

	exited  chan struct{}
	waitErr error
	once    sync.Once
}

func newPipeBackend(stdio Stdio) *pipeBackend {
	return &pipeBackend{
		stream: stream{out: outputbuf.New(), newline: "\n"},
		stdio:  stdio,
		exited: make(chan struct{}),
	}
}

func (b *pipeBackend) Spawn(_ context.Context, req SpawnRequest) error {
	if len(req.Argv) == 0 {
		return errors.New("empty command line")
	}

	cmd := exec.Command(req.Argv[0], req.Argv[1:]...) //nolint:gosec
	cmd.Dir = req.Dir
	cmd.Stdout = io.MultiWriter(writerOrDiscard(b.stdio.Out), b.out)
	cmd.Stderr = io.MultiWriter(writerOrDiscard(b.stdio.Err), b.out)
	cmd.WaitDelay = waitDelay

	if req.Scripted {
		in, err := cmd.StdinPipe()
		if err != nil {
			return err
		}

		b.stdin = in
		b.in = in
		b.ownGroup = true
		setProcessGroup(cmd)
	} else if b.stdio.In != nil {
		cmd.Stdin = b.stdio.In
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	b.cmd = cmd

	go func() {
		b.waitErr = cmd.Wait()
		_ = b.out.Close()
		close(b.exited)
	}()

	return nil
}

// Interact is not possible with pipes; the caller waits instead.
func (b *pipeBackend) Interact(context.Context) error {
	return errNotInteractive
}

// Wait closes the input of a scripted process and blocks until it exits.
func (b *pipeBackend) Wait(ctx context.Context) error {
	b.closeInput()

	select {
	case <-b.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *pipeBackend) Exited() bool {
	select {
	case <-b.exited:
		return true
	default:
		return false
	}
}

func (b *pipeBackend) ExitCode() (int, bool) {
	if !b.Exited() {
		return 0, false
	}

	var exitErr *exec.ExitError
	if b.waitErr != nil && !errors.As(b.waitErr, &exitErr) && !errors.Is(b.waitErr, exec.ErrWaitDelay) {
		return 0, false
	}

	return exitStatus(b.cmd.ProcessState)
}

// Signal forwards sig. A process sharing our process group already receives
// the interrupt and quit signals from the terminal.
func (b *pipeBackend) Signal(sig os.Signal) error {
	if b.cmd == nil || b.cmd.Process == nil {
		return nil
	}

	if b.ownGroup {
		return signalGroup(b.cmd.Process, sig)
	}

	if terminalSignal(sig) {
		return nil
	}

	return b.cmd.Process.Signal(sig)
}

func (b *pipeBackend) Kill() error {
	if b.cmd == nil || b.cmd.Process == nil {
		return nil
	}

	if b.ownGroup {
		return killGroup(b.cmd.Process)
	}

	return b.cmd.Process.Kill()
}

func (b *pipeBackend) Close() error {
	b.closeInput()
	return nil
}

func (b *pipeBackend) closeInput() {
	b.once.Do(func() {
		if b.stdin != nil {
			_ = b.stdin.Close()
		}
	})
}

func writerOrDiscard(w io.Writer) io.Writer {
	if w == nil {
		return io.Discard
	}

	return w
}
