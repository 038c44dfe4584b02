// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stepexec

import (
	"context"
	"errors"
	"io"
	"os"
	"regexp"
	"sync"

	"github.com/matt-FFFFFF/commands-wrapper/internal/outputbuf"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
)

// errNotInteractive is returned by Interact when control cannot be handed to the user.
var errNotInteractive = errors.New("terminal is not interactive")

// Backend drives one child process.
type Backend interface {
	// Spawn starts the process. It is called exactly once.
	Spawn(ctx context.Context, req SpawnRequest) error
	// Send types text followed by a newline.
	Send(text string) error
	// PressKey types a named key without a newline.
	PressKey(name string) error
	// Expect waits for re in the output produced since the previous match.
	Expect(ctx context.Context, re *regexp.Regexp) error
	// Interact hands the terminal to the user until the process exits.
	// It returns errNotInteractive when that is not possible.
	Interact(ctx context.Context) error
	// Wait blocks until the process exits and its output is drained.
	Wait(ctx context.Context) error
	// Exited reports whether the process has already exited.
	Exited() bool
	// ExitCode is the exit status after Wait or Interact returned.
	ExitCode() (int, bool)
	// Signal forwards sig to the process.
	Signal(sig os.Signal) error
	// Kill terminates the process and its children.
	Kill() error
	// Close releases the resources of the backend.
	Close() error
	// Output is the buffer the process output is copied into.
	Output() *outputbuf.Buffer
}

// SpawnRequest describes the process to start.
type SpawnRequest struct {
	Argv []string
	Dir  string
	// Scripted is set when steps will type into the process after it starts.
	Scripted bool
}

// Stdio are the streams of the invocation.
type Stdio struct {
	In  *os.File
	Out io.Writer
	Err io.Writer
}

// DefaultStdio returns the standard streams of the process.
func DefaultStdio() Stdio {
	return Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// Factory creates backends. The backend kind is fixed once the factory is built.
type Factory func(stdio Stdio) Backend

// ptyAvailable is swapped in tests.
var ptyAvailable = probePTY

// NewFactory returns the pty backend when a pseudo terminal can be opened and
// s does not disable it, otherwise the pipe backend. The probe runs once.
func NewFactory(s settings.Settings) Factory {
	usePTY := sync.OnceValue(func() bool {
		return !s.NoPTY && !s.IsWindows() && ptyAvailable()
	})

	return func(stdio Stdio) Backend {
		if usePTY() {
			return newPTYBackend(stdio)
		}

		return newPipeBackend(stdio)
	}
}

// PipeFactory always returns the pipe backend.
func PipeFactory(stdio Stdio) Backend {
	return newPipeBackend(stdio)
}
