// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package stepexec

import (
	"context"
	"errors"
	"fmt"
	"os"
	"regexp"
	"slices"
	"time"

	"github.com/matt-FFFFFF/commands-wrapper/internal/commands"
	"github.com/matt-FFFFFF/commands-wrapper/internal/ctxlog"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/matt-FFFFFF/commands-wrapper/internal/signalbroker"
)

// lastLineLength bounds the output quoted in error messages.
const lastLineLength = 120

var (
	// ErrSpawn is returned when the first step cannot be started.
	ErrSpawn = errors.New("failed to start command")
	// ErrSendInput is returned when input cannot be written to the process.
	ErrSendInput = errors.New("unable to send input to running command")
	// ErrExitStatusUnknown is returned when the backend cannot report an exit status.
	ErrExitStatusUnknown = errors.New("unable to determine exit status for command")
	// ErrTimeout is returned when the command timeout expires.
	ErrTimeout = errors.New("command timed out")
	// ErrExpect is returned when an expect step does not match.
	ErrExpect = errors.New("expected output not seen")
	// ErrSignalReceived is returned when the process was killed after a repeated signal.
	ErrSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
)

// State is the lifecycle of an Executor.
type State int

// States.
const (
	NotStarted State = iota
	Running
	Completed
	Failed
)

// String implements fmt.Stringer.
func (s State) String() string {
	switch s {
	case Running:
		return "running"
	case Completed:
		return "completed"
	case Failed:
		return "failed"
	default:
		return "not started"
	}
}

// Executor runs the steps of one record against a child process.
type Executor struct {
	shell   []string
	dir     string
	factory Factory
	stdio   Stdio
	sigCh   chan os.Signal
	state   State
}

// Option configures an Executor.
type Option func(*Executor)

// WithFactory replaces the backend factory.
func WithFactory(f Factory) Option {
	return func(e *Executor) {
		e.factory = f
	}
}

// WithStdio replaces the standard streams.
func WithStdio(stdio Stdio) Option {
	return func(e *Executor) {
		e.stdio = stdio
	}
}

// WithSignals replaces the signal channel, which allows signals to be injected in tests.
func WithSignals(ch chan os.Signal) Option {
	return func(e *Executor) {
		e.sigCh = ch
	}
}

// WithDir sets the working directory of the process.
func WithDir(dir string) Option {
	return func(e *Executor) {
		e.dir = dir
	}
}

// New creates an Executor that starts commands with the shell of s.
func New(s settings.Settings, opts ...Option) *Executor {
	e := &Executor{
		shell:   s.ShellArgv,
		factory: NewFactory(s),
		stdio:   DefaultStdio(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// State returns the lifecycle state.
func (e *Executor) State() State {
	return e.state
}

// Run executes rec and returns the exit status of its process. A non-zero
// status is not an error. An Executor runs one record.
func (e *Executor) Run(ctx context.Context, rec commands.Record) (int, error) {
	if e.state != NotStarted {
		return -1, fmt.Errorf("%w: executor already used", ErrSpawn)
	}

	if err := rec.Validate(); err != nil {
		e.state = Failed
		return -1, err
	}

	logger := ctxlog.Logger(ctx).With("command", rec.Name)
	ctx = ctxlog.New(ctx, logger)

	line := rec.CommandLine()
	backend := e.factory(e.stdio)

	defer backend.Close() //nolint:errcheck

	var (
		stepCtx context.Context
		cancel  context.CancelFunc
	)

	if rec.Timeout > 0 {
		stepCtx, cancel = context.WithTimeout(ctx, rec.Timeout)
	} else {
		stepCtx, cancel = context.WithCancel(ctx)
	}

	defer cancel()

	req := SpawnRequest{
		Argv:     append(slices.Clone(e.shell), line),
		Dir:      e.dir,
		Scripted: len(rec.Steps) > 1,
	}

	logger.Debug("spawning", "argv", req.Argv, "scripted", req.Scripted)

	if err := backend.Spawn(ctx, req); err != nil {
		e.state = Failed
		return -1, fmt.Errorf("%w '%s': %w", ErrSpawn, line, err)
	}

	e.state = Running

	killed := make(chan struct{})
	stop := e.forwardSignals(ctx, backend, killed)

	defer stop()

	for i, step := range rec.Steps[1:] {
		logger.Debug("step", "index", i+2, "kind", string(step.Kind))

		if err := runStep(stepCtx, backend, step); err != nil {
			return e.abort(ctx, backend, stepCtx, killed, err)
		}
	}

	if err := e.finish(ctx, stepCtx, backend); err != nil {
		return e.abort(ctx, backend, stepCtx, killed, err)
	}

	code, ok := backend.ExitCode()
	if !ok {
		e.state = Failed
		return -1, fmt.Errorf("%w: %s", ErrExitStatusUnknown, line)
	}

	logger.Debug("command finished", "exitCode", code)

	e.state = Completed

	select {
	case <-killed:
		return code, ErrSignalReceived
	default:
	}

	return code, nil
}

// finish hands the terminal to the user when possible, otherwise waits once.
func (e *Executor) finish(ctx, stepCtx context.Context, backend Backend) error {
	if !backend.Exited() {
		err := backend.Interact(ctx)
		if err == nil {
			return nil
		}

		if !errors.Is(err, errNotInteractive) {
			return err
		}

		ctxlog.Debug(ctx, "interactive hand-off unavailable, waiting", "reason", err.Error())
	}

	return backend.Wait(stepCtx)
}

// abort kills the process and maps err to the reason the run stopped.
func (e *Executor) abort(ctx context.Context, backend Backend, stepCtx context.Context, killed chan struct{}, err error) (int, error) {
	e.state = Failed

	if kerr := backend.Kill(); kerr != nil {
		ctxlog.Debug(ctx, "kill failed", "error", kerr)
	}

	waitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()

	_ = backend.Wait(waitCtx)

	select {
	case <-killed:
		return -1, ErrSignalReceived
	default:
	}

	if errors.Is(stepCtx.Err(), context.DeadlineExceeded) {
		err = ErrTimeout
	}

	if last := backend.Output().LastLine(lastLineLength); last != "" {
		return -1, fmt.Errorf("%w (last output: %q)", err, last)
	}

	return -1, err
}

// forwardSignals passes signals to the process while it runs. A second signal
// of the same type kills it.
func (e *Executor) forwardSignals(ctx context.Context, backend Backend, killed chan struct{}) func() {
	sigCh := e.sigCh
	owned := sigCh == nil

	if owned {
		sigCh = signalbroker.New(ctx)
	}

	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)

		seen := make(map[os.Signal]struct{})

		for {
			select {
			case <-done:
				return
			case sig, ok := <-sigCh:
				if !ok {
					return
				}

				if _, dup := seen[sig]; dup {
					ctxlog.Info(ctx, "received duplicate signal, killing process", "signal", sig.String())
					close(killed)

					_ = backend.Kill()

					return
				}

				seen[sig] = struct{}{}

				ctxlog.Info(ctx, "forwarding signal", "signal", sig.String())

				if err := backend.Signal(sig); err != nil {
					ctxlog.Info(ctx, "failed to send signal", "signal", sig.String(), "error", err)
				}
			}
		}
	}()

	return func() {
		close(done)
		<-finished

		if owned {
			signalbroker.Stop(sigCh)
		}
	}
}

func runStep(ctx context.Context, backend Backend, step commands.Step) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch step.Kind {
	case commands.StepCommand, commands.StepSend:
		return backend.Send(step.Value)
	case commands.StepPressKey:
		return backend.PressKey(step.Value)
	case commands.StepExpect:
		re, err := regexp.Compile(step.Value)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrExpect, err)
		}

		expectCtx := ctx

		if step.Timeout > 0 {
			var cancel context.CancelFunc

			expectCtx, cancel = context.WithTimeout(ctx, step.Timeout)
			defer cancel()
		}

		return backend.Expect(expectCtx, re)
	default:
		return fmt.Errorf("%w: %s", commands.ErrInvalidStep, step.Kind)
	}
}
