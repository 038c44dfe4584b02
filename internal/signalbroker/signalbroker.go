// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package signalbroker delivers termination signals to a channel.
//
// main uses it to cancel the run on a repeated signal, and the step executor
// uses its own channel to forward signals to the child process group.
package signalbroker

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/matt-FFFFFF/commands-wrapper/internal/ctxlog"
)

// TermSignals are the signals a wrapped command receives on behalf of the
// tool. SIGHUP is included because closing the terminal of a pty session
// must reach the child.
var TermSignals = []os.Signal{
	os.Interrupt,
	syscall.SIGTERM,
	syscall.SIGQUIT,
	syscall.SIGHUP,
}

// New subscribes a buffered channel to sigs, or to TermSignals when sigs is
// empty. Release it with Stop.
func New(ctx context.Context, sigs ...os.Signal) chan os.Signal {
	if len(sigs) == 0 {
		sigs = TermSignals
	}

	ch := make(chan os.Signal, len(sigs))
	signal.Notify(ch, sigs...)
	ctxlog.Debug(ctx, "signalbroker", "detail", "subscribed", "signals", sigs)

	return ch
}

// Stop stops delivery to ch. The channel is not closed, so a watcher that
// still reads from it must be stopped through its context.
func Stop(ch chan os.Signal) {
	signal.Stop(ch)
}
