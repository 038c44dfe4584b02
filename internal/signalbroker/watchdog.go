// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package signalbroker

import (
	"context"
	"os"

	"github.com/matt-FFFFFF/commands-wrapper/internal/ctxlog"
)

// Watch cancels the context on the second signal of any one type.
// The first is left to whoever else is listening, normally the running child.
// It returns when sigCh is closed or ctx is done.
func Watch(ctx context.Context, sigCh chan os.Signal, cancel context.CancelFunc) {
	seen := make(map[os.Signal]struct{})

	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}

			if _, dup := seen[sig]; dup {
				ctxlog.Info(ctx, "watchdog", "detail", "second signal of type, cancelling", "signal", sig.String())
				cancel()

				return
			}

			ctxlog.Debug(ctx, "watchdog", "detail", "first signal of type, no-op", "signal", sig.String())

			seen[sig] = struct{}{}
		}
	}
}
