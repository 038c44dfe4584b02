// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main contains the commands-wrapper command-line interface (CLI).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	commandswrapper "github.com/matt-FFFFFF/commands-wrapper"
	"github.com/matt-FFFFFF/commands-wrapper/cmd/commands-wrapper/add"
	"github.com/matt-FFFFFF/commands-wrapper/cmd/commands-wrapper/hook"
	"github.com/matt-FFFFFF/commands-wrapper/cmd/commands-wrapper/list"
	"github.com/matt-FFFFFF/commands-wrapper/cmd/commands-wrapper/remove"
	"github.com/matt-FFFFFF/commands-wrapper/cmd/commands-wrapper/rename"
	"github.com/matt-FFFFFF/commands-wrapper/cmd/commands-wrapper/synccmd"
	"github.com/matt-FFFFFF/commands-wrapper/internal/app"
	"github.com/matt-FFFFFF/commands-wrapper/internal/ctxlog"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/matt-FFFFFF/commands-wrapper/internal/signalbroker"
	"github.com/spf13/afero"
	"github.com/urfave/cli/v3"
)

// newRootCmd returns the root command for the built-in subcommands.
// User commands never reach it; see run.
func newRootCmd() *cli.Command {
	return &cli.Command{
		Commands: []*cli.Command{
			list.NewCommand(),
			add.NewCommand(),
			remove.NewCommand(),
			rename.NewCommand(),
			synccmd.NewCommand(),
			hook.NewCommand(),
		},
		Writer:    os.Stdout,
		ErrWriter: os.Stderr,
		Name:      settings.PrimaryName,
		Description: `commands-wrapper keeps a catalog of named shell commands in YAML files
and runs them by name. Every command also gets a small launcher in the wrapper
directory, so it can be typed directly at the shell prompt.`,
		Usage:     "commands-wrapper <command name...>",
		Copyright: "Copyright (c) matt-FFFFFF 2025. All rights reserved.",
		Authors: []any{
			"Matt White (matt-FFFFFF)",
		},
		Version: fmt.Sprintf("%s (commit: %s)", commandswrapper.Version, commandswrapper.Commit),
		// Subcommands report their own failures.
		ExitErrHandler: func(context.Context, *cli.Command, error) {},
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = ctxlog.New(ctx, ctxlog.DefaultLogger)

	sigCh := signalbroker.New(ctx)

	go signalbroker.Watch(ctx, sigCh, cancel)

	s, err := settings.Load()
	if err != nil {
		ctxlog.Error(ctx, "failed to read settings", "error", err)
		cancel()
		os.Exit(1)
	}

	code := run(ctx, newRootCmd(), app.New(afero.NewOsFs(), s), os.Args[1:])

	signalbroker.Stop(sigCh)
	cancel()
	os.Exit(code)
}

// run dispatches one invocation and returns its exit status.
func run(ctx context.Context, root *cli.Command, a *app.App, args []string) int {
	route := a.Route(ctx, args)
	ctxlog.Debug(ctx, "routed invocation", "kind", int(route.Kind), "args", route.Args)

	switch route.Kind {
	case app.RoutePicker:
		return a.Pick(ctx)
	case app.RouteCdTarget:
		a.CdTarget(ctx, route.Args)
		return 0
	case app.RouteExecute:
		return a.Execute(ctx, route.Args)
	}

	err := root.Run(app.NewContext(ctx, a), append([]string{settings.PrimaryName}, route.Args...))

	return exitCode(err)
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}

	var ec cli.ExitCoder
	if errors.As(err, &ec) {
		return ec.ExitCode()
	}

	return 1
}
