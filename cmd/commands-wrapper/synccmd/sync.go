// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package synccmd implements the sync subcommand.
package synccmd

import (
	"context"

	"github.com/matt-FFFFFF/commands-wrapper/internal/app"
	"github.com/urfave/cli/v3"
)

const (
	uninstallFlag = "uninstall"
	usage         = "Usage: commands-wrapper sync [--uninstall]"
)

// NewCommand returns the command that regenerates the wrapper directory.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  app.CmdSync,
		Usage: "Regenerate the command wrappers",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        uninstallFlag,
				Usage:       "Remove every generated wrapper instead",
				DefaultText: "false",
				Value:       false,
			},
		},
		Action: actionFunc,
		OnUsageError: func(ctx context.Context, _ *cli.Command, _ error, _ bool) error {
			return usageError(ctx)
		},
	}
}

func usageError(ctx context.Context) error {
	if a := app.FromContext(ctx); a != nil {
		a.Console().Error(usage)
	}

	return cli.Exit("", 1)
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	a := app.FromContext(ctx)
	if a == nil {
		return cli.Exit("failed to get application from context", 1)
	}

	if cmd.Args().Present() {
		return usageError(ctx)
	}

	return app.Exit(a.Sync(ctx, cmd.Bool(uninstallFlag)))
}
