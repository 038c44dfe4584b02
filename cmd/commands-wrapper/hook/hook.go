// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package hook implements the hook subcommand.
package hook

import (
	"context"

	"github.com/matt-FFFFFF/commands-wrapper/internal/app"
	"github.com/urfave/cli/v3"
)

// NewCommand returns the command that prints the shell integration.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  app.CmdHook,
		Usage: "Print shell functions that let directory commands move the current shell",
		Description: `Add the following line to your shell profile:

    eval "$(commands-wrapper hook)"`,
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	a := app.FromContext(ctx)
	if a == nil {
		return cli.Exit("failed to get application from context", 1)
	}

	if cmd.Args().Present() {
		a.Console().Error("Usage: commands-wrapper hook")
		return cli.Exit("", 1)
	}

	return app.Exit(a.Hook(ctx))
}
