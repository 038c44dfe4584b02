// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package remove implements the remove subcommand.
package remove

import (
	"context"

	"github.com/matt-FFFFFF/commands-wrapper/internal/app"
	"github.com/urfave/cli/v3"
)

// NewCommand returns the command that deletes a command from its file.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      app.CmdRemove,
		Usage:     "Remove a command",
		ArgsUsage: "<name...>",
		Action:    actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	a := app.FromContext(ctx)
	if a == nil {
		return cli.Exit("failed to get application from context", 1)
	}

	if !cmd.Args().Present() {
		a.Console().Error("Usage: commands-wrapper remove <name...>")
		return cli.Exit("", 1)
	}

	return app.Exit(a.Remove(ctx, cmd.Args().Slice()))
}
