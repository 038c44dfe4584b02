// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package rename implements the rename subcommand.
package rename

import (
	"context"

	"github.com/matt-FFFFFF/commands-wrapper/internal/app"
	"github.com/urfave/cli/v3"
)

// NewCommand returns the command that renames a command in place.
// Multi-word names are passed as single quoted arguments.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:      app.CmdRename,
		Usage:     "Rename a command",
		ArgsUsage: "<old> <new>",
		Action:    actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	a := app.FromContext(ctx)
	if a == nil {
		return cli.Exit("failed to get application from context", 1)
	}

	if cmd.Args().Len() != 2 {
		a.Console().Error("Usage: commands-wrapper rename <old> <new>")
		return cli.Exit("", 1)
	}

	return app.Exit(a.Rename(ctx, cmd.Args().Get(0), cmd.Args().Get(1)))
}
