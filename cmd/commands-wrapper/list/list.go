// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package list implements the list subcommand.
package list

import (
	"context"

	"github.com/matt-FFFFFF/commands-wrapper/internal/app"
	"github.com/urfave/cli/v3"
)

// NewCommand returns the command that prints every defined command.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:   app.CmdList,
		Usage:  "List the defined commands",
		Action: actionFunc,
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	a := app.FromContext(ctx)
	if a == nil {
		return cli.Exit("failed to get application from context", 1)
	}

	if cmd.Args().Present() {
		a.Console().Error("Usage: commands-wrapper list")
		return cli.Exit("", 1)
	}

	return app.Exit(a.List(ctx))
}
