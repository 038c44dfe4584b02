// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package add implements the add subcommand.
package add

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/matt-FFFFFF/commands-wrapper/internal/app"
	"github.com/matt-FFFFFF/commands-wrapper/internal/fetch"
	"github.com/urfave/cli/v3"
)

const (
	yamlFlag  = "yaml"
	fromFlag  = "from"
	usage     = "Usage: commands-wrapper add [--yaml [--from <url>]]"
	yamlUsage = "Usage: commands-wrapper add --yaml [--from <url>] (reads the YAML document from stdin)"
)

// NewCommand returns the command that adds new commands, either from a YAML
// document or through a line-prompt wizard.
func NewCommand() *cli.Command {
	return &cli.Command{
		Name:  app.CmdAdd,
		Usage: "Add commands",
		Description: `Without flags a short wizard asks for the new command.
With --yaml the definitions are read from stdin, or from the URL given with --from.
Any go-getter address can be used, for example a local path or git::https://host/repo//commands.yaml.`,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        yamlFlag,
				Usage:       "Read command definitions as a YAML document",
				DefaultText: "false",
				Value:       false,
			},
			&cli.StringFlag{
				Name:  fromFlag,
				Usage: "Fetch the YAML document from a URL or path instead of stdin",
				Config: cli.StringConfig{
					TrimSpace: true,
				},
			},
		},
		Action: actionFunc,
		OnUsageError: func(ctx context.Context, _ *cli.Command, _ error, _ bool) error {
			return usageError(ctx, usage)
		},
	}
}

func actionFunc(ctx context.Context, cmd *cli.Command) error {
	a := app.FromContext(ctx)
	if a == nil {
		return cli.Exit("failed to get application from context", 1)
	}

	if cmd.Bool(yamlFlag) {
		return addYAML(ctx, cmd, a)
	}

	if cmd.Args().Present() || cmd.IsSet(fromFlag) {
		return usageError(ctx, usage)
	}

	prompter, closeFn := newPrompter()
	rec, err := runWizard(prompter, a.Console())
	_ = closeFn()

	if errors.Is(err, ErrCancelled) {
		a.Console().Info("Cancelled.")
		return nil
	}

	if err != nil {
		a.Console().Error(err.Error())
		return cli.Exit("", 1)
	}

	return app.Exit(a.AddRecord(ctx, rec))
}

func addYAML(ctx context.Context, cmd *cli.Command, a *app.App) error {
	if cmd.Args().Present() {
		return usageError(ctx, yamlUsage)
	}

	data, err := readDocument(ctx, cmd, a.Settings().WorkDir)
	if err != nil {
		a.Console().Error(err.Error())
		return cli.Exit("", 1)
	}

	return app.Exit(a.AddDocument(ctx, data))
}

func readDocument(ctx context.Context, cmd *cli.Command, wd string) ([]byte, error) {
	if url := cmd.String(fromFlag); url != "" {
		return fetch.Get(ctx, url, wd)
	}

	data, err := io.ReadAll(cmd.Root().Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read the YAML document from stdin: %w", err)
	}

	return data, nil
}

func usageError(ctx context.Context, text string) error {
	if a := app.FromContext(ctx); a != nil {
		a.Console().Error(text)
	}

	return cli.Exit("", 1)
}
