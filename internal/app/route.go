// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package app

import (
	"context"
	"slices"
	"strings"

	"github.com/matt-FFFFFF/commands-wrapper/internal/commandregistry"
	"github.com/matt-FFFFFF/commands-wrapper/internal/shellhook"
)

// RouteKind says how an invocation is handled.
type RouteKind int

// Routes.
const (
	// RouteExecute runs a user command.
	RouteExecute RouteKind = iota
	// RouteBuiltin runs a built-in subcommand through the CLI.
	RouteBuiltin
	// RoutePicker shows the command picker.
	RoutePicker
	// RouteCdTarget answers the shell integration query.
	RouteCdTarget
)

// Builtin subcommand names.
const (
	CmdList   = "list"
	CmdAdd    = "add"
	CmdRemove = "remove"
	CmdRename = "rename"
	CmdSync   = "sync"
	CmdHook   = "hook"
)

const yamlFlag = "--yaml"

var builtins = []string{CmdList, CmdAdd, CmdRemove, CmdRename, CmdSync, CmdHook, "help", "-h", "--help", "-v", "--version"}

// Route is the decision for one argument list.
type Route struct {
	Kind RouteKind
	Args []string
}

// Route decides who handles args, the arguments after the program name.
// sync is always the builtin; otherwise a user command whose full name equals
// the arguments wins over a builtin of the same name. Builtin names are
// matched case-insensitively.
func (a *App) Route(ctx context.Context, args []string) Route {
	if len(args) == 0 {
		return Route{Kind: RoutePicker}
	}

	if args[0] == shellhook.CdTargetCommand && a.settings.Internal {
		return Route{Kind: RouteCdTarget, Args: args[1:]}
	}

	first := strings.ToLower(args[0])

	if first == CmdSync {
		return Route{Kind: RouteBuiltin, Args: normalized(first, args)}
	}

	sess := a.load(ctx)
	if _, ok := commandregistry.Resolve(strings.Join(args, " "), sess.reg, sess.idx); ok {
		return Route{Kind: RouteExecute, Args: args}
	}

	if slices.Contains(builtins, first) {
		return Route{Kind: RouteBuiltin, Args: normalized(first, args)}
	}

	return Route{Kind: RouteExecute, Args: args}
}

// normalized lowercases the builtin name, and the --yaml flag of add.
func normalized(first string, args []string) []string {
	out := slices.Clone(args)
	out[0] = first

	if first != CmdAdd {
		return out
	}

	for i, arg := range out[1:] {
		if strings.EqualFold(arg, yamlFlag) {
			out[i+1] = yamlFlag
		}
	}

	return out
}
