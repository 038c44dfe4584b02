// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package shellhook renders the POSIX shell integration printed by the hook subcommand.
//
// A child process cannot change the directory of the shell that started it.
// The hook defines one shell function per wrapper, so directory-change
// commands run in the calling shell instead:
//
//	eval "$(commands-wrapper hook)"
package shellhook

import (
	"fmt"
	"io"
	"regexp"

	"github.com/kballard/go-shellquote"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/matt-FFFFFF/commands-wrapper/internal/wrappers"
)

// DispatchFunc is the name of the shell function every wrapper function calls.
const DispatchFunc = "__commands_wrapper_dispatch"

// CdTargetCommand is the hidden subcommand that prints the destination of a directory-change command.
const CdTargetCommand = "__cd-target"

var identifier = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

var reservedWords = map[string]bool{
	"case": true, "do": true, "done": true, "elif": true, "else": true, "esac": true,
	"fi": true, "for": true, "function": true, "if": true, "in": true, "select": true,
	"then": true, "time": true, "until": true, "while": true,
}

// Write prints the dispatch function followed by one function or alias per wrapper.
// Names that are valid shell identifiers become functions; others become aliases
// that run the command directly.
func Write(w io.Writer, m wrappers.Map) error {
	lines := []string{
		DispatchFunc + "() {",
		fmt.Sprintf(`  __cw_target="$(%s=1 command %s %s "$@")" || __cw_target=""`,
			settings.EnvInternal, settings.PrimaryName, CdTargetCommand),
		`  if [ -n "$__cw_target" ]; then`,
		`    cd -- "$__cw_target" || { unset __cw_target; return 1; }`,
		`    unset __cw_target`,
		`    return 0`,
		`  fi`,
		`  unset __cw_target`,
		fmt.Sprintf(`  command %s "$@"`, settings.PrimaryName),
		"}",
	}

	for _, name := range m.Names() {
		e := m[name]
		if e.Kind == wrappers.KindTool {
			continue
		}

		target := shellquote.Join(e.Target)

		if identifier.MatchString(name) && !reservedWords[name] {
			lines = append(lines, fmt.Sprintf(`%s() { %s %s "$@"; }`, name, DispatchFunc, target))
			continue
		}

		lines = append(lines, fmt.Sprintf(`alias %s="%s %s"`, name, settings.PrimaryName, target))
	}

	for _, l := range lines {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}

	return nil
}
