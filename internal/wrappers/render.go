// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package wrappers

import (
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
)

// File is one rendered wrapper file.
type File struct {
	Name    string // base name inside the wrapper directory
	Content string
}

// Render returns the files of a wrapper: one sh script, or a .cmd and .ps1 pair on Windows.
func Render(e Entry, tool string, windows bool) []File {
	if windows {
		return []File{
			{Name: e.Name + ".cmd", Content: renderCmd(e, tool)},
			{Name: e.Name + ".ps1", Content: renderPs1(e, tool)},
		}
	}

	return []File{{Name: e.Name, Content: renderSh(e, tool)}}
}

func renderSh(e Entry, tool string) string {
	var b strings.Builder

	b.WriteString("#!/usr/bin/env sh\n")
	b.WriteString("# " + settings.Marker + "\n")

	switch e.Kind {
	case KindCommand:
		fmt.Fprintf(&b, "%s=1\n", settings.EnvWrapperEntry)
		fmt.Fprintf(&b, "%s=%s\n", settings.EnvWrapperName, shellquote.Join(e.Target))
		fmt.Fprintf(&b, "export %s %s\n", settings.EnvWrapperEntry, settings.EnvWrapperName)
		fmt.Fprintf(&b, "exec %s %s \"$@\"\n", shellquote.Join(tool), shellquote.Join(e.Target))
	case KindNamespace:
		fmt.Fprintf(&b, "exec %s %s \"$@\"\n", shellquote.Join(tool), shellquote.Join(e.Target))
	case KindTool:
		fmt.Fprintf(&b, "exec %s \"$@\"\n", shellquote.Join(tool))
	}

	return b.String()
}

func renderCmd(e Entry, tool string) string {
	var b strings.Builder

	b.WriteString("@echo off\r\n")
	b.WriteString("rem " + settings.Marker + "\r\n")
	b.WriteString("setlocal\r\n")

	switch e.Kind {
	case KindCommand:
		fmt.Fprintf(&b, "set \"%s=1\"\r\n", settings.EnvWrapperEntry)
		fmt.Fprintf(&b, "set \"%s=%s\"\r\n", settings.EnvWrapperName, cmdEscape(e.Target))
		fmt.Fprintf(&b, "\"%s\" \"%s\" %%*\r\n", tool, cmdEscape(e.Target))
	case KindNamespace:
		fmt.Fprintf(&b, "\"%s\" \"%s\" %%*\r\n", tool, cmdEscape(e.Target))
	case KindTool:
		fmt.Fprintf(&b, "\"%s\" %%*\r\n", tool)
	}

	b.WriteString("exit /b %ERRORLEVEL%\r\n")

	return b.String()
}

func renderPs1(e Entry, tool string) string {
	var b strings.Builder

	b.WriteString("# " + settings.Marker + "\r\n")

	switch e.Kind {
	case KindCommand:
		fmt.Fprintf(&b, "$env:%s = '1'\r\n", settings.EnvWrapperEntry)
		fmt.Fprintf(&b, "$env:%s = %s\r\n", settings.EnvWrapperName, psQuote(e.Target))
		b.WriteString("try {\r\n")
		fmt.Fprintf(&b, "    & %s \"%s\" @args\r\n", psQuote(tool), psDoubleEscape(e.Target))
		b.WriteString("} finally {\r\n")
		fmt.Fprintf(&b, "    Remove-Item Env:%s, Env:%s -ErrorAction SilentlyContinue\r\n",
			settings.EnvWrapperEntry, settings.EnvWrapperName)
		b.WriteString("}\r\n")
	case KindNamespace:
		fmt.Fprintf(&b, "& %s \"%s\" @args\r\n", psQuote(tool), psDoubleEscape(e.Target))
	case KindTool:
		fmt.Fprintf(&b, "& %s @args\r\n", psQuote(tool))
	}

	b.WriteString("exit $LASTEXITCODE\r\n")

	return b.String()
}

func cmdEscape(s string) string {
	return strings.NewReplacer(`"`, `""`, "%", "%%").Replace(s)
}

func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func psDoubleEscape(s string) string {
	return strings.NewReplacer("`", "``", `"`, "`\"", "$", "`$").Replace(s)
}
