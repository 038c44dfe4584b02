// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/matt-FFFFFF/commands-wrapper/internal/commandregistry"
	"github.com/matt-FFFFFF/commands-wrapper/internal/commands"
	"github.com/matt-FFFFFF/commands-wrapper/internal/ctxlog"
	"github.com/matt-FFFFFF/commands-wrapper/internal/cwdrelay"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/matt-FFFFFF/commands-wrapper/internal/stepexec"
	"github.com/matt-FFFFFF/commands-wrapper/internal/tui"
	"github.com/matt-FFFFFF/commands-wrapper/internal/wrappers"
)

// executeSyncOptions keeps wrappers current without reporting PATH conflicts
// that do not concern the command being run.
var executeSyncOptions = wrappers.Options{PruneStale: true, ReportConflicts: false}

// Execute resolves tokens to a command and runs it. It returns the exit
// status of the invocation.
func (a *App) Execute(ctx context.Context, tokens []string) int {
	sess := a.loadAndReport(ctx)
	report := a.syncQuietly(ctx, sess)

	if sess.idxErr != nil {
		a.console.Error("command names collide case-insensitively; rename one of them before running commands")
		return 1
	}

	key, rest, ok := commandregistry.ResolveTokens(tokens, sess.reg, sess.idx)
	if !ok {
		a.console.Error(fmt.Sprintf("'%s' not found", strings.Join(tokens, " ")))
		return 1
	}

	rec, _ := sess.reg.Get(key)
	a.viaWrapper = a.launchedByWrapper(ctx, key, sess)

	rawDir, cdOnly := rec.DirChange()
	if len(rest) > 0 && !cdOnly {
		a.console.Error(fmt.Sprintf("'%s' not found", strings.Join(tokens, " ")))
		return 1
	}

	for _, blk := range report.Blocked.ForCommand(key) {
		if blk.OnDisk() {
			a.console.Warn(blk.Message())
		}
	}

	if cdOnly {
		return a.changeDir(ctx, sess, key, rawDir, rest)
	}

	if a.viaWrapper {
		a.applyRelayedDir(ctx)
	}

	return a.run(ctx, rec)
}

// Pick shows the command picker on a terminal and runs the chosen command.
// Off a terminal it prints the list instead.
func (a *App) Pick(ctx context.Context) int {
	sess := a.loadAndReport(ctx)

	if a.console.Report(a.sync(ctx, sess, wrappers.DefaultOptions()).Messages) {
		ctxlog.Debug(ctx, "wrapper sync reported errors before picking")
	}

	if !a.interactive() {
		a.printList(sess)
		return 0
	}

	items := make([]tui.Item, 0, sess.reg.Len())
	for _, key := range sess.reg.Sorted() {
		rec, _ := sess.reg.Get(key)
		items = append(items, tui.Item{Name: key, Description: rec.Description})
	}

	name, ok, err := a.picker(ctx, items)
	if err != nil {
		a.console.Error(err.Error())
		return 1
	}

	if !ok {
		return 0
	}

	rec, found := sess.reg.Get(name)
	if !found {
		a.console.Error(fmt.Sprintf("'%s' not found", name))
		return 1
	}

	if rawDir, cdOnly := rec.DirChange(); cdOnly {
		return a.changeDir(ctx, sess, name, rawDir, nil)
	}

	return a.run(ctx, rec)
}

// CdTarget prints the destination of a directory-change command, and nothing
// for any other command. It never syncs wrappers.
func (a *App) CdTarget(ctx context.Context, tokens []string) {
	sess := a.load(ctx)

	key, rest, ok := commandregistry.ResolveTokens(tokens, sess.reg, sess.idx)
	if !ok || len(rest) > 0 {
		return
	}

	rec, _ := sess.reg.Get(key)

	rawDir, cdOnly := rec.DirChange()
	if !cdOnly {
		return
	}

	fmt.Fprintln(a.console.Out(), a.resolveDir(rawDir)) //nolint:errcheck
	ctxlog.Debug(ctx, "resolved cd target", "command", key)
}

// changeDir handles a record that only changes directory. Without follow-up
// tokens a plain invocation opens a shell there, since the calling shell
// cannot be moved; a wrapper launch remembers the directory for the next one.
func (a *App) changeDir(ctx context.Context, sess *session, key, rawDir string, rest []string) int {
	dir := a.resolveDir(rawDir)

	if len(rest) == 0 && !a.viaWrapper {
		a.console.Info(fmt.Sprintf("Opening a shell in %s. Exit it to return.", dir))
		a.console.Info(fmt.Sprintf("Add 'eval \"$(%s hook)\"' to your shell profile to change directory in place.",
			settings.PrimaryName))

		return a.runIn(ctx, a.shellRecord(key), dir)
	}

	if err := a.chdir(dir); err != nil {
		a.console.Error(fmt.Sprintf("cannot change directory to '%s': %v", dir, err))
		return 1
	}

	a.workDir = dir

	if a.viaWrapper {
		if err := a.relay.Remember(a.ppid, dir); err != nil {
			a.console.Warn(err.Error())
		}
	}

	return a.followUp(ctx, sess, key, rest)
}

// followUp runs the command named by the tokens after a directory change.
// A leading "--" separates them from the directory command.
func (a *App) followUp(ctx context.Context, sess *session, cdKey string, rest []string) int {
	if len(rest) > 0 && rest[0] == "--" {
		rest = rest[1:]
	}

	if len(rest) == 0 {
		return 0
	}

	key, extra, ok := commandregistry.ResolveTokens(rest, sess.reg, sess.idx)
	if !ok || len(extra) > 0 {
		a.console.Error(fmt.Sprintf("'%s' not found", strings.Join(append([]string{cdKey}, rest...), " ")))
		return 1
	}

	rec, _ := sess.reg.Get(key)
	ctxlog.Debug(ctx, "follow-up after cd", "from", cdKey, "command", key, "dir", a.workDir)

	if rawDir, cdOnly := rec.DirChange(); cdOnly {
		return a.changeDir(ctx, sess, key, rawDir, []string{})
	}

	return a.run(ctx, rec)
}

// applyRelayedDir moves into the directory a previous wrapper launch left
// for this shell, if any.
func (a *App) applyRelayedDir(ctx context.Context) {
	dir, ok, err := a.relay.Consume(a.ppid)
	if err != nil {
		a.console.Warn(err.Error())
		return
	}

	if !ok {
		return
	}

	if err := a.chdir(dir); err != nil {
		ctxlog.Debug(ctx, "relayed directory unusable", "dir", dir, "error", err)
		return
	}

	a.workDir = dir
}

// launchedByWrapper reports whether this invocation came straight from the
// wrapper of key. The wrapper variables are inherited by everything a command
// starts, so a wrapper name that resolves to another command means a nested
// invocation. Wrappers that predate the name variable are trusted.
func (a *App) launchedByWrapper(ctx context.Context, key string, sess *session) bool {
	if !a.settings.WrapperEntry {
		return false
	}

	name := a.settings.WrapperName
	if name == "" {
		return true
	}

	if got, ok := commandregistry.Resolve(name, sess.reg, sess.idx); ok && got == key {
		ctxlog.Debug(ctx, "launched by wrapper", "wrapper", name)
		return true
	}

	ctxlog.Debug(ctx, "ignoring inherited wrapper entry", "wrapper", name, "command", key)

	return false
}

func (a *App) run(ctx context.Context, rec commands.Record) int {
	return a.runIn(ctx, rec, a.workDir)
}

func (a *App) runIn(ctx context.Context, rec commands.Record, dir string) int {
	ctx = ctxlog.With(ctx, "command", rec.Name)

	code, err := a.runner.Run(ctx, rec, dir)

	switch {
	case err == nil:
		return code
	case errors.Is(err, stepexec.ErrSignalReceived) && code >= 0:
		ctxlog.Info(ctx, "command terminated", "exitCode", code)
		return code
	default:
		a.console.Error(err.Error())
		return 1
	}
}

func (a *App) resolveDir(raw string) string {
	return cwdrelay.ResolveDir(raw, a.settings.HomeDir, a.workDir, a.getenv)
}

// shellRecord starts an interactive shell in place of a directory change.
func (a *App) shellRecord(key string) commands.Record {
	shell := a.settings.ShellArgv[0]

	line := "exec " + shellquote.Join(shell)
	if a.settings.IsWindows() {
		line = `"` + shell + `"`
	}

	return commands.Record{
		Name:  key,
		Steps: []commands.Step{{Kind: commands.StepCommand, Value: line}},
	}
}

// syncQuietly keeps wrappers current while running a command. Only failures
// are logged; PATH conflicts of the command itself are reported by the caller.
func (a *App) syncQuietly(ctx context.Context, sess *session) wrappers.Report {
	report := a.sync(ctx, sess, executeSyncOptions)

	for _, m := range report.Messages {
		ctxlog.Debug(ctx, "wrapper sync", "severity", m.Severity.String(), "message", m.Text)
	}

	return report
}
