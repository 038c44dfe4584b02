// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/commands-wrapper/internal/commandregistry"
	"github.com/matt-FFFFFF/commands-wrapper/internal/commands"
	"github.com/matt-FFFFFF/commands-wrapper/internal/commandstore"
	"github.com/matt-FFFFFF/commands-wrapper/internal/diag"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/matt-FFFFFF/commands-wrapper/internal/shellhook"
	"github.com/matt-FFFFFF/commands-wrapper/internal/wrappers"
)

// SkipPruneWarning is shown when load warnings keep stale wrappers in place.
const SkipPruneWarning = "Skipping stale wrapper cleanup because command files have warnings."

// listSyncOptions refreshes wrappers for list without pruning or conflict noise.
var listSyncOptions = wrappers.Options{PruneStale: false, ReportConflicts: false}

// sync runs the wrapper synchronizer. Stale wrappers are never pruned from a
// registry that loaded with warnings.
func (a *App) sync(ctx context.Context, sess *session, opts wrappers.Options) wrappers.Report {
	if sess.warnings != nil && !opts.Uninstall {
		a.console.Warn(SkipPruneWarning)

		opts.PruneStale = false
	}

	return a.syncer.Sync(ctx, sess.reg, opts)
}

// List prints every command.
func (a *App) List(ctx context.Context) error {
	sess := a.loadAndReport(ctx)

	a.console.Report(a.sync(ctx, sess, listSyncOptions).Messages)
	a.printList(sess)

	return nil
}

// Sync reconciles the wrapper directory, or removes every generated wrapper
// when uninstall is set. Only a failed uninstall is an error.
func (a *App) Sync(ctx context.Context, uninstall bool) error {
	sess := a.loadAndReport(ctx)

	opts := wrappers.DefaultOptions()
	opts.Uninstall = uninstall

	report := a.sync(ctx, sess, opts)
	failed := a.console.Report(report.Messages)

	switch {
	case uninstall && failed:
		return ErrReported
	case uninstall:
		a.console.Ok(fmt.Sprintf("Removed %d wrapper file(s) from %s.", len(report.Removed), a.settings.BinDir))
	default:
		a.console.Ok(fmt.Sprintf("Wrappers in %s are up to date (%d written, %d removed).",
			a.settings.BinDir, len(report.Written), len(report.Removed)))
	}

	return nil
}

// Hook prints the shell integration for the current wrapper set.
func (a *App) Hook(ctx context.Context) error {
	sess := a.loadAndReport(ctx)

	a.console.Report(a.sync(ctx, sess, wrappers.DefaultOptions()).Messages)

	m, _, _ := a.syncer.ComputeMap(sess.reg)

	if err := shellhook.Write(a.console.Out(), m); err != nil {
		a.console.Error(err.Error())
		return ErrReported
	}

	return nil
}

// Remove deletes the command named by tokens from the file it was loaded from.
func (a *App) Remove(ctx context.Context, tokens []string) error {
	sess := a.loadAndReport(ctx)
	name := strings.Join(tokens, " ")

	key, ok := commandregistry.Resolve(name, sess.reg, sess.idx)
	if !ok {
		a.console.Error(fmt.Sprintf("'%s' not found", name))
		return ErrReported
	}

	rec, _ := sess.reg.Get(key)

	msgs, err := a.store.Remove(ctx, key, rec.Source)
	if err != nil {
		a.console.Error(err.Error())
		return ErrReported
	}

	return a.finishWrite(fmt.Sprintf("Removed '%s'", key), msgs)
}

// Rename gives the command oldName the name newName, in place.
func (a *App) Rename(ctx context.Context, oldName, newName string) error {
	sess := a.loadAndReport(ctx)

	key, ok := commandregistry.Resolve(oldName, sess.reg, sess.idx)
	if !ok {
		a.console.Error(fmt.Sprintf("'%s' not found", oldName))
		return ErrReported
	}

	rec, _ := sess.reg.Get(key)
	newName = strings.TrimSpace(newName)

	msgs, err := a.store.Rename(ctx, key, newName, rec.Source)
	if err != nil {
		a.console.Error(err.Error())
		return ErrReported
	}

	return a.finishWrite(fmt.Sprintf("Renamed '%s' to '%s'", key, newName), msgs)
}

// AddDocument adds every command of a definition document to the preferred
// file. Existing names are rejected one by one; the rest are still added.
func (a *App) AddDocument(ctx context.Context, data []byte) error {
	a.loadAndReport(ctx)

	recs, err := commandstore.DecodeDocument(data)
	if err != nil {
		a.console.Error(err.Error())
		return ErrReported
	}

	if len(recs) == 0 {
		a.console.Error("no commands found in the YAML document")
		return ErrReported
	}

	var failed bool

	for _, rec := range recs {
		if err := a.AddRecord(ctx, rec); err != nil {
			failed = true
		}
	}

	if failed {
		return ErrReported
	}

	return nil
}

// AddRecord adds one new command to the preferred file.
func (a *App) AddRecord(ctx context.Context, rec commands.Record) error {
	target := a.store.PreferredWriteTarget()

	msgs, err := a.store.Add(ctx, rec.Name, rec, target)
	if err != nil {
		a.console.Error(err.Error())
		return ErrReported
	}

	return a.finishWrite(fmt.Sprintf("Added '%s' to %s", strings.TrimSpace(rec.Name), target), msgs)
}

// finishWrite reports a completed store write. Sync errors after the write
// fail the invocation but never undo the write.
func (a *App) finishWrite(done string, msgs diag.Diagnostics) error {
	a.console.Ok(done + ".")

	if a.console.Report(msgs) {
		a.console.Warn(done + ", but wrapper sync reported errors.")
		return ErrReported
	}

	return nil
}

// printList writes the commands in listing order.
func (a *App) printList(sess *session) {
	out := a.console.Out()
	keys := sess.reg.Sorted()

	if len(keys) == 0 {
		fmt.Fprintf(out, "No commands defined. Use '%s add' to create one.\n", settings.PrimaryName) //nolint:errcheck
		return
	}

	width := 0
	for _, k := range keys {
		width = max(width, lipgloss.Width(k))
	}

	nameStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")).Width(width)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	for _, k := range keys {
		rec, _ := sess.reg.Get(k)

		desc := rec.Description
		if desc == "" {
			desc = rec.CommandLine()
		}

		fmt.Fprintf(out, "%s  %s\n", nameStyle.Render(k), descStyle.Render(desc)) //nolint:errcheck
	}
}
