// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package wrappers

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/matt-FFFFFF/commands-wrapper/internal/commandregistry"
	"github.com/matt-FFFFFF/commands-wrapper/internal/ctxlog"
	"github.com/matt-FFFFFF/commands-wrapper/internal/diag"
	"github.com/matt-FFFFFF/commands-wrapper/internal/fsutil"
	"github.com/matt-FFFFFF/commands-wrapper/internal/pathlookup"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/spf13/afero"
)

const wrapperPerm = 0o755

// Options control a Sync run.
type Options struct {
	// PruneStale deletes generated files that are no longer part of the wrapper set.
	PruneStale bool
	// ReportConflicts keeps PATH conflict warnings in the report.
	ReportConflicts bool
	// Uninstall removes every generated file and ignores the other options.
	Uninstall bool
}

// DefaultOptions prunes and reports conflicts.
func DefaultOptions() Options {
	return Options{PruneStale: true, ReportConflicts: true}
}

// Report is the outcome of a Sync run.
type Report struct {
	Messages diag.Diagnostics
	Blocked  Blocked
	Written  []string
	Removed  []string
}

// HasErrors reports whether any message is an error.
func (r Report) HasErrors() bool {
	return r.Messages.HasErrors()
}

// Syncer keeps the wrapper directory in line with a registry.
type Syncer struct {
	fs       afero.Fs
	settings settings.Settings
	finder   *pathlookup.Finder
}

// NewSyncer creates a Syncer for the wrapper directory of s.
func NewSyncer(fs afero.Fs, s settings.Settings) *Syncer {
	return &Syncer{fs: fs, settings: s, finder: pathlookup.New(fs, s)}
}

// ComputeMap derives the wrapper set of reg and withholds every name that a
// foreign executable already holds on PATH.
func (s *Syncer) ComputeMap(reg *commandregistry.Registry) (Map, diag.Diagnostics, Blocked) {
	m, msgs, blocked := Derive(reg, s.settings.IsWindows())

	for _, name := range m.Names() {
		if !s.finder.Foreign(name) {
			continue
		}

		e := m[name]
		delete(m, name)

		blocked[name] = Block{Entry: e, Reason: BlockedOnPath, Claimants: []string{e.Target}}
		msgs = append(msgs, diag.NewWarning(conflictMessage(e)))
	}

	return m, msgs, blocked
}

// Sync brings the wrapper directory in line with reg.
func (s *Syncer) Sync(ctx context.Context, reg *commandregistry.Registry, opts Options) Report {
	dir := s.settings.BinDir

	if opts.Uninstall {
		return s.uninstall(ctx, dir)
	}

	m, msgs, blocked := s.ComputeMap(reg)
	report := Report{Blocked: blocked}

	for _, msg := range msgs {
		if msg.Severity == diag.Warning && !opts.ReportConflicts {
			continue
		}

		report.Messages = append(report.Messages, msg)
	}

	if err := fsutil.EnsureDir(s.fs, dir); err != nil {
		report.Messages = append(report.Messages,
			diag.NewError(fmt.Sprintf("failed to create wrapper directory: %v", err)))

		return report
	}

	expected := make(map[string]struct{})

	for _, name := range m.Names() {
		e := m[name]

		for _, f := range Render(e, s.settings.ToolPath, s.settings.IsWindows()) {
			expected[f.Name] = struct{}{}

			written, err := s.writeFile(filepath.Join(dir, f.Name), f.Content)

			switch {
			case errors.Is(err, errForeignFile):
				report.Blocked[name] = Block{Entry: e, Reason: BlockedForeignFile, Claimants: []string{e.Target}}

				if opts.ReportConflicts {
					report.Messages = append(report.Messages, diag.NewWarning(fmt.Sprintf(
						"skipped wrapper '%s': a file not generated by %s already exists", f.Name, settings.PrimaryName)))
				}
			case err != nil:
				report.Messages = append(report.Messages,
					diag.NewError(fmt.Sprintf("failed to write wrapper '%s': %v", f.Name, err)))
			case written:
				report.Written = append(report.Written, f.Name)
				ctxlog.Debug(ctx, "wrote wrapper", "name", f.Name, "kind", e.Kind.String())
			}
		}
	}

	if !opts.PruneStale {
		return report
	}

	stale, err := s.generatedFiles(dir)
	if err != nil {
		report.Messages = append(report.Messages,
			diag.NewError(fmt.Sprintf("failed to list wrapper directory: %v", err)))

		return report
	}

	for _, name := range stale {
		if _, keep := expected[name]; keep {
			continue
		}

		if err := s.fs.Remove(filepath.Join(dir, name)); err != nil {
			report.Messages = append(report.Messages,
				diag.NewError(fmt.Sprintf("failed to remove stale wrapper '%s': %v", name, err)))

			continue
		}

		report.Removed = append(report.Removed, name)
		ctxlog.Debug(ctx, "removed stale wrapper", "name", name)
	}

	return report
}

// Reconcile runs a sync with conflict reporting on. It implements the
// reconciler the command store calls after every write.
func (s *Syncer) Reconcile(ctx context.Context, reg *commandregistry.Registry, prune bool) diag.Diagnostics {
	return s.Sync(ctx, reg, Options{PruneStale: prune, ReportConflicts: true}).Messages
}

func (s *Syncer) uninstall(ctx context.Context, dir string) Report {
	var report Report

	if ok, _ := afero.DirExists(s.fs, dir); !ok {
		return report
	}

	files, err := s.generatedFiles(dir)
	if err != nil {
		report.Messages = append(report.Messages,
			diag.NewError(fmt.Sprintf("failed to list wrapper directory: %v", err)))

		return report
	}

	for _, name := range files {
		if err := s.fs.Remove(filepath.Join(dir, name)); err != nil {
			report.Messages = append(report.Messages,
				diag.NewError(fmt.Sprintf("failed to remove wrapper '%s': %v", name, err)))

			continue
		}

		report.Removed = append(report.Removed, name)
	}

	ctxlog.Info(ctx, "removed wrappers", "count", len(report.Removed))

	return report
}

var errForeignFile = errors.New("file is not a generated wrapper")

// writeFile writes content to path unless it is already there. A file without
// the marker is never replaced.
func (s *Syncer) writeFile(path, content string) (bool, error) {
	current, err := afero.ReadFile(s.fs, path)

	switch {
	case err == nil && string(current) == content:
		return false, nil
	case err == nil && !pathlookup.HasMarker(s.fs, path):
		return false, errForeignFile
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return false, err
	}

	if err := fsutil.WriteFileAtomic(s.fs, path, []byte(content), wrapperPerm); err != nil {
		return false, err
	}

	return true, nil
}

// generatedFiles lists the marker-bearing regular files of dir.
func (s *Syncer) generatedFiles(dir string) ([]string, error) {
	entries, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, err
	}

	var out []string

	for _, e := range entries {
		if !e.Mode().IsRegular() {
			continue
		}

		if pathlookup.HasMarker(s.fs, filepath.Join(dir, e.Name())) {
			out = append(out, e.Name())
		}
	}

	return out, nil
}

func conflictMessage(e Entry) string {
	if e.Kind == KindTool {
		return fmt.Sprintf("skipped launcher '%s': name %s", e.Name, ConflictText)
	}

	return fmt.Sprintf("skipped wrapper '%s' for '%s': name %s", e.Name, e.Target, ConflictText)
}
