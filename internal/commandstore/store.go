// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commandstore

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/hashicorp/go-multierror"
	"github.com/matt-FFFFFF/commands-wrapper/internal/commandregistry"
	"github.com/matt-FFFFFF/commands-wrapper/internal/commands"
	"github.com/matt-FFFFFF/commands-wrapper/internal/ctxlog"
	"github.com/matt-FFFFFF/commands-wrapper/internal/diag"
	"github.com/matt-FFFFFF/commands-wrapper/internal/fsutil"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/spf13/afero"
)

var (
	// ErrParseFile is returned, or collected as a load warning, for a definition file that cannot be read.
	ErrParseFile = errors.New("failed to parse command file")
	// ErrNameConflict is returned when a name collides case-insensitively with another command.
	ErrNameConflict = errors.New("conflicts with existing command")
	// ErrCommandExists is returned by Add when the exact name is already defined.
	ErrCommandExists = errors.New("command already exists")
	// ErrCreateDir is returned when the parent directory of a definition file cannot be created.
	ErrCreateDir = errors.New("failed to create command directory")
	// ErrWriteFile is returned when a definition file cannot be written.
	ErrWriteFile = errors.New("failed to write command file")
	// ErrSourceNotFound is returned when the file a command came from no longer exists.
	ErrSourceNotFound = errors.New("source file not found")
	// ErrNotInFile is returned when the file does not define the command.
	ErrNotInFile = errors.New("command not found in file")
	// ErrInvalidCommand is collected as a load warning for a record that fails validation.
	ErrInvalidCommand = errors.New("skipping invalid command")
)

// Reconciler brings derived state in line with a freshly loaded registry.
// The wrapper synchronizer implements it.
type Reconciler interface {
	Reconcile(ctx context.Context, reg *commandregistry.Registry, prune bool) diag.Diagnostics
}

// Store reads and writes command definition files.
type Store struct {
	fs         afero.Fs
	settings   settings.Settings
	reconciler Reconciler
}

// New creates a Store. A nil reconciler disables the post-write sync.
func New(fs afero.Fs, s settings.Settings, r Reconciler) *Store {
	return &Store{fs: fs, settings: s, reconciler: r}
}

// Load discovers the definition files and loads them.
// The returned error only carries warnings; the registry is always usable.
func (s *Store) Load(ctx context.Context) (*commandregistry.Registry, error) {
	files, err := s.Discover()
	reg, warnings := LoadFiles(ctx, s.fs, files)

	if err != nil {
		warnings = multierror.Append(warnings, err)
	}

	return reg, warnings
}

// LoadFiles merges files in order; a later exact key replaces an earlier one.
// A file that cannot be read or parsed contributes no records and one warning.
// An invalid record is skipped with a warning.
func LoadFiles(ctx context.Context, fs afero.Fs, files []string) (*commandregistry.Registry, error) {
	reg := commandregistry.New()

	var warnings error

	for _, path := range files {
		doc, err := readDocument(fs, path)
		if errors.Is(err, errMissingFile) {
			err = fmt.Errorf("%w '%s': %w", ErrParseFile, path, err)
		}

		if err != nil {
			warnings = multierror.Append(warnings, err)
			continue
		}

		for _, item := range doc {
			name := fmt.Sprint(item.Key)

			rec, err := commands.DecodeRecord(name, item.Value)
			if err != nil {
				warnings = multierror.Append(warnings, fmt.Errorf("%w in '%s': %w", ErrInvalidCommand, path, err))
				continue
			}

			rec.Source = path
			reg.Set(name, rec)
		}

		ctxlog.Debug(ctx, "loaded command file", "path", path, "entries", len(doc))
	}

	return reg, warnings
}

// PreferredWriteTarget is the file new commands are written to: the global file,
// unless local writes are preferred and a local file exists.
func (s *Store) PreferredWriteTarget() string {
	if s.settings.PreferLocalWrite {
		for _, f := range s.settings.LocalFiles() {
			if ok, _ := afero.Exists(s.fs, f); ok {
				return f
			}
		}
	}

	return s.settings.GlobalFile()
}

// Save writes rec under name to target, replacing an entry with the same exact name.
// It fails when name collides case-insensitively with a different command.
// The returned diagnostics come from the post-write sync and never undo the write.
func (s *Store) Save(ctx context.Context, name string, rec commands.Record, target string) (diag.Diagnostics, error) {
	return s.save(ctx, name, rec, target, false)
}

// Add is Save that also rejects a name that already exists exactly.
func (s *Store) Add(ctx context.Context, name string, rec commands.Record, target string) (diag.Diagnostics, error) {
	return s.save(ctx, name, rec, target, true)
}

func (s *Store) save(
	ctx context.Context, name string, rec commands.Record, target string, rejectExisting bool,
) (diag.Diagnostics, error) {
	name = strings.TrimSpace(name)
	rec.Name = name

	if err := rec.Validate(); err != nil {
		return nil, err
	}

	reg, _ := s.Load(ctx)

	if other, ok := commandregistry.ConflictsWith(name, "", reg); ok {
		return nil, fmt.Errorf("'%s' %w '%s'", name, ErrNameConflict, other)
	}

	if _, ok := reg.Get(name); ok && rejectExisting {
		return nil, fmt.Errorf("%w: '%s'", ErrCommandExists, name)
	}

	doc, err := readDocument(s.fs, target)
	if err != nil && !errors.Is(err, errMissingFile) {
		return nil, err
	}

	doc = upsert(doc, name, commands.EncodeRecord(rec))

	if err := s.writeDocument(target, doc); err != nil {
		return nil, err
	}

	ctxlog.Info(ctx, "saved command", "name", name, "path", target)

	return s.reconcile(ctx), nil
}

// Remove deletes name from target.
func (s *Store) Remove(ctx context.Context, name, target string) (diag.Diagnostics, error) {
	doc, err := s.readExisting(target)
	if err != nil {
		return nil, err
	}

	i := find(doc, name)
	if i < 0 {
		return nil, fmt.Errorf("%w: '%s' in %s", ErrNotInFile, name, target)
	}

	doc = append(doc[:i:i], doc[i+1:]...)

	if err := s.writeDocument(target, doc); err != nil {
		return nil, err
	}

	ctxlog.Info(ctx, "removed command", "name", name, "path", target)

	return s.reconcile(ctx), nil
}

// Rename moves the definition stored under oldName in target to newName, keeping its position.
// A newName that differs from oldName only in case is allowed.
func (s *Store) Rename(ctx context.Context, oldName, newName, target string) (diag.Diagnostics, error) {
	newName = strings.TrimSpace(newName)
	if err := commands.ValidateName(newName); err != nil {
		return nil, err
	}

	reg, _ := s.Load(ctx)

	if _, ok := reg.Get(newName); ok && newName != oldName {
		return nil, fmt.Errorf("'%s' %w '%s'", newName, ErrNameConflict, newName)
	}

	if other, ok := commandregistry.ConflictsWith(newName, oldName, reg); ok {
		return nil, fmt.Errorf("'%s' %w '%s'", newName, ErrNameConflict, other)
	}

	doc, err := s.readExisting(target)
	if err != nil {
		return nil, err
	}

	i := find(doc, oldName)
	if i < 0 {
		return nil, fmt.Errorf("%w: '%s' in %s", ErrNotInFile, oldName, target)
	}

	doc[i].Key = newName

	if err := s.writeDocument(target, doc); err != nil {
		return nil, err
	}

	ctxlog.Info(ctx, "renamed command", "from", oldName, "to", newName, "path", target)

	return s.reconcile(ctx), nil
}

// SkippedPruneText is reported when load warnings keep stale wrappers in place.
const SkippedPruneText = "skipped stale wrapper cleanup because command files have warnings"

// reconcile reloads the registry and runs the post-write sync. Stale wrappers
// are only pruned when the reload was clean; otherwise the load warnings lead
// the returned messages.
func (s *Store) reconcile(ctx context.Context) diag.Diagnostics {
	if s.reconciler == nil {
		return nil
	}

	reg, warnings := s.Load(ctx)
	if warnings == nil {
		return s.reconciler.Reconcile(ctx, reg, true)
	}

	msgs := make(diag.Diagnostics, 0, 4)
	for _, w := range Warnings(warnings) {
		msgs = append(msgs, diag.NewWarning(w.Error()))
	}

	msgs = append(msgs, diag.NewWarning(SkippedPruneText))

	return append(msgs, s.reconciler.Reconcile(ctx, reg, false)...)
}

// Warnings flattens the error returned by Load into its individual warnings.
func Warnings(err error) []error {
	if err == nil {
		return nil
	}

	var merr *multierror.Error
	if errors.As(err, &merr) {
		return merr.WrappedErrors()
	}

	return []error{err}
}

func (s *Store) readExisting(target string) (yaml.MapSlice, error) {
	doc, err := readDocument(s.fs, target)
	if errors.Is(err, errMissingFile) {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, target)
	}

	return doc, err
}

func (s *Store) writeDocument(target string, doc yaml.MapSlice) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("%w '%s': %w", ErrWriteFile, target, err)
	}

	if err := fsutil.WriteFileAtomic(s.fs, target, data, 0o644); err != nil {
		if errors.Is(err, fsutil.ErrCreateDir) {
			return fmt.Errorf("%w '%s': %w", ErrCreateDir, filepath.Dir(target), err)
		}

		return fmt.Errorf("%w '%s': %w", ErrWriteFile, target, err)
	}

	return nil
}

func upsert(doc yaml.MapSlice, name string, value any) yaml.MapSlice {
	if i := find(doc, name); i >= 0 {
		doc[i].Value = value
		return doc
	}

	return append(doc, yaml.MapItem{Key: name, Value: value})
}

func find(doc yaml.MapSlice, name string) int {
	for i, item := range doc {
		if fmt.Sprint(item.Key) == name {
			return i
		}
	}

	return -1
}
