// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cwdrelay

import (
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/commands-wrapper/internal/fsutil"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/spf13/afero"
)

// MaxAge is how long a remembered directory stays valid.
const MaxAge = 10 * time.Minute

var (
	// ErrReadContext is returned when the side file exists but cannot be read.
	ErrReadContext = errors.New("failed to read cwd context")
	// ErrWriteContext is returned when the side file cannot be written.
	ErrWriteContext = errors.New("failed to write cwd context")
)

type entry struct {
	Path       string `yaml:"path"`
	RecordedAt int64  `yaml:"recorded_at"`
}

// Relay stores one pending working directory per launching process.
type Relay struct {
	fs   afero.Fs
	path string
	now  func() time.Time
}

// New creates a Relay backed by the cwd context file of s.
func New(afs afero.Fs, s settings.Settings) *Relay {
	return &Relay{fs: afs, path: s.CwdContextFile(), now: time.Now}
}

// Remember records dir for pid, replacing an earlier entry.
func (r *Relay) Remember(pid int, dir string) error {
	entries, err := r.read()
	if err != nil {
		entries = map[string]entry{}
	}

	entries[strconv.Itoa(pid)] = entry{Path: dir, RecordedAt: r.now().Unix()}

	return r.write(entries)
}

// Consume returns the directory recorded for pid and forgets it. A second
// call for the same pid finds nothing.
func (r *Relay) Consume(pid int) (string, bool, error) {
	entries, err := r.read()
	if err != nil {
		return "", false, err
	}

	key := strconv.Itoa(pid)

	e, ok := entries[key]
	if !ok {
		return "", false, nil
	}

	delete(entries, key)

	if err := r.write(entries); err != nil {
		return "", false, err
	}

	if r.expired(e) || e.Path == "" {
		return "", false, nil
	}

	return e.Path, true, nil
}

func (r *Relay) expired(e entry) bool {
	return r.now().Sub(time.Unix(e.RecordedAt, 0)) > MaxAge
}

func (r *Relay) read() (map[string]entry, error) {
	data, err := afero.ReadFile(r.fs, r.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]entry{}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrReadContext, err)
	}

	entries := map[string]entry{}
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w '%s': %w", ErrReadContext, r.path, err)
	}

	return entries, nil
}

// write drops expired entries and removes the file once it is empty.
func (r *Relay) write(entries map[string]entry) error {
	for k, e := range entries {
		if r.expired(e) {
			delete(entries, k)
		}
	}

	if len(entries) == 0 {
		if err := r.fs.Remove(r.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %w", ErrWriteContext, err)
		}

		return nil
	}

	data, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWriteContext, err)
	}

	if err := fsutil.WriteFileAtomic(r.fs, r.path, data, 0o600); err != nil {
		return fmt.Errorf("%w: %w", ErrWriteContext, err)
	}

	return nil
}
