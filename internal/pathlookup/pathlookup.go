// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package pathlookup finds executables on the search path of the invocation.
package pathlookup

import (
	"bytes"
	"io"
	"path/filepath"
	"strings"

	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/spf13/afero"
)

// markerScanLimit bounds how much of a file is read when looking for the marker.
const markerScanLimit = 4096

// Finder searches the directories of PATH, skipping the wrapper directory.
type Finder struct {
	fs      afero.Fs
	dirs    []string
	exts    []string
	windows bool
	exclude string
}

// New creates a Finder from the settings of the invocation.
func New(fs afero.Fs, s settings.Settings) *Finder {
	return &Finder{
		fs:      fs,
		dirs:    s.PathList,
		exts:    s.PathExt,
		windows: s.IsWindows(),
		exclude: s.BinDir,
	}
}

// Find returns the first executable called name on PATH outside the wrapper directory.
func (f *Finder) Find(name string) (string, bool) {
	if name == "" {
		return "", false
	}

	for _, dir := range f.dirs {
		if f.sameDir(dir, f.exclude) {
			continue
		}

		for _, candidate := range f.candidates(name) {
			path := filepath.Join(dir, candidate)

			info, err := f.fs.Stat(path)
			if err != nil || info.IsDir() {
				continue
			}

			// check if the command is executable if not Windows
			if !f.windows && info.Mode()&0o111 == 0 {
				continue
			}

			return path, true
		}
	}

	return "", false
}

// Foreign returns true when name is taken on PATH by an executable that was
// not generated by this tool.
func (f *Finder) Foreign(name string) bool {
	for _, dir := range f.dirs {
		if f.sameDir(dir, f.exclude) {
			continue
		}

		sub := &Finder{fs: f.fs, dirs: []string{dir}, exts: f.exts, windows: f.windows}

		path, ok := sub.Find(name)
		if ok && !HasMarker(f.fs, path) {
			return true
		}
	}

	return false
}

func (f *Finder) candidates(name string) []string {
	if !f.windows {
		return []string{name}
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range f.exts {
		if ext == e {
			return []string{name}
		}
	}

	out := make([]string, 0, len(f.exts))
	for _, e := range f.exts {
		out = append(out, name+e)
	}

	return out
}

func (f *Finder) sameDir(a, b string) bool {
	if a == "" || b == "" {
		return false
	}

	a, b = filepath.Clean(a), filepath.Clean(b)
	if f.windows {
		return strings.EqualFold(a, b)
	}

	return a == b
}

// HasMarker reports whether the head of the file at path carries the generated wrapper marker.
func HasMarker(fs afero.Fs, path string) bool {
	file, err := fs.Open(path)
	if err != nil {
		return false
	}
	defer file.Close() //nolint:errcheck

	head, err := io.ReadAll(io.LimitReader(file, markerScanLimit))
	if err != nil {
		return false
	}

	return bytes.Contains(head, []byte(settings.Marker))
}
