// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package commandstore

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/matt-FFFFFF/commands-wrapper/internal/commandregistry"
	"github.com/matt-FFFFFF/commands-wrapper/internal/commands"
	"github.com/spf13/afero"
)

var errMissingFile = errors.New("file does not exist")

// Discover returns the definition files in merge order: the global directory
// first, then the command file of the working directory.
func (s *Store) Discover() ([]string, error) {
	files, err := ScanDir(s.fs, s.settings.ConfigDir)

	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		seen[filepath.Clean(f)] = struct{}{}
	}

	for _, f := range s.settings.LocalFiles() {
		if _, dup := seen[filepath.Clean(f)]; dup {
			continue
		}

		if ok, _ := afero.Exists(s.fs, f); ok {
			files = append(files, f)
		}
	}

	return files, err
}

// ScanDir lists the non-hidden .yaml and .yml files of dir, sorted
// case-insensitively with a byte-order tiebreak. A missing dir is empty.
func ScanDir(afs afero.Fs, dir string) ([]string, error) {
	entries, err := afero.ReadDir(afs, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("%w '%s': %w", ErrParseFile, dir, err)
	}

	var names []string

	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, ".") {
			continue
		}

		switch strings.ToLower(filepath.Ext(name)) {
		case ".yaml", ".yml":
			names = append(names, name)
		}
	}

	sort.Slice(names, func(i, j int) bool {
		fi, fj := commandregistry.Fold(names[i]), commandregistry.Fold(names[j])
		if fi != fj {
			return fi < fj
		}

		return names[i] < names[j]
	})

	out := make([]string, len(names))
	for i, n := range names {
		out[i] = filepath.Join(dir, n)
	}

	return out, nil
}

// readDocument parses a definition file into its ordered top-level entries.
// A missing file returns errMissingFile.
func readDocument(afs afero.Fs, path string) (yaml.MapSlice, error) {
	data, err := afero.ReadFile(afs, path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, errMissingFile
		}

		return nil, fmt.Errorf("%w '%s': %w", ErrParseFile, path, err)
	}

	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w '%s': %w", ErrParseFile, path, err)
	}

	return doc, nil
}

// DecodeDocument parses a definition document into records, in document order.
// Every record is validated; the first invalid one fails the whole document.
func DecodeDocument(data []byte) ([]commands.Record, error) {
	var doc yaml.MapSlice
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrParseFile, err)
	}

	out := make([]commands.Record, 0, len(doc))

	for _, item := range doc {
		rec, err := commands.DecodeRecord(fmt.Sprint(item.Key), item.Value)
		if err != nil {
			return nil, err
		}

		out = append(out, rec)
	}

	return out, nil
}
