// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package fsutil contains the filesystem write helpers shared by the command
// store, the wrapper synchronizer and the cwd relay.
package fsutil

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

var (
	// ErrCreateDir is returned when a parent directory cannot be created.
	ErrCreateDir = errors.New("failed to create directory")
	// ErrWriteFile is returned when a file cannot be written.
	ErrWriteFile = errors.New("failed to write file")
)

// mkdirAll is swapped in tests to simulate a concurrent creator.
var mkdirAll = func(fs afero.Fs, dir string, perm os.FileMode) error {
	return fs.MkdirAll(dir, perm)
}

// EnsureDir creates dir and its parents. When creation fails but the directory
// exists afterwards another process won the race; that is retried once.
func EnsureDir(fs afero.Fs, dir string) error {
	var err error

	for range 2 {
		if err = mkdirAll(fs, dir, 0o755); err == nil {
			return nil
		}

		if ok, _ := afero.DirExists(fs, dir); ok {
			return nil
		}
	}

	return errors.Join(ErrCreateDir, err)
}

// WriteFileAtomic writes data to a temporary file next to path and renames it
// into place, so readers never observe a partial file.
func WriteFileAtomic(fs afero.Fs, path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := EnsureDir(fs, dir); err != nil {
		return err
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return errors.Join(ErrWriteFile, err)
	}

	name := tmp.Name()

	_, werr := tmp.Write(data)
	cerr := tmp.Close()

	if err := errors.Join(werr, cerr); err != nil {
		_ = fs.Remove(name)
		return errors.Join(ErrWriteFile, err)
	}

	if err := fs.Chmod(name, perm); err != nil {
		_ = fs.Remove(name)
		return errors.Join(ErrWriteFile, err)
	}

	if err := fs.Rename(name, path); err != nil {
		_ = fs.Remove(name)
		return errors.Join(ErrWriteFile, err)
	}

	return nil
}
