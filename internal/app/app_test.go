// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package app

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/matt-FFFFFF/commands-wrapper/internal/commands"
	"github.com/matt-FFFFFF/commands-wrapper/internal/console"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/matt-FFFFFF/commands-wrapper/internal/tui"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const (
	globalFile = "/cfg/commands-wrapper/commands.yaml"
	binDir     = "/home/u/.local/bin"
	pathDir    = "/usr/bin"
	testPPID   = 4242
)

type runCall struct {
	rec commands.Record
	dir string
}

type fixture struct {
	fs     afero.Fs
	app    *App
	out    *bytes.Buffer
	errOut *bytes.Buffer

	runs   []runCall
	chdirs []string

	exitCode int
	runErr   error

	interactive bool
	pickName    string
	pickOK      bool
	pickItems   []tui.Item
}

func newFixture(t *testing.T, env map[string]string, commandsYAML string) *fixture {
	t.Helper()

	return newFixtureOn(t, afero.NewMemMapFs(), env, commandsYAML)
}

func newFixtureOn(t *testing.T, afs afero.Fs, env map[string]string, commandsYAML string) *fixture {
	t.Helper()

	base := map[string]string{
		"XDG_CONFIG_HOME": "/cfg",
		"XDG_STATE_HOME":  "/state",
		"PATH":            pathDir,
		"SHELL":           "/bin/sh",
	}

	for k, v := range env {
		base[k] = v
	}

	s, err := settings.New(settings.Options{
		Environment: base,
		GOOS:        "linux",
		HomeDir:     "/home/u",
		WorkDir:     "/work",
		ToolPath:    "/opt/cw/commands-wrapper",
	})
	require.NoError(t, err)

	f := &fixture{
		fs:     afs,
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
	}

	if commandsYAML != "" {
		f.write(t, globalFile, commandsYAML, 0o644)
	}

	f.app = New(f.fs, s,
		WithConsole(console.New(f.out, f.errOut)),
		WithRunner(RunnerFunc(func(_ context.Context, rec commands.Record, dir string) (int, error) {
			f.runs = append(f.runs, runCall{rec: rec, dir: dir})
			return f.exitCode, f.runErr
		})),
		WithPicker(func(_ context.Context, items []tui.Item) (string, bool, error) {
			f.pickItems = items
			return f.pickName, f.pickOK, nil
		}),
		WithInteractive(func() bool { return f.interactive }),
		WithChdir(func(dir string) error {
			f.chdirs = append(f.chdirs, dir)
			return nil
		}),
		WithGetenv(func(string) string { return "" }),
		WithParentPID(testPPID),
	)

	return f
}

func (f *fixture) write(t *testing.T, path, content string, perm os.FileMode) {
	t.Helper()

	require.NoError(t, f.fs.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, afero.WriteFile(f.fs, path, []byte(content), perm))
}

func (f *fixture) read(t *testing.T, path string) string {
	t.Helper()

	data, err := afero.ReadFile(f.fs, path)
	require.NoError(t, err)

	return string(data)
}

func (f *fixture) exists(path string) bool {
	ok, _ := afero.Exists(f.fs, path)
	return ok
}

var errBoom = errors.New("boom")

// brokenBinFs refuses every change below the wrapper directory.
type brokenBinFs struct {
	afero.Fs
}

func (b brokenBinFs) denied(name string) bool {
	return strings.HasPrefix(filepath.Clean(name), binDir)
}

func (b brokenBinFs) MkdirAll(name string, perm os.FileMode) error {
	if b.denied(name) {
		return &os.PathError{Op: "mkdir", Path: name, Err: syscall.EACCES}
	}

	return b.Fs.MkdirAll(name, perm)
}

func (b brokenBinFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if b.denied(name) && flag&(os.O_WRONLY|os.O_RDWR|os.O_CREATE) != 0 {
		return nil, &os.PathError{Op: "open", Path: name, Err: syscall.EACCES}
	}

	return b.Fs.OpenFile(name, flag, perm)
}

func (b brokenBinFs) Remove(name string) error {
	if b.denied(name) {
		return &os.PathError{Op: "remove", Path: name, Err: syscall.EACCES}
	}

	return b.Fs.Remove(name)
}
