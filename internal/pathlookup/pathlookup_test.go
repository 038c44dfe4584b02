// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package pathlookup

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSettings(t *testing.T, goos, path, binDir string) settings.Settings {
	t.Helper()

	s, err := settings.New(settings.Options{
		Environment: map[string]string{
			"PATH":                     path,
			"COMMANDS_WRAPPER_BIN_DIR": binDir,
		},
		GOOS:    goos,
		HomeDir: "/home/u",
	})
	require.NoError(t, err)

	return s
}

func writeExec(t *testing.T, fs afero.Fs, path, content string, mode os.FileMode) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	require.NoError(t, fs.Chmod(path, mode))
}

func TestFind(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, fs.MkdirAll("/opt/tools/dir-entry", 0o755))
	writeExec(t, fs, "/usr/bin/mockcommand", "#!/bin/sh\n", 0o755)
	writeExec(t, fs, "/usr/local/bin/noexec", "data", 0o644)
	writeExec(t, fs, "/home/u/.local/bin/hello", "#!/bin/sh\n", 0o755)

	f := New(fs, newSettings(t, "linux", "/usr/local/bin:/opt/tools:/usr/bin:/home/u/.local/bin", "/home/u/.local/bin"))

	tests := []struct {
		name     string
		command  string
		wantPath string
		wantOK   bool
	}{
		{name: "Command found", command: "mockcommand", wantPath: "/usr/bin/mockcommand", wantOK: true},
		{name: "Command not found", command: "nonexistentcommand"},
		{name: "Not executable", command: "noexec"},
		{name: "Directory is skipped", command: "dir-entry"},
		{name: "Wrapper directory is excluded", command: "hello"},
		{name: "Empty name", command: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path, ok := f.Find(tt.command)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantPath, path)
		})
	}
}

func TestFind_Windows(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeExec(t, fs, filepath.Join(`C:\Tools`, "extract.exe"), "MZ", 0o644)

	f := New(fs, newSettings(t, settings.GOOSWindows, `C:\Tools`, `C:\bin`))

	path, ok := f.Find("extract")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(`C:\Tools`, "extract.exe"), path)

	path, ok = f.Find("extract.exe")
	assert.True(t, ok)
	assert.Equal(t, filepath.Join(`C:\Tools`, "extract.exe"), path)

	_, ok = f.Find("extract.bat")
	assert.False(t, ok)
}

func TestForeign(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeExec(t, fs, "/old/bin/generated", "#!/usr/bin/env sh\n# "+settings.Marker+"\nexec x\n", 0o755)
	writeExec(t, fs, "/usr/bin/extract", "#!/usr/bin/env bash\nexit 0\n", 0o755)
	writeExec(t, fs, "/old/bin/both", "#!/usr/bin/env sh\n# "+settings.Marker+"\n", 0o755)
	writeExec(t, fs, "/usr/bin/both", "#!/bin/sh\n", 0o755)
	writeExec(t, fs, "/home/u/.local/bin/mine", "#!/bin/sh\n", 0o755)

	f := New(fs, newSettings(t, "linux", "/old/bin:/usr/bin:/home/u/.local/bin", "/home/u/.local/bin"))

	assert.True(t, f.Foreign("extract"))
	assert.False(t, f.Foreign("generated"), "generated wrappers elsewhere on PATH are not conflicts")
	assert.True(t, f.Foreign("both"), "a foreign file later on PATH still conflicts")
	assert.False(t, f.Foreign("mine"), "files in the wrapper directory are not on the searched PATH")
	assert.False(t, f.Foreign("missing"))
}

func TestHasMarker(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeExec(t, fs, "/a", "#!/usr/bin/env sh\n# "+settings.Marker+"\n", 0o755)
	writeExec(t, fs, "/b", "#!/usr/bin/env sh\nexit 0\n", 0o755)

	assert.True(t, HasMarker(fs, "/a"))
	assert.False(t, HasMarker(fs, "/b"))
	assert.False(t, HasMarker(fs, "/missing"))
}
