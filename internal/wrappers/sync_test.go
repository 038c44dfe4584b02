// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package wrappers

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/commands-wrapper/internal/commandregistry"
	"github.com/matt-FFFFFF/commands-wrapper/internal/commands"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	targetBin = "/target-bin"
	fakeBin   = "/fake-bin"
	toolPath  = "/opt/cw/commands-wrapper"
)

func newSyncer(t *testing.T, fs afero.Fs, goos string) *Syncer {
	t.Helper()

	s, err := settings.New(settings.Options{
		Environment: map[string]string{
			"PATH":                     fakeBin,
			"COMMANDS_WRAPPER_BIN_DIR": targetBin,
		},
		GOOS:     goos,
		HomeDir:  "/home/u",
		ToolPath: toolPath,
	})
	require.NoError(t, err)

	return NewSyncer(fs, s)
}

func read(t *testing.T, fs afero.Fs, name string) string {
	t.Helper()

	b, err := afero.ReadFile(fs, filepath.Join(targetBin, name))
	require.NoError(t, err)

	return string(b)
}

func exists(fs afero.Fs, name string) bool {
	ok, _ := afero.Exists(fs, filepath.Join(targetBin, name))
	return ok
}

func staleWrapper(t *testing.T, fs afero.Fs, name string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, filepath.Join(targetBin, name),
		[]byte("#!/usr/bin/env sh\n# "+settings.Marker+"\nexit 0\n"), 0o755))
}

func TestSync_WritesCaseAliasToEmptyDirectory(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newSyncer(t, fs, "linux")

	report := s.Sync(context.Background(), registryOf("OAA"), DefaultOptions())

	assert.Empty(t, report.Messages)
	assert.True(t, exists(fs, "oaa"))
	assert.True(t, exists(fs, "OAA"))
	assert.True(t, exists(fs, "cw"))
	assert.False(t, exists(fs, settings.PrimaryName))

	info, err := fs.Stat(filepath.Join(targetBin, "oaa"))
	require.NoError(t, err)
	assert.Equal(t, 0o755, int(info.Mode().Perm()))
}

func TestSync_CommandWrapperContent(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newSyncer(t, fs, "linux")

	s.Sync(context.Background(), registryOf("oc", "claw doc"), DefaultOptions())

	oc := read(t, fs, "oc")
	assert.Equal(t, "#!/usr/bin/env sh\n# "+settings.Marker+"\n"+
		"COMMANDS_WRAPPER_WRAPPER_ENTRY=1\n"+
		"COMMANDS_WRAPPER_WRAPPER_NAME=oc\n"+
		"export COMMANDS_WRAPPER_WRAPPER_ENTRY COMMANDS_WRAPPER_WRAPPER_NAME\n"+
		"exec /opt/cw/commands-wrapper oc \"$@\"\n", oc)

	assert.Contains(t, read(t, fs, "claw-doc"), `exec /opt/cw/commands-wrapper 'claw doc' "$@"`)

	ns := read(t, fs, "claw")
	assert.Contains(t, ns, ` claw "$@"`)
	assert.NotContains(t, ns, settings.EnvWrapperEntry)

	assert.Contains(t, read(t, fs, "cw"), `exec /opt/cw/commands-wrapper "$@"`)
}

func TestSync_Idempotent(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newSyncer(t, fs, "linux")
	reg := registryOf("oc")

	first := s.Sync(context.Background(), reg, DefaultOptions())
	assert.ElementsMatch(t, []string{"oc", "cw", "command-wrapper"}, first.Written)

	second := s.Sync(context.Background(), reg, DefaultOptions())
	assert.Empty(t, second.Written)
	assert.Empty(t, second.Removed)

	staleWrapper(t, fs, "oc")

	third := s.Sync(context.Background(), reg, DefaultOptions())
	assert.Equal(t, []string{"oc"}, third.Written, "drift is repaired")
}

func TestSync_NeverOverwritesForeignFile(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newSyncer(t, fs, "linux")

	require.NoError(t, afero.WriteFile(fs, filepath.Join(targetBin, "oc"), []byte("#!/bin/sh\necho mine\n"), 0o755))

	report := s.Sync(context.Background(), registryOf("oc"), DefaultOptions())

	assert.Equal(t, "#!/bin/sh\necho mine\n", read(t, fs, "oc"))
	assert.Equal(t, BlockedForeignFile, report.Blocked["oc"].Reason)
	assert.False(t, report.HasErrors())
	assert.True(t, report.Messages.Contains("skipped wrapper 'oc'"))
}

func TestSync_Prune(t *testing.T) {
	tests := []struct {
		name      string
		prune     bool
		wantStale bool
	}{
		{name: "prunes by default", prune: true, wantStale: false},
		{name: "keeps stale wrappers when disabled", prune: false, wantStale: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			s := newSyncer(t, fs, "linux")

			staleWrapper(t, fs, "stale-wrapper")
			require.NoError(t, afero.WriteFile(fs, filepath.Join(targetBin, "user-script"), []byte("#!/bin/sh\n"), 0o755))

			report := s.Sync(context.Background(), commandregistry.New(), Options{PruneStale: tt.prune})

			assert.False(t, report.HasErrors())
			assert.Equal(t, tt.wantStale, exists(fs, "stale-wrapper"))
			assert.True(t, exists(fs, "user-script"), "files without the marker are never pruned")
		})
	}
}

func TestSync_PathConflict(t *testing.T) {
	for _, report := range []bool{true, false} {
		fs := afero.NewMemMapFs()
		s := newSyncer(t, fs, "linux")

		require.NoError(t, afero.WriteFile(fs, filepath.Join(fakeBin, "extract"), []byte("#!/usr/bin/env bash\nexit 0\n"), 0o755))

		got := s.Sync(context.Background(), registryOf("extract"), Options{PruneStale: true, ReportConflicts: report})

		assert.False(t, exists(fs, "extract"))
		assert.Equal(t, BlockedOnPath, got.Blocked["extract"].Reason)
		assert.True(t, exists(fs, "cw"))

		if !report {
			assert.Empty(t, got.Messages)
			continue
		}

		require.Len(t, got.Messages, 1)
		assert.Contains(t, got.Messages[0].Text, ConflictText)
		assert.Contains(t, got.Messages[0].Text, "'extract'")
		assert.NotContains(t, got.Messages[0].Text, fakeBin)
	}
}

func TestSync_Uninstall(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newSyncer(t, fs, "linux")

	report := s.Sync(context.Background(), registryOf("oc"), Options{Uninstall: true})
	assert.Empty(t, report.Messages)
	assert.False(t, exists(fs, ""), "uninstall never creates the directory")

	s.Sync(context.Background(), registryOf("oc"), DefaultOptions())
	require.NoError(t, afero.WriteFile(fs, filepath.Join(targetBin, "user-script"), []byte("#!/bin/sh\n"), 0o755))

	report = s.Sync(context.Background(), registryOf("oc"), Options{Uninstall: true, PruneStale: false})
	assert.Empty(t, report.Messages)
	assert.ElementsMatch(t, []string{"oc", "cw", "command-wrapper"}, report.Removed)
	assert.True(t, exists(fs, "user-script"))
}

func TestSync_Windows(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newSyncer(t, fs, settings.GOOSWindows)

	report := s.Sync(context.Background(), registryOf("OAA", "claw doc"), DefaultOptions())
	require.Empty(t, report.Messages)

	assert.True(t, exists(fs, "oaa.cmd"))
	assert.True(t, exists(fs, "oaa.ps1"))
	assert.False(t, exists(fs, "OAA.cmd"))

	cmd := read(t, fs, "claw-doc.cmd")
	assert.Contains(t, cmd, settings.Marker)
	assert.Contains(t, cmd, `"`+toolPath+`" "claw doc" %*`)
	assert.Contains(t, cmd, `set "COMMANDS_WRAPPER_WRAPPER_ENTRY=1"`)

	ps1 := read(t, fs, "claw-doc.ps1")
	assert.Contains(t, ps1, settings.Marker)
	assert.Contains(t, ps1, `& '`+toolPath+`' "claw doc" @args`)
}

func TestReconcile(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newSyncer(t, fs, "linux")

	staleWrapper(t, fs, "gone")
	require.NoError(t, afero.WriteFile(fs, filepath.Join(fakeBin, "extract"), []byte("x"), 0o755))

	reg := commandregistry.New()
	reg.Set("extract", commands.Record{Steps: []commands.Step{{Kind: commands.StepCommand, Value: "echo"}}})

	msgs := s.Reconcile(context.Background(), reg, false)
	assert.True(t, msgs.Contains(ConflictText))
	assert.True(t, exists(fs, "gone"))

	s.Reconcile(context.Background(), reg, true)
	assert.False(t, exists(fs, "gone"))
}
