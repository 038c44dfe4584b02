// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/matt-FFFFFF/commands-wrapper/internal/cwdrelay"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/matt-FFFFFF/commands-wrapper/internal/stepexec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const executeCommands = `
claw upd:
  description: update claw
  steps:
    - command: claw update
claw doc:
  steps:
    - command: claw doctor
oc:
  steps:
    - command: echo oc
proj:
  steps:
    - command: cd /tmp
dev:
  steps:
    - command: make dev
cc:
  steps:
    - command: echo mine
`

var wrapperEntryEnv = map[string]string{settings.EnvWrapperEntry: "1"}

func TestExecute_MultiWordCaseInsensitive(t *testing.T) {
	f := newFixture(t, nil, executeCommands)

	code := f.app.Execute(context.Background(), []string{"CLAW", "UPD"})

	assert.Equal(t, 0, code)
	require.Len(t, f.runs, 1)
	assert.Equal(t, "claw upd", f.runs[0].rec.Name)
	assert.Equal(t, "/work", f.runs[0].dir)
}

func TestExecute_NotFound(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{name: "unknown command", tokens: []string{"nope"}, want: "'nope' not found"},
		{name: "extra tokens after a normal command", tokens: []string{"oc", "dev"}, want: "'oc dev' not found"},
		{name: "unknown follow-up", tokens: []string{"proj", "nope"}, want: "'proj nope' not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, executeCommands)

			code := f.app.Execute(context.Background(), tt.tokens)

			assert.Equal(t, 1, code)
			assert.Contains(t, f.errOut.String(), tt.want)
			assert.Empty(t, f.runs)
		})
	}
}

func TestExecute_FollowUpAfterCd(t *testing.T) {
	for _, tokens := range [][]string{{"proj", "dev"}, {"proj", "--", "dev"}} {
		t.Run(tokens[1], func(t *testing.T) {
			f := newFixture(t, nil, executeCommands)

			code := f.app.Execute(context.Background(), tokens)

			assert.Equal(t, 0, code)
			assert.Equal(t, []string{"/tmp"}, f.chdirs)
			require.Len(t, f.runs, 1)
			assert.Equal(t, "dev", f.runs[0].rec.Name)
			assert.Equal(t, "/tmp", f.runs[0].dir)
		})
	}
}

func TestExecute_PlainCdOpensShell(t *testing.T) {
	f := newFixture(t, nil, executeCommands)

	code := f.app.Execute(context.Background(), []string{"proj"})

	assert.Equal(t, 0, code)
	assert.Empty(t, f.chdirs)
	require.Len(t, f.runs, 1)
	assert.Equal(t, "exec /bin/sh", f.runs[0].rec.CommandLine())
	assert.Equal(t, "/tmp", f.runs[0].dir)
	assert.Contains(t, f.out.String(), "Opening a shell in /tmp")
	assert.Contains(t, f.out.String(), `eval "$(commands-wrapper hook)"`)
}

func TestExecute_WrapperEntryRemembersDir(t *testing.T) {
	f := newFixture(t, wrapperEntryEnv, executeCommands)

	code := f.app.Execute(context.Background(), []string{"proj"})

	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"/tmp"}, f.chdirs)
	assert.Empty(t, f.runs)

	dir, ok, err := cwdrelay.New(f.fs, f.app.Settings()).Consume(testPPID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "/tmp", dir)
}

func TestExecute_WrapperEntryAppliesRelayedDir(t *testing.T) {
	f := newFixture(t, wrapperEntryEnv, executeCommands)
	require.NoError(t, cwdrelay.New(f.fs, f.app.Settings()).Remember(testPPID, "/srv"))

	code := f.app.Execute(context.Background(), []string{"dev"})

	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"/srv"}, f.chdirs)
	require.Len(t, f.runs, 1)
	assert.Equal(t, "/srv", f.runs[0].dir)

	_, ok, err := cwdrelay.New(f.fs, f.app.Settings()).Consume(testPPID)
	require.NoError(t, err)
	assert.False(t, ok, "the relayed directory is used once")
}

func TestExecute_WrapperNameConfirmsEntry(t *testing.T) {
	env := map[string]string{settings.EnvWrapperEntry: "1", settings.EnvWrapperName: "PROJ"}
	f := newFixture(t, env, executeCommands)

	assert.Equal(t, 0, f.app.Execute(context.Background(), []string{"proj"}))
	assert.Equal(t, []string{"/tmp"}, f.chdirs)
	assert.Empty(t, f.runs)

	_, ok, err := cwdrelay.New(f.fs, f.app.Settings()).Consume(testPPID)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExecute_InheritedWrapperEntryIgnored(t *testing.T) {
	env := map[string]string{settings.EnvWrapperEntry: "1", settings.EnvWrapperName: "dev"}

	t.Run("cd opens a shell", func(t *testing.T) {
		f := newFixture(t, env, executeCommands)

		assert.Equal(t, 0, f.app.Execute(context.Background(), []string{"proj"}))
		assert.Empty(t, f.chdirs)
		require.Len(t, f.runs, 1)
		assert.Equal(t, "exec /bin/sh", f.runs[0].rec.CommandLine())

		_, ok, err := cwdrelay.New(f.fs, f.app.Settings()).Consume(testPPID)
		require.NoError(t, err)
		assert.False(t, ok, "nothing is remembered")
	})

	t.Run("relayed dir is left alone", func(t *testing.T) {
		f := newFixture(t, env, executeCommands)
		require.NoError(t, cwdrelay.New(f.fs, f.app.Settings()).Remember(testPPID, "/srv"))

		f.app.Execute(context.Background(), []string{"oc"})

		assert.Empty(t, f.chdirs)

		_, ok, err := cwdrelay.New(f.fs, f.app.Settings()).Consume(testPPID)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestExecute_RelayIgnoredForPlainInvocation(t *testing.T) {
	f := newFixture(t, nil, executeCommands)
	require.NoError(t, cwdrelay.New(f.fs, f.app.Settings()).Remember(testPPID, "/srv"))

	f.app.Execute(context.Background(), []string{"dev"})

	assert.Empty(t, f.chdirs)
	require.Len(t, f.runs, 1)
	assert.Equal(t, "/work", f.runs[0].dir)
}

func TestExecute_ExitStatus(t *testing.T) {
	t.Run("exit code is propagated", func(t *testing.T) {
		f := newFixture(t, nil, executeCommands)
		f.exitCode = 3

		assert.Equal(t, 3, f.app.Execute(context.Background(), []string{"dev"}))
	})

	t.Run("runner failure", func(t *testing.T) {
		f := newFixture(t, nil, executeCommands)
		f.runErr = errBoom

		assert.Equal(t, 1, f.app.Execute(context.Background(), []string{"dev"}))
		assert.Contains(t, f.errOut.String(), "boom")
	})

	t.Run("signal keeps the exit code", func(t *testing.T) {
		f := newFixture(t, nil, executeCommands)
		f.exitCode = 130
		f.runErr = stepexec.ErrSignalReceived

		assert.Equal(t, 130, f.app.Execute(context.Background(), []string{"dev"}))
		assert.Empty(t, f.errOut.String())
	})
}

func TestExecute_ConflictWarningsOnlyForExecutedCommand(t *testing.T) {
	f := newFixture(t, nil, executeCommands)
	f.write(t, filepath.Join(pathDir, "cc"), "#!/bin/sh\n", 0o755)
	f.write(t, filepath.Join(pathDir, "claw"), "#!/bin/sh\n", 0o755)
	f.write(t, filepath.Join(pathDir, "oc"), "#!/bin/sh\n", 0o755)

	f.app.Execute(context.Background(), []string{"claw", "doc"})
	assert.NotContains(t, f.errOut.String(), "skipped", "namespace launcher conflicts stay quiet")
	assert.True(t, f.exists(filepath.Join(binDir, "claw-doc")))

	f.app.Execute(context.Background(), []string{"cc"})
	assert.Contains(t, f.errOut.String(), "skipped wrapper 'cc' for 'cc'")
	assert.NotContains(t, f.errOut.String(), "'oc'")
	assert.False(t, f.exists(filepath.Join(binDir, "cc")))
}

func TestExecute_FoldCollision(t *testing.T) {
	f := newFixture(t, nil, `
Deploy:
  steps:
    - command: make deploy
deploy:
  steps:
    - command: make deploy
`)

	code := f.app.Execute(context.Background(), []string{"deploy"})

	assert.Equal(t, 1, code)
	assert.Contains(t, f.errOut.String(), "collide case-insensitively")
	assert.Empty(t, f.runs)
}

func TestCdTarget(t *testing.T) {
	tests := []struct {
		name   string
		tokens []string
		want   string
	}{
		{name: "cd command", tokens: []string{"PROJ"}, want: "/tmp\n"},
		{name: "normal command", tokens: []string{"dev"}},
		{name: "cd with follow-up", tokens: []string{"proj", "dev"}},
		{name: "unknown", tokens: []string{"nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, executeCommands)

			f.app.CdTarget(context.Background(), tt.tokens)

			assert.Equal(t, tt.want, f.out.String())
			assert.Empty(t, f.runs)
			assert.False(t, f.exists(binDir), "no wrapper sync")
		})
	}
}

func TestPick(t *testing.T) {
	t.Run("off a terminal the list is printed", func(t *testing.T) {
		f := newFixture(t, nil, executeCommands)

		assert.Equal(t, 0, f.app.Pick(context.Background()))
		assert.Contains(t, f.out.String(), "update claw")
		assert.Nil(t, f.pickItems)
	})

	t.Run("chosen command runs", func(t *testing.T) {
		f := newFixture(t, nil, executeCommands)
		f.interactive = true
		f.pickName, f.pickOK = "dev", true

		assert.Equal(t, 0, f.app.Pick(context.Background()))
		require.Len(t, f.runs, 1)
		assert.Equal(t, "dev", f.runs[0].rec.Name)
		require.NotEmpty(t, f.pickItems)
		assert.Equal(t, "cc", f.pickItems[0].Name)
	})

	t.Run("cancel", func(t *testing.T) {
		f := newFixture(t, nil, executeCommands)
		f.interactive = true

		assert.Equal(t, 0, f.app.Pick(context.Background()))
		assert.Empty(t, f.runs)
	})
}
