// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package add

import (
	"bytes"
	"context"
	"testing"

	"github.com/matt-FFFFFF/commands-wrapper/internal/app"
	"github.com/matt-FFFFFF/commands-wrapper/internal/console"
	"github.com/matt-FFFFFF/commands-wrapper/internal/settings"
	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T, fs afero.Fs) (*app.App, *bytes.Buffer) {
	t.Helper()

	s, err := settings.New(settings.Options{
		Environment: map[string]string{"XDG_CONFIG_HOME": "/cfg", "PATH": "/usr/bin", "SHELL": "/bin/sh"},
		GOOS:        "linux",
		HomeDir:     "/home/u",
		WorkDir:     "/work",
	})
	require.NoError(t, err)

	out := &bytes.Buffer{}

	return app.New(fs, s, app.WithConsole(console.New(out, out))), out
}

func stubPrompter(t *testing.T, p Prompter) {
	t.Helper()

	stubs := gostub.Stub(&newPrompter, func() (Prompter, func() error) {
		return p, func() error { return nil }
	})
	t.Cleanup(stubs.Reset)
}

func TestAction_Wizard(t *testing.T) {
	fs := afero.NewMemMapFs()
	a, out := newTestApp(t, fs)
	stubPrompter(t, &scriptedPrompter{answers: []string{"hello", "say hi", "", "echo hi", ""}})

	err := NewCommand().Run(app.NewContext(context.Background(), a), []string{"add"})
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/cfg/commands-wrapper/commands.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello:")
	assert.Contains(t, string(data), "echo hi")
	assert.Contains(t, out.String(), "Added 'hello'")
}

func TestAction_WizardCancelled(t *testing.T) {
	fs := afero.NewMemMapFs()
	a, out := newTestApp(t, fs)
	stubPrompter(t, &scriptedPrompter{answers: []string{""}})

	err := NewCommand().Run(app.NewContext(context.Background(), a), []string{"add"})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "Cancelled.")

	ok, _ := afero.Exists(fs, "/cfg/commands-wrapper/commands.yaml")
	assert.False(t, ok)
}
