// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package ctxlog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrettyHandler_Enabled(t *testing.T) {
	h := NewPrettyHandler(&slog.HandlerOptions{Level: slog.LevelInfo})

	assert.False(t, h.Enabled(context.Background(), slog.LevelDebug))
	assert.True(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_Handle(t *testing.T) {
	tests := []struct {
		name     string
		opts     []Option
		attrs    []slog.Attr
		contains []string
		excludes []string
	}{
		{
			name:     "message and attributes",
			attrs:    []slog.Attr{slog.String("file", "commands.yaml")},
			contains: []string{"WARN:", "something happened", `"file": "commands.yaml"`},
		},
		{
			name:     "no attributes prints no braces",
			contains: []string{"something happened"},
			excludes: []string{"{"},
		},
		{
			name:     "prefix",
			opts:     []Option{WithPrefix("commands-wrapper")},
			contains: []string{"commands-wrapper [03:04:05.000] WARN:"},
		},
		{
			name:     "forced colour",
			opts:     []Option{WithColour()},
			contains: []string{"\033[37m[03:04:05.000]\033[0m", "\033[33mWARN:\033[0m"},
		},
		{
			name:     "empty attributes requested",
			opts:     []Option{WithOutputEmptyAttrs()},
			contains: []string{"{}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer

			h := NewPrettyHandler(nil, append([]Option{WithDestinationWriter(&buf)}, tt.opts...)...)
			r := slog.NewRecord(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), slog.LevelWarn, "something happened", 0)
			r.AddAttrs(tt.attrs...)

			require.NoError(t, h.Handle(context.Background(), r))

			out := buf.String()
			assert.Contains(t, out, "[03:04:05.000]")

			for _, s := range tt.contains {
				assert.Contains(t, out, s)
			}

			for _, s := range tt.excludes {
				assert.NotContains(t, out, s)
			}
		})
	}
}

func TestPrettyHandler_WithAttrsAndGroup(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewPrettyHandler(nil, WithDestinationWriter(&buf))).
		With("name", "oc").
		WithGroup("sync")

	logger.Info("wrote wrapper", "path", "/bin/oc")

	out := buf.String()
	assert.Contains(t, out, `"name": "oc"`)
	assert.Contains(t, out, `"sync": { "path": "/bin/oc" }`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestPrettyHandler_WriteError(t *testing.T) {
	h := NewPrettyHandler(nil, WithDestinationWriter(failingWriter{}))
	r := slog.NewRecord(time.Now(), slog.LevelError, "boom", 0)

	err := h.Handle(context.Background(), r)
	assert.ErrorIs(t, err, ErrIoWrite)
}

func TestPrettyHandler_RawTerminalLineEndings(t *testing.T) {
	var buf bytes.Buffer

	logger := slog.New(NewPrettyHandler(nil, WithDestinationWriter(&buf)))

	SetRawTerminal(true)
	logger.Info("inside session")
	SetRawTerminal(false)
	logger.Info("after session")

	assert.Contains(t, buf.String(), "inside session\r\n")
	assert.Contains(t, buf.String(), "after session\n")
	assert.NotContains(t, buf.String(), "after session\r\n")
}
