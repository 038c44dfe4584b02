// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build !windows

package stepexec

import (
	"bytes"
	"context"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matt-FFFFFF/commands-wrapper/internal/commands"
	"github.com/matt-FFFFFF/commands-wrapper/internal/outputbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lockedBuffer is written by the output pump while the test reads it.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.buf.String()
}

func ptyExecutor(t *testing.T, in *os.File) (*Executor, *lockedBuffer) {
	t.Helper()

	if !probePTY() {
		t.Skip("no pseudo terminal available")
	}

	out := &lockedBuffer{}

	e := New(testSettings(t),
		WithFactory(newPTYBackend),
		WithStdio(Stdio{In: in, Out: out}),
		WithSignals(make(chan os.Signal)),
	)

	return e, out
}

func TestPTY_ScriptedSession(t *testing.T) {
	e, out := ptyExecutor(t, nil)

	code, err := e.Run(context.Background(), record(
		cmdStep(`printf 'name? '; read name; echo "got:$name"; exit 3`),
		commands.Step{Kind: commands.StepExpect, Value: `name\?`, Timeout: 5 * time.Second},
		commands.Step{Kind: commands.StepSend, Value: "bob"},
	))
	require.NoError(t, err)
	assert.Equal(t, 3, code)
	assert.Equal(t, Completed, e.State())
	assert.Equal(t, 1, strings.Count(out.String(), "got:bob"), "output is pumped once")
	assert.Contains(t, out.String(), "\r\n", "the terminal translates newlines")
}

func TestPTY_NonTerminalStdinWaits(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)

	defer r.Close() //nolint:errcheck
	defer w.Close() //nolint:errcheck

	e, out := ptyExecutor(t, r)

	code, err := e.Run(context.Background(), record(cmdStep("sleep 0.2; echo finished; exit 7")))
	require.NoError(t, err)
	assert.Equal(t, 7, code)
	assert.Contains(t, out.String(), "finished")
}

func TestPTY_ExitCode(t *testing.T) {
	tests := []struct {
		name string
		line string
		want int
	}{
		{name: "success", line: "true", want: 0},
		{name: "failure", line: "exit 5", want: 5},
		{name: "killed by signal", line: "kill -TERM $$", want: 128 + 15},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := ptyExecutor(t, nil)

			code, err := e.Run(context.Background(), record(cmdStep(tt.line)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, code)
		})
	}
}

func TestPTY_Timeout(t *testing.T) {
	e, _ := ptyExecutor(t, nil)

	rec := record(cmdStep("sleep 30"), commands.Step{Kind: commands.StepExpect, Value: "never"})
	rec.Timeout = 300 * time.Millisecond

	start := time.Now()
	_, err := e.Run(context.Background(), rec)

	require.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, Failed, e.State())
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestPTY_ExpectAfterOutputEnds(t *testing.T) {
	e, _ := ptyExecutor(t, nil)

	_, err := e.Run(context.Background(), record(
		cmdStep("echo bye"),
		commands.Step{Kind: commands.StepExpect, Value: "never", Timeout: 5 * time.Second},
	))
	require.ErrorIs(t, err, ErrExpect)
	assert.ErrorIs(t, err, outputbuf.ErrClosed)
	assert.Equal(t, Failed, e.State())
}
