// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"context"
	"errors"
	"io"

	tea "github.com/charmbracelet/bubbletea"
)

// ErrPicker is returned when the picker cannot run.
var ErrPicker = errors.New("failed to run command picker")

// Option configures the picker program.
type Option = tea.ProgramOption

// WithIO sets the terminal streams of the picker.
func WithIO(in io.Reader, out io.Writer) []Option {
	return []Option{tea.WithInput(in), tea.WithOutput(out)}
}

// Pick shows items and returns the chosen name. It returns false when the
// user quits without choosing.
func Pick(ctx context.Context, items []Item, opts ...Option) (string, bool, error) {
	model := NewModel(items)

	opts = append([]Option{tea.WithContext(ctx), tea.WithAltScreen()}, opts...)

	final, err := tea.NewProgram(model, opts...).Run()
	if err != nil {
		return "", false, errors.Join(ErrPicker, err)
	}

	m, ok := final.(*Model)
	if !ok {
		return "", false, ErrPicker
	}

	name, chosen := m.Chosen()

	return name, chosen, nil
}
