// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"
)

// reservedLines are taken by the title and the help line.
const reservedLines = 4

// Item is one selectable command.
type Item struct {
	Name        string
	Description string
}

// Model is the picker state.
type Model struct {
	items    []Item
	cursor   int
	offset   int
	width    int
	height   int
	chosen   string
	quitting bool

	keys   KeyMap
	help   help.Model
	styles *Styles
}

// Styles contains the styling of the picker.
type Styles struct {
	Title       lipgloss.Style
	Cursor      lipgloss.Style
	Name        lipgloss.Style
	Selected    lipgloss.Style
	Description lipgloss.Style
	Empty       lipgloss.Style
}

// NewStyles creates the default styling.
func NewStyles() *Styles {
	return &Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("12")).
			MarginBottom(1),
		Cursor: lipgloss.NewStyle().
			Foreground(lipgloss.Color("11")).
			Bold(true),
		Name: lipgloss.NewStyle().
			Foreground(lipgloss.Color("7")),
		Selected: lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true),
		Description: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")).
			Italic(true),
		Empty: lipgloss.NewStyle().
			Foreground(lipgloss.Color("8")),
	}
}

// NewModel creates a picker over items, in the given order.
func NewModel(items []Item) *Model {
	return &Model{
		items:  items,
		keys:   DefaultKeyMap(),
		help:   help.New(),
		styles: NewStyles(),
	}
}

// Chosen returns the selected command name, if any.
func (m *Model) Chosen() (string, bool) {
	return m.chosen, m.chosen != ""
}

func (m *Model) pageSize() int {
	if m.height <= reservedLines {
		return max(len(m.items), 1)
	}

	return m.height - reservedLines
}

func (m *Model) move(delta int) {
	if len(m.items) == 0 {
		return
	}

	m.cursor = min(max(m.cursor+delta, 0), len(m.items)-1)

	page := m.pageSize()

	switch {
	case m.cursor < m.offset:
		m.offset = m.cursor
	case m.cursor >= m.offset+page:
		m.offset = m.cursor - page + 1
	}
}
