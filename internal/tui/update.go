// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Init implements bubbletea.Model.Init.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements bubbletea.Model.Update.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.move(0)

		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	return m, nil
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Choose):
		if len(m.items) > 0 {
			m.chosen = m.items[m.cursor].Name
		}

		m.quitting = true

		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.move(-1)
	case key.Matches(msg, m.keys.Down):
		m.move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.move(-m.pageSize())
	case key.Matches(msg, m.keys.PageDown):
		m.move(m.pageSize())
	}

	return m, nil
}

// View implements bubbletea.Model.View.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	var view strings.Builder

	view.WriteString(m.styles.Title.Render("commands-wrapper"))
	view.WriteString("\n")

	if len(m.items) == 0 {
		view.WriteString(m.styles.Empty.Render("No commands defined."))
		view.WriteString("\n")
	}

	end := min(m.offset+m.pageSize(), len(m.items))

	for i := m.offset; i < end; i++ {
		item := m.items[i]

		cursor, name := "  ", m.styles.Name.Render(item.Name)
		if i == m.cursor {
			cursor = m.styles.Cursor.Render("> ")
			name = m.styles.Selected.Render(item.Name)
		}

		line := cursor + name
		if item.Description != "" {
			line += "  " + m.styles.Description.Render(item.Description)
		}

		view.WriteString(line)
		view.WriteString("\n")
	}

	if len(m.items) > end-m.offset && len(m.items) > 0 {
		view.WriteString(m.styles.Description.Render(fmt.Sprintf("%d/%d", m.cursor+1, len(m.items))))
		view.WriteString("\n")
	}

	view.WriteString(m.help.View(m.keys))

	return view.String()
}
