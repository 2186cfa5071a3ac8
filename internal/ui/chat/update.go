// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dclavijo45/chat-ai/internal/history"
	"github.com/dclavijo45/chat-ai/internal/notify"
)

// =============================================================================
// UPDATE LOOP
// =============================================================================

// Update handles all incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.resize()
		m.refreshTranscript()
		return m, nil

	case chunkMsg:
		m.chunk = string(msg)
		m.refreshTranscript()
		return m, waitForChunk(m.chunks)

	case sessionsChangedMsg:
		m.sessions = m.store.Sessions()
		m.selected = m.store.Selected()
		m.refreshTranscript()
		return m, waitForChange(m.changed)

	case noticeMsg:
		m.status = msg.Text
		m.statusLevel = msg.Level
		return m, waitForNotice(m.notices.C())

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey routes keyboard input between global shortcuts, the viewport
// and the text input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Help):
		m.showHelp = !m.showHelp
		return m, nil

	case key.Matches(msg, m.keyMap.NextSession):
		m.selectAdjacent(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PrevSession):
		m.selectAdjacent(-1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp), key.Matches(msg, m.keyMap.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keyMap.Submit):
		return m.handleSubmit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleSubmit sends the input line as a command or a user turn.
func (m Model) handleSubmit() (tea.Model, tea.Cmd) {
	line := m.input.Value()
	if name, args, ok := parseCommand(line); ok {
		m.input.Reset()
		return m.handleCommand(name, args)
	}

	text := strings.TrimSpace(line)
	if text == "" {
		if len(m.staged) > 0 {
			m.notices.Warning("Add a short message to go with the images")
		}
		return m, nil
	}
	if !m.canSend() {
		if !m.store.Connected() {
			m.notices.Warning("Not connected to the server")
		} else {
			m.notices.Warning("Wait for the current response to finish")
		}
		return m, nil
	}

	parts := make([]history.Part, 0, len(m.staged)+1)
	for _, a := range m.staged {
		parts = append(parts, history.ImagePart(a.dataURL))
	}
	parts = append(parts, history.TextPart(text))

	m.store.SendUserTurn(parts)
	m.staged = nil
	m.input.Reset()
	m.forceScroll = true
	return m, m.spinner.Tick
}

// selectAdjacent moves the selection through the session list.
func (m *Model) selectAdjacent(delta int) {
	if len(m.sessions) == 0 {
		return
	}
	idx := 0
	for i := range m.sessions {
		if m.sessions[i].ID == m.selected {
			idx = i + delta
			break
		}
	}
	if idx < 0 {
		idx = len(m.sessions) - 1
	}
	if idx >= len(m.sessions) {
		idx = 0
	}
	m.store.SelectSession(m.sessions[idx].ID)
}

// refreshTranscript re-renders the viewport, keeping the scroll position
// unless the reader was already at the bottom or a send forced it there.
func (m *Model) refreshTranscript() {
	atBottom := m.viewport.AtBottom()
	m.viewport.SetContent(m.renderTranscript())
	if atBottom || m.forceScroll {
		m.viewport.GotoBottom()
		m.forceScroll = false
	}
}

// statusStyleFor maps notice levels to status line renderers.
func statusStyleFor(level notify.Level) func(string) string {
	switch level {
	case notify.LevelSuccess:
		return renderSuccess
	case notify.LevelWarning:
		return renderWarning
	case notify.LevelError:
		return renderError
	default:
		return renderInfo
	}
}
