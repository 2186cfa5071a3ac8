// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dclavijo45/chat-ai/internal/engine"
	"github.com/dclavijo45/chat-ai/internal/history"
	"github.com/dclavijo45/chat-ai/internal/store"
	"github.com/dclavijo45/chat-ai/internal/ui/styles"
)

// sessionPaneWidth is the fixed width of the chat list column.
const sessionPaneWidth = 26

// previewLen bounds session previews in the list.
const previewLen = 20

var (
	renderInfo    = styles.RenderInfo
	renderSuccess = styles.RenderSuccess
	renderWarning = styles.RenderWarning
	renderError   = styles.RenderError
)

// =============================================================================
// LAYOUT
// =============================================================================

// resize recomputes component dimensions after a terminal resize.
func (m *Model) resize() {
	transcriptWidth := m.width - sessionPaneWidth - 4
	if transcriptWidth < 20 {
		transcriptWidth = 20
	}
	transcriptHeight := m.height - 6
	if transcriptHeight < 5 {
		transcriptHeight = 5
	}
	m.viewport.Width = transcriptWidth
	m.viewport.Height = transcriptHeight
	m.input.Width = m.width - 6
}

// View renders the full chat screen.
func (m Model) View() string {
	if m.width == 0 {
		return "Starting..."
	}
	if m.showHelp {
		return m.renderHelp()
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.renderSessionPane(),
		m.viewport.View(),
	)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		body,
		m.renderInputArea(),
		m.renderStatusBar(),
	)
}

// =============================================================================
// SECTIONS
// =============================================================================

func (m Model) renderHeader() string {
	brand := m.theme.HeaderBrand.Render("chat-ai")
	badge := m.theme.EngineBadge.Render(engineLabel(m.store.CurrentEngine()))

	var conn string
	if m.store.Connected() {
		conn = m.theme.Connected.Render(styles.StatusIndicators.Active + " online")
	} else {
		conn = m.theme.Disconnected.Render(styles.StatusIndicators.Error + " offline")
	}

	left := brand + "  " + badge
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(conn) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.Header.Width(m.width).Render(left + strings.Repeat(" ", gap) + conn)
}

func (m Model) renderSessionPane() string {
	if len(m.sessions) == 0 {
		empty := m.theme.SessionMeta.Render("No chats yet.\nType to start one.")
		return m.theme.SessionList.Width(sessionPaneWidth).Height(m.viewport.Height).Render(empty)
	}

	var b strings.Builder
	for i := range m.sessions {
		sess := &m.sessions[i]
		label := fmt.Sprintf("%d. %s", i+1, sess.Preview(previewLen))
		if sess.ID == m.selected {
			b.WriteString(m.theme.SessionItemSelected.Render(label))
		} else {
			b.WriteString(m.theme.SessionItem.Render(label))
		}
		b.WriteString("\n")
		b.WriteString(m.theme.SessionMeta.Render("   " + engineLabel(sess.Engine)))
		if i < len(m.sessions)-1 {
			b.WriteString("\n")
		}
	}
	return m.theme.SessionList.Width(sessionPaneWidth).Height(m.viewport.Height).Render(b.String())
}

// renderTranscript builds the viewport content for the selected session.
func (m Model) renderTranscript() string {
	sess := m.selectedSession()
	if sess == nil || len(sess.History) == 0 {
		return m.theme.SessionMeta.Render("\n  Say hello to get started.")
	}

	bubbleWidth := m.viewport.Width - 8
	if bubbleWidth < 16 {
		bubbleWidth = 16
	}

	var b strings.Builder
	for i := range sess.History {
		turn := &sess.History[i]
		b.WriteString(m.renderTurn(turn, i == len(sess.History)-1, bubbleWidth))
		b.WriteString("\n")
	}
	return b.String()
}

// renderTurn renders one turn as a bubble. The trailing model turn shows the
// in-flight accumulation while a response is streaming.
func (m Model) renderTurn(turn *history.Turn, last bool, width int) string {
	if turn.Role == history.RoleUser {
		text := turn.Text()
		if n := len(turn.Images()); n > 0 {
			text = fmt.Sprintf("[%d image(s)] %s", n, text)
		}
		return m.theme.UserBubble.MaxWidth(width).Render(text)
	}

	text := turn.Text()
	if last && m.store.Streaming() {
		if m.chunk != "" {
			text = m.chunk
		}
		if text == "" || text == store.WaitingIndicator {
			return m.theme.ModelBubble.MaxWidth(width).Render(
				m.spinner.View() + " " + m.theme.ThinkingText.Render("thinking..."))
		}
	}
	return m.theme.ModelBubble.MaxWidth(width).Render(text)
}

func (m Model) renderInputArea() string {
	var tags string
	if len(m.staged) > 0 {
		names := make([]string, len(m.staged))
		for i, a := range m.staged {
			names[i] = a.name
		}
		tags = m.theme.AttachmentTag.Render(strings.Join(names, " ")) + " "
	}
	return m.theme.InputContainer.Width(m.width - 2).Render(tags + m.input.View())
}

func (m Model) renderStatusBar() string {
	status := m.status
	if status != "" {
		status = statusStyleFor(m.statusLevel)(status)
	}

	shortcuts := m.theme.ShortcutKey.Render("C-n/C-p") + m.theme.ShortcutDesc.Render(" chats ") +
		m.theme.ShortcutKey.Render("/help") + m.theme.ShortcutDesc.Render(" commands ") +
		m.theme.ShortcutKey.Render("C-c") + m.theme.ShortcutDesc.Render(" quit")

	gap := m.width - lipgloss.Width(status) - lipgloss.Width(shortcuts) - 2
	if gap < 1 {
		gap = 1
	}
	return m.theme.StatusBar.Width(m.width).Render(status + strings.Repeat(" ", gap) + shortcuts)
}

func (m Model) renderHelp() string {
	lines := []string{
		m.theme.HeaderBrand.Render("Commands"),
		"",
		"  /new              start a new chat",
		"  /remove           delete the selected chat",
		"  /engine [name]    list or switch engines",
		"  /attach <files>   attach images (max 10, 1 MB each)",
		"  /detach           drop staged images",
		"  /persist          toggle storing chats on disk",
		"  /clear            wipe stored chats",
		"  /quit             exit",
		"",
		m.theme.HeaderBrand.Render("Keys"),
		"",
		"  Enter             send",
		"  C-n / C-p         next / previous chat",
		"  PgUp / PgDn       scroll the transcript",
		"  C-g               toggle this help",
		"  C-c               quit",
		"",
		m.theme.SessionMeta.Render("Press C-g to close."),
	}
	return m.theme.Container.Render(strings.Join(lines, "\n"))
}

// engineLabel returns the display name for an engine.
func engineLabel(e engine.Engine) string {
	if info, ok := engine.GetInfo(e); ok {
		return info.Name
	}
	return e.String()
}
