// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dclavijo45/chat-ai/internal/engine"
	"github.com/dclavijo45/chat-ai/internal/history"
	"github.com/dclavijo45/chat-ai/internal/notify"
	"github.com/dclavijo45/chat-ai/internal/storage"
	"github.com/dclavijo45/chat-ai/internal/store"
	"github.com/dclavijo45/chat-ai/internal/ui/styles"
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Config carries the chat view's collaborators.
type Config struct {
	Theme   *styles.Theme
	Store   *store.Store
	Catalog *engine.Catalog
	Adapter *storage.Adapter
	Notices *notify.Feed
}

// Model is the Bubble Tea model for the chat view. It never mutates chat
// state directly; every edit goes through the store, and the view re-renders
// from snapshots when the store's feeds fire.
type Model struct {
	// Styling
	theme *styles.Theme

	// Collaborators
	store   *store.Store
	catalog *engine.Catalog
	adapter *storage.Adapter
	notices *notify.Feed

	// Dimensions
	width  int
	height int

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Rendered snapshot
	sessions []history.ChatSession
	selected string

	// In-flight response accumulation
	chunk string

	// Images staged for the next user turn
	staged []attachment

	// Status line
	status      string
	statusLevel notify.Level

	// Overlay and scroll state
	showHelp    bool
	forceScroll bool

	// Feed subscriptions
	chunks  <-chan string
	changed <-chan struct{}
}

// New creates a new chat model wired to its collaborators.
func New(cfg Config) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message, or / for commands..."
	ti.CharLimit = 4096
	ti.Focus()

	vp := viewport.New(80, 20)
	vp.SetContent("")

	// ASCII-compatible spinner at the streaming refresh rate
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 30,
	}
	sp.Style = cfg.Theme.Spinner

	return Model{
		theme:    cfg.Theme,
		store:    cfg.Store,
		catalog:  cfg.Catalog,
		adapter:  cfg.Adapter,
		notices:  cfg.Notices,
		viewport: vp,
		input:    ti,
		spinner:  sp,
		keyMap:   DefaultKeyMap(),
		sessions: cfg.Store.Sessions(),
		selected: cfg.Store.Selected(),
		chunks:   cfg.Store.Chunks(),
		changed:  cfg.Store.Changed(),
	}
}

// =============================================================================
// EXTERNAL EVENT MESSAGES
// =============================================================================

// chunkMsg carries the accumulated in-flight response so far.
type chunkMsg string

// sessionsChangedMsg signals that the session list changed.
type sessionsChangedMsg struct{}

// noticeMsg carries a user-facing notification for the status line.
type noticeMsg notify.Notice

// waitForChunk relays the store's fragment feed into the update loop.
func waitForChunk(ch <-chan string) tea.Cmd {
	return func() tea.Msg {
		v, ok := <-ch
		if !ok {
			return nil
		}
		return chunkMsg(v)
	}
}

// waitForChange relays session-list change notifications.
func waitForChange(ch <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-ch; !ok {
			return nil
		}
		return sessionsChangedMsg{}
	}
}

// waitForNotice relays notifications for the status line.
func waitForNotice(ch <-chan notify.Notice) tea.Cmd {
	return func() tea.Msg {
		n, ok := <-ch
		if !ok {
			return nil
		}
		return noticeMsg(n)
	}
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the feed relays and cursor blink.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		m.spinner.Tick,
		waitForChunk(m.chunks),
		waitForChange(m.changed),
		waitForNotice(m.notices.C()),
	)
}

// canSend reports whether a user turn can be submitted right now.
func (m Model) canSend() bool {
	return m.store.Connected() && !m.store.Streaming()
}

// selectedSession returns the rendered snapshot of the selected session.
func (m Model) selectedSession() *history.ChatSession {
	for i := range m.sessions {
		if m.sessions[i].ID == m.selected {
			return &m.sessions[i]
		}
	}
	return nil
}
