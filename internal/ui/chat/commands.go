// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
//
// This file implements the slash commands typed into the input line.
package chat

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dclavijo45/chat-ai/internal/engine"
)

// =============================================================================
// COMMAND PARSING
// =============================================================================

// parseCommand splits a slash command line into its name and arguments.
// Returns ok=false for lines that are not commands.
func parseCommand(line string) (name string, args []string, ok bool) {
	line = strings.TrimSpace(line)
	if !strings.HasPrefix(line, "/") {
		return "", nil, false
	}
	fields := strings.Fields(line[1:])
	if len(fields) == 0 {
		return "", nil, false
	}
	return strings.ToLower(fields[0]), fields[1:], true
}

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

// handleCommand executes a parsed slash command against the store and the
// staged attachment set.
func (m Model) handleCommand(name string, args []string) (Model, tea.Cmd) {
	switch name {
	case "new":
		m.store.AddSession()

	case "remove":
		if m.selected == "" {
			m.notices.Warning("No chat is selected")
			break
		}
		m.store.RemoveSession(m.selected)

	case "engine":
		return m.handleEngineCommand(args)

	case "attach":
		return m.handleAttachCommand(args)

	case "detach":
		if len(m.staged) == 0 {
			m.notices.Info("No images attached")
			break
		}
		m.staged = nil
		m.notices.Info("Attachments cleared")

	case "persist":
		allowed, err := m.adapter.TogglePermission()
		if err != nil {
			m.notices.Error("Couldn't update the storage permission")
			break
		}
		if allowed {
			m.notices.Success("Chats will be stored on this machine")
		} else {
			m.notices.Info("Chats will no longer be stored")
		}

	case "clear":
		if m.store.Streaming() {
			m.notices.Warning("Wait for the current response before clearing storage")
			break
		}
		if err := m.adapter.Clear(); err != nil {
			m.notices.Error("Couldn't clear stored chats")
			break
		}
		m.notices.Success("Stored chats cleared")

	case "help":
		m.showHelp = !m.showHelp

	case "quit":
		return m, tea.Quit

	default:
		m.notices.Warning(fmt.Sprintf("Unknown command /%s", name))
	}
	return m, nil
}

// handleEngineCommand switches the active engine, honoring staged images.
func (m Model) handleEngineCommand(args []string) (Model, tea.Cmd) {
	if len(args) == 0 {
		names := make([]string, 0, len(engine.All()))
		for _, e := range engine.All() {
			names = append(names, e.String())
		}
		m.notices.Info("Engines: " + strings.Join(names, ", "))
		return m, nil
	}

	target, ok := engine.Parse(args[0])
	if !ok {
		m.notices.Warning(fmt.Sprintf("Unknown engine %q", args[0]))
		return m, nil
	}
	if len(m.staged) > 0 && !m.catalog.SupportsImages(target) {
		m.notices.Warning(fmt.Sprintf("%s doesn't accept images; detach them first", target))
		return m, nil
	}
	m.store.SetEngine(target)
	return m, nil
}

// handleAttachCommand stages image files for the next user turn.
func (m Model) handleAttachCommand(args []string) (Model, tea.Cmd) {
	if len(args) == 0 {
		m.notices.Info("Usage: /attach <file> [file...]")
		return m, nil
	}
	if !m.catalog.SupportsImages(m.store.CurrentEngine()) {
		m.notices.Warning(fmt.Sprintf("%s doesn't accept images", m.store.CurrentEngine()))
		return m, nil
	}

	accepted := collectAttachments(args, m.staged, m.notices)
	if len(accepted) > 0 {
		m.staged = append(m.staged, accepted...)
		m.notices.Success(fmt.Sprintf("%d image(s) attached", len(accepted)))
	}
	return m, nil
}
