// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history contains the data structures for chat sessions and turns.
package history

import (
	"errors"

	"github.com/google/uuid"

	"github.com/dclavijo45/chat-ai/internal/engine"
)

// =============================================================================
// PART TYPE
// =============================================================================

// PartKind discriminates the content of a Part.
type PartKind string

const (
	PartText  PartKind = "text"
	PartImage PartKind = "image"
)

// Part is one content fragment within a Turn: either plain text or a
// base64-encoded image.
type Part struct {
	Kind  PartKind `json:"type"`
	Value string   `json:"text"`
}

// TextPart creates a text part.
func TextPart(value string) Part {
	return Part{Kind: PartText, Value: value}
}

// ImagePart creates an image part holding base64-encoded bytes.
func ImagePart(value string) Part {
	return Part{Kind: PartImage, Value: value}
}

// =============================================================================
// TURN TYPE
// =============================================================================

// Role identifies the author of a turn. The assistant role is named "model"
// on the wire.
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one message exchange unit within a session. Turns are append-only
// except for the last model turn, whose text is replaced when a stream ends.
type Turn struct {
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// NewUserTurn creates a user turn from the given parts.
func NewUserTurn(parts []Part) Turn {
	return Turn{Role: RoleUser, Parts: parts}
}

// NewModelTurn creates the placeholder model turn appended while a response
// is pending: a single empty text part.
func NewModelTurn() Turn {
	return Turn{
		Role:  RoleModel,
		Parts: []Part{TextPart("")},
	}
}

// Text returns the trailing text part of the turn, or "" if there is none.
func (t Turn) Text() string {
	if len(t.Parts) == 0 {
		return ""
	}
	last := t.Parts[len(t.Parts)-1]
	if last.Kind != PartText {
		return ""
	}
	return last.Value
}

// SetText replaces the value of the trailing text part.
func (t *Turn) SetText(value string) {
	if len(t.Parts) == 0 || t.Parts[len(t.Parts)-1].Kind != PartText {
		return
	}
	t.Parts[len(t.Parts)-1].Value = value
}

// Images returns the image parts of the turn.
func (t Turn) Images() []Part {
	var images []Part
	for _, p := range t.Parts {
		if p.Kind == PartImage {
			images = append(images, p)
		}
	}
	return images
}

// clone returns a deep copy of the turn.
func (t Turn) clone() Turn {
	parts := make([]Part, len(t.Parts))
	copy(parts, t.Parts)
	return Turn{Role: t.Role, Parts: parts}
}

// =============================================================================
// PART VALIDATION
// =============================================================================

var (
	// ErrNoParts is returned for an empty part list.
	ErrNoParts = errors.New("turn has no parts")

	// ErrNoTextPart is returned when the part list lacks a text part.
	ErrNoTextPart = errors.New("turn has no text part")

	// ErrTextNotTrailing is returned when a text part is not the last part or
	// more than one text part is present.
	ErrTextNotTrailing = errors.New("turn must end with exactly one text part")
)

// ValidateParts checks the shape required for a user turn: zero or more image
// parts followed by exactly one text part.
func ValidateParts(parts []Part) error {
	if len(parts) == 0 {
		return ErrNoParts
	}

	textCount := 0
	for i, p := range parts {
		if p.Kind != PartText {
			continue
		}
		textCount++
		if i != len(parts)-1 {
			return ErrTextNotTrailing
		}
	}

	switch {
	case textCount == 0:
		return ErrNoTextPart
	case textCount > 1:
		return ErrTextNotTrailing
	}
	return nil
}

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession holds one conversation: its identity, ordered turns, and the
// engine it is bound to. The engine is locked once the history is non-empty.
type ChatSession struct {
	ID      string        `json:"id"`
	History []Turn        `json:"history"`
	Engine  engine.Engine `json:"aiEngine"`
}

// NewSession creates an empty session with a fresh UUID.
func NewSession(e engine.Engine) ChatSession {
	return ChatSession{
		ID:      uuid.NewString(),
		History: []Turn{},
		Engine:  e,
	}
}

// IsEmpty returns true when the session has no turns yet.
func (s *ChatSession) IsEmpty() bool {
	return len(s.History) == 0
}

// LastTurn returns a pointer to the most recent turn, or nil when empty.
func (s *ChatSession) LastTurn() *Turn {
	if len(s.History) == 0 {
		return nil
	}
	return &s.History[len(s.History)-1]
}

// AppendTurns adds turns to the session history.
func (s *ChatSession) AppendTurns(turns ...Turn) {
	s.History = append(s.History, turns...)
}

// Clone returns a deep copy of the session.
func (s ChatSession) Clone() ChatSession {
	turns := make([]Turn, len(s.History))
	for i, t := range s.History {
		turns[i] = t.clone()
	}
	return ChatSession{ID: s.ID, History: turns, Engine: s.Engine}
}

// Equal reports structural equality on id, engine, and history.
func (s ChatSession) Equal(other ChatSession) bool {
	if s.ID != other.ID || s.Engine != other.Engine || len(s.History) != len(other.History) {
		return false
	}
	for i, turn := range s.History {
		o := other.History[i]
		if turn.Role != o.Role || len(turn.Parts) != len(o.Parts) {
			return false
		}
		for j, p := range turn.Parts {
			if p != o.Parts[j] {
				return false
			}
		}
	}
	return true
}

// Preview returns a truncated preview of the first user text, for listing.
// Uses rune-based truncation to handle Unicode correctly.
func (s ChatSession) Preview(maxLen int) string {
	for _, turn := range s.History {
		if turn.Role != RoleUser {
			continue
		}
		text := turn.Text()
		if text == "" {
			continue
		}
		runes := []rune(text)
		if len(runes) <= maxLen {
			return text
		}
		if maxLen <= 3 {
			return string(runes[:maxLen])
		}
		return string(runes[:maxLen-3]) + "..."
	}
	return "New chat"
}

// CloneAll deep-copies a session list.
func CloneAll(sessions []ChatSession) []ChatSession {
	out := make([]ChatSession, len(sessions))
	for i, s := range sessions {
		out[i] = s.Clone()
	}
	return out
}
