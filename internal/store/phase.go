// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store is the single source of truth for chat sessions and streaming.
package store

import (
	"errors"
	"strings"
)

// =============================================================================
// STREAM PHASE
// =============================================================================

// Phase names the states of the response stream. The "is streaming" boolean
// of older builds is derived, never stored.
type Phase int

const (
	// PhaseIdle means no request is in flight.
	PhaseIdle Phase = iota
	// PhaseSending means a user turn was transmitted and no fragment has
	// arrived yet.
	PhaseSending
	// PhaseStreaming means response fragments are arriving.
	PhaseStreaming
	// PhaseError means the last send failed; cleared by reset.
	PhaseError
)

// String returns a human-readable phase name.
func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSending:
		return "sending"
	case PhaseStreaming:
		return "streaming"
	case PhaseError:
		return "error"
	default:
		return "unknown"
	}
}

// Busy reports whether a stream is in progress. Operations forbidden "while
// streaming" check this.
func (p Phase) Busy() bool {
	return p == PhaseSending || p == PhaseStreaming
}

// =============================================================================
// STREAM FSM
// =============================================================================

var (
	// errStreamActive is returned when a new stream is begun while one runs.
	errStreamActive = errors.New("stream already in progress")

	// errNoStream is returned for fragments or finishes with no active stream.
	errNoStream = errors.New("no stream in progress")
)

// streamFSM tracks one in-flight response: its phase, the conversation it
// belongs to, and the monotonically growing fragment accumulator. Not
// persisted; reset to idle on terminal events.
type streamFSM struct {
	phase          Phase
	conversationID string
	chunk          strings.Builder
}

// begin transitions Idle or Error -> Sending for the given conversation.
func (f *streamFSM) begin(conversationID string) error {
	if f.phase.Busy() {
		return errStreamActive
	}
	f.phase = PhaseSending
	f.conversationID = conversationID
	f.chunk.Reset()
	return nil
}

// fragment appends an inbound fragment and transitions to Streaming.
// Returns the accumulated value so far.
func (f *streamFSM) fragment(chunk string) (string, error) {
	if !f.phase.Busy() {
		return "", errNoStream
	}
	f.phase = PhaseStreaming
	f.chunk.WriteString(chunk)
	return f.chunk.String(), nil
}

// finish appends a trailing fragment (terminal events may carry one),
// returns the final accumulated value, and resets to Idle.
func (f *streamFSM) finish(chunk string) (string, error) {
	if !f.phase.Busy() {
		return "", errNoStream
	}
	f.chunk.WriteString(chunk)
	final := f.chunk.String()
	f.reset()
	return final, nil
}

// fail marks the in-flight send as failed.
func (f *streamFSM) fail() {
	f.phase = PhaseError
}

// reset returns the machine to Idle and clears the accumulator.
func (f *streamFSM) reset() {
	f.phase = PhaseIdle
	f.conversationID = ""
	f.chunk.Reset()
}
