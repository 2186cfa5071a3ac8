// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package protocol defines the wire format spoken over the chat socket.
package protocol

import "encoding/json"

// Event names carried by socket frames.
const (
	EventMessage   = "message"
	EventPing      = "ping"
	EventAuthorize = "authorize"
)

// =============================================================================
// FRAME AND ENVELOPE
// =============================================================================

// Frame is the outermost structure of every socket message: an event name and
// an enveloped payload.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Envelope wraps every payload in the `{payload: T}` shape the backend expects.
type Envelope[T any] struct {
	Payload T `json:"payload"`
}

// NewFrame builds a frame for the given event, enveloping the payload.
func NewFrame[T any](event string, payload T) (Frame, error) {
	data, err := json.Marshal(Envelope[T]{Payload: payload})
	if err != nil {
		return Frame{}, err
	}
	return Frame{Event: event, Data: data}, nil
}

// DecodePayload unwraps the envelope of a frame into the target payload type.
func DecodePayload[T any](f Frame) (T, error) {
	var env Envelope[T]
	err := json.Unmarshal(f.Data, &env)
	return env.Payload, err
}

// =============================================================================
// MESSAGE EVENT PAYLOADS
// =============================================================================

// Turn mirrors history.Turn on the wire. Kept as a local alias-free type so
// the wire schema does not silently drift with domain refactors.
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// Part mirrors history.Part on the wire.
type Part struct {
	Kind  string `json:"type"`
	Value string `json:"text"`
}

// MessageRequest is the outbound payload of a message event. History excludes
// the trailing empty placeholder turn.
type MessageRequest struct {
	History        []Turn `json:"history"`
	AIEngine       string `json:"aiEngine"`
	ConversationID string `json:"conversationId"`
	AuthToken      string `json:"authToken,omitempty"`
}

// StreamMarker is the state field of an inbound message event.
type StreamMarker string

const (
	MarkerStart        StreamMarker = "start"
	MarkerStreaming    StreamMarker = "streaming"
	MarkerEndStreaming StreamMarker = "end_streaming"
)

// Valid reports whether the marker is one of the known states.
func (m StreamMarker) Valid() bool {
	switch m {
	case MarkerStart, MarkerStreaming, MarkerEndStreaming:
		return true
	}
	return false
}

// MessageResponse is the inbound payload of a message event: one incremental
// fragment of an assistant response.
type MessageResponse struct {
	ConversationID string       `json:"conversationId"`
	MessageChunk   string       `json:"messageChunk"`
	State          StreamMarker `json:"state"`
}

// =============================================================================
// PING EVENT
// =============================================================================

// PingPayload is the liveness probe payload.
type PingPayload struct {
	Message string `json:"message"`
}

// NewPing returns the fixed ping payload.
func NewPing() PingPayload {
	return PingPayload{Message: "ping"}
}

// =============================================================================
// AUTHORIZE EVENT
// =============================================================================

// AuthorizeResponse is the inbound payload of an authorize event, sent by
// backends that gate conversations on server-side auth.
type AuthorizeResponse struct {
	Authorized bool   `json:"authorized"`
	Message    string `json:"message"`
}
