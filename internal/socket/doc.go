// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package socket owns the persistent websocket connection to the chat backend.
//
// The Client exposes the minimal transport contract the session store needs:
// idempotent Connect, fire-and-forget Send, a broadcast subscription of
// inbound message payloads, and a binary connected/disconnected state. While
// connected it emits a periodic ping event as a liveness probe.
//
// Reconnection policy is deliberately left to the caller; a broken transport
// simply surfaces as the Disconnected state.
package socket
