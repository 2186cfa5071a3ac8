// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store owns all chat state: the session list, which session is
// selected, the active engine and the in-flight response stream.
//
// The store is the only writer of that state. The UI layer calls its
// operations (AddSession, SelectSession, SetEngine, RemoveSession,
// SendUserTurn) and renders from snapshots; the Chunks and Changed feeds
// push updates without the UI polling.
//
// One response stream runs at a time. Its lifecycle is an explicit
// finite-state machine (Idle, Sending, Streaming, Error) driven by the
// stream markers the server attaches to message events. Fragments
// accumulate server-side order-preserving; each publish on the Chunks feed
// is the whole response so far.
package store
