// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat sessions to local disk.
//
// The Adapter is the durable-storage analog of a browser's localStorage: the
// whole session list is one keyed snapshot, written atomically, plus one
// boolean opt-in flag. Saving is gated on the flag; loading is not, so a user
// who revokes permission keeps whatever was stored until they clear it.
//
// Snapshots carry a schema version so a future layout change can migrate
// instead of corrupting silently.
package storage
