// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package history contains the data structures for chat sessions and turns.
//
// # Key Types
//
//   - ChatSession: one conversation with its own history and engine choice
//   - Turn: one message exchange unit, authored by the user or the model
//   - Part: one content fragment within a Turn (text or base64 image)
//
// A user turn carries zero or more image parts followed by exactly one text
// part; a model turn carries exactly one text part. ValidateParts enforces
// the user-turn shape before a send.
package history
