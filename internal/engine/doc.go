// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine defines the selectable AI backends and their capabilities.
//
// An Engine is the wire identifier for one of the remote AI models the chat
// backend can route a conversation to. The registry holds static display
// metadata; a Catalog layers runtime capability flags on top so deployments
// can change which engines accept image attachments without a rebuild.
//
// # Usage
//
//	e, ok := engine.Parse("openai")
//	catalog := engine.NewCatalog()
//	if catalog.SupportsImages(e) {
//	    // allow attachments
//	}
package engine
