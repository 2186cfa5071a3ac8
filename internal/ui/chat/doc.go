// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat view component for the TUI.

The view is a thin presentation layer over the session store. It holds no
chat state of its own: user actions are forwarded to the store as operations,
and rendering happens from store snapshots whenever one of the store's feeds
fires. The only state owned here is presentation state, such as staged image
attachments, the help overlay and scroll position.

External events reach the Bubble Tea update loop through relay commands that
block on the store's channels and re-arm themselves after each delivery:

	chunkMsg            - accumulated response text while streaming
	sessionsChangedMsg  - the session list changed, re-snapshot
	noticeMsg           - user-facing notification for the status line

Slash commands typed into the input line drive everything that is not a
plain message: /new, /remove, /engine, /attach, /detach, /persist, /clear,
/help and /quit.
*/
package chat
