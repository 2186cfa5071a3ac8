// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the chat view component for the TUI.
package chat

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dclavijo45/chat-ai/internal/notify"
)

// =============================================================================
// ATTACHMENT LIMITS
// =============================================================================

// maxAttachmentsPerBatch bounds a single attach command. A batch over the
// limit is rejected whole; nothing from it is attached.
const maxAttachmentsPerBatch = 10

// maxAttachmentBytes is the per-file size cap. Oversized files are skipped
// individually while the rest of the batch proceeds.
const maxAttachmentBytes = 1 << 20

// imageMIMETypes maps accepted file extensions to their MIME type.
var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// =============================================================================
// ATTACHMENTS
// =============================================================================

// attachment is an image staged for the next user turn, already encoded in
// the wire format.
type attachment struct {
	name    string
	dataURL string
}

// collectAttachments validates a batch of file paths against the already
// staged set and returns the newly accepted attachments. Batch and per-file
// violations are reported through the notifier; duplicates by file name are
// dropped silently.
func collectAttachments(paths []string, staged []attachment, notifier notify.Notifier) []attachment {
	if len(paths) > maxAttachmentsPerBatch {
		notifier.Error(fmt.Sprintf("You can attach at most %d images at a time", maxAttachmentsPerBatch))
		return nil
	}

	seen := make(map[string]bool, len(staged))
	for _, a := range staged {
		seen[a.name] = true
	}

	var accepted []attachment
	for _, path := range paths {
		name := filepath.Base(path)
		if seen[name] {
			continue
		}

		mime, ok := imageMIMETypes[strings.ToLower(filepath.Ext(name))]
		if !ok {
			notifier.Warning(fmt.Sprintf("%s is not a supported image type", name))
			continue
		}

		info, err := os.Stat(path)
		if err != nil {
			notifier.Warning(fmt.Sprintf("Can't read %s", name))
			continue
		}
		if info.Size() > maxAttachmentBytes {
			notifier.Warning(fmt.Sprintf("%s is over 1 MB and was skipped", name))
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			notifier.Warning(fmt.Sprintf("Can't read %s", name))
			continue
		}

		accepted = append(accepted, attachment{
			name:    name,
			dataURL: encodeDataURL(mime, data),
		})
		seen[name] = true
	}
	return accepted
}

// encodeDataURL produces the inline image encoding the server expects.
func encodeDataURL(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}
