// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dclavijo45/chat-ai/internal/notify"
)

// writeImage drops a fake image file of the given size into dir.
func writeImage(t *testing.T, dir, name string, size int) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, bytes.Repeat([]byte{0xAB}, size), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestCollectAttachments(t *testing.T) {
	dir := t.TempDir()
	rec := notify.NewRecorder()

	a := writeImage(t, dir, "a.png", 100)
	b := writeImage(t, dir, "b.jpg", 100)

	got := collectAttachments([]string{a, b}, nil, rec)
	if len(got) != 2 {
		t.Fatalf("accepted = %d, want 2", len(got))
	}
	if got[0].name != "a.png" || got[1].name != "b.jpg" {
		t.Fatalf("names = %q, %q", got[0].name, got[1].name)
	}
	if !strings.HasPrefix(got[0].dataURL, "data:image/png;base64,") {
		t.Fatalf("dataURL = %q", got[0].dataURL)
	}
	if !strings.HasPrefix(got[1].dataURL, "data:image/jpeg;base64,") {
		t.Fatalf("dataURL = %q", got[1].dataURL)
	}
	if len(rec.Notices()) != 0 {
		t.Fatalf("unexpected notices: %v", rec.Notices())
	}
}

func TestCollectAttachmentsBatchLimit(t *testing.T) {
	dir := t.TempDir()
	rec := notify.NewRecorder()

	// one over the limit rejects the whole batch, valid files included
	paths := make([]string, maxAttachmentsPerBatch+1)
	for i := range paths {
		paths[i] = writeImage(t, dir, fmt.Sprintf("img%d.png", i), 50)
	}

	got := collectAttachments(paths, nil, rec)
	if got != nil {
		t.Fatalf("accepted = %d, want rejected batch", len(got))
	}
	if rec.Count(notify.LevelError) != 1 {
		t.Fatal("expected one error notice for the batch")
	}
}

func TestCollectAttachmentsOversizedSkipped(t *testing.T) {
	dir := t.TempDir()
	rec := notify.NewRecorder()

	big := writeImage(t, dir, "big.png", maxAttachmentBytes+1)
	ok1 := writeImage(t, dir, "ok1.png", 200)
	ok2 := writeImage(t, dir, "ok2.png", 200)

	got := collectAttachments([]string{ok1, big, ok2}, nil, rec)
	if len(got) != 2 {
		t.Fatalf("accepted = %d, want oversized file skipped", len(got))
	}
	for _, a := range got {
		if a.name == "big.png" {
			t.Fatal("oversized file must not be attached")
		}
	}
	if rec.Count(notify.LevelWarning) != 1 {
		t.Fatal("expected a warning for the oversized file")
	}
}

func TestCollectAttachmentsDedupe(t *testing.T) {
	dir := t.TempDir()
	rec := notify.NewRecorder()
	path := writeImage(t, dir, "a.png", 100)

	staged := []attachment{{name: "a.png", dataURL: "data:image/png;base64,xx"}}
	got := collectAttachments([]string{path}, staged, rec)
	if len(got) != 0 {
		t.Fatal("a file with a staged name must be dropped")
	}

	// duplicates inside one batch collapse too
	got = collectAttachments([]string{path, path}, nil, rec)
	if len(got) != 1 {
		t.Fatalf("accepted = %d, want in-batch duplicate dropped", len(got))
	}
}

func TestCollectAttachmentsRejectsNonImages(t *testing.T) {
	dir := t.TempDir()
	rec := notify.NewRecorder()

	txt := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(txt, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}

	got := collectAttachments([]string{txt}, nil, rec)
	if len(got) != 0 {
		t.Fatal("non-image files must be skipped")
	}
	if rec.Count(notify.LevelWarning) != 1 {
		t.Fatal("expected a warning for the unsupported type")
	}
}

func TestCollectAttachmentsMissingFile(t *testing.T) {
	rec := notify.NewRecorder()
	got := collectAttachments([]string{"/no/such/file.png"}, nil, rec)
	if len(got) != 0 {
		t.Fatal("missing files must be skipped")
	}
	if rec.Count(notify.LevelWarning) != 1 {
		t.Fatal("expected a warning for the unreadable file")
	}
}

func TestEncodeDataURL(t *testing.T) {
	got := encodeDataURL("image/png", []byte{1, 2, 3})
	want := "data:image/png;base64,AQID"
	if got != want {
		t.Fatalf("encodeDataURL = %q, want %q", got, want)
	}
}
