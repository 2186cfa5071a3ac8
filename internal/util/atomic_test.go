// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small support helpers for the chat client.
package util

import (
	"os"
	"path/filepath"
	"testing"
)

func TestAtomicWriteFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "state.json")

	if err := AtomicWriteFile(path, []byte(`{"v":1}`), 0644); err != nil {
		t.Fatalf("AtomicWriteFile: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != `{"v":1}` {
		t.Errorf("content = %s", data)
	}

	// Overwrite must fully replace the previous content.
	if err := AtomicWriteFile(path, []byte(`{"v":2,"more":true}`), 0644); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, _ = os.ReadFile(path)
	if string(data) != `{"v":2,"more":true}` {
		t.Errorf("overwritten content = %s", data)
	}

	// No temp files may be left behind.
	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("directory should hold only the target file, found %d entries", len(entries))
	}
}
