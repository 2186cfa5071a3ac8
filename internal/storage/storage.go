// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists chat sessions to local disk.
package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/dclavijo45/chat-ai/internal/history"
	"github.com/dclavijo45/chat-ai/internal/util"
)

// SchemaVersion tags every snapshot so future layouts can migrate safely.
const SchemaVersion = 1

// Fixed storage keys, mirrored as file names under the base directory.
const (
	sessionsFile   = "sessions.json"
	permissionFile = "allow_store_chats"
)

// =============================================================================
// SNAPSHOT TYPE
// =============================================================================

// Snapshot is the serialized form of the session list.
type Snapshot struct {
	Version  int                   `json:"version"`
	Sessions []history.ChatSession `json:"sessions"`
}

// =============================================================================
// ERRORS
// =============================================================================

// StorageError represents a persistence-related error.
// Use errors.Is to compare against the sentinel values below.
type StorageError struct {
	Message string
}

func (e *StorageError) Error() string {
	return e.Message
}

func (e *StorageError) Is(target error) bool {
	t, ok := target.(*StorageError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// ErrSchemaVersion is returned when a stored snapshot carries an unknown
// schema version.
var ErrSchemaVersion = &StorageError{Message: "unsupported snapshot schema version"}

// =============================================================================
// ADAPTER
// =============================================================================

// Adapter serializes the session list to durable local storage, gated by a
// user-controlled permission flag. The flag itself is always persisted;
// toggling it never purges or force-saves existing state.
type Adapter struct {
	mu      sync.Mutex
	baseDir string
	allowed bool
	log     *zap.Logger
}

// NewAdapter creates an adapter rooted at baseDir and reads the stored
// permission flag. The directory is created if needed.
func NewAdapter(baseDir string, log *zap.Logger) (*Adapter, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	a := &Adapter{baseDir: baseDir, log: log}

	data, err := os.ReadFile(filepath.Join(baseDir, permissionFile))
	if err == nil {
		a.allowed = string(data) == "true"
	}

	return a, nil
}

// DefaultDir returns the default storage directory under the user's home.
func DefaultDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".chat-ai"), nil
}

// Allowed reports whether saving is currently permitted.
func (a *Adapter) Allowed() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.allowed
}

// TogglePermission flips the permission flag and persists it. It does not
// retroactively save or purge the session snapshot.
func (a *Adapter) TogglePermission() (bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.allowed = !a.allowed
	value := "false"
	if a.allowed {
		value = "true"
	}

	path := filepath.Join(a.baseDir, permissionFile)
	if err := util.AtomicWriteFile(path, []byte(value), 0644); err != nil {
		return a.allowed, fmt.Errorf("failed to persist permission flag: %w", err)
	}
	return a.allowed, nil
}

// =============================================================================
// SAVE / LOAD
// =============================================================================

// Save writes the full session list if-and-only-if persistence is permitted;
// it silently no-ops otherwise.
func (a *Adapter) Save(sessions []history.ChatSession) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.allowed {
		return nil
	}

	snap := Snapshot{Version: SchemaVersion, Sessions: sessions}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode sessions: %w", err)
	}

	path := filepath.Join(a.baseDir, sessionsFile)
	if err := util.AtomicWriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write sessions: %w", err)
	}

	a.log.Debug("sessions persisted", zap.Int("count", len(sessions)))
	return nil
}

// Load reads the stored session list. A missing snapshot yields (nil, nil);
// an unknown schema version yields ErrSchemaVersion and leaves the caller's
// in-memory state untouched.
func (a *Adapter) Load() ([]history.ChatSession, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(a.baseDir, sessionsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to decode sessions: %w", err)
	}
	if snap.Version != SchemaVersion {
		return nil, ErrSchemaVersion
	}

	return snap.Sessions, nil
}

// Clear removes the persisted session snapshot. The permission flag is kept.
func (a *Adapter) Clear() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	err := os.Remove(filepath.Join(a.baseDir, sessionsFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear sessions: %w", err)
	}
	return nil
}
