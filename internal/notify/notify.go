// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package notify delivers transient user-visible notifications.
package notify

import "sync"

// =============================================================================
// NOTICE TYPE
// =============================================================================

// Level classifies a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is one transient notification shown to the user.
type Notice struct {
	Level Level
	Text  string
}

// Notifier is the sink for user-visible notifications. Implementations must
// never block the caller.
type Notifier interface {
	Info(text string)
	Success(text string)
	Warning(text string)
	Error(text string)
}

// =============================================================================
// FEED
// =============================================================================

// feedBuffer bounds the number of undelivered notices; the oldest is dropped
// when the consumer falls behind.
const feedBuffer = 16

// Feed is a Notifier whose notices are consumed from a channel, for wiring
// into the UI event loop.
type Feed struct {
	mu sync.Mutex
	ch chan Notice
}

// NewFeed creates a notification feed.
func NewFeed() *Feed {
	return &Feed{ch: make(chan Notice, feedBuffer)}
}

// C returns the channel notices are delivered on.
func (f *Feed) C() <-chan Notice {
	return f.ch
}

func (f *Feed) publish(level Level, text string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		select {
		case f.ch <- Notice{Level: level, Text: text}:
			return
		default:
		}
		// Full: drop the oldest and retry.
		select {
		case <-f.ch:
		default:
		}
	}
}

func (f *Feed) Info(text string)    { f.publish(LevelInfo, text) }
func (f *Feed) Success(text string) { f.publish(LevelSuccess, text) }
func (f *Feed) Warning(text string) { f.publish(LevelWarning, text) }
func (f *Feed) Error(text string)   { f.publish(LevelError, text) }

// =============================================================================
// RECORDER
// =============================================================================

// Recorder is a Notifier that captures notices for assertions in tests.
type Recorder struct {
	mu      sync.Mutex
	notices []Notice
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) record(level Level, text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, Notice{Level: level, Text: text})
}

func (r *Recorder) Info(text string)    { r.record(LevelInfo, text) }
func (r *Recorder) Success(text string) { r.record(LevelSuccess, text) }
func (r *Recorder) Warning(text string) { r.record(LevelWarning, text) }
func (r *Recorder) Error(text string)   { r.record(LevelError, text) }

// Notices returns a copy of everything recorded so far.
func (r *Recorder) Notices() []Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notice, len(r.notices))
	copy(out, r.notices)
	return out
}

// Count returns how many notices of the given level were recorded.
func (r *Recorder) Count(level Level) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, notice := range r.notices {
		if notice.Level == level {
			n++
		}
	}
	return n
}

// Reset discards all recorded notices.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = nil
}
