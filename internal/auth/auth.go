// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth tracks the externally supplied authentication signal.
package auth

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/dclavijo45/chat-ai/internal/notify"
	"github.com/dclavijo45/chat-ai/internal/protocol"
)

// Checker answers whether the user may talk to the backend. The actual
// authentication flow lives outside this client; we only observe its result.
type Checker interface {
	Authenticated() bool
	Token() string
}

// =============================================================================
// STATE
// =============================================================================

// State is a Checker seeded from configuration and revocable by the backend's
// authorize events.
type State struct {
	mu    sync.RWMutex
	token string
	valid bool
}

// NewState creates the auth state. An empty token means unauthenticated.
func NewState(token string) *State {
	return &State{token: token, valid: token != ""}
}

// Authenticated reports whether sends are currently allowed.
func (s *State) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.valid
}

// Token returns the token attached to outbound requests, or "".
func (s *State) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.valid {
		return ""
	}
	return s.token
}

// Listen consumes authorize events until the context is cancelled. A rejection
// clears the state and surfaces the server's message to the user.
func (s *State) Listen(ctx context.Context, events <-chan protocol.AuthorizeResponse, notifier notify.Notifier, log *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			s.mu.Lock()
			s.valid = ev.Authorized
			s.mu.Unlock()

			if !ev.Authorized {
				log.Warn("backend revoked authorization", zap.String("message", ev.Message))
				if ev.Message != "" {
					notifier.Error(ev.Message)
				}
			}
		}
	}
}
