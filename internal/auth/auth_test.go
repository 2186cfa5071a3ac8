// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/dclavijo45/chat-ai/internal/notify"
	"github.com/dclavijo45/chat-ai/internal/protocol"
)

func TestNewState(t *testing.T) {
	s := NewState("secret")
	if !s.Authenticated() {
		t.Fatal("a configured token should authenticate")
	}
	if s.Token() != "secret" {
		t.Fatalf("Token() = %q", s.Token())
	}

	empty := NewState("")
	if empty.Authenticated() {
		t.Fatal("an empty token must not authenticate")
	}
	if empty.Token() != "" {
		t.Fatalf("Token() = %q, want empty", empty.Token())
	}
}

func TestListenRevocation(t *testing.T) {
	s := NewState("secret")
	rec := notify.NewRecorder()
	events := make(chan protocol.AuthorizeResponse)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Listen(ctx, events, rec, zap.NewNop())
		close(done)
	}()

	events <- protocol.AuthorizeResponse{Authorized: false, Message: "session expired"}

	deadline := time.After(time.Second)
	for s.Authenticated() {
		select {
		case <-deadline:
			t.Fatal("revocation was not applied")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if s.Token() != "" {
		t.Fatal("a revoked state must not hand out the token")
	}
	if rec.Count(notify.LevelError) != 1 {
		t.Fatal("the server's message should surface as an error notice")
	}

	// re-authorization restores sends
	events <- protocol.AuthorizeResponse{Authorized: true}
	deadline = time.After(time.Second)
	for !s.Authenticated() {
		select {
		case <-deadline:
			t.Fatal("re-authorization was not applied")
		case <-time.After(5 * time.Millisecond):
		}
	}
	if s.Token() != "secret" {
		t.Fatal("re-authorization should restore the token")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Listen did not stop on cancel")
	}
}
