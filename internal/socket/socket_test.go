// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package socket owns the persistent websocket connection to the chat backend.
package socket

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dclavijo45/chat-ai/internal/logging"
	"github.com/dclavijo45/chat-ai/internal/protocol"
)

// =============================================================================
// TEST SERVER
// =============================================================================

// testServer is a minimal websocket backend capturing inbound frames and able
// to push frames to the client.
type testServer struct {
	*httptest.Server

	mu     sync.Mutex
	conns  []*websocket.Conn
	frames []protocol.Frame
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	ts := &testServer{}
	upgrader := websocket.Upgrader{}

	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		ts.mu.Lock()
		ts.conns = append(ts.conns, conn)
		ts.mu.Unlock()

		for {
			var frame protocol.Frame
			if err := conn.ReadJSON(&frame); err != nil {
				return
			}
			ts.mu.Lock()
			ts.frames = append(ts.frames, frame)
			ts.mu.Unlock()
		}
	}))
	t.Cleanup(ts.Close)
	return ts
}

func (ts *testServer) wsURL() string {
	return "ws" + strings.TrimPrefix(ts.URL, "http")
}

func (ts *testServer) push(t *testing.T, event string, payload any) {
	t.Helper()
	frame, err := protocol.NewFrame(event, payload)
	if err != nil {
		t.Fatalf("build frame: %v", err)
	}
	ts.mu.Lock()
	defer ts.mu.Unlock()
	if len(ts.conns) == 0 {
		t.Fatal("no client connected")
	}
	if err := ts.conns[len(ts.conns)-1].WriteJSON(frame); err != nil {
		t.Fatalf("push frame: %v", err)
	}
}

func (ts *testServer) received(event string) []protocol.Frame {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	var out []protocol.Frame
	for _, f := range ts.frames {
		if f.Event == event {
			out = append(out, f)
		}
	}
	return out
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before timeout")
}

// =============================================================================
// CONNECTION TESTS
// =============================================================================

func TestClient_ConnectTransitionsState(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(ts.wsURL(), time.Hour, logging.Nop())

	if c.State() != Disconnected {
		t.Fatalf("initial state = %v", c.State())
	}
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	if c.State() != Connected {
		t.Errorf("state after connect = %v, want connected", c.State())
	}

	// Idempotent: a second connect is a no-op, not an error.
	if err := c.Connect(context.Background()); err != nil {
		t.Errorf("second Connect: %v", err)
	}
}

func TestClient_ConnectFailureStaysDisconnected(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1/nowhere", time.Hour, logging.Nop())

	if err := c.Connect(context.Background()); err == nil {
		t.Fatal("Connect to a dead endpoint should fail")
	}
	if c.State() != Disconnected {
		t.Errorf("state = %v, want disconnected", c.State())
	}
}

func TestClient_SendRequiresConnection(t *testing.T) {
	c := NewClient("ws://127.0.0.1:1/nowhere", time.Hour, logging.Nop())

	err := c.Send(protocol.MessageRequest{ConversationID: "x"})
	if err != ErrNotConnected {
		t.Errorf("Send while disconnected = %v, want ErrNotConnected", err)
	}
}

func TestClient_DisconnectDetected(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(ts.wsURL(), time.Hour, logging.Nop())
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}

	// httptest.Server forgets connections once the upgrade hijacks them, so
	// CloseClientConnections would be a no-op; sever the tracked conn instead.
	ts.mu.Lock()
	if len(ts.conns) == 0 {
		ts.mu.Unlock()
		t.Fatal("no client connected")
	}
	ts.conns[len(ts.conns)-1].Close()
	ts.mu.Unlock()
	waitFor(t, time.Second, func() bool { return c.State() == Disconnected })
}

// =============================================================================
// SEND / RECEIVE TESTS
// =============================================================================

func TestClient_SendDeliversEnvelopedFrame(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(ts.wsURL(), time.Hour, logging.Nop())
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	req := protocol.MessageRequest{
		History:        []protocol.Turn{{Role: "user", Parts: []protocol.Part{{Kind: "text", Value: "Hello"}}}},
		AIEngine:       "openai",
		ConversationID: "conv-1",
	}
	if err := c.Send(req); err != nil {
		t.Fatalf("Send: %v", err)
	}

	waitFor(t, time.Second, func() bool { return len(ts.received(protocol.EventMessage)) == 1 })

	got, err := protocol.DecodePayload[protocol.MessageRequest](ts.received(protocol.EventMessage)[0])
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ConversationID != "conv-1" || got.AIEngine != "openai" || len(got.History) != 1 {
		t.Errorf("server saw %+v", got)
	}
}

func TestClient_MessagesBroadcast(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(ts.wsURL(), time.Hour, logging.Nop())
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	sub1 := c.Messages()
	sub2 := c.Messages()

	ts.push(t, protocol.EventMessage, protocol.MessageResponse{
		ConversationID: "conv-1",
		MessageChunk:   "Hi",
		State:          protocol.MarkerStreaming,
	})

	for i, sub := range []<-chan protocol.MessageResponse{sub1, sub2} {
		select {
		case resp := <-sub:
			if resp.MessageChunk != "Hi" || resp.State != protocol.MarkerStreaming {
				t.Errorf("subscriber %d got %+v", i, resp)
			}
		case <-time.After(time.Second):
			t.Fatalf("subscriber %d got nothing", i)
		}
	}
}

func TestClient_LateSubscriberSeesOnlyFutureEvents(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(ts.wsURL(), time.Hour, logging.Nop())
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	early := c.Messages()
	ts.push(t, protocol.EventMessage, protocol.MessageResponse{ConversationID: "a", State: protocol.MarkerStreaming})
	select {
	case <-early:
	case <-time.After(time.Second):
		t.Fatal("early subscriber got nothing")
	}

	late := c.Messages()
	select {
	case resp := <-late:
		t.Errorf("late subscriber should not see past events, got %+v", resp)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClient_AuthorizeEvents(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(ts.wsURL(), time.Hour, logging.Nop())
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	ts.push(t, protocol.EventAuthorize, protocol.AuthorizeResponse{Authorized: false, Message: "expired"})

	select {
	case authz := <-c.Authorizations():
		if authz.Authorized || authz.Message != "expired" {
			t.Errorf("got %+v", authz)
		}
	case <-time.After(time.Second):
		t.Fatal("no authorize event delivered")
	}
}

// =============================================================================
// HEARTBEAT TESTS
// =============================================================================

func TestClient_PingLoop(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(ts.wsURL(), 20*time.Millisecond, logging.Nop())
	if err := c.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer c.Close()

	waitFor(t, time.Second, func() bool { return len(ts.received(protocol.EventPing)) >= 2 })

	ping, err := protocol.DecodePayload[protocol.PingPayload](ts.received(protocol.EventPing)[0])
	if err != nil {
		t.Fatalf("decode ping: %v", err)
	}
	if ping.Message != "ping" {
		t.Errorf("ping payload = %+v", ping)
	}
}
