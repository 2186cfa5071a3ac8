// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package socket owns the persistent websocket connection to the chat backend.
package socket

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/dclavijo45/chat-ai/internal/protocol"
)

// =============================================================================
// CONNECTION STATE
// =============================================================================

// ConnState is the binary-ish connection state surfaced to callers. Transport
// errors are not distinguished by kind; only this state is observable.
type ConnState int32

const (
	Disconnected ConnState = iota
	Connecting
	Connected
)

// String returns a human-readable state name.
func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	default:
		return "unknown"
	}
}

// ErrNotConnected is returned by Send when no connection is established.
// Callers are expected to check State first; hitting this is a caller error.
var ErrNotConnected = errors.New("socket: not connected")

// =============================================================================
// CONNECTOR INTERFACE
// =============================================================================

// Connector is the transport surface the session store depends on.
type Connector interface {
	// Connect idempotently establishes the connection.
	Connect(ctx context.Context) error

	// Send transmits a message request fire-and-forget.
	Send(req protocol.MessageRequest) error

	// Messages returns a new broadcast subscription of inbound responses.
	// Subscribers see only future events; there is no replay.
	Messages() <-chan protocol.MessageResponse

	// State reports the current connection state.
	State() ConnState
}

// subscriberBuffer bounds undelivered responses per subscriber. A full
// subscriber drops events rather than blocking the read pump.
const subscriberBuffer = 64

// =============================================================================
// CLIENT
// =============================================================================

// Client is the gorilla/websocket implementation of Connector.
type Client struct {
	url       string
	pingEvery time.Duration
	log       *zap.Logger

	state atomic.Int32

	mu   sync.Mutex // guards conn, subs, done
	conn *websocket.Conn
	subs []chan protocol.MessageResponse
	done chan struct{}

	writeMu sync.Mutex // gorilla allows one concurrent writer

	authCh chan protocol.AuthorizeResponse
}

// NewClient creates a client for the given websocket URL.
func NewClient(url string, pingEvery time.Duration, log *zap.Logger) *Client {
	return &Client{
		url:       url,
		pingEvery: pingEvery,
		log:       log,
		authCh:    make(chan protocol.AuthorizeResponse, 4),
	}
}

// Connect dials the backend. Calling it while connected is a no-op. On
// success the state transitions to Connected and the liveness probe starts.
func (c *Client) Connect(ctx context.Context) error {
	if !c.state.CompareAndSwap(int32(Disconnected), int32(Connecting)) {
		return nil
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		c.state.Store(int32(Disconnected))
		c.log.Warn("socket dial failed", zap.String("url", c.url), zap.Error(err))
		return err
	}

	done := make(chan struct{})
	c.mu.Lock()
	c.conn = conn
	c.done = done
	c.mu.Unlock()

	c.state.Store(int32(Connected))
	c.log.Info("socket connected", zap.String("url", c.url))

	go c.readPump(conn, done)
	go c.pingLoop(done)

	return nil
}

// State reports the current connection state.
func (c *Client) State() ConnState {
	return ConnState(c.state.Load())
}

// Send transmits a message request. No acknowledgement is awaited.
func (c *Client) Send(req protocol.MessageRequest) error {
	if c.State() != Connected {
		return ErrNotConnected
	}
	return c.writeFrame(protocol.EventMessage, req)
}

// Messages returns a fresh broadcast subscription of inbound responses.
func (c *Client) Messages() <-chan protocol.MessageResponse {
	ch := make(chan protocol.MessageResponse, subscriberBuffer)
	c.mu.Lock()
	c.subs = append(c.subs, ch)
	c.mu.Unlock()
	return ch
}

// Authorizations returns the inbound authorize event stream.
func (c *Client) Authorizations() <-chan protocol.AuthorizeResponse {
	return c.authCh
}

// Close tears the connection down.
func (c *Client) Close() error {
	c.mu.Lock()
	conn := c.conn
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

// =============================================================================
// PUMPS
// =============================================================================

// readPump decodes inbound frames and fans them out until the transport
// breaks, then flips the state to Disconnected and stops the probe.
func (c *Client) readPump(conn *websocket.Conn, done chan struct{}) {
	defer func() {
		close(done)
		conn.Close()
		c.state.Store(int32(Disconnected))
		c.log.Info("socket disconnected")
	}()

	for {
		var frame protocol.Frame
		if err := conn.ReadJSON(&frame); err != nil {
			return
		}

		switch frame.Event {
		case protocol.EventMessage:
			resp, err := protocol.DecodePayload[protocol.MessageResponse](frame)
			if err != nil {
				c.log.Debug("malformed message payload dropped", zap.Error(err))
				continue
			}
			c.broadcast(resp)

		case protocol.EventAuthorize:
			authz, err := protocol.DecodePayload[protocol.AuthorizeResponse](frame)
			if err != nil {
				c.log.Debug("malformed authorize payload dropped", zap.Error(err))
				continue
			}
			select {
			case c.authCh <- authz:
			default:
			}

		default:
			c.log.Debug("unknown socket event ignored", zap.String("event", frame.Event))
		}
	}
}

// broadcast fans a response out to every subscriber without blocking.
func (c *Client) broadcast(resp protocol.MessageResponse) {
	c.mu.Lock()
	subs := c.subs
	c.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- resp:
		default:
			c.log.Warn("slow subscriber, response dropped",
				zap.String("conversation_id", resp.ConversationID))
		}
	}
}

// pingLoop emits the fire-and-forget liveness probe while connected.
func (c *Client) pingLoop(done chan struct{}) {
	ticker := time.NewTicker(c.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := c.writeFrame(protocol.EventPing, protocol.NewPing()); err != nil {
				c.log.Debug("ping failed", zap.Error(err))
			}
		}
	}
}

// writeFrame envelopes and writes one frame. Writes are serialized.
func (c *Client) writeFrame(event string, payload any) error {
	frame, err := protocol.NewFrame(event, payload)
	if err != nil {
		return err
	}

	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return conn.WriteJSON(frame)
}
