// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/dclavijo45/chat-ai/internal/auth"
	"github.com/dclavijo45/chat-ai/internal/engine"
	"github.com/dclavijo45/chat-ai/internal/history"
	"github.com/dclavijo45/chat-ai/internal/notify"
	"github.com/dclavijo45/chat-ai/internal/protocol"
	"github.com/dclavijo45/chat-ai/internal/socket"
)

// =============================================================================
// DEPENDENCIES
// =============================================================================

// Saver persists session snapshots. Implementations that are not permitted
// to persist must no-op rather than error.
type Saver interface {
	Save(sessions []history.ChatSession) error
}

// Config carries the store's collaborators. All fields are required except
// Sessions, which seeds the store from a persisted snapshot.
type Config struct {
	Connector     socket.Connector
	Notifier      notify.Notifier
	Saver         Saver
	Auth          auth.Checker
	Logger        *zap.Logger
	DefaultEngine engine.Engine
	Sessions      []history.ChatSession
}

// WaitingIndicator is published on the fragment feed right after a user turn
// is transmitted, before the first real fragment arrives.
const WaitingIndicator = "..."

// chunkRate caps intermediate fragment publishes per second. Terminal
// publishes (waiting indicator, stream end) always go through.
const chunkRate = 30

// =============================================================================
// STORE
// =============================================================================

// Store owns the session list, the selected session, the active engine and
// the response stream. Every mutation goes through one of its operations;
// consumers observe it through snapshots and the two feeds.
type Store struct {
	mu sync.Mutex

	conn     socket.Connector
	notifier notify.Notifier
	saver    Saver
	auth     auth.Checker
	log      *zap.Logger

	sessions []history.ChatSession
	selected string
	engine   engine.Engine
	stream   streamFSM

	lastChunk   string
	chunkSubs   []chan string
	changedSubs []chan struct{}
	limiter     *rate.Limiter
}

// New builds a store from its collaborators. No session is selected until
// the first send or an explicit SelectSession.
func New(cfg Config) *Store {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		conn:     cfg.Connector,
		notifier: cfg.Notifier,
		saver:    cfg.Saver,
		auth:     cfg.Auth,
		log:      log.Named("store"),
		sessions: history.CloneAll(cfg.Sessions),
		engine:   cfg.DefaultEngine,
		limiter:  rate.NewLimiter(rate.Limit(chunkRate), 1),
	}
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

// Sessions returns a deep copy of the session list.
func (s *Store) Sessions() []history.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return history.CloneAll(s.sessions)
}

// Selected returns the id of the selected session, or "" when none is.
func (s *Store) Selected() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selected
}

// SelectedSession returns a deep copy of the selected session, or nil.
func (s *Store) SelectedSession() *history.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess := s.findLocked(s.selected); sess != nil {
		c := sess.Clone()
		return &c
	}
	return nil
}

// CurrentEngine returns the active engine.
func (s *Store) CurrentEngine() engine.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

// Phase returns the current stream phase.
func (s *Store) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stream.phase
}

// Streaming reports whether a response is in flight.
func (s *Store) Streaming() bool {
	return s.Phase().Busy()
}

// Connected reports whether the transport is up.
func (s *Store) Connected() bool {
	return s.conn.State() == socket.Connected
}

// =============================================================================
// FEEDS
// =============================================================================

// Chunks subscribes to the accumulated-fragment feed. Each published value is
// the whole response so far, not a delta. The feed is a last-value cache: a
// subscriber joining mid-stream immediately sees the current accumulation.
func (s *Store) Chunks() <-chan string {
	ch := make(chan string, 1)
	s.mu.Lock()
	if s.lastChunk != "" {
		ch <- s.lastChunk
	}
	s.chunkSubs = append(s.chunkSubs, ch)
	s.mu.Unlock()
	return ch
}

// Changed subscribes to session-list change notifications. Notifications
// coalesce; a slow consumer sees at least one.
func (s *Store) Changed() <-chan struct{} {
	ch := make(chan struct{}, 1)
	s.mu.Lock()
	s.changedSubs = append(s.changedSubs, ch)
	s.mu.Unlock()
	return ch
}

// publishChunk replaces the cached value on every subscriber channel.
func (s *Store) publishChunk(v string) {
	s.mu.Lock()
	s.lastChunk = v
	subs := s.chunkSubs
	s.mu.Unlock()
	for _, ch := range subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- v:
		default:
		}
	}
}

// notifyChanged signals subscribers that the session list changed.
func (s *Store) notifyChanged() {
	s.mu.Lock()
	subs := s.changedSubs
	s.mu.Unlock()
	for _, ch := range subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// AddSession creates a fresh session with the active engine and selects it.
// Refused while streaming, when no session is selected yet, or when the
// newest session has never been used.
func (s *Store) AddSession() {
	s.mu.Lock()
	if s.stream.phase.Busy() {
		s.mu.Unlock()
		s.notifier.Warning("You can't add a chat while waiting for a response")
		return
	}
	if len(s.sessions) == 0 || s.selected == "" {
		s.mu.Unlock()
		s.notifier.Error("Start the current chat before adding another")
		return
	}
	if s.sessions[len(s.sessions)-1].IsEmpty() {
		s.mu.Unlock()
		s.notifier.Error("Start the current chat before adding another")
		return
	}
	sess := history.NewSession(s.engine)
	s.sessions = append(s.sessions, sess)
	s.selected = sess.ID
	s.mu.Unlock()
	s.notifyChanged()
}

// SelectSession makes the given session current and adopts its engine when
// it has history. Selecting the already-selected session is a no-op and
// emits nothing. Refused while streaming.
func (s *Store) SelectSession(id string) {
	s.mu.Lock()
	if s.stream.phase.Busy() {
		s.mu.Unlock()
		s.notifier.Warning("You can't switch chats while waiting for a response")
		return
	}
	if s.selected == id {
		s.mu.Unlock()
		return
	}
	sess := s.findLocked(id)
	if sess == nil {
		s.mu.Unlock()
		s.log.Debug("select for unknown session ignored", zap.String("id", id))
		return
	}
	s.selected = id
	if !sess.IsEmpty() {
		s.engine = sess.Engine
	}
	s.mu.Unlock()
	s.notifyChanged()
}

// SetEngine changes the active engine. A session that has history keeps the
// engine it started with. With no session selected, only the default for the
// next-created session changes. Refused while streaming.
func (s *Store) SetEngine(e engine.Engine) {
	s.mu.Lock()
	if s.stream.phase.Busy() {
		s.mu.Unlock()
		s.notifier.Warning("You can't switch engines while waiting for a response")
		return
	}
	if s.selected == "" {
		s.engine = e
		s.mu.Unlock()
		s.notifyChanged()
		return
	}
	sess := s.findLocked(s.selected)
	if sess == nil {
		s.mu.Unlock()
		return
	}
	if !sess.IsEmpty() {
		s.mu.Unlock()
		s.notifier.Warning("You can't switch engines in a conversation that has already started")
		return
	}
	sess.Engine = e
	s.engine = e
	s.mu.Unlock()
	s.notifyChanged()
}

// RemoveSession deletes a session. Refused when that session is the one
// currently streaming. Removing the selected session leaves nothing selected.
func (s *Store) RemoveSession(id string) {
	s.mu.Lock()
	if s.stream.phase.Busy() && s.stream.conversationID == id {
		s.mu.Unlock()
		s.notifier.Warning("You can't remove a chat while it's waiting for a response")
		return
	}
	idx := -1
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.sessions = append(s.sessions[:idx], s.sessions[idx+1:]...)
	if s.selected == id {
		s.selected = ""
	}
	snapshot := history.CloneAll(s.sessions)
	s.mu.Unlock()
	s.notifyChanged()
	if err := s.saver.Save(snapshot); err != nil {
		s.log.Warn("persist after remove failed", zap.Error(err))
	}
}

// =============================================================================
// SENDING
// =============================================================================

// SendUserTurn validates and appends a user turn plus an empty model turn to
// the selected session (creating one if none is selected), marks the stream
// in flight, and transmits the request. History on the wire excludes the
// placeholder model turn. The phase is observably busy before transmission.
func (s *Store) SendUserTurn(parts []history.Part) {
	s.mu.Lock()
	if s.stream.phase.Busy() {
		s.mu.Unlock()
		s.notifier.Warning("Wait for the current response to finish")
		return
	}
	if s.conn.State() != socket.Connected {
		s.mu.Unlock()
		s.notifier.Warning("Not connected to the server")
		return
	}
	if !s.auth.Authenticated() {
		s.mu.Unlock()
		s.notifier.Warning("You must be signed in to send messages")
		return
	}
	if err := history.ValidateParts(parts); err != nil {
		s.mu.Unlock()
		s.notifier.Warning("A message needs text to send")
		return
	}

	sess := s.findLocked(s.selected)
	if sess == nil {
		created := history.NewSession(s.engine)
		s.sessions = append(s.sessions, created)
		s.selected = created.ID
		sess = &s.sessions[len(s.sessions)-1]
	}
	sess.AppendTurns(history.NewUserTurn(parts), history.NewModelTurn())
	if err := s.stream.begin(sess.ID); err != nil {
		s.mu.Unlock()
		return
	}
	req := protocol.MessageRequest{
		History:        wireHistory(sess.History[:len(sess.History)-1]),
		AIEngine:       string(s.engine),
		ConversationID: sess.ID,
		AuthToken:      s.auth.Token(),
	}
	s.mu.Unlock()

	s.publishChunk(WaitingIndicator)
	s.notifyChanged()

	if err := s.conn.Send(req); err != nil {
		s.mu.Lock()
		s.stream.fail()
		s.mu.Unlock()
		s.publishChunk("")
		s.notifier.Error("Failed to send the message")
		s.log.Warn("send failed", zap.Error(err))
	}
}

// =============================================================================
// INBOUND
// =============================================================================

// Listen consumes stream events from the transport until ctx is done.
// Run it on its own goroutine.
func (s *Store) Listen(ctx context.Context) {
	msgs := s.conn.Messages()
	for {
		select {
		case <-ctx.Done():
			return
		case resp, ok := <-msgs:
			if !ok {
				return
			}
			s.handleResponse(resp)
		}
	}
}

func (s *Store) handleResponse(resp protocol.MessageResponse) {
	switch resp.State {
	case protocol.MarkerStart:
		// reserved by the server, carries nothing

	case protocol.MarkerStreaming:
		s.mu.Lock()
		acc, err := s.stream.fragment(resp.MessageChunk)
		s.mu.Unlock()
		if err != nil {
			s.log.Debug("fragment outside an active stream dropped",
				zap.String("conversationId", resp.ConversationID))
			return
		}
		if s.limiter.Allow() {
			s.publishChunk(acc)
		}

	case protocol.MarkerEndStreaming:
		s.mu.Lock()
		final, err := s.stream.finish(resp.MessageChunk)
		if err != nil {
			s.mu.Unlock()
			s.log.Debug("stream end without an active stream dropped",
				zap.String("conversationId", resp.ConversationID))
			return
		}
		sess := s.findLocked(resp.ConversationID)
		if sess == nil {
			s.mu.Unlock()
			s.publishChunk("")
			s.log.Debug("stream end for unknown session dropped",
				zap.String("conversationId", resp.ConversationID))
			return
		}
		if last := sess.LastTurn(); last != nil && last.Role == history.RoleModel {
			last.SetText(final)
		}
		snapshot := history.CloneAll(s.sessions)
		s.mu.Unlock()
		s.publishChunk("")
		s.notifyChanged()
		if err := s.saver.Save(snapshot); err != nil {
			s.log.Warn("persist after stream end failed", zap.Error(err))
		}

	default:
		s.log.Debug("unknown stream marker dropped", zap.String("state", string(resp.State)))
	}
}

// =============================================================================
// HELPERS
// =============================================================================

// findLocked returns a pointer into the session slice; callers hold s.mu.
func (s *Store) findLocked(id string) *history.ChatSession {
	if id == "" {
		return nil
	}
	for i := range s.sessions {
		if s.sessions[i].ID == id {
			return &s.sessions[i]
		}
	}
	return nil
}

// wireHistory converts domain turns to their wire mirror.
func wireHistory(turns []history.Turn) []protocol.Turn {
	out := make([]protocol.Turn, len(turns))
	for i, t := range turns {
		parts := make([]protocol.Part, len(t.Parts))
		for j, p := range t.Parts {
			parts[j] = protocol.Part{Kind: string(p.Kind), Value: p.Value}
		}
		out[i] = protocol.Turn{Role: string(t.Role), Parts: parts}
	}
	return out
}
