// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"errors"
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/danielhkuo/pollroom/models"
)

var (
	ErrUnknownSession = errors.New("unknown session")
	ErrHubClosed      = errors.New("hub closed")
)

// DefaultSendBuffer is the outbox size used when NewHub gets a non-positive size.
const DefaultSendBuffer = 16

// Sender delivers frames to one connected viewer.
type Sender interface {
	Send(frame models.Frame) error
	Close() error
}

// Hub tracks live sessions and the poll each one watches, and pushes tally
// updates to them. It is process-local; nothing here survives a restart.
type Hub struct {
	mu       sync.Mutex
	sessions map[string]*Session
	polls    map[string]map[string]*Session
	buffer   int
	closed   bool
}

func NewHub(buffer int) *Hub {
	if buffer <= 0 {
		buffer = DefaultSendBuffer
	}
	return &Hub{
		sessions: make(map[string]*Session),
		polls:    make(map[string]map[string]*Session),
		buffer:   buffer,
	}
}

// Connect registers a new session writing to sender and starts its writer.
func (h *Hub) Connect(sender Sender) (*Session, error) {
	s := newSession(uuid.NewString(), sender, h.buffer)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrHubClosed
	}
	h.sessions[s.id] = s
	h.mu.Unlock()

	go s.writeLoop(h)
	slog.Info("live session connected", "session_id", s.id, "sessions", h.Len())
	return s, nil
}

// Subscribe moves the session to pollID. A session watches at most one poll.
func (h *Hub) Subscribe(sessionID, pollID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	s, ok := h.sessions[sessionID]
	if !ok {
		return ErrUnknownSession
	}
	if s.pollID == pollID {
		return nil
	}
	h.leaveLocked(s)

	members, ok := h.polls[pollID]
	if !ok {
		members = make(map[string]*Session)
		h.polls[pollID] = members
	}
	members[sessionID] = s
	s.pollID = pollID
	return nil
}

// Unsubscribe removes the session from the poll it watches, if any.
func (h *Hub) Unsubscribe(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[sessionID]; ok {
		h.leaveLocked(s)
	}
}

// Disconnect unsubscribes and forgets the session and stops its writer.
func (h *Hub) Disconnect(sessionID string) {
	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	if ok {
		h.leaveLocked(s)
		delete(h.sessions, sessionID)
	}
	h.mu.Unlock()

	if ok {
		s.close()
		slog.Info("live session disconnected", "session_id", sessionID)
	}
}

func (h *Hub) leaveLocked(s *Session) {
	if s.pollID == "" {
		return
	}
	if members, ok := h.polls[s.pollID]; ok {
		delete(members, s.id)
		if len(members) == 0 {
			delete(h.polls, s.pollID)
		}
	}
	s.pollID = ""
}

// SubscribersOf returns the ids of sessions watching pollID, sorted.
func (h *Hub) SubscribersOf(pollID string) []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	ids := make([]string, 0, len(h.polls[pollID]))
	for id := range h.polls[pollID] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PollOf returns the poll a session watches, or "" when it watches none.
func (h *Hub) PollOf(sessionID string) string {
	h.mu.Lock()
	defer h.mu.Unlock()

	if s, ok := h.sessions[sessionID]; ok {
		return s.pollID
	}
	return ""
}

// Broadcast queues an update with tallies for every session watching pollID.
// It never blocks: a session whose outbox is full misses this update.
func (h *Hub) Broadcast(pollID string, tallies []models.Option) {
	h.mu.Lock()
	members := make([]*Session, 0, len(h.polls[pollID]))
	for _, s := range h.polls[pollID] {
		members = append(members, s)
	}
	h.mu.Unlock()

	if len(members) == 0 {
		return
	}

	frame := updateFrame(pollID, tallies)
	delivered := 0
	for _, s := range members {
		if s.enqueue(frame) {
			delivered++
		} else {
			slog.Debug("update dropped", "session_id", s.id, "poll_id", pollID)
		}
	}
	slog.Debug("update broadcast", "poll_id", pollID, "subscribers", len(members), "queued", delivered)
}

// Send queues a frame for a single session.
func (h *Hub) Send(sessionID string, frame models.Frame) bool {
	h.mu.Lock()
	s, ok := h.sessions[sessionID]
	h.mu.Unlock()
	if !ok {
		return false
	}
	return s.enqueue(frame)
}

// Len returns the number of connected sessions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.sessions)
}

// Close drops every session. Connect fails afterwards.
func (h *Hub) Close() {
	h.mu.Lock()
	sessions := make([]*Session, 0, len(h.sessions))
	for _, s := range h.sessions {
		sessions = append(sessions, s)
	}
	h.sessions = make(map[string]*Session)
	h.polls = make(map[string]map[string]*Session)
	h.closed = true
	h.mu.Unlock()

	for _, s := range sessions {
		s.close()
	}
	slog.Info("live hub closed", "sessions", len(sessions))
}

func updateFrame(pollID string, tallies []models.Option) models.Frame {
	options := make([]models.Option, len(tallies))
	copy(options, tallies)
	return models.Frame{Type: models.FrameUpdate, PollID: pollID, Options: options}
}
