// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"log/slog"
	"sync"

	"github.com/danielhkuo/pollroom/models"
)

// Session is one live connection. pollID is guarded by the hub's mutex.
type Session struct {
	id     string
	pollID string

	sender    Sender
	outbox    chan models.Frame
	done      chan struct{}
	closeOnce sync.Once

	// last update queued, used to drop tallies older than what the viewer has
	mu        sync.Mutex
	lastPoll  string
	lastTotal int
}

func newSession(id string, sender Sender, buffer int) *Session {
	return &Session{
		id:     id,
		sender: sender,
		outbox: make(chan models.Frame, buffer),
		done:   make(chan struct{}),
	}
}

func (s *Session) ID() string {
	return s.id
}

// Done is closed once the session has been disconnected.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// enqueue hands a frame to the writer without blocking. Counts only grow,
// so an update with a smaller total than the last one queued for the same
// poll is stale and skipped.
func (s *Session) enqueue(frame models.Frame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if frame.Type == models.FrameUpdate {
		total := 0
		for _, opt := range frame.Options {
			total += opt.Votes
		}
		if frame.PollID == s.lastPoll && total < s.lastTotal {
			return false
		}
		if !s.offer(frame) {
			return false
		}
		s.lastPoll = frame.PollID
		s.lastTotal = total
		return true
	}
	return s.offer(frame)
}

func (s *Session) offer(frame models.Frame) bool {
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.outbox <- frame:
		return true
	default:
		return false
	}
}

func (s *Session) writeLoop(h *Hub) {
	for {
		select {
		case <-s.done:
			return
		case frame := <-s.outbox:
			if err := s.sender.Send(frame); err != nil {
				slog.Warn("live send failed", "session_id", s.id, "error", err)
				h.Disconnect(s.id)
				return
			}
		}
	}
}

func (s *Session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		if err := s.sender.Close(); err != nil {
			slog.Debug("live sender close", "session_id", s.id, "error", err)
		}
	})
}
