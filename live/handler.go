// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package live

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/websocket"

	"github.com/danielhkuo/pollroom/models"
	"github.com/danielhkuo/pollroom/store"
)

const (
	maxDecodeErrors = 5
	snapshotTimeout = 5 * time.Second
)

// PollReader loads the current tallies sent to a viewer when it joins.
type PollReader interface {
	GetPoll(ctx context.Context, id string) (models.Poll, error)
}

type wsSender struct {
	conn *websocket.Conn
}

func (w wsSender) Send(frame models.Frame) error {
	return websocket.JSON.Send(w.conn, frame)
}

func (w wsSender) Close() error {
	return w.conn.Close()
}

// NewHandler serves the live channel. Any origin is accepted, matching the
// permissive CORS policy of the HTTP API.
func NewHandler(hub *Hub, polls PollReader) http.Handler {
	return websocket.Server{
		Handshake: func(cfg *websocket.Config, r *http.Request) error {
			cfg.Origin, _ = websocket.Origin(cfg, r)
			return nil
		},
		Handler: func(conn *websocket.Conn) {
			serveConn(conn, hub, polls)
		},
	}
}

func serveConn(conn *websocket.Conn, hub *Hub, polls PollReader) {
	defer conn.Close()

	session, err := hub.Connect(wsSender{conn: conn})
	if err != nil {
		slog.Warn("live connection refused", "remote", conn.Request().RemoteAddr, "error", err)
		return
	}
	defer hub.Disconnect(session.ID())

	ctx := conn.Request().Context()
	decodeErrors := 0
	for {
		var frame models.Frame
		if err := websocket.JSON.Receive(conn, &frame); err != nil {
			var syntaxErr *json.SyntaxError
			var typeErr *json.UnmarshalTypeError
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				decodeErrors++
				slog.Warn("invalid live frame", "session_id", session.ID(), "error", err)
				if decodeErrors >= maxDecodeErrors {
					return
				}
				continue
			}
			if !errors.Is(err, io.EOF) {
				slog.Debug("live read ended", "session_id", session.ID(), "error", err)
			}
			return
		}
		decodeErrors = 0

		switch frame.Type {
		case models.FrameJoin:
			join(ctx, hub, session, polls, frame.PollID)
		default:
			slog.Warn("unsupported live frame", "session_id", session.ID(), "type", frame.Type)
		}
	}
}

func join(ctx context.Context, hub *Hub, session *Session, polls PollReader, pollID string) {
	pollID = strings.TrimSpace(pollID)
	if pollID == "" {
		slog.Warn("join without poll id", "session_id", session.ID())
		return
	}
	previous := hub.PollOf(session.ID())
	if err := hub.Subscribe(session.ID(), pollID); err != nil {
		return
	}
	slog.Info("live session joined poll", "session_id", session.ID(), "poll_id", pollID, "previous_poll_id", previous)

	if polls == nil {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, snapshotTimeout)
	defer cancel()

	poll, err := polls.GetPoll(ctx, pollID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slog.Error("failed to load poll for join", "poll_id", pollID, "error", err)
		}
		return
	}
	if !hub.Send(session.ID(), updateFrame(pollID, poll.Options)) {
		slog.Debug("join tallies dropped", "session_id", session.ID(), "poll_id", pollID)
		return
	}
	slog.Debug("join tallies sent", "session_id", session.ID(), "poll_id", pollID, "total_votes", poll.TotalVotes())
}
