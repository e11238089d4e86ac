// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/pollroom/auth"
	"github.com/danielhkuo/pollroom/cliparse"
	"github.com/danielhkuo/pollroom/ledger"
	"github.com/danielhkuo/pollroom/middleware"
	"github.com/danielhkuo/pollroom/models"
)

// Broadcaster pushes new tallies to live viewers of a poll.
type Broadcaster interface {
	Broadcast(pollID string, tallies []models.Option)
}

type VotingHandler struct {
	ledger *ledger.Ledger
	fanout Broadcaster
	cfg    cliparse.Config
}

func NewVotingHandler(l *ledger.Ledger, fanout Broadcaster, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{ledger: l, fanout: fanout, cfg: cfg}
}

// Vote handles POST /polls/:id/vote
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	// An empty body is a vote without an index; the ledger reports it after
	// the existence and duplicate checks.
	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil && !errors.Is(err, io.EOF) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	voterToken := auth.VoterToken(middleware.GetClientIP(r), h.cfg.VoterTokenSalt)
	optionIndex := req.Index()

	tallies, err := h.ledger.CastVote(r.Context(), pollID, voterToken, optionIndex)
	if err != nil {
		writeError(w, err, "Failed to vote")
		return
	}

	slog.Info("vote recorded", "poll_id", pollID, "option_index", optionIndex)

	// The vote is committed; delivery to viewers is best effort.
	if h.fanout != nil {
		h.fanout.Broadcast(pollID, tallies)
	}

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}
