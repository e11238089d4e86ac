// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/pollroom/middleware"
	"github.com/danielhkuo/pollroom/models"
	"github.com/danielhkuo/pollroom/store"
)

type PollHandler struct {
	store *store.Store
}

func NewPollHandler(st *store.Store) *PollHandler {
	return &PollHandler{store: st}
}

// CreatePoll handles POST /polls
func (h *PollHandler) CreatePoll(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePollRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	// Validate input
	newPoll, err := req.Normalize()
	if err != nil {
		writeError(w, err, "Failed to create poll")
		return
	}

	poll, err := h.store.CreatePoll(r.Context(), newPoll)
	if err != nil {
		writeError(w, err, "Failed to create poll")
		return
	}

	slog.Info("poll created", "poll_id", poll.ID, "options", len(poll.Options))

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePollResponse{
		PollID: poll.ID,
	})
}

// GetPoll handles GET /polls/:id
func (h *PollHandler) GetPoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	poll, err := h.store.GetPoll(r.Context(), pollID)
	if err != nil {
		writeError(w, err, "Failed to fetch poll")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, poll)
}

// ListPolls handles GET /polls
// Newest first, capped at models.ListLimit
func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	polls, err := h.store.ListPolls(r.Context(), models.ListLimit)
	if err != nil {
		writeError(w, err, "Failed to fetch polls")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, polls)
}

// DeletePoll handles DELETE /polls/:id
func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	pollID := r.PathValue("id")
	if pollID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "poll id is required")
		return
	}

	if err := h.store.DeletePoll(r.Context(), pollID); err != nil {
		writeError(w, err, "Failed to delete poll")
		return
	}

	slog.Info("poll deleted", "poll_id", pollID)

	middleware.JSONResponse(w, http.StatusOK, models.SuccessResponse{Success: true})
}

// writeError maps domain errors to client responses. Anything else is a
// server-side failure: logged, then reported with the generic failMessage.
func writeError(w http.ResponseWriter, err error, failMessage string) {
	var validationErr *models.ValidationError
	switch {
	case errors.As(err, &validationErr):
		middleware.ErrorResponse(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, store.ErrNotFound):
		middleware.ErrorResponse(w, http.StatusNotFound, "Poll not found")
	case errors.Is(err, store.ErrAlreadyVoted):
		middleware.ErrorResponse(w, http.StatusBadRequest, "You have already voted")
	case errors.Is(err, store.ErrInvalidOption):
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid option")
	default:
		slog.Error(failMessage, "error", err, "store_unavailable", errors.Is(err, store.ErrUnavailable))
		middleware.ErrorResponse(w, http.StatusInternalServerError, failMessage)
	}
}
