package models

import (
	"encoding/json"
	"time"
)

// Poll size limits
const (
	MinOptions = 2
	MaxOptions = 10

	// ListLimit caps GET /polls
	ListLimit = 100
)

// Live channel frame types
const (
	FrameJoin   = "join"
	FrameUpdate = "update"
)

// Request types

type CreatePollRequest struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
}

// OptionIndex is kept raw so any value, numeric or not, reaches the vote
// ledger instead of failing JSON decoding.
type VoteRequest struct {
	OptionIndex json.RawMessage `json:"optionIndex"`
}

// Response types

type CreatePollResponse struct {
	PollID string `json:"pollId"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}

// Domain types

type Poll struct {
	ID        string    `json:"id"`
	Question  string    `json:"question"`
	Options   []Option  `json:"options"`
	Voters    []string  `json:"voters"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TotalVotes sums the option counts.
func (p Poll) TotalVotes() int {
	total := 0
	for _, opt := range p.Options {
		total += opt.Votes
	}
	return total
}

// Option is also the tally entry pushed to live viewers.
type Option struct {
	Text  string `json:"text"`
	Votes int    `json:"votes"`
}

// NewPoll is a validated creation request.
type NewPoll struct {
	Question string
	Options  []string
}

// Live channel frames

// Frame is the single envelope used on the live channel in both directions.
type Frame struct {
	Type    string   `json:"type"`
	PollID  string   `json:"pollId"`
	Options []Option `json:"options,omitempty"`
}

// Error response

type ErrorResponse struct {
	Error  string `json:"error"`
	Status string `json:"status,omitempty"`
}
