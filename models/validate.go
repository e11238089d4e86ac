// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValidationError reports malformed poll creation input.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// Normalize trims the question and options, drops empty options and checks
// the option count and case-insensitive uniqueness.
func (r CreatePollRequest) Normalize() (NewPoll, error) {
	question := strings.TrimSpace(r.Question)
	if question == "" {
		return NewPoll{}, invalid("Question is required")
	}

	options := make([]string, 0, len(r.Options))
	for _, opt := range r.Options {
		if opt = strings.TrimSpace(opt); opt != "" {
			options = append(options, opt)
		}
	}
	if len(options) < MinOptions {
		return NewPoll{}, invalid("At least %d valid options are required", MinOptions)
	}
	if len(options) > MaxOptions {
		return NewPoll{}, invalid("Maximum %d options allowed", MaxOptions)
	}

	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		key := strings.ToLower(opt)
		if _, dup := seen[key]; dup {
			return NewPoll{}, invalid("Options must be unique")
		}
		seen[key] = struct{}{}
	}

	return NewPoll{Question: question, Options: options}, nil
}

// Index returns the requested option index, or -1 when the value is missing
// or not a bare non-negative integer. Strings, booleans and null all map to -1.
func (r VoteRequest) Index() int {
	raw := bytes.TrimSpace(r.OptionIndex)
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return -1
	}
	f, err := strconv.ParseFloat(string(raw), 64)
	if err != nil || f < 0 || f != math.Trunc(f) || f > math.MaxInt32 {
		return -1
	}
	return int(f)
}
