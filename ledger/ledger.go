// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package ledger admits votes one at a time per poll.
package ledger

import (
	"context"
	"sync"

	"github.com/danielhkuo/pollroom/models"
)

// VoteStore applies one vote atomically and returns the new tallies.
type VoteStore interface {
	CastVote(ctx context.Context, pollID, voterToken string, optionIndex int) ([]models.Option, error)
}

// Ledger decides whether a vote is admissible and applies it exactly once.
// Calls for the same poll id run one at a time; different polls never wait
// on each other.
type Ledger struct {
	store VoteStore

	mu    sync.Mutex
	locks map[string]*pollLock
}

type pollLock struct {
	sem  chan struct{}
	refs int
}

func New(store VoteStore) *Ledger {
	return &Ledger{
		store: store,
		locks: make(map[string]*pollLock),
	}
}

// CastVote records a vote for optionIndex from voterToken. Errors come from
// the store: ErrNotFound, a *models.ValidationError for a blank token,
// ErrAlreadyVoted, ErrInvalidOption or ErrUnavailable.
// If ctx ends while waiting for the poll's turn nothing is written.
func (l *Ledger) CastVote(ctx context.Context, pollID, voterToken string, optionIndex int) ([]models.Option, error) {
	lock := l.acquire(pollID)
	defer l.release(pollID, lock)

	select {
	case lock.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-lock.sem }()

	return l.store.CastVote(ctx, pollID, voterToken, optionIndex)
}

func (l *Ledger) acquire(pollID string) *pollLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock, ok := l.locks[pollID]
	if !ok {
		lock = &pollLock{sem: make(chan struct{}, 1)}
		l.locks[pollID] = lock
	}
	lock.refs++
	return lock
}

func (l *Ledger) release(pollID string, lock *pollLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, pollID)
	}
}
