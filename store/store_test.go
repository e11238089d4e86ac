// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/danielhkuo/pollroom/models"
	"github.com/danielhkuo/pollroom/testutil"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(testutil.SetupTestDB(t), testutil.TestDBType())
}

func mustCreate(t *testing.T, s *Store, question string, options ...string) models.Poll {
	t.Helper()
	poll, err := s.CreatePoll(context.Background(), models.NewPoll{Question: question, Options: options})
	if err != nil {
		t.Fatalf("CreatePoll: %v", err)
	}
	return poll
}

func TestCreateAndGetPoll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created := mustCreate(t, s, "Lunch?", "Tacos", "Pho", "Salad")
	if created.ID == "" {
		t.Fatal("expected an id")
	}

	got, err := s.GetPoll(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetPoll: %v", err)
	}

	if got.Question != "Lunch?" {
		t.Errorf("expected question 'Lunch?', got %q", got.Question)
	}
	if len(got.Options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(got.Options))
	}
	for i, want := range []string{"Tacos", "Pho", "Salad"} {
		if got.Options[i].Text != want || got.Options[i].Votes != 0 {
			t.Errorf("option %d: got %+v, want %q with 0 votes", i, got.Options[i], want)
		}
	}
	if got.Voters == nil || len(got.Voters) != 0 {
		t.Errorf("expected empty voter list, got %v", got.Voters)
	}
	if !got.CreatedAt.Equal(created.CreatedAt) {
		t.Errorf("createdAt round trip: got %v, want %v", got.CreatedAt, created.CreatedAt)
	}
}

func TestGetPollNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetPoll(context.Background(), "nonexistent")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestCastVote(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	poll := mustCreate(t, s, "Q", "a", "b")

	tallies, err := s.CastVote(ctx, poll.ID, "voter-1", 1)
	if err != nil {
		t.Fatalf("CastVote: %v", err)
	}
	if tallies[0].Votes != 0 || tallies[1].Votes != 1 {
		t.Errorf("unexpected tallies %+v", tallies)
	}

	got, _ := s.GetPoll(ctx, poll.ID)
	if got.TotalVotes() != len(got.Voters) {
		t.Errorf("total votes %d != voters %d", got.TotalVotes(), len(got.Voters))
	}
	if len(got.Voters) != 1 || got.Voters[0] != "voter-1" {
		t.Errorf("expected voters [voter-1], got %v", got.Voters)
	}
	if got.UpdatedAt.Before(got.CreatedAt) {
		t.Error("updatedAt should not be before createdAt")
	}
}

func TestCastVoteErrorOrder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	poll := mustCreate(t, s, "Q", "a", "b")

	if _, err := s.CastVote(ctx, poll.ID, "voter-1", 0); err != nil {
		t.Fatalf("first vote: %v", err)
	}

	tests := []struct {
		name    string
		pollID  string
		token   string
		index   int
		wantErr error
	}{
		{"missing poll wins over bad index", "nonexistent", "voter-2", 99, ErrNotFound},
		{"duplicate wins over bad index", poll.ID, "voter-1", 99, ErrAlreadyVoted},
		{"duplicate with valid index", poll.ID, "voter-1", 1, ErrAlreadyVoted},
		{"index too large", poll.ID, "voter-2", 2, ErrInvalidOption},
		{"negative index", poll.ID, "voter-2", -1, ErrInvalidOption},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CastVote(ctx, tt.pollID, tt.token, tt.index)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	// Rejected votes leave no trace
	got, _ := s.GetPoll(ctx, poll.ID)
	if got.TotalVotes() != 1 || len(got.Voters) != 1 {
		t.Errorf("expected 1 vote and 1 voter, got %d votes and voters %v", got.TotalVotes(), got.Voters)
	}
}

func TestCastVoteBlankToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	poll := mustCreate(t, s, "Q", "a", "b")

	// A missing poll is reported before the token is looked at
	if _, err := s.CastVote(ctx, "nonexistent", "  ", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	_, err := s.CastVote(ctx, poll.ID, "", 0)
	var vErr *models.ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	got, _ := s.GetPoll(ctx, poll.ID)
	if got.TotalVotes() != 0 || len(got.Voters) != 0 {
		t.Errorf("blank token must not be recorded, got %d votes and voters %v", got.TotalVotes(), got.Voters)
	}
}

func TestCastVoteSameTokenOtherPoll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	p1 := mustCreate(t, s, "Q1", "a", "b")
	p2 := mustCreate(t, s, "Q2", "a", "b")

	if _, err := s.CastVote(ctx, p1.ID, "same", 0); err != nil {
		t.Fatalf("vote p1: %v", err)
	}
	if _, err := s.CastVote(ctx, p2.ID, "same", 0); err != nil {
		t.Errorf("a token may vote once per poll, got %v", err)
	}
}

func TestListPollsNewestFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	var tick int
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	first := mustCreate(t, s, "first", "a", "b")
	second := mustCreate(t, s, "second", "a", "b")
	third := mustCreate(t, s, "third", "a", "b")

	if _, err := s.CastVote(ctx, first.ID, "v", 1); err != nil {
		t.Fatalf("CastVote: %v", err)
	}

	polls, err := s.ListPolls(ctx, models.ListLimit)
	if err != nil {
		t.Fatalf("ListPolls: %v", err)
	}
	if len(polls) != 3 {
		t.Fatalf("expected 3 polls, got %d", len(polls))
	}
	for i, want := range []string{third.ID, second.ID, first.ID} {
		if polls[i].ID != want {
			t.Errorf("position %d: expected %s, got %s", i, want, polls[i].ID)
		}
	}
	if polls[2].Options[1].Votes != 1 || len(polls[2].Voters) != 1 {
		t.Errorf("listed poll should carry its tallies, got %+v", polls[2])
	}
}

func TestListPollsLimit(t *testing.T) {
	s := newTestStore(t)
	for i := 0; i < 5; i++ {
		mustCreate(t, s, fmt.Sprintf("poll %d", i), "a", "b")
	}

	polls, err := s.ListPolls(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListPolls: %v", err)
	}
	if len(polls) != 3 {
		t.Errorf("expected 3 polls, got %d", len(polls))
	}
}

func TestListPollsEmpty(t *testing.T) {
	s := newTestStore(t)

	polls, err := s.ListPolls(context.Background(), models.ListLimit)
	if err != nil {
		t.Fatalf("ListPolls: %v", err)
	}
	if polls == nil || len(polls) != 0 {
		t.Errorf("expected empty non-nil list, got %v", polls)
	}
}

func TestDeletePoll(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	poll := mustCreate(t, s, "Q", "a", "b")
	if _, err := s.CastVote(ctx, poll.ID, "v", 0); err != nil {
		t.Fatalf("CastVote: %v", err)
	}

	if err := s.DeletePoll(ctx, poll.ID); err != nil {
		t.Fatalf("DeletePoll: %v", err)
	}

	if _, err := s.GetPoll(ctx, poll.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := s.CastVote(ctx, poll.ID, "other", 0); !errors.Is(err, ErrNotFound) {
		t.Errorf("vote on deleted poll: expected ErrNotFound, got %v", err)
	}

	var options int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM poll_option WHERE poll_id = $1`, poll.ID).Scan(&options); err != nil {
		t.Fatal(err)
	}
	if options != 0 {
		t.Errorf("expected options removed, %d left", options)
	}

	if err := s.DeletePoll(ctx, poll.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}

func TestConcurrentVotesDistinctTokens(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	poll := mustCreate(t, s, "Q", "a", "b", "c")

	const voters = 20
	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := s.CastVote(ctx, poll.ID, fmt.Sprintf("voter-%d", i), i%3); err != nil {
				t.Logf("vote %d: %v", i, err)
				failures.Add(1)
			}
		}(i)
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Fatalf("%d votes failed", failures.Load())
	}

	got, err := s.GetPoll(ctx, poll.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.TotalVotes() != voters || len(got.Voters) != voters {
		t.Errorf("expected %d votes and voters, got %d votes and %d voters", voters, got.TotalVotes(), len(got.Voters))
	}
}

func TestConcurrentVotesSameToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	poll := mustCreate(t, s, "Q", "a", "b")

	const attempts = 10
	var wg sync.WaitGroup
	var ok, dup atomic.Int32
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.CastVote(ctx, poll.ID, "same-voter", 0)
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, ErrAlreadyVoted):
				dup.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if ok.Load() != 1 || dup.Load() != attempts-1 {
		t.Errorf("expected 1 success and %d duplicates, got %d and %d", attempts-1, ok.Load(), dup.Load())
	}

	got, _ := s.GetPoll(ctx, poll.ID)
	if got.TotalVotes() != 1 {
		t.Errorf("expected 1 vote, got %d", got.TotalVotes())
	}
}
