// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/danielhkuo/pollroom/db"
	"github.com/danielhkuo/pollroom/models"
)

var (
	ErrNotFound      = errors.New("poll not found")
	ErrAlreadyVoted  = errors.New("already voted")
	ErrInvalidOption = errors.New("invalid option")
	ErrUnavailable   = errors.New("store unavailable")
)

// Store persists polls, their options and their voter sets.
type Store struct {
	db     *sql.DB
	dbType string
	now    func() time.Time
}

func New(conn *sql.DB, dbType string) *Store {
	return &Store{
		db:     conn,
		dbType: dbType,
		now: func() time.Time {
			return time.Now().UTC().Truncate(time.Microsecond)
		},
	}
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrUnavailable, op, err)
}

// lockRow returns the row-locking suffix for a SELECT on the poll row.
// SQLite has no FOR UPDATE; its transactions already serialize writers.
func (s *Store) lockRow() string {
	if s.dbType == db.TypePostgres {
		return " FOR UPDATE"
	}
	return ""
}

// readTx begins a read-only transaction that sees one snapshot, so option
// counts and the voter set always agree.
func (s *Store) readTx(ctx context.Context) (*sql.Tx, error) {
	var opts *sql.TxOptions
	if s.dbType == db.TypePostgres {
		opts = &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}
	}
	return s.db.BeginTx(ctx, opts)
}

// CreatePoll stores a validated poll with every count at zero.
func (s *Store) CreatePoll(ctx context.Context, p models.NewPoll) (models.Poll, error) {
	now := s.now()
	poll := models.Poll{
		ID:        uuid.NewString(),
		Question:  p.Question,
		Options:   make([]models.Option, 0, len(p.Options)),
		Voters:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Poll{}, unavailable("begin create", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll (id, question, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, poll.ID, poll.Question, now, now)
	if err != nil {
		return models.Poll{}, unavailable("insert poll", err)
	}

	for i, text := range p.Options {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO poll_option (poll_id, position, text, votes)
			VALUES ($1, $2, $3, 0)
		`, poll.ID, i, text)
		if err != nil {
			return models.Poll{}, unavailable("insert option", err)
		}
		poll.Options = append(poll.Options, models.Option{Text: text})
	}

	if err := tx.Commit(); err != nil {
		return models.Poll{}, unavailable("commit create", err)
	}
	return poll, nil
}

// GetPoll returns the current state of one poll.
func (s *Store) GetPoll(ctx context.Context, id string) (models.Poll, error) {
	tx, err := s.readTx(ctx)
	if err != nil {
		return models.Poll{}, unavailable("begin read", err)
	}
	defer tx.Rollback()

	var poll models.Poll
	err = tx.QueryRowContext(ctx, `
		SELECT id, question, created_at, updated_at
		FROM poll
		WHERE id = $1
	`, id).Scan(&poll.ID, &poll.Question, &poll.CreatedAt, &poll.UpdatedAt)
	if err == sql.ErrNoRows {
		return models.Poll{}, ErrNotFound
	}
	if err != nil {
		return models.Poll{}, unavailable("query poll", err)
	}

	if poll.Options, err = loadOptions(ctx, tx, id); err != nil {
		return models.Poll{}, err
	}
	if poll.Voters, err = loadVoters(ctx, tx, id); err != nil {
		return models.Poll{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Poll{}, unavailable("commit read", err)
	}
	return poll, nil
}

// ListPolls returns up to limit polls, newest first.
func (s *Store) ListPolls(ctx context.Context, limit int) ([]models.Poll, error) {
	if limit <= 0 || limit > models.ListLimit {
		limit = models.ListLimit
	}

	tx, err := s.readTx(ctx)
	if err != nil {
		return nil, unavailable("begin read", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, question, created_at, updated_at
		FROM poll
		ORDER BY created_at DESC, id
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, unavailable("query polls", err)
	}

	polls := []models.Poll{}
	index := make(map[string]int)
	for rows.Next() {
		var p models.Poll
		if err := rows.Scan(&p.ID, &p.Question, &p.CreatedAt, &p.UpdatedAt); err != nil {
			rows.Close()
			return nil, unavailable("scan poll", err)
		}
		p.Options = []models.Option{}
		p.Voters = []string{}
		index[p.ID] = len(polls)
		polls = append(polls, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate polls", err)
	}
	if len(polls) == 0 {
		return polls, nil
	}

	// Options and voters for the same page, in one pass each.
	rows, err = tx.QueryContext(ctx, `
		SELECT poll_id, text, votes
		FROM poll_option
		WHERE poll_id IN (SELECT id FROM poll ORDER BY created_at DESC, id LIMIT $1)
		ORDER BY poll_id, position
	`, limit)
	if err != nil {
		return nil, unavailable("query options", err)
	}
	for rows.Next() {
		var pollID string
		var opt models.Option
		if err := rows.Scan(&pollID, &opt.Text, &opt.Votes); err != nil {
			rows.Close()
			return nil, unavailable("scan option", err)
		}
		if i, ok := index[pollID]; ok {
			polls[i].Options = append(polls[i].Options, opt)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate options", err)
	}

	rows, err = tx.QueryContext(ctx, `
		SELECT poll_id, voter_token
		FROM poll_voter
		WHERE poll_id IN (SELECT id FROM poll ORDER BY created_at DESC, id LIMIT $1)
		ORDER BY poll_id, voted_at, voter_token
	`, limit)
	if err != nil {
		return nil, unavailable("query voters", err)
	}
	for rows.Next() {
		var pollID, token string
		if err := rows.Scan(&pollID, &token); err != nil {
			rows.Close()
			return nil, unavailable("scan voter", err)
		}
		if i, ok := index[pollID]; ok {
			polls[i].Voters = append(polls[i].Voters, token)
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate voters", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit read", err)
	}
	return polls, nil
}

// DeletePoll hard-deletes a poll with its options and voters.
func (s *Store) DeletePoll(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return unavailable("begin delete", err)
	}
	defer tx.Rollback()

	var found string
	err = tx.QueryRowContext(ctx, `SELECT id FROM poll WHERE id = $1`+s.lockRow(), id).Scan(&found)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return unavailable("query poll", err)
	}

	for _, stmt := range []string{
		`DELETE FROM poll_voter WHERE poll_id = $1`,
		`DELETE FROM poll_option WHERE poll_id = $1`,
		`DELETE FROM poll WHERE id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, id); err != nil {
			return unavailable("delete poll", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return unavailable("commit delete", err)
	}
	return nil
}

// CastVote records one vote in a single transaction. The checks run in
// order: poll exists, token is present and has not voted, index is in
// range. Nothing is written unless every check passes.
//
// The voter row insert relies on the (poll_id, voter_token) primary key, and
// the count uses an in-place increment, so concurrent callers can neither
// double-count a token nor lose an increment.
func (s *Store) CastVote(ctx context.Context, pollID, voterToken string, optionIndex int) ([]models.Option, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, unavailable("begin vote", err)
	}
	defer tx.Rollback()

	var found string
	err = tx.QueryRowContext(ctx, `SELECT id FROM poll WHERE id = $1`+s.lockRow(), pollID).Scan(&found)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, unavailable("query poll", err)
	}

	if strings.TrimSpace(voterToken) == "" {
		return nil, &models.ValidationError{Message: "voter token is required"}
	}

	now := s.now()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO poll_voter (poll_id, voter_token, voted_at)
		VALUES ($1, $2, $3)
	`, pollID, voterToken, now)
	if isUniqueViolation(err) {
		return nil, ErrAlreadyVoted
	}
	if err != nil {
		return nil, unavailable("insert voter", err)
	}

	if optionIndex < 0 {
		return nil, ErrInvalidOption
	}
	res, err := tx.ExecContext(ctx, `
		UPDATE poll_option
		SET votes = votes + 1
		WHERE poll_id = $1 AND position = $2
	`, pollID, optionIndex)
	if err != nil {
		return nil, unavailable("increment option", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, unavailable("increment option", err)
	}
	if n == 0 {
		return nil, ErrInvalidOption
	}

	if _, err := tx.ExecContext(ctx, `UPDATE poll SET updated_at = $1 WHERE id = $2`, now, pollID); err != nil {
		return nil, unavailable("touch poll", err)
	}

	tallies, err := loadOptions(ctx, tx, pollID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, unavailable("commit vote", err)
	}
	return tallies, nil
}

func loadOptions(ctx context.Context, q querier, pollID string) ([]models.Option, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT text, votes
		FROM poll_option
		WHERE poll_id = $1
		ORDER BY position
	`, pollID)
	if err != nil {
		return nil, unavailable("query options", err)
	}
	defer rows.Close()

	options := []models.Option{}
	for rows.Next() {
		var opt models.Option
		if err := rows.Scan(&opt.Text, &opt.Votes); err != nil {
			return nil, unavailable("scan option", err)
		}
		options = append(options, opt)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate options", err)
	}
	return options, nil
}

func loadVoters(ctx context.Context, q querier, pollID string) ([]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT voter_token
		FROM poll_voter
		WHERE poll_id = $1
		ORDER BY voted_at, voter_token
	`, pollID)
	if err != nil {
		return nil, unavailable("query voters", err)
	}
	defer rows.Close()

	voters := []string{}
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, unavailable("scan voter", err)
		}
		voters = append(voters, token)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("iterate voters", err)
	}
	return voters, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
