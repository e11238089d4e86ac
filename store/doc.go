// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store persists polls, their option counts and voter sets.

	st := store.New(conn, cfg.DatabaseType)
	poll, err := st.CreatePoll(ctx, newPoll)
	tallies, err := st.CastVote(ctx, pollID, voterToken, optionIndex)

Queries use $N placeholders and run on both PostgreSQL (lib/pq) and SQLite
(modernc.org/sqlite).

# Votes

CastVote does everything in one transaction: lock the poll row, insert the
(poll_id, voter_token) row, increment the chosen option, return the new
tallies. The first failing check decides the error:

	ErrNotFound       poll does not exist
	ErrAlreadyVoted   token already in the voter set
	ErrInvalidOption  index outside the option list

Nothing is written unless all checks pass, so the sum of option counts
always equals the number of voters.

# Reads

GetPoll and ListPolls read options and voters inside one transaction
(REPEATABLE READ on PostgreSQL) so a poll is never returned half-updated.

Failures of the database itself wrap ErrUnavailable.
*/
package store
