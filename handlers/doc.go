// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the pollroom API.

# Handler Types

  - PollHandler: create, fetch, list and delete polls
  - VotingHandler: cast a vote and push the new tallies to live viewers

	pollHandler := handlers.NewPollHandler(st)
	votingHandler := handlers.NewVotingHandler(ledger.New(st), hub, cfg)

# Voting

POST /polls/{id}/vote takes {"optionIndex": n}. The voter is identified by
a token derived from the client IP, so one network address gets one vote
per poll. Checks run in a fixed order and the first failure wins:

	404 Poll not found
	400 You have already voted
	400 Invalid option

A missing, non-numeric or non-integer optionIndex is treated as out of range.

After the vote commits the handler broadcasts the new tallies. The response
does not wait for viewers to receive them.

# Error Responses

Errors are JSON objects:

	{"error": "Poll not found", "status": "Not Found"}

Unexpected store failures are logged and reported as 500 with a generic
message.
*/
package handlers
