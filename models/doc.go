// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - CreatePollRequest: question, options. Normalize trims, drops blank
    options and enforces 2-10 options unique ignoring case.
  - VoteRequest: optionIndex, kept raw. Index returns -1 for anything that
    is not a bare non-negative integer, including numeric strings.

# Domain Types

  - Poll: id, question, options with counts, voter tokens, timestamps
  - Option: text and votes
  - Frame: live channel message, "join" from the client and "update" from
    the server

Poll JSON:

	{
	  "id": "…",
	  "question": "Lunch?",
	  "options": [{"text": "Tacos", "votes": 2}, {"text": "Pho", "votes": 1}],
	  "voters": ["…", "…", "…"],
	  "createdAt": "…",
	  "updatedAt": "…"
	}

# Errors

ValidationError carries a message safe to show the client.
*/
package models
