// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth derives the voter token used to allow one vote per poll.

	token := auth.VoterToken(middleware.GetClientIP(r), cfg.VoterTokenSalt)

The token is the first 16 bytes (32 hex chars) of HMAC-SHA256 over the
client IP. It is deterministic, so the same address voting twice on a poll
is recognized, and the salt keeps raw addresses out of the database.

It is a heuristic, not authentication. Clients sharing a NAT share a token
and a client that can set X-Forwarded-For can vote again.
*/
package auth
