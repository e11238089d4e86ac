// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package live pushes vote tallies to connected viewers.

A Hub is the session registry and the fan-out. Each WebSocket connection is
a Session that watches at most one poll:

	client -> {"type": "join", "pollId": "..."}
	server -> {"type": "update", "pollId": "...", "options": [{"text": "a", "votes": 3}]}

Joining moves the session off any previous poll and sends the current
tallies right away. After a vote commits, Broadcast queues an update for
every session on that poll. Each session has its own buffered outbox and
writer goroutine, so a slow viewer only loses its own updates and never
delays the voter or other viewers. An update whose total is below one
already queued for the same poll is skipped.

Sessions are held in memory only.
*/
package live
