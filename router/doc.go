// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the pollroom API.

	mux := router.NewRouter(st, hub, cfg)

# Endpoints

Every route is also served under /api (for example /api/polls).

	GET    /health          - Liveness check
	POST   /polls           - Create poll
	GET    /polls           - List polls, newest first (max 100)
	GET    /polls/{id}      - Get one poll
	DELETE /polls/{id}      - Delete poll
	POST   /polls/{id}/vote - Vote
	GET    /ws              - Live updates (WebSocket)

HTTP routes are wrapped in middleware.WithLogging. The WebSocket route is
not, since the upgrade hijacks the underlying connection.
*/
package router
