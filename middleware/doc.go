// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP middleware and helper functions.

# Request Logging

	mux.HandleFunc("GET /polls", middleware.WithLogging(handler))

Logs request start (method, path, remote) and completion (status,
duration_ms). The wrapped ResponseWriter cannot be hijacked, so WebSocket
routes are registered without it.

# CORS Middleware

	server := http.Server{
		Handler: middleware.CORS(mux),
	}

Echoes the request Origin (or *) and answers preflight OPTIONS requests.

# JSON Helpers

	middleware.JSONResponse(w, http.StatusOK, data)
	middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid option")

	var req models.VoteRequest
	err := middleware.ParseJSONBody(r, &req)

# Client IP Extraction

	ip := middleware.GetClientIP(r)

First non-empty X-Forwarded-For entry, then X-Real-IP, then the host part
of RemoteAddr. Feeds auth.VoterToken.
*/
package middleware
