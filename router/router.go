// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/pollroom/cliparse"
	"github.com/danielhkuo/pollroom/handlers"
	"github.com/danielhkuo/pollroom/ledger"
	"github.com/danielhkuo/pollroom/live"
	"github.com/danielhkuo/pollroom/middleware"
	"github.com/danielhkuo/pollroom/store"
)

// Every route is served both at the root and under /api.
var prefixes = []string{"", "/api"}

func NewRouter(st *store.Store, hub *live.Hub, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// Initialize handlers
	pollHandler := handlers.NewPollHandler(st)
	votingHandler := handlers.NewVotingHandler(ledger.New(st), hub, cfg)
	liveHandler := live.NewHandler(hub, st)

	for _, prefix := range prefixes {
		// Health check
		mux.HandleFunc("GET "+prefix+"/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})

		// Poll lifecycle
		mux.HandleFunc("POST "+prefix+"/polls", middleware.WithLogging(pollHandler.CreatePoll))
		mux.HandleFunc("GET "+prefix+"/polls", middleware.WithLogging(pollHandler.ListPolls))
		mux.HandleFunc("GET "+prefix+"/polls/{id}", middleware.WithLogging(pollHandler.GetPoll))
		mux.HandleFunc("DELETE "+prefix+"/polls/{id}", middleware.WithLogging(pollHandler.DeletePoll))

		// Voting
		mux.HandleFunc("POST "+prefix+"/polls/{id}/vote", middleware.WithLogging(votingHandler.Vote))

		// Live updates. Not wrapped in WithLogging: the upgrade needs the
		// connection's own ResponseWriter to hijack it.
		mux.Handle("GET "+prefix+"/ws", liveHandler)
	}

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("pollroom API v1"))
	})

	return mux
}
