// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the pollroom API server.

pollroom runs simple single-choice polls: anyone can create a poll with
two to ten options, each client votes once, and viewers connected over a
WebSocket see the tallies change as votes land.

# Starting the Server

Settings come from the environment (a local .env file is loaded first if
present) or CLI flags:

	DATABASE_URL=pollroom.db VOTER_TOKEN_SALT=dev go run .

	go run . -p 5000 -t postgres -d "postgres://..." -voter-salt dev

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite file or PostgreSQL connection string
  - VOTER_TOKEN_SALT (-voter-salt): secret mixed into voter tokens

Optional settings:

  - PORT (-p): server port (default: 5000)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - DB_CONNECT_ATTEMPTS, DB_CONNECT_DELAY: startup retry policy
  - LIVE_SEND_BUFFER: queued updates per live viewer
  - SHUTDOWN_TIMEOUT: grace period for in-flight requests

# Architecture

  - handlers: HTTP request handlers (polls, voting)
  - router: route definitions using Go 1.22+ routing
  - store: poll persistence and the atomic vote transaction
  - ledger: per-poll serialization of votes
  - live: session registry, update fan-out and the WebSocket endpoint
  - middleware: CORS, logging, JSON helpers
  - models: request/response types and validation
  - auth: voter token derivation
  - db: connection and schema
  - cliparse: configuration parsing
*/
package main
