// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles configuration from the environment and CLI flags.

	cfg, err := cliparse.ParseFlags(os.Args[1:])

Environment variables are read first with github.com/caarlos0/env, then
flags override them:

	PORT                -p                (default 5000)
	DATABASE_URL        -d                (required)
	DATABASE_TYPE       -t                (sqlite|postgres, default sqlite)
	VOTER_TOKEN_SALT    -voter-salt       (required)
	DB_CONNECT_ATTEMPTS -db-attempts      (default 5)
	DB_CONNECT_DELAY    -db-delay         (default 5s)
	LIVE_SEND_BUFFER    -live-buffer      (default 16)
	SHUTDOWN_TIMEOUT    -shutdown-timeout (default 10s)

ParseFlags returns an error for a missing database URL or salt, an
unsupported database type, a port outside 1-65535, or an env value that
does not parse.
*/
package cliparse
