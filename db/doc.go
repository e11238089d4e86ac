// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

Open picks the driver from the database type (sqlite via modernc.org/sqlite,
postgres via lib/pq) and pings until the database answers:

	conn, err := db.Open(ctx, "postgres", url, 5, 5*time.Second)

SQLite pools are limited to one open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - poll: question and timestamps
  - poll_option: ordered options with their vote counts
  - poll_voter: voter tokens that have voted, one row per (poll, token)

# Relationships

	poll 1──* poll_option
	poll 1──* poll_voter

Foreign keys declare ON DELETE CASCADE, but the store deletes child rows
explicitly because SQLite only enforces foreign keys when asked to.
*/
package db
