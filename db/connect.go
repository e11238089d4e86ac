// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database types accepted by Open
const (
	TypeSQLite   = "sqlite"
	TypePostgres = "postgres"
)

// Open opens a connection pool for the given database type and pings it,
// retrying up to attempts times with delay between tries.
func Open(ctx context.Context, dbType, url string, attempts int, delay time.Duration) (*sql.DB, error) {
	driver, err := driverName(dbType)
	if err != nil {
		return nil, err
	}
	if attempts < 1 {
		attempts = 1
	}

	conn, err := sql.Open(driver, url)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dbType, err)
	}
	if dbType == TypeSQLite {
		// One writer at a time; also keeps ":memory:" databases on a single connection.
		conn.SetMaxOpenConns(1)
	}

	for attempt := 1; ; attempt++ {
		slog.Info("connecting to database", "type", dbType, "attempt", attempt, "max_attempts", attempts)
		err = conn.PingContext(ctx)
		if err == nil {
			slog.Info("connected to database", "type", dbType)
			return conn, nil
		}
		slog.Error("database ping failed", "attempt", attempt, "error", err)
		if attempt >= attempts {
			break
		}

		select {
		case <-ctx.Done():
			conn.Close()
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	conn.Close()
	return nil, fmt.Errorf("database unreachable after %d attempts: %w", attempts, err)
}

func driverName(dbType string) (string, error) {
	switch dbType {
	case TypeSQLite:
		return "sqlite", nil
	case TypePostgres:
		return "postgres", nil
	}
	return "", fmt.Errorf("unsupported database type %q (use sqlite or postgres)", dbType)
}
