// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/danielhkuo/pollroom/cliparse"
	"github.com/danielhkuo/pollroom/db"
)

// TestDBURLEnv names the variable that points tests at a PostgreSQL
// database. When it is unset tests run against in-memory SQLite.
const TestDBURLEnv = "TEST_DATABASE_URL"

// TestDBType reports which database SetupTestDB will open.
func TestDBType() string {
	if os.Getenv(TestDBURLEnv) != "" {
		return db.TypePostgres
	}
	return db.TypeSQLite
}

// SetupTestDB opens a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	dbType, url := TestDBType(), os.Getenv(TestDBURLEnv)
	if dbType == db.TypeSQLite {
		url = ":memory:"
	}

	conn, err := db.Open(context.Background(), dbType, url, 1, 0)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	// Clean up tables before each test
	for _, table := range []string{"poll_voter", "poll_option", "poll"} {
		if _, err := conn.Exec(`DROP TABLE IF EXISTS ` + table); err != nil {
			t.Fatalf("Failed to clean database: %v", err)
		}
	}

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:              3318,
		DatabaseURL:       ":memory:",
		DatabaseType:      TestDBType(),
		VoterTokenSalt:    "test-voter-salt",
		DBConnectAttempts: 1,
		LiveSendBuffer:    16,
		ShutdownTimeout:   time.Second,
	}
}

// CreateTestPoll inserts a poll with zero-count options and returns its ID
func CreateTestPoll(t *testing.T, conn *sql.DB, question string, options ...string) string {
	t.Helper()

	pollID := uuid.NewString()
	now := time.Now().UTC().Truncate(time.Microsecond)
	_, err := conn.Exec(`
		INSERT INTO poll (id, question, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`, pollID, question, now, now)
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	for i, text := range options {
		_, err := conn.Exec(`
			INSERT INTO poll_option (poll_id, position, text, votes)
			VALUES ($1, $2, $3, 0)
		`, pollID, i, text)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
	}

	return pollID
}

// CountVoters returns how many voter rows a poll has
func CountVoters(t *testing.T, conn *sql.DB, pollID string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM poll_voter WHERE poll_id = $1`, pollID).Scan(&n); err != nil {
		t.Fatalf("Failed to count voters: %v", err)
	}
	return n
}

// SumVotes returns the total of all option counts of a poll
func SumVotes(t *testing.T, conn *sql.DB, pollID string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COALESCE(SUM(votes), 0) FROM poll_option WHERE poll_id = $1`, pollID).Scan(&n); err != nil {
		t.Fatalf("Failed to sum votes: %v", err)
	}
	return n
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}
