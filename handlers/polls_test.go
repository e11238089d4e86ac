// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/danielhkuo/pollroom/models"
	"github.com/danielhkuo/pollroom/store"
	"github.com/danielhkuo/pollroom/testutil"
)

func setupStore(t *testing.T) (*sql.DB, *store.Store) {
	t.Helper()
	conn := testutil.SetupTestDB(t)
	return conn, store.New(conn, testutil.TestDBType())
}

func TestCreatePoll(t *testing.T) {
	conn, st := setupStore(t)
	handler := NewPollHandler(st)

	tests := []struct {
		name           string
		requestBody    interface{}
		expectedStatus int
		expectedError  string
		checkResponse  func(t *testing.T, resp *models.CreatePollResponse)
	}{
		{
			name: "valid poll creation",
			requestBody: models.CreatePollRequest{
				Question: "Lunch?",
				Options:  []string{"Tacos", " Pho ", ""},
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp *models.CreatePollResponse) {
				if resp.PollID == "" {
					t.Fatal("Expected non-empty pollId")
				}

				// Verify options were stored trimmed, blanks dropped
				var count int
				err := conn.QueryRow("SELECT COUNT(*) FROM poll_option WHERE poll_id = $1", resp.PollID).Scan(&count)
				if err != nil {
					t.Fatalf("Failed to query options: %v", err)
				}
				if count != 2 {
					t.Errorf("Expected 2 options, got %d", count)
				}
				var text string
				conn.QueryRow("SELECT text FROM poll_option WHERE poll_id = $1 AND position = 1", resp.PollID).Scan(&text)
				if text != "Pho" {
					t.Errorf("Expected trimmed 'Pho', got %q", text)
				}
			},
		},
		{
			name:           "missing question",
			requestBody:    models.CreatePollRequest{Options: []string{"a", "b"}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Question is required",
		},
		{
			name:           "one option",
			requestBody:    models.CreatePollRequest{Question: "Q", Options: []string{"a"}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "At least 2 valid options are required",
		},
		{
			name: "eleven options",
			requestBody: models.CreatePollRequest{Question: "Q", Options: []string{
				"1", "2", "3", "4", "5", "6", "7", "8", "9", "10", "11",
			}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Maximum 10 options allowed",
		},
		{
			name:           "duplicate options ignoring case",
			requestBody:    models.CreatePollRequest{Question: "Q", Options: []string{"a", "A"}},
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Options must be unique",
		},
		{
			name:           "invalid JSON",
			requestBody:    "invalid json",
			expectedStatus: http.StatusBadRequest,
			expectedError:  "Invalid JSON",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body []byte
			var err error

			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, err = json.Marshal(tt.requestBody)
				if err != nil {
					t.Fatalf("Failed to marshal request body: %v", err)
				}
			}

			req := httptest.NewRequest("POST", "/polls", bytes.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreatePoll(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)

			if tt.expectedError != "" {
				var resp models.ErrorResponse
				testutil.AssertJSON(t, w, &resp)
				if resp.Error != tt.expectedError {
					t.Errorf("Expected error %q, got %q", tt.expectedError, resp.Error)
				}
			}

			if tt.expectedStatus == http.StatusCreated && tt.checkResponse != nil {
				var resp models.CreatePollResponse
				testutil.AssertJSON(t, w, &resp)
				tt.checkResponse(t, &resp)
			}
		})
	}
}

func TestGetPoll(t *testing.T) {
	conn, st := setupStore(t)
	handler := NewPollHandler(st)

	pollID := testutil.CreateTestPoll(t, conn, "Lunch?", "Tacos", "Pho")

	tests := []struct {
		name           string
		pollID         string
		expectedStatus int
	}{
		{"existing poll", pollID, http.StatusOK},
		{"unknown poll", "nonexistent", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/polls/"+tt.pollID, nil)
			req.SetPathValue("id", tt.pollID)
			w := httptest.NewRecorder()

			handler.GetPoll(w, req)

			testutil.AssertStatus(t, w, tt.expectedStatus)
			if tt.expectedStatus != http.StatusOK {
				return
			}

			var poll models.Poll
			testutil.AssertJSON(t, w, &poll)
			if poll.ID != pollID || poll.Question != "Lunch?" {
				t.Errorf("unexpected poll %+v", poll)
			}
			if len(poll.Options) != 2 || poll.Options[0].Text != "Tacos" {
				t.Errorf("unexpected options %+v", poll.Options)
			}
			if poll.Voters == nil {
				t.Error("voters should be an empty list, not null")
			}
		})
	}
}

func TestGetPollJSONShape(t *testing.T) {
	conn, st := setupStore(t)
	handler := NewPollHandler(st)
	pollID := testutil.CreateTestPoll(t, conn, "Q", "a", "b")

	req := httptest.NewRequest("GET", "/polls/"+pollID, nil)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()
	handler.GetPoll(w, req)

	body := w.Body.String()
	for _, key := range []string{`"id"`, `"question"`, `"options"`, `"voters"`, `"createdAt"`, `"updatedAt"`, `"votes"`} {
		if !strings.Contains(body, key) {
			t.Errorf("response missing %s: %s", key, body)
		}
	}
}

func TestListPolls(t *testing.T) {
	_, st := setupStore(t)
	handler := NewPollHandler(st)

	// Empty store lists as []
	req := httptest.NewRequest("GET", "/polls", nil)
	w := httptest.NewRecorder()
	handler.ListPolls(w, req)
	testutil.AssertStatus(t, w, http.StatusOK)
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("expected [], got %s", got)
	}

	for _, q := range []string{"first", "second"} {
		body, _ := json.Marshal(models.CreatePollRequest{Question: q, Options: []string{"a", "b"}})
		req := httptest.NewRequest("POST", "/polls", bytes.NewReader(body))
		NewPollHandler(st).CreatePoll(httptest.NewRecorder(), req)
	}

	req = httptest.NewRequest("GET", "/polls", nil)
	w = httptest.NewRecorder()
	handler.ListPolls(w, req)

	var polls []models.Poll
	testutil.AssertJSON(t, w, &polls)
	if len(polls) != 2 {
		t.Fatalf("expected 2 polls, got %d", len(polls))
	}
	if polls[0].CreatedAt.Before(polls[1].CreatedAt) {
		t.Error("expected newest poll first")
	}
}

func TestDeletePoll(t *testing.T) {
	conn, st := setupStore(t)
	handler := NewPollHandler(st)
	pollID := testutil.CreateTestPoll(t, conn, "Q", "a", "b")

	req := httptest.NewRequest("DELETE", "/polls/"+pollID, nil)
	req.SetPathValue("id", pollID)
	w := httptest.NewRecorder()
	handler.DeletePoll(w, req)

	testutil.AssertStatus(t, w, http.StatusOK)
	var resp models.SuccessResponse
	testutil.AssertJSON(t, w, &resp)
	if !resp.Success {
		t.Error("expected success")
	}

	// Gone afterwards
	req = httptest.NewRequest("GET", "/polls/"+pollID, nil)
	req.SetPathValue("id", pollID)
	w = httptest.NewRecorder()
	handler.GetPoll(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)

	// Second delete is a 404
	req = httptest.NewRequest("DELETE", "/polls/"+pollID, nil)
	req.SetPathValue("id", pollID)
	w = httptest.NewRecorder()
	handler.DeletePoll(w, req)
	testutil.AssertStatus(t, w, http.StatusNotFound)
}
