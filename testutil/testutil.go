// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/livepoll/cliparse"
	"github.com/danielhkuo/livepoll/db"
	"github.com/danielhkuo/livepoll/token"
)

// TestDBURL is an in-memory SQLite database; every SetupTestDB call gets a fresh one
const TestDBURL = ":memory:"

// SetupTestDB creates a fresh test database with the full schema
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(cliparse.DatabaseSQLite, TestDBURL)
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if err := db.CreateSchema(conn); err != nil {
		conn.Close()
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:         3001,
		DatabaseURL:  TestDBURL,
		DatabaseType: cliparse.DatabaseSQLite,
		FrontendURL:  "https://slides.example.com",
		LogLevel:     "info",
		LogFormat:    "text",
	}
}

// CreateTestEvent inserts an event and returns its ID
func CreateTestEvent(t *testing.T, db *sql.DB, title string) string {
	t.Helper()

	eventID, _ := token.GenerateShortID()
	_, err := db.Exec(`
		INSERT INTO event (event_id, title, created_at)
		VALUES ($1, $2, $3)
	`, eventID, title, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test event: %v", err)
	}

	return eventID
}

// CreateTestSurvey inserts a survey with the given options (order 1..n) and
// returns the survey ID and option IDs in order
func CreateTestSurvey(t *testing.T, db *sql.DB, eventID, title string, options ...string) (string, []string) {
	t.Helper()

	surveyID, _ := token.GenerateShortID()
	_, err := db.Exec(`
		INSERT INTO survey (survey_id, event_id, title, question, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, surveyID, eventID, title, title+"?", time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test survey: %v", err)
	}

	optionIDs := make([]string, 0, len(options))
	for i, text := range options {
		optionID := token.NewRowID()
		_, err := db.Exec(`
			INSERT INTO survey_option (id, survey_id, text, sort_order)
			VALUES ($1, $2, $3, $4)
		`, optionID, surveyID, text, i+1)
		if err != nil {
			t.Fatalf("Failed to create test option: %v", err)
		}
		optionIDs = append(optionIDs, optionID)
	}

	return surveyID, optionIDs
}

// AddTestResponse records a vote directly and returns the response ID
func AddTestResponse(t *testing.T, db *sql.DB, surveyID, optionID, userToken string) string {
	t.Helper()

	responseID := token.NewRowID()
	_, err := db.Exec(`
		INSERT INTO response (id, survey_id, survey_option_id, user_token, submitted_at)
		VALUES ($1, $2, $3, $4, $5)
	`, responseID, surveyID, optionID, userToken, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test response: %v", err)
	}

	return responseID
}

// CountResponses returns the number of response rows for a survey
func CountResponses(t *testing.T, db *sql.DB, surveyID string) int {
	t.Helper()

	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM response WHERE survey_id = $1`, surveyID).Scan(&n); err != nil {
		t.Fatalf("Failed to count responses: %v", err)
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

// AssertData decodes a {"success": true, "data": ...} body and unpacks data into v
func AssertData(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	AssertJSON(t, w, &env)
	if !env.Success {
		t.Fatalf("Expected success envelope, got error %q", env.Error)
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		t.Fatalf("Failed to decode data: %v", err)
	}
}

// AssertError decodes a {"success": false, "error": ...} body and returns the message
func AssertError(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var env struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	AssertJSON(t, w, &env)
	if env.Success {
		t.Fatal("Expected error envelope, got success")
	}
	if env.Error == "" {
		t.Error("Expected non-empty error message")
	}
	return env.Error
}
