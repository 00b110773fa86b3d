// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package db

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables needed for the application.
// Safe to call multiple times - uses IF NOT EXISTS.
func CreateSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// The DDL sticks to types and syntax shared by PostgreSQL and SQLite.
const schema = `
-- Events
CREATE TABLE IF NOT EXISTS event (
    event_id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

-- Surveys
CREATE TABLE IF NOT EXISTS survey (
    survey_id TEXT PRIMARY KEY,
    event_id TEXT NOT NULL REFERENCES event(event_id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    question TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_survey_event_id ON survey(event_id);

-- Options
CREATE TABLE IF NOT EXISTS survey_option (
    id TEXT PRIMARY KEY,
    survey_id TEXT NOT NULL REFERENCES survey(survey_id) ON DELETE CASCADE,
    text TEXT NOT NULL,
    sort_order INTEGER NOT NULL CHECK (sort_order >= 1),
    UNIQUE (survey_id, sort_order)
);

CREATE INDEX IF NOT EXISTS idx_survey_option_survey_id ON survey_option(survey_id);

-- Responses (append-only)
CREATE TABLE IF NOT EXISTS response (
    id TEXT PRIMARY KEY,
    survey_id TEXT NOT NULL REFERENCES survey(survey_id) ON DELETE CASCADE,
    survey_option_id TEXT NOT NULL REFERENCES survey_option(id) ON DELETE CASCADE,
    user_token TEXT NOT NULL,
    submitted_at TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_response_survey_id ON response(survey_id);
CREATE INDEX IF NOT EXISTS idx_response_option_id ON response(survey_option_id);
`
