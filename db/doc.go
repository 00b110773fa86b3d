// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Opening

Open picks the driver from the configured database type:

	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)

  - postgres: github.com/lib/pq
  - sqlite:   modernc.org/sqlite (pure Go, no cgo)

SQLite connections get foreign_keys and busy_timeout pragmas and are limited
to one open connection.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.
The same DDL runs on both engines.

# Tables

  - event: top-level grouping created by an organizer
  - survey: one poll question, scoped to an event
  - survey_option: selectable answers with an explicit sort_order
  - response: one recorded vote, append-only

# Relationships

	event 1──* survey 1──* survey_option 1──* response

Vote counts are never stored; they are counted from response on every read.

# Indexes

  - survey.event_id
  - survey_option.survey_id (plus UNIQUE (survey_id, sort_order))
  - response.survey_id
  - response.survey_option_id
*/
package db
