// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the livepoll API server.

livepoll runs live audience polls: organizers create an event and its
surveys, participants vote, and a shared screen shows the tally updating
as votes arrive over a WebSocket.

# Starting the Server

	DATABASE_URL=livepoll.db go run .

Or against PostgreSQL with flags:

	go run . -t postgres -d "postgres://..." -p 3001

A .env file in the working directory is loaded first when present.

# Configuration

Required settings:

  - DATABASE_URL (-d): database path or connection string

Optional settings:

  - PORT (-p): server port (default: 3001)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - FRONTEND_URL (--frontend-url): extra allowed CORS origin
  - REDIS_URL (--redis-url): enables cross-instance fan-out over Redis pub/sub
  - LOG_LEVEL (--log-level): debug, info, warn or error (default: info)
  - LOG_FORMAT (--log-format): text or json (default: text)

# Architecture

  - survey: ingestion, aggregation and survey reads over database/sql
  - live: room registry, broadcast hub and Redis relay
  - handlers: HTTP and WebSocket handlers
  - router: route definitions using Go 1.22+ routing
  - middleware: CORS, logging, metrics, JSON helpers
  - metrics: Prometheus collectors
  - models: request, response and wire types
  - token: id and user token generation
  - db: driver selection and schema creation
  - cliparse: configuration parsing

SIGINT or SIGTERM drains in-flight requests, clears the rooms and closes
the relay and database.
*/
package main
