// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 3001)
  - DatabaseURL: Connection string or sqlite file path (required)
  - DatabaseType: "sqlite" or "postgres" (default: sqlite)
  - FrontendURL: Origin of the presentation UI, allowed by CORS
  - RedisURL: Enables the cross-instance results relay when set
  - LogLevel: debug, info, warn or error (default: info)
  - LogFormat: text or json (default: text)

# CLI Flags

	-p                Server port
	-d                Database URL
	-t                Database type
	--frontend-url    Allowed frontend origin
	--redis-url       Redis URL for the results relay
	--log-level       Log level
	--log-format      Log format

# Environment Variables

Flags fall back to environment variables:

	PORT          → -p
	DATABASE_URL  → -d
	DATABASE_TYPE → -t
	FRONTEND_URL  → --frontend-url
	REDIS_URL     → --redis-url
	LOG_LEVEL     → --log-level
	LOG_FORMAT    → --log-format

CLI flags take precedence over environment variables. main loads a .env file
into the environment before ParseFlags runs, so .env values sit below real
environment variables.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL is missing
  - DATABASE_TYPE is not sqlite or postgres
  - PORT is not a number
  - LOG_LEVEL or LOG_FORMAT is unknown
*/
package cliparse
