// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# CLI Flags and Environment Variables

Each flag falls back to an environment variable, then to a default:

	-p                  PORT              3318
	-d                  DATABASE_URL      (required)
	-t                  DATABASE_TYPE     sqlite (sqlite or postgres)
	-admin-key          ADMIN_KEY         (required)
	-key-salt           KEY_SALT          (required)
	-oracle-key         ORACLE_API_KEY    (required)
	-oracle-url         ORACLE_BASE_URL   Gemini OpenAI-compatible endpoint
	-oracle-model       ORACLE_MODEL      gemini-2.0-flash
	-oracle-timeout     ORACLE_TIMEOUT    15s
	-oracle-rps         ORACLE_RPS        0 (unlimited)
	-match-threshold    MATCH_THRESHOLD   3
	-reconcile-mode     RECONCILE_MODE    sync (sync or async)
	-reconcile-workers  RECONCILE_WORKERS 4
	-reconcile-batch    RECONCILE_BATCH   500

CLI flags take precedence over environment variables. main loads a .env
file, if present, before calling ParseFlags.

# Validation

ParseFlags returns an error if:

  - DATABASE_URL, ADMIN_KEY, KEY_SALT or ORACLE_API_KEY is missing
  - DATABASE_TYPE is not sqlite or postgres
  - MATCH_THRESHOLD is outside 1..3
  - RECONCILE_MODE is not sync or async
  - a numeric or duration value does not parse
*/
package cliparse
