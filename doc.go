// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the votematch API server.

votematch matches citizens with political proposals. Politicians publish
proposals in one of ten policy categories; a scoring oracle (an
OpenAI-compatible LLM endpoint) rates each proposal 1-5 against the
category's three questions, and every voter whose own answers for that
category agree casts an automatic vote. Voters can also vote and unvote by
hand.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=file:votematch.db ADMIN_KEY=... KEY_SALT=... ORACLE_API_KEY=... go run .

Or with flags:

	go run . -p 3318 -t postgres -d "postgres://..." -admin-key ... -key-salt ... -oracle-key ...

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): SQLite DSN or PostgreSQL connection string
  - ADMIN_KEY (-admin-key): Secret for admin endpoints
  - KEY_SALT (-key-salt): Secret for politician and voter key HMAC
  - ORACLE_API_KEY (-oracle-key): Scoring oracle credential

Optional settings:

  - PORT (-p): Server port (default: 3318)
  - DATABASE_TYPE (-t): sqlite or postgres (default: sqlite)
  - MATCH_THRESHOLD: Answers that must agree for an automatic vote (default: 3)
  - RECONCILE_MODE: sync reconciles inside POST /proposals, async queues it

See package cliparse for the full list.

# Architecture

  - handlers: HTTP request handlers (categories, politicians, voters, proposals, votes, admin)
  - router: Route definitions using Go 1.22+ routing, /metrics
  - middleware: CORS, logging, JSON helpers
  - reconcile: Matching engine, vote bookkeeping, background queue
  - oracle: Prompt building, reply parsing, OpenAI-compatible transport
  - catalog: Embedded category table
  - db: Schema and Store
  - metrics: Prometheus collectors
  - models: Request/response and domain types, sentinel errors
  - auth: Identifiers and access keys
  - cliparse: Configuration parsing

See package documentation for each component.
*/
package main
