// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db handles database connections, schema creation and queries.

# Connecting

Open selects the driver from the database type:

	conn, err := db.Open(db.TypePostgres, "postgres://...")
	conn, err := db.Open(db.TypeSQLite, "file:votematch.db?_pragma=foreign_keys(1)")

Postgres uses github.com/lib/pq; SQLite uses modernc.org/sqlite. All
statements use $N placeholders and ON CONFLICT clauses understood by both.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - politician: Registered politicians
  - voter: Registered voters
  - voter_preference: One 3-answer vector per voter per category
  - proposal: Proposals with their 3-value score vector
  - proposal_vote: Proposal side of each vote
  - voter_voted_proposal: Voter side of each vote
  - vote_retraction: Votes removed by the voter

# Relationships

	politician 1──* proposal
	voter 1──* voter_preference
	proposal 1──* proposal_vote *──1 voter
	voter 1──* voter_voted_proposal *──1 proposal
	proposal 1──* vote_retraction *──1 voter

A vote is stored twice, once per side, and both rows are written in the same
transaction. Composite primary keys on both tables make the insert
conditional, so a voter is counted at most once per proposal. Rows present on
only one side are found by Store.FindVoteAsymmetries.

# Store

Store wraps a *sql.DB with the application's queries. Not-found lookups wrap
models.ErrNotFound; vote bookkeeping errors wrap models.ErrVoteNotFound or
models.ErrInconsistentVoteState.
*/
package db
