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

// Timestamps are written by the application so the same statements run on
// both Postgres and SQLite.
const schema = `
-- Politicians
CREATE TABLE IF NOT EXISTS politician (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    age INTEGER NOT NULL CHECK (age >= 18),
    office TEXT NOT NULL CHECK (office IN ('presidente', 'gobernador', 'presidente municipal')),
    political_id TEXT NOT NULL,
    validation TEXT NOT NULL DEFAULT 'pendiente' CHECK (validation IN ('pendiente', 'valida', 'invalida')),
    created_at TIMESTAMP NOT NULL
);

-- Voters
CREATE TABLE IF NOT EXISTS voter (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    age INTEGER NOT NULL CHECK (age >= 18),
    postal_code TEXT NOT NULL,
    city TEXT NOT NULL,
    state TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL
);

-- Preference vectors, one per voter per category
CREATE TABLE IF NOT EXISTS voter_preference (
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    category_id INTEGER NOT NULL CHECK (category_id >= 1),
    answer1 INTEGER NOT NULL CHECK (answer1 BETWEEN 1 AND 5),
    answer2 INTEGER NOT NULL CHECK (answer2 BETWEEN 1 AND 5),
    answer3 INTEGER NOT NULL CHECK (answer3 BETWEEN 1 AND 5),
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (voter_id, category_id)
);

CREATE INDEX IF NOT EXISTS idx_voter_preference_category ON voter_preference(category_id);

-- Proposals
CREATE TABLE IF NOT EXISTS proposal (
    id TEXT PRIMARY KEY,
    politician_id TEXT NOT NULL REFERENCES politician(id) ON DELETE CASCADE,
    title TEXT NOT NULL,
    description TEXT NOT NULL,
    category_name TEXT NOT NULL,
    score1 INTEGER NOT NULL CHECK (score1 BETWEEN 1 AND 5),
    score2 INTEGER NOT NULL CHECK (score2 BETWEEN 1 AND 5),
    score3 INTEGER NOT NULL CHECK (score3 BETWEEN 1 AND 5),
    created_at TIMESTAMP NOT NULL,
    reconciled_at TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_proposal_politician ON proposal(politician_id);
CREATE INDEX IF NOT EXISTS idx_proposal_category ON proposal(category_name);

-- Proposal side of a vote
CREATE TABLE IF NOT EXISTS proposal_vote (
    proposal_id TEXT NOT NULL REFERENCES proposal(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    source TEXT NOT NULL CHECK (source IN ('auto', 'manual', 'repair')),
    voted_at TIMESTAMP NOT NULL,
    PRIMARY KEY (proposal_id, voter_id)
);

-- Voter side of a vote
CREATE TABLE IF NOT EXISTS voter_voted_proposal (
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    proposal_id TEXT NOT NULL REFERENCES proposal(id) ON DELETE CASCADE,
    voted_at TIMESTAMP NOT NULL,
    PRIMARY KEY (voter_id, proposal_id)
);

-- Manual unvotes that reconciliation must not undo
CREATE TABLE IF NOT EXISTS vote_retraction (
    proposal_id TEXT NOT NULL REFERENCES proposal(id) ON DELETE CASCADE,
    voter_id TEXT NOT NULL REFERENCES voter(id) ON DELETE CASCADE,
    retracted_at TIMESTAMP NOT NULL,
    PRIMARY KEY (proposal_id, voter_id)
);

CREATE INDEX IF NOT EXISTS idx_vote_retraction_voter ON vote_retraction(voter_id);
`
