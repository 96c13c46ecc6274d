// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Vectors

Score and preference vectors share one type:

	v, err := models.NewVector([]int{4, 3, 5})

NewVector rejects anything that is not exactly 3 integers in [1,5].
Agreement counts positions with equal answers; the matcher uses it.

# Request Types

  - CreatePoliticianRequest: name, email, age, office, political_id
  - CreateVoterRequest: profile fields plus preferences (map[string][]int)
  - UpdatePreferencesRequest: preferences
  - CreateProposalRequest: politician_id, title, description, category
  - VoteRequest: voter_id

Requests carry go-playground/validator tags.

# Domain Types

  - Politician
  - Voter: preferences keyed by category id, voted_proposals
  - Proposal: score vector, votes, reconciled_at
  - Vote: voter_id, source, voted_at
  - Candidate: one voter row of a reconciliation scan
  - Inconsistency: a vote present on one side only

# Errors

errors.go holds the shared error taxonomy:

	ErrCategoryNotFound        unknown category at creation
	ErrOracleUnavailable       oracle transport failure
	ErrMalformedOracleResponse oracle reply is not 3 integers in [1,5]
	ErrInconsistentVoteState   vote recorded on one side only
	ErrAlreadyVoted            manual duplicate vote
	ErrVoteNotFound            retracting a vote that does not exist
	ErrNotFound                missing record
	ErrInvalidVector           vector construction failed

# Constants

Vote sources:

	SourceAuto   = "auto"
	SourceManual = "manual"
	SourceRepair = "repair"

Proposal status:

	StatusPending    = "pending"
	StatusReconciled = "reconciled"
*/
package models
