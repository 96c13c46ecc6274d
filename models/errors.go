// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

// Proposal creation
var (
	ErrCategoryNotFound        = errors.New("category not found")
	ErrOracleUnavailable       = errors.New("scoring oracle unavailable")
	ErrMalformedOracleResponse = errors.New("malformed scoring oracle response")
)

// Vote bookkeeping
var (
	ErrInconsistentVoteState = errors.New("inconsistent vote state")
	ErrAlreadyVoted          = errors.New("voter already voted for this proposal")
	ErrVoteNotFound          = errors.New("vote not found")
	ErrVoteRetracted         = errors.New("voter retracted this vote")
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrInvalidVector = errors.New("invalid vector")
)
