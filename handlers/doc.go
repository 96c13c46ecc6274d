// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the votematch API.

# Handler Types

Each handler is a struct holding the collaborators it needs:

  - CategoryHandler: Read-only category catalog
  - PoliticianHandler: Politician registration
  - VoterHandler: Voter registration, profile, preference updates
  - ProposalHandler: Proposal creation, lookup, on-demand reconciliation
  - VotingHandler: Manual vote and unvote
  - AdminHandler: Vote mirror audit and repair

The voting, admin and proposal handlers depend on small interfaces that
*reconcile.Engine satisfies:

	engine := reconcile.NewEngine(db.NewStore(conn), catalog.Default())
	votingHandler := handlers.NewVotingHandler(engine, cfg)

# Proposal Creation

	POST /proposals → Create (X-Politician-Key)

The proposal is scored by the oracle before anything is stored. An
unavailable oracle answers 503 oracle_unavailable, an unusable reply 502
malformed_oracle_response; neither leaves a proposal behind. After insert the
reconciliation pass runs in the request (sync mode) or is queued (async mode).

# Votes

	POST /proposals/{id}/vote   → Vote (X-Voter-Key)
	POST /proposals/{id}/unvote → Unvote (X-Voter-Key)

A repeated vote answers 409 already_voted. A vote found on only one side of
the mirror answers 409 inconsistent_vote_state.

# Errors

Domain errors from models map to a status and a stable code in the JSON
body; see errorStatus.
*/
package handlers
