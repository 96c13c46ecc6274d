// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the votematch API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Services{
		Store:    store,
		Catalog:  catalog.Default(),
		Scorer:   scorer,
		Engine:   engine,
		Queue:    queue, // nil in sync mode
		Gatherer: registry,
	}, cfg)

# Endpoints

Health and metrics:

	GET /health
	GET /metrics

Catalog (public):

	GET /categories        - All categories with both question sets
	GET /categories/{name} - One category, case-insensitive

Registration:

	POST /politicians               - Register politician (returns politician_key)
	POST /voters                    - Register voter (returns voter_key)
	GET  /voters/{id}               - Preferences and voted proposals
	PUT  /voters/{id}/preferences   - Update preferences (X-Voter-Key)

Proposals:

	POST /proposals                 - Score, store, reconcile (X-Politician-Key)
	GET  /proposals/{id}            - Proposal with votes and status
	POST /proposals/{id}/reconcile  - Re-run reconciliation (X-Admin-Key)
	POST /proposals/{id}/vote       - Manual vote (X-Voter-Key)
	POST /proposals/{id}/unvote     - Remove vote (X-Voter-Key)

Admin (X-Admin-Key):

	GET  /admin/vote-audit  - One-sided votes
	POST /admin/vote-repair - Restore missing sides
*/
package router
