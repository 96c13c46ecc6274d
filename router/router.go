// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danielhkuo/votematch/catalog"
	"github.com/danielhkuo/votematch/cliparse"
	"github.com/danielhkuo/votematch/db"
	"github.com/danielhkuo/votematch/handlers"
	"github.com/danielhkuo/votematch/middleware"
	"github.com/danielhkuo/votematch/reconcile"
)

// Services are the collaborators the handlers are built from.
type Services struct {
	Store   *db.Store
	Catalog *catalog.Catalog
	Scorer  handlers.Scorer
	Engine  *reconcile.Engine
	// Queue is nil in sync mode.
	Queue *reconcile.Queue
	// Gatherer serves /metrics. Nil leaves the route unregistered.
	Gatherer prometheus.Gatherer
}

func NewRouter(svc Services, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	// A typed nil *Queue must not become a non-nil interface
	var queue handlers.Enqueuer
	if svc.Queue != nil {
		queue = svc.Queue
	}

	// Initialize handlers
	categoryHandler := handlers.NewCategoryHandler(svc.Catalog)
	politicianHandler := handlers.NewPoliticianHandler(svc.Store, cfg)
	voterHandler := handlers.NewVoterHandler(svc.Store, svc.Catalog, cfg)
	proposalHandler := handlers.NewProposalHandler(svc.Store, svc.Catalog, svc.Scorer, svc.Engine, queue, cfg)
	votingHandler := handlers.NewVotingHandler(svc.Engine, cfg)
	adminHandler := handlers.NewAdminHandler(svc.Engine, cfg)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	if svc.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(svc.Gatherer, promhttp.HandlerOpts{}))
	}

	// Category catalog (public)
	mux.HandleFunc("GET /categories", middleware.WithLogging(categoryHandler.List))
	mux.HandleFunc("GET /categories/{name}", middleware.WithLogging(categoryHandler.Get))

	// Registration
	mux.HandleFunc("POST /politicians", middleware.WithLogging(politicianHandler.Create))
	mux.HandleFunc("POST /voters", middleware.WithLogging(voterHandler.Create))
	mux.HandleFunc("GET /voters/{id}", middleware.WithLogging(voterHandler.Get))
	mux.HandleFunc("PUT /voters/{id}/preferences", middleware.WithLogging(voterHandler.UpdatePreferences))

	// Proposals
	mux.HandleFunc("POST /proposals", middleware.WithLogging(proposalHandler.Create))
	mux.HandleFunc("GET /proposals/{id}", middleware.WithLogging(proposalHandler.Get))
	mux.HandleFunc("POST /proposals/{id}/reconcile", middleware.WithLogging(proposalHandler.Reconcile))

	// Voting (requires X-Voter-Key)
	mux.HandleFunc("POST /proposals/{id}/vote", middleware.WithLogging(votingHandler.Vote))
	mux.HandleFunc("POST /proposals/{id}/unvote", middleware.WithLogging(votingHandler.Unvote))

	// Vote mirror maintenance (requires X-Admin-Key)
	mux.HandleFunc("GET /admin/vote-audit", middleware.WithLogging(adminHandler.Audit))
	mux.HandleFunc("POST /admin/vote-repair", middleware.WithLogging(adminHandler.Repair))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("votematch API v1"))
	})

	return mux
}
