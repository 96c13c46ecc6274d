// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/votematch/auth"
	"github.com/danielhkuo/votematch/catalog"
	"github.com/danielhkuo/votematch/cliparse"
	"github.com/danielhkuo/votematch/db"
	"github.com/danielhkuo/votematch/middleware"
	"github.com/danielhkuo/votematch/models"
)

// Scorer rates a proposal against its category questions.
type Scorer interface {
	Score(ctx context.Context, cat catalog.Category, title, description string) (models.Vector, error)
}

// Reconciler runs a reconciliation pass for one proposal.
type Reconciler interface {
	Reconcile(ctx context.Context, proposalID string) (int, error)
}

// Enqueuer schedules a background reconciliation pass.
type Enqueuer interface {
	Enqueue(proposalID string) bool
}

type ProposalHandler struct {
	store   *db.Store
	catalog *catalog.Catalog
	scorer  Scorer
	engine  Reconciler
	queue   Enqueuer
	cfg     cliparse.Config
}

// NewProposalHandler creates the proposal handler. A nil queue reconciles
// within the creating request.
func NewProposalHandler(store *db.Store, cat *catalog.Catalog, scorer Scorer, engine Reconciler, queue Enqueuer, cfg cliparse.Config) *ProposalHandler {
	return &ProposalHandler{
		store:   store,
		catalog: cat,
		scorer:  scorer,
		engine:  engine,
		queue:   queue,
		cfg:     cfg,
	}
}

// Create handles POST /proposals
func (h *ProposalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateProposalRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	if !checkKey(w, r, HeaderPoliticianKey, auth.RolePolitician, req.PoliticianID, h.cfg.KeySalt) {
		return
	}
	if _, err := h.store.GetPolitician(r.Context(), req.PoliticianID); err != nil {
		writeError(w, err, "Failed to load politician")
		return
	}

	cat, err := h.catalog.Lookup(req.Category)
	if err != nil {
		writeError(w, err, "Unknown category")
		return
	}

	// Nothing is stored unless the oracle produced a valid vector
	scores, err := h.scorer.Score(r.Context(), cat, req.Title, req.Description)
	if err != nil {
		writeError(w, err, "Failed to score proposal")
		return
	}

	p := models.Proposal{
		ID:           auth.NewID(),
		PoliticianID: req.PoliticianID,
		Title:        req.Title,
		Description:  req.Description,
		CategoryName: cat.Name,
		Scores:       scores,
		CreatedAt:    time.Now(),
	}
	if err := h.store.InsertProposal(r.Context(), p); err != nil {
		writeError(w, err, "Failed to create proposal")
		return
	}

	slog.Info("proposal created",
		"proposal_id", p.ID, "politician_id", p.PoliticianID,
		"category", cat.Name, "scores", scores.String())

	resp := models.CreateProposalResponse{
		ProposalID: p.ID,
		Scores:     scores,
		Status:     models.StatusPending,
	}

	if h.queue != nil {
		h.queue.Enqueue(p.ID)
		middleware.JSONResponse(w, http.StatusCreated, resp)
		return
	}

	added, err := h.engine.Reconcile(r.Context(), p.ID)
	if err != nil {
		// The proposal exists; a later pass or the startup sweep finishes it
		slog.Error("reconciliation failed after proposal creation", "proposal_id", p.ID, "error", err)
		middleware.JSONResponse(w, http.StatusCreated, resp)
		return
	}
	resp.Status = models.StatusReconciled
	resp.VotesRecorded = &added
	middleware.JSONResponse(w, http.StatusCreated, resp)
}

// Get handles GET /proposals/{id}
func (h *ProposalHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.store.GetProposal(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err, "Failed to load proposal")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ProposalWithStatus{
		Proposal: p,
		Status:   p.ReconcileStatus(),
	})
}

// Reconcile handles POST /proposals/{id}/reconcile
func (h *ProposalHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	if !checkAdminKey(w, r, h.cfg.AdminKey) {
		return
	}

	proposalID := r.PathValue("id")
	added, err := h.engine.Reconcile(r.Context(), proposalID)
	if err != nil {
		writeError(w, err, "Failed to reconcile proposal")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.ReconcileResponse{
		ProposalID: proposalID,
		NewVotes:   added,
	})
}
