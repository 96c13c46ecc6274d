// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"net/http"

	"github.com/danielhkuo/votematch/auth"
	"github.com/danielhkuo/votematch/cliparse"
	"github.com/danielhkuo/votematch/middleware"
	"github.com/danielhkuo/votematch/models"
)

// VoteCaster records and retracts manual votes.
type VoteCaster interface {
	Cast(ctx context.Context, proposalID, voterID string) error
	Retract(ctx context.Context, proposalID, voterID string) error
}

type VotingHandler struct {
	engine VoteCaster
	cfg    cliparse.Config
}

func NewVotingHandler(engine VoteCaster, cfg cliparse.Config) *VotingHandler {
	return &VotingHandler{engine: engine, cfg: cfg}
}

// Vote handles POST /proposals/{id}/vote
func (h *VotingHandler) Vote(w http.ResponseWriter, r *http.Request) {
	proposalID, voterID, ok := h.parseVote(w, r)
	if !ok {
		return
	}

	if err := h.engine.Cast(r.Context(), proposalID, voterID); err != nil {
		writeError(w, err, "Failed to record vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{Message: "Vote recorded"})
}

// Unvote handles POST /proposals/{id}/unvote
func (h *VotingHandler) Unvote(w http.ResponseWriter, r *http.Request) {
	proposalID, voterID, ok := h.parseVote(w, r)
	if !ok {
		return
	}

	if err := h.engine.Retract(r.Context(), proposalID, voterID); err != nil {
		writeError(w, err, "Failed to remove vote")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.VoteResponse{Message: "Vote removed"})
}

func (h *VotingHandler) parseVote(w http.ResponseWriter, r *http.Request) (proposalID, voterID string, ok bool) {
	proposalID = r.PathValue("id")

	var req models.VoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return "", "", false
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return "", "", false
	}

	if !checkKey(w, r, HeaderVoterKey, auth.RoleVoter, req.VoterID, h.cfg.KeySalt) {
		return "", "", false
	}
	return proposalID, req.VoterID, true
}
