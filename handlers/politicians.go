// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/votematch/auth"
	"github.com/danielhkuo/votematch/cliparse"
	"github.com/danielhkuo/votematch/db"
	"github.com/danielhkuo/votematch/middleware"
	"github.com/danielhkuo/votematch/models"
)

type PoliticianHandler struct {
	store *db.Store
	cfg   cliparse.Config
}

func NewPoliticianHandler(store *db.Store, cfg cliparse.Config) *PoliticianHandler {
	return &PoliticianHandler{store: store, cfg: cfg}
}

// Create handles POST /politicians
func (h *PoliticianHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePoliticianRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	p := models.Politician{
		ID:          auth.NewID(),
		Name:        req.Name,
		Email:       req.Email,
		Age:         req.Age,
		Office:      req.Office,
		PoliticalID: req.PoliticalID,
		Validation:  models.ValidationPending,
		CreatedAt:   time.Now(),
	}
	if err := h.store.InsertPolitician(r.Context(), p); err != nil {
		writeError(w, err, "Failed to register politician")
		return
	}

	slog.Info("politician registered", "politician_id", p.ID, "office", p.Office)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePoliticianResponse{
		PoliticianID:  p.ID,
		PoliticianKey: auth.GenerateKey(auth.RolePolitician, p.ID, h.cfg.KeySalt),
	})
}
