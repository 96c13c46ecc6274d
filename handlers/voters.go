// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/danielhkuo/votematch/auth"
	"github.com/danielhkuo/votematch/catalog"
	"github.com/danielhkuo/votematch/cliparse"
	"github.com/danielhkuo/votematch/db"
	"github.com/danielhkuo/votematch/middleware"
	"github.com/danielhkuo/votematch/models"
)

type VoterHandler struct {
	store   *db.Store
	catalog *catalog.Catalog
	cfg     cliparse.Config
}

func NewVoterHandler(store *db.Store, cat *catalog.Catalog, cfg cliparse.Config) *VoterHandler {
	return &VoterHandler{store: store, catalog: cat, cfg: cfg}
}

// Create handles POST /voters
func (h *VoterHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CreateVoterRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	updates, err := h.preferenceUpdates(req.Preferences)
	if err != nil {
		writeError(w, err, "Invalid preferences")
		return
	}

	v := models.Voter{
		ID:          auth.NewID(),
		Name:        req.Name,
		Email:       req.Email,
		Age:         req.Age,
		PostalCode:  req.PostalCode,
		City:        req.City,
		State:       req.State,
		Preferences: make(map[int]models.Vector, len(updates)),
		CreatedAt:   time.Now(),
	}
	for _, u := range updates {
		v.Preferences[u.CategoryID] = u.Answers
	}

	if err := h.store.InsertVoter(r.Context(), v); err != nil {
		writeError(w, err, "Failed to register voter")
		return
	}

	slog.Info("voter registered", "voter_id", v.ID, "preferences", len(v.Preferences))

	middleware.JSONResponse(w, http.StatusCreated, models.CreateVoterResponse{
		VoterID:  v.ID,
		VoterKey: auth.GenerateKey(auth.RoleVoter, v.ID, h.cfg.KeySalt),
	})
}

// Get handles GET /voters/{id}
func (h *VoterHandler) Get(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("id")

	v, err := h.store.GetVoter(r.Context(), voterID)
	if err != nil {
		writeError(w, err, "Failed to load voter")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, v)
}

// UpdatePreferences handles PUT /voters/{id}/preferences. Categories whose
// answers change lose any retraction tombstones; a new reconciliation pass
// is not started.
func (h *VoterHandler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	voterID := r.PathValue("id")
	if !checkKey(w, r, HeaderVoterKey, auth.RoleVoter, voterID, h.cfg.KeySalt) {
		return
	}

	var req models.UpdatePreferencesRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeValidationError(w, err)
		return
	}

	updates, err := h.preferenceUpdates(req.Preferences)
	if err != nil {
		writeError(w, err, "Invalid preferences")
		return
	}

	changed, err := h.store.UpdatePreferences(r.Context(), voterID, updates, time.Now())
	if err != nil {
		writeError(w, err, "Failed to update preferences")
		return
	}

	slog.Info("preferences updated", "voter_id", voterID, "changed", changed)

	middleware.JSONResponse(w, http.StatusOK, models.UpdatePreferencesResponse{
		ChangedCategories: changed,
	})
}

// preferenceUpdates resolves string category ids against the catalog.
func (h *VoterHandler) preferenceUpdates(prefs map[string][]int) ([]models.PreferenceUpdate, error) {
	updates := make([]models.PreferenceUpdate, 0, len(prefs))
	for key, answers := range prefs {
		id, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", models.ErrCategoryNotFound, key)
		}
		cat, err := h.catalog.ByID(id)
		if err != nil {
			return nil, err
		}
		vec, err := models.NewVector(answers)
		if err != nil {
			return nil, err
		}
		updates = append(updates, models.PreferenceUpdate{
			CategoryID:   cat.ID,
			CategoryName: cat.Name,
			Answers:      vec,
		})
	}
	return updates, nil
}
