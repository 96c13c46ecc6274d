// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/votematch/cliparse"
	"github.com/danielhkuo/votematch/middleware"
	"github.com/danielhkuo/votematch/models"
)

// Auditor checks and restores the mirrored vote records.
type Auditor interface {
	Audit(ctx context.Context) ([]models.Inconsistency, error)
	Repair(ctx context.Context) (int, error)
}

type AdminHandler struct {
	engine Auditor
	cfg    cliparse.Config
}

func NewAdminHandler(engine Auditor, cfg cliparse.Config) *AdminHandler {
	return &AdminHandler{engine: engine, cfg: cfg}
}

// Audit handles GET /admin/vote-audit
func (h *AdminHandler) Audit(w http.ResponseWriter, r *http.Request) {
	if !checkAdminKey(w, r, h.cfg.AdminKey) {
		return
	}

	found, err := h.engine.Audit(r.Context())
	if err != nil {
		writeError(w, err, "Failed to audit votes")
		return
	}
	if found == nil {
		found = []models.Inconsistency{}
	}

	middleware.JSONResponse(w, http.StatusOK, models.AuditResponse{Inconsistencies: found})
}

// Repair handles POST /admin/vote-repair
func (h *AdminHandler) Repair(w http.ResponseWriter, r *http.Request) {
	if !checkAdminKey(w, r, h.cfg.AdminKey) {
		return
	}

	repaired, err := h.engine.Repair(r.Context())
	if err != nil {
		writeError(w, err, "Failed to repair votes")
		return
	}

	slog.Info("vote repair requested", "repaired", repaired)
	middleware.JSONResponse(w, http.StatusOK, models.RepairResponse{Repaired: repaired})
}
