// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/votematch/catalog"
	"github.com/danielhkuo/votematch/middleware"
)

type CategoryHandler struct {
	catalog *catalog.Catalog
}

func NewCategoryHandler(cat *catalog.Catalog) *CategoryHandler {
	return &CategoryHandler{catalog: cat}
}

// List handles GET /categories
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	middleware.JSONResponse(w, http.StatusOK, h.catalog.All())
}

// Get handles GET /categories/{name}
func (h *CategoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	cat, err := h.catalog.Lookup(name)
	if err != nil {
		middleware.ErrorCodeResponse(w, http.StatusNotFound, CodeCategoryNotFound, err.Error())
		return
	}
	middleware.JSONResponse(w, http.StatusOK, cat)
}
