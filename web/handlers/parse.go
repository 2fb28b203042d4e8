// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/mdhender/fragment"
)

type parseResponse struct {
	Roots []*fragment.Node `json:"roots"`
	Nodes int              `json:"nodes"`
}

// parseBody reads the request body and parses it.
// It writes the error response itself and returns false on failure.
func (h *Handlers) parseBody(w http.ResponseWriter, r *http.Request) ([]*fragment.Node, bool) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "BODY", err)
		return nil, false
	}
	roots, err := h.parser.Parse(r.Context(), string(data))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, fragment.ErrMaxDepth) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, "PARSE_ERROR", err)
		return nil, false
	}
	return roots, true
}

// Parse returns the tree for the markup in the request body (POST).
func (h *Handlers) Parse(w http.ResponseWriter, r *http.Request) {
	roots, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	if roots == nil {
		roots = []*fragment.Node{}
	}
	writeJSON(w, http.StatusOK, parseResponse{Roots: roots, Nodes: fragment.Count(roots)})
}

// Render parses the request body and writes it back out as markup (POST).
func (h *Handlers) Render(w http.ResponseWriter, r *http.Request) {
	roots, ok := h.parseBody(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Component(roots).Render(r.Context(), w); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
