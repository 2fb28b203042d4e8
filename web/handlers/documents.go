// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/mdhender/fragment/model"
	"github.com/mdhender/fragment/pipelines/stages"
)

// ListDocuments returns the stored documents without their trees (GET).
func (h *Handlers) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.store.ListDocuments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, stages.ErrCodeDatabase, err)
		return
	}
	if docs == nil {
		docs = []*model.Document{}
	}
	writeJSON(w, http.StatusOK, docs)
}

// Document returns one stored document (GET). The id may be the
// document ID or its SHA-256. With ?render=1 the tree is written
// as markup instead of JSON.
func (h *Handlers) Document(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	doc, err := h.store.GetDocument(r.Context(), id)
	if err == nil && doc == nil {
		doc, err = h.store.GetDocumentBySHA256(r.Context(), id)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, stages.ErrCodeDatabase, err)
		return
	} else if doc == nil {
		writeError(w, http.StatusNotFound, "NOT_FOUND", fmt.Errorf("document %q not found", id))
		return
	}

	if r.URL.Query().Get("render") == "" {
		writeJSON(w, http.StatusOK, doc)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.renderer.Component(doc.Roots).Render(r.Context(), w); err != nil {
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// Upload parses and stores the markup in the request body (POST).
// The ?name= query parameter names the document.
func (h *Handlers) Upload(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "BODY", err)
		return
	}
	name := r.URL.Query().Get("name")
	if name == "" {
		name = "upload.html"
	}

	result, err := h.ingest.IngestFile(r.Context(), stages.IngestRequest{Filename: name, Data: data})
	if err != nil {
		status := http.StatusInternalServerError
		if stages.ErrorCode(err) == stages.ErrCodeParse {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, stages.ErrorCode(err), err)
		return
	}
	status := http.StatusCreated
	if result.Duplicate {
		status = http.StatusOK
	}
	writeJSON(w, status, result)
}

// Stats returns row counts for the store (GET).
func (h *Handlers) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, stages.ErrCodeDatabase, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
