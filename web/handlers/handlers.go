// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/mdhender/fragment"
	"github.com/mdhender/fragment/model"
	"github.com/mdhender/fragment/pipelines/stages"
	"github.com/mdhender/fragment/render"
)

// maxBodyBytes bounds the markup accepted in a request body.
const maxBodyBytes = 1 << 20

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	store    model.Store
	parser   *fragment.Parser
	ingest   *stages.IngestService
	renderer *render.Renderer
}

// New creates a new Handlers. Uploaded documents are parsed with parser
// and saved in store. A nil parser uses the default configuration.
func New(store model.Store, parser *fragment.Parser) (*Handlers, error) {
	if parser == nil {
		var err error
		if parser, err = fragment.New(); err != nil {
			return nil, err
		}
	}
	ingest, err := stages.NewIngestService(store, parser, nil)
	if err != nil {
		return nil, err
	}
	renderer, err := render.New()
	if err != nil {
		return nil, err
	}
	return &Handlers{
		store:    store,
		parser:   parser,
		ingest:   ingest,
		renderer: renderer,
	}, nil
}

// Routes registers the handlers on mux.
func (h *Handlers) Routes(mux *http.ServeMux) {
	mux.HandleFunc("POST /parse", h.Parse)
	mux.HandleFunc("POST /render", h.Render)
	mux.HandleFunc("GET /documents", h.ListDocuments)
	mux.HandleFunc("POST /documents", h.Upload)
	mux.HandleFunc("GET /documents/{id}", h.Document)
	mux.HandleFunc("GET /stats", h.Stats)
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("handlers: encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: code})
}
