// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package stages

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/mdhender/fragment"
	"github.com/mdhender/fragment/model"
	"github.com/spf13/afero"
)

// IngestService parses source files and persists the trees.
type IngestService struct {
	store  IngestStore
	parser *fragment.Parser
	fs     afero.Fs
	logger *slog.Logger
}

// IngestStore defines the store operations needed by IngestService.
type IngestStore interface {
	GetDocumentBySHA256(ctx context.Context, sha256 string) (*model.Document, error)
	InsertDocument(ctx context.Context, doc *model.Document) (string, error)
}

// NewIngestService creates a new IngestService.
// A nil parser uses the default configuration.
func NewIngestService(store IngestStore, parser *fragment.Parser, logger *slog.Logger) (*IngestService, error) {
	if parser == nil {
		var err error
		if parser, err = fragment.New(); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IngestService{
		store:  store,
		parser: parser,
		fs:     afero.NewOsFs(),
		logger: logger,
	}, nil
}

// SetFS sets the filesystem for testing.
func (s *IngestService) SetFS(fs afero.Fs) {
	s.fs = fs
}

// IngestRequest contains the parameters for ingesting a file.
type IngestRequest struct {
	Filename string // original filename
	Data     []byte // file content
}

// IngestResult contains the result of an ingest operation.
type IngestResult struct {
	DocumentID string `json:"documentId"`
	Filename   string `json:"filename"`
	Size       int64  `json:"size"`
	Nodes      int    `json:"nodes"`
	Duplicate  bool   `json:"duplicate"` // true if file was already ingested (idempotent no-op)
}

// IngestFile parses and stores a single file.
// Returns IngestResult with Duplicate=true if the content was already stored.
func (s *IngestService) IngestFile(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	hash := sha256.Sum256(req.Data)
	hashStr := hex.EncodeToString(hash[:])

	existing, err := s.store.GetDocumentBySHA256(ctx, hashStr)
	if err != nil {
		return nil, &ErrDatabase{Op: "check duplicate", Err: err}
	}
	if existing != nil {
		s.logger.Debug("ingest: duplicate", "file", req.Filename, "document", existing.ID)
		return &IngestResult{
			DocumentID: existing.ID,
			Filename:   req.Filename,
			Size:       existing.Size,
			Nodes:      fragment.Count(existing.Roots),
			Duplicate:  true,
		}, nil
	}

	started := time.Now()
	roots, err := s.parser.Parse(ctx, string(req.Data))
	if err != nil {
		return nil, &ErrParse{Path: req.Filename, Err: err}
	}
	s.logger.Debug("ingest: parsed", "file", req.Filename, "roots", len(roots), "elapsed", time.Since(started))

	doc := &model.Document{
		Name:      filepath.Base(req.Filename),
		SHA256:    hashStr,
		Size:      int64(len(req.Data)),
		CreatedAt: time.Now().UTC(),
		Roots:     roots,
	}
	id, err := s.store.InsertDocument(ctx, doc)
	if err != nil {
		// a concurrent ingest of the same content wins the unique hash
		if existing, lookupErr := s.store.GetDocumentBySHA256(ctx, hashStr); lookupErr == nil && existing != nil {
			s.logger.Debug("ingest: duplicate after insert", "file", req.Filename, "document", existing.ID)
			return &IngestResult{
				DocumentID: existing.ID,
				Filename:   req.Filename,
				Size:       existing.Size,
				Nodes:      fragment.Count(existing.Roots),
				Duplicate:  true,
			}, nil
		}
		return nil, &ErrDatabase{Op: "insert document", Err: err}
	}

	return &IngestResult{
		DocumentID: id,
		Filename:   req.Filename,
		Size:       doc.Size,
		Nodes:      fragment.Count(roots),
	}, nil
}

// IngestPath reads a file from the service's filesystem and ingests it.
func (s *IngestService) IngestPath(ctx context.Context, path string) (*IngestResult, error) {
	if fi, err := s.fs.Stat(path); err != nil {
		return nil, &ErrReadFile{Op: "stat", Path: path, Err: err}
	} else if fi.IsDir() {
		return nil, &ErrReadFile{Op: "stat", Path: path, Err: fmt.Errorf("is a directory")}
	}
	data, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, &ErrReadFile{Op: "read", Path: path, Err: err}
	}
	return s.IngestFile(ctx, IngestRequest{Filename: path, Data: data})
}

// IngestPaths ingests each path in order.
// It stops at the first error and returns the results so far.
func (s *IngestService) IngestPaths(ctx context.Context, paths []string) ([]IngestResult, error) {
	var results []IngestResult
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		result, err := s.IngestPath(ctx, path)
		if err != nil {
			return results, err
		}
		results = append(results, *result)
	}
	return results, nil
}
