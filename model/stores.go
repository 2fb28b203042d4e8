// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package model

import "context"

// Store is an interface for persisting parsed documents.
type Store interface {
	InsertDocument(ctx context.Context, doc *Document) (string, error)
	GetDocument(ctx context.Context, id string) (*Document, error)
	GetDocumentBySHA256(ctx context.Context, sha256 string) (*Document, error)
	ListDocuments(ctx context.Context) ([]*Document, error)
	Stats(ctx context.Context) (Stats, error)
	Close() error
}
