// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package stages_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"

	"github.com/mdhender/fragment"
	"github.com/mdhender/fragment/model"
	"github.com/mdhender/fragment/pipelines/stages"
	store "github.com/mdhender/fragment/stores/sqlite"
	"github.com/spf13/afero"
)

// mockStore implements stages.IngestStore for testing.
type mockStore struct {
	documents   map[string]*model.Document
	sha256Index map[string]*model.Document
	failInsert  error

	// lost is stored by a concurrent ingest just before InsertDocument runs
	lost *model.Document

	nextID int
}

func newMockStore() *mockStore {
	return &mockStore{
		documents:   make(map[string]*model.Document),
		sha256Index: make(map[string]*model.Document),
		nextID:      1,
	}
}

func (m *mockStore) GetDocumentBySHA256(_ context.Context, sha256 string) (*model.Document, error) {
	return m.sha256Index[sha256], nil
}

func (m *mockStore) InsertDocument(_ context.Context, doc *model.Document) (string, error) {
	if m.lost != nil {
		m.documents[m.lost.ID] = m.lost
		m.sha256Index[m.lost.SHA256] = m.lost
		m.lost = nil
		return "", errors.New("UNIQUE constraint failed: documents.sha256")
	}
	if m.failInsert != nil {
		return "", m.failInsert
	}
	doc.ID = fmt.Sprintf("doc-%d", m.nextID)
	m.nextID++
	m.documents[doc.ID] = doc
	m.sha256Index[doc.SHA256] = doc
	return doc.ID, nil
}

func TestIngestService_IngestFile(t *testing.T) {
	ctx := context.Background()
	ms := newMockStore()

	svc, err := stages.NewIngestService(ms, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	req := stages.IngestRequest{
		Filename: "pages/header.html",
		Data:     []byte("<header><h1>Olá <b>Marcos</b></h1><h2>Sou Frontend</h2></header>"),
	}

	result, err := svc.IngestFile(ctx, req)
	if err != nil {
		t.Fatalf("ingest file: %v", err)
	}
	if result.Duplicate {
		t.Error("expected not duplicate on first ingest")
	}
	if result.DocumentID != "doc-1" {
		t.Errorf("document id = %q, want %q", result.DocumentID, "doc-1")
	}
	if result.Nodes != 4 {
		t.Errorf("nodes = %d, want 4", result.Nodes)
	}

	doc := ms.documents["doc-1"]
	if doc == nil {
		t.Fatalf("document not stored")
	}
	if doc.Name != "header.html" {
		t.Errorf("name = %q, want %q", doc.Name, "header.html")
	}
	if doc.Size != int64(len(req.Data)) {
		t.Errorf("size = %d, want %d", doc.Size, len(req.Data))
	}
	if len(doc.SHA256) != 64 {
		t.Errorf("sha256 = %q, want 64 hex digits", doc.SHA256)
	}

	// same content under another name is a no-op
	again, err := svc.IngestFile(ctx, stages.IngestRequest{Filename: "copy.html", Data: req.Data})
	if err != nil {
		t.Fatalf("ingest duplicate: %v", err)
	}
	if !again.Duplicate {
		t.Error("expected duplicate on second ingest")
	}
	if again.DocumentID != result.DocumentID {
		t.Errorf("duplicate id = %q, want %q", again.DocumentID, result.DocumentID)
	}
	if again.Nodes != result.Nodes {
		t.Errorf("duplicate nodes = %d, want %d", again.Nodes, result.Nodes)
	}
	if len(ms.documents) != 1 {
		t.Errorf("stored %d documents, want 1", len(ms.documents))
	}
}

func TestIngestService_IngestPaths(t *testing.T) {
	ctx := context.Background()
	ms := newMockStore()
	fs := afero.NewMemMapFs()
	for path, text := range map[string]string{
		"/data/a.html": "<p>a</p>",
		"/data/b.html": "<form><input id=\"teste\" /></form>",
	} {
		if err := afero.WriteFile(fs, path, []byte(text), 0644); err != nil {
			t.Fatalf("write %s: %v", path, err)
		}
	}

	svc, err := stages.NewIngestService(ms, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	svc.SetFS(fs)

	results, err := svc.IngestPaths(ctx, []string{"/data/a.html", "/data/b.html"})
	if err != nil {
		t.Fatalf("ingest paths: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}
	if results[0].Nodes != 1 || results[1].Nodes != 2 {
		t.Errorf("nodes = %d, %d, want 1, 2", results[0].Nodes, results[1].Nodes)
	}

	results, err = svc.IngestPaths(ctx, []string{"/data/a.html", "/data/missing.html", "/data/b.html"})
	var rf *stages.ErrReadFile
	if !errors.As(err, &rf) {
		t.Fatalf("missing file: err = %v, want *ErrReadFile", err)
	}
	if got := stages.ErrorCode(err); got != stages.ErrCodeReadFile {
		t.Errorf("error code = %q, want %q", got, stages.ErrCodeReadFile)
	}
	if len(results) != 1 || !results[0].Duplicate {
		t.Errorf("results before error = %+v, want one duplicate", results)
	}

	if _, err := svc.IngestPath(ctx, "/data"); stages.ErrorCode(err) != stages.ErrCodeReadFile {
		t.Errorf("directory: err = %v, want read file error", err)
	}
}

func TestIngestService_Errors(t *testing.T) {
	ctx := context.Background()

	ms := newMockStore()
	ms.failInsert = errors.New("disk full")
	svc, err := stages.NewIngestService(ms, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.IngestFile(ctx, stages.IngestRequest{Filename: "a.html", Data: []byte("<p>a</p>")})
	if got := stages.ErrorCode(err); got != stages.ErrCodeDatabase {
		t.Errorf("insert failure: code = %q, want %q", got, stages.ErrCodeDatabase)
	}

	parser, err := fragment.New(fragment.WithMaxDepth(1))
	if err != nil {
		t.Fatalf("new parser: %v", err)
	}
	svc, err = stages.NewIngestService(newMockStore(), parser, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.IngestFile(ctx, stages.IngestRequest{Filename: "deep.html", Data: []byte("<a><b>x</b></a>")})
	if got := stages.ErrorCode(err); got != stages.ErrCodeParse {
		t.Errorf("too deep: code = %q, want %q", got, stages.ErrCodeParse)
	}
	if !errors.Is(err, fragment.ErrMaxDepth) {
		t.Errorf("too deep: err = %v, want ErrMaxDepth", err)
	}
}

func TestIngestService_ConcurrentDuplicate(t *testing.T) {
	ctx := context.Background()
	data := []byte("<p>same</p>")
	sum := sha256.Sum256(data)

	ms := newMockStore()
	ms.lost = &model.Document{ID: "doc-other", Name: "first.html", SHA256: hex.EncodeToString(sum[:]), Size: int64(len(data)), Roots: fragment.Parse(string(data))}
	svc, err := stages.NewIngestService(ms, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	result, err := svc.IngestFile(ctx, stages.IngestRequest{Filename: "second.html", Data: data})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	if !result.Duplicate || result.DocumentID != "doc-other" || result.Nodes != 1 {
		t.Errorf("result = %+v, want duplicate of doc-other with 1 node", result)
	}
}

func TestIngestService_SQLiteStore(t *testing.T) {
	ctx := context.Background()
	sqlStore, err := store.NewSQLiteStore()
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer sqlStore.Close()

	svc, err := stages.NewIngestService(sqlStore, nil, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	data := []byte(`<div class="box"><input type="checkbox" checked><b>x</b></div>`)
	result, err := svc.IngestFile(ctx, stages.IngestRequest{Filename: "box.html", Data: data})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}

	doc, err := sqlStore.GetDocument(ctx, result.DocumentID)
	if err != nil {
		t.Fatalf("get document: %v", err)
	}
	if doc == nil || fragment.Count(doc.Roots) != result.Nodes {
		t.Fatalf("stored tree does not match ingest result")
	}
	if _, hasValue, ok := doc.Roots[0].Children[0].Attr("checked"); !ok || hasValue {
		t.Errorf("checked: got (hasValue %v, ok %v), want (false, true)", hasValue, ok)
	}

	again, err := svc.IngestFile(ctx, stages.IngestRequest{Filename: "box-copy.html", Data: data})
	if err != nil {
		t.Fatalf("ingest duplicate: %v", err)
	}
	if !again.Duplicate || again.DocumentID != result.DocumentID {
		t.Errorf("duplicate = %+v, want duplicate of %q", again, result.DocumentID)
	}
}
