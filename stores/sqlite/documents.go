// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mdhender/fragment"
	"github.com/mdhender/fragment/model"
)

// InsertDocument inserts a document and its node tree in one transaction.
// If doc.ID is empty a new UUID is assigned. Returns the document ID.
func (s *SQLiteStore) InsertDocument(ctx context.Context, doc *model.Document) (string, error) {
	if doc.ID == "" {
		doc.ID = uuid.NewString()
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	const query = `
		INSERT INTO documents (id, name, sha256, size, created_at)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err = tx.ExecContext(ctx, query,
		doc.ID,
		doc.Name,
		doc.SHA256,
		doc.Size,
		doc.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert document: %w", err)
	}

	for seq, root := range doc.Roots {
		if err := insertNode(ctx, tx, doc.ID, sql.NullInt64{}, seq, root); err != nil {
			return "", err
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return doc.ID, nil
}

func insertNode(ctx context.Context, tx *sql.Tx, docID string, parentID sql.NullInt64, seq int, n *fragment.Node) error {
	const query = `
		INSERT INTO nodes (document_id, parent_id, seq, kind, text, text_run)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	result, err := tx.ExecContext(ctx, query, docID, parentID, seq, n.Kind, n.Text, n.IsText())
	if err != nil {
		return fmt.Errorf("insert node: %w", err)
	}
	nodeID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("insert node: %w", err)
	}

	for name, value := range n.Attributes {
		var v sql.NullString
		if value != nil {
			v = sql.NullString{String: *value, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO attributes (node_id, name, value) VALUES (?, ?, ?)`, nodeID, name, v); err != nil {
			return fmt.Errorf("insert attribute %q: %w", name, err)
		}
	}

	for childSeq, child := range n.Children {
		if err := insertNode(ctx, tx, docID, sql.NullInt64{Int64: nodeID, Valid: true}, childSeq, child); err != nil {
			return err
		}
	}
	return nil
}

// GetDocument returns the document with its node tree.
// Returns nil, nil if the document does not exist.
func (s *SQLiteStore) GetDocument(ctx context.Context, id string) (*model.Document, error) {
	doc, err := s.getDocument(ctx, `WHERE id = ?`, id)
	if err != nil || doc == nil {
		return doc, err
	}
	if doc.Roots, err = s.loadTree(ctx, doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}

// GetDocumentBySHA256 returns the document with its node tree.
// Returns nil, nil if no document has that hash.
func (s *SQLiteStore) GetDocumentBySHA256(ctx context.Context, sha256 string) (*model.Document, error) {
	doc, err := s.getDocument(ctx, `WHERE sha256 = ?`, sha256)
	if err != nil || doc == nil {
		return doc, err
	}
	if doc.Roots, err = s.loadTree(ctx, doc.ID); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *SQLiteStore) getDocument(ctx context.Context, where string, arg any) (*model.Document, error) {
	query := `SELECT id, name, sha256, size, created_at FROM documents ` + where
	doc, err := scanDocument(s.db.QueryRowContext(ctx, query, arg))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

// ListDocuments returns all documents without their trees, oldest first.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]*model.Document, error) {
	const query = `SELECT id, name, sha256, size, created_at FROM documents ORDER BY created_at, name`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	var docs []*model.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*model.Document, error) {
	var doc model.Document
	var createdAt string
	if err := row.Scan(&doc.ID, &doc.Name, &doc.SHA256, &doc.Size, &createdAt); err != nil {
		return nil, err
	}
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("created_at: %w", err)
	}
	doc.CreatedAt = t
	return &doc, nil
}

// loadTree rebuilds the forest for a document.
// Element nodes get an empty attribute map, text runs get none,
// which matches what the parser produces.
func (s *SQLiteStore) loadTree(ctx context.Context, docID string) ([]*fragment.Node, error) {
	const nodeQuery = `
		SELECT id, parent_id, kind, text, text_run
		FROM nodes
		WHERE document_id = ?
		ORDER BY id
	`
	rows, err := s.db.QueryContext(ctx, nodeQuery, docID)
	if err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	defer rows.Close()

	var roots []*fragment.Node
	nodes := map[int64]*fragment.Node{}
	for rows.Next() {
		var id int64
		var parentID sql.NullInt64
		var textRun bool
		n := &fragment.Node{}
		if err := rows.Scan(&id, &parentID, &n.Kind, &n.Text, &textRun); err != nil {
			return nil, fmt.Errorf("load nodes: %w", err)
		}
		if !textRun {
			n.Attributes = map[string]*string{}
		}
		nodes[id] = n
		if !parentID.Valid {
			roots = append(roots, n)
			continue
		}
		parent, ok := nodes[parentID.Int64]
		if !ok {
			return nil, fmt.Errorf("load nodes: node %d: missing parent %d", id, parentID.Int64)
		}
		parent.Children = append(parent.Children, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load nodes: %w", err)
	}
	rows.Close()

	const attrQuery = `
		SELECT a.node_id, a.name, a.value
		FROM attributes a
		JOIN nodes n ON n.id = a.node_id
		WHERE n.document_id = ?
	`
	arows, err := s.db.QueryContext(ctx, attrQuery, docID)
	if err != nil {
		return nil, fmt.Errorf("load attributes: %w", err)
	}
	defer arows.Close()
	for arows.Next() {
		var nodeID int64
		var name string
		var value sql.NullString
		if err := arows.Scan(&nodeID, &name, &value); err != nil {
			return nil, fmt.Errorf("load attributes: %w", err)
		}
		n, ok := nodes[nodeID]
		if !ok {
			continue
		}
		if n.Attributes == nil {
			n.Attributes = map[string]*string{}
		}
		if value.Valid {
			v := value.String
			n.Attributes[name] = &v
		} else {
			n.Attributes[name] = nil
		}
	}
	return roots, arows.Err()
}
