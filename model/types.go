// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package model

import (
	"time"

	"github.com/mdhender/fragment"
)

// Document is a parsed source file.
// ID is a UUID assigned on insert. Size is the length of the source in bytes.
type Document struct {
	ID        string           `json:"id"        db:"id"`
	Name      string           `json:"name"      db:"name"`
	SHA256    string           `json:"sha256"    db:"sha256"`
	Size      int64            `json:"size"      db:"size"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
	Roots     []*fragment.Node `json:"roots,omitempty"`
}

// Stats holds store statistics.
type Stats struct {
	Documents  int64 `json:"documents"`
	Nodes      int64 `json:"nodes"`
	Attributes int64 `json:"attributes"`
}
