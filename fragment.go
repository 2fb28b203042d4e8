// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package fragment converts a markup fragment into a tree of element nodes.
//
// It is a fragment parser, not a document parser. There is no DOCTYPE
// handling, no head or body inference, no character reference decoding,
// no comments or CDATA, and no namespaces.
package fragment

import (
	"github.com/maloquacious/semver"
)

var (
	version = semver.Version{
		Major: 0,
		Minor: 3,
		Patch: 0,
		Build: semver.Commit(),
	}
)

func Version() semver.Version {
	return version
}
