// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package fragment

import (
	"errors"
	"fmt"
)

var (
	// ErrMaxDepth is returned when nesting exceeds the configured bound.
	ErrMaxDepth = errors.New("maximum nesting depth exceeded")

	ErrInvalidOption = errors.New("invalid option")
)

// ParseError is returned when the scanner refuses to continue.
// The scanner does not validate markup, so this only happens
// when a configured limit is hit.
type ParseError struct {
	Pos   Position
	Depth int
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%d:%d: depth %d: %v", e.Pos.Line, e.Pos.Column, e.Depth, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
