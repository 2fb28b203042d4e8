// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package fragment

import (
	"fmt"
	"log/slog"
)

type Config struct {
	maxDepth   int
	legacyText bool
	forest     bool
	logger     *slog.Logger
}

type Option func(c *Config) error

// WithMaxDepth bounds the nesting depth. Zero means no bound.
func WithMaxDepth(depth int) Option {
	return func(c *Config) error {
		if depth < 0 {
			return fmt.Errorf("max depth %d: %w", depth, ErrInvalidOption)
		}
		c.maxDepth = depth
		return nil
	}
}

// WithLegacyTextAssignment assigns text found before a close tag to the
// first sibling at the current level instead of the open element.
// This reproduces the output of earlier releases.
func WithLegacyTextAssignment(flag bool) Option {
	return func(c *Config) error {
		c.legacyText = flag
		return nil
	}
}

// WithForest makes Parse keep scanning after a close tag at the top
// level, so that "<h1>A</h1><h2>B</h2>" yields two roots instead of one.
func WithForest(flag bool) Option {
	return func(c *Config) error {
		c.forest = flag
		return nil
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return fmt.Errorf("nil logger: %w", ErrInvalidOption)
		}
		c.logger = logger
		return nil
	}
}
