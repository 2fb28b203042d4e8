// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package fragment

// Position represents a position in the original source text.
// Line and Column are 1-based. Offset is the 0-based index of the
// character (not the byte) in the input.
type Position struct {
	Line   int // 1-based
	Column int // 1-based, character column
	Offset int // character index into input (0-based)
}

// positionAt computes the line and column of offset in input.
// Offsets past the end of input are clamped to the end.
func positionAt(input []rune, offset int) Position {
	if offset > len(input) {
		offset = len(input)
	} else if offset < 0 {
		offset = 0
	}
	pos := Position{Line: 1, Column: 1, Offset: offset}
	for _, ch := range input[:offset] {
		if ch == '\n' {
			pos.Line++
			pos.Column = 1
			continue
		}
		pos.Column++
	}
	return pos
}
