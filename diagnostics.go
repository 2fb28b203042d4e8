// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package fragment

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Diagnostic represents a parser error or warning
// with a position in the original source.
type Diagnostic struct {
	Severity slog.Level // Error, Warning, Info
	Message  string     // "maximum nesting depth exceeded"
	Pos      Position   // where in the input it occurred
	Notes    []string   // optional additional help messages
}

// DiagnosticFromError converts err into a Diagnostic.
// It returns false if err is not a *ParseError.
func DiagnosticFromError(err error) (Diagnostic, bool) {
	var pe *ParseError
	if !errors.As(err, &pe) {
		return Diagnostic{}, false
	}
	diag := Diagnostic{
		Severity: slog.LevelError,
		Message:  pe.Err.Error(),
		Pos:      pe.Pos,
	}
	if errors.Is(pe.Err, ErrMaxDepth) {
		diag.Notes = append(diag.Notes, fmt.Sprintf("element at depth %d was not parsed", pe.Depth))
	}
	return diag, true
}

// PrintDiagnostic writes the diagnostic, the source line, and a caret
// under the column.
func PrintDiagnostic(w io.Writer, diag Diagnostic, filename string, src []rune) {
	// Header: file:line:column: error: message
	_, _ = fmt.Fprintf(w, "%s:%d:%d: %s: %s\n",
		filename, diag.Pos.Line, diag.Pos.Column,
		strings.ToLower(diag.Severity.String()), diag.Message)

	line := findLine(src, diag.Pos.Offset)
	_, _ = fmt.Fprintf(w, "    %s\n", string(line))

	// caret underline; tabs are kept so the caret lines up
	var pad strings.Builder
	for n, ch := range line {
		if n >= diag.Pos.Column-1 {
			break
		} else if ch == '\t' {
			pad.WriteRune('\t')
		} else {
			pad.WriteRune(' ')
		}
	}
	_, _ = fmt.Fprintf(w, "    %s^\n", pad.String())

	for _, note := range diag.Notes {
		_, _ = fmt.Fprintf(w, "    note: %s\n", note)
	}
}

// findLine returns the line containing offset, without the new-line.
// If there is no line, it returns an empty slice.
func findLine(src []rune, offset int) []rune {
	if offset > len(src) {
		return []rune{}
	}
	lineStart := 0
	for i := offset - 1; i >= 0; i-- {
		if src[i] == '\n' {
			lineStart = i + 1
			break
		}
	}
	lineEnd := len(src)
	for i := lineStart; i < len(src); i++ {
		if src[i] == '\n' {
			lineEnd = i
			break
		}
	}
	return src[lineStart:lineEnd]
}
