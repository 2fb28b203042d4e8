// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package fragment_test

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/mdhender/fragment"
)

func TestPrintDiagnostic(t *testing.T) {
	p, err := fragment.New(fragment.WithMaxDepth(1), fragment.WithForest(true))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	input := "<p>ok</p>\n<div><span>deep</span></div>"
	_, err = p.Parse(context.Background(), input)
	if err == nil {
		t.Fatalf("parse: want error, got nil")
	}
	diag, ok := fragment.DiagnosticFromError(err)
	if !ok {
		t.Fatalf("diagnostic: %T is not a parse error", err)
	}

	var buf bytes.Buffer
	fragment.PrintDiagnostic(&buf, diag, "input.html", []rune(input))
	want := "input.html:2:6: error: maximum nesting depth exceeded\n" +
		"    <div><span>deep</span></div>\n" +
		"         ^\n" +
		"    note: element at depth 2 was not parsed\n"
	if got := buf.String(); got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestDiagnosticFromError_Other(t *testing.T) {
	if _, ok := fragment.DiagnosticFromError(errors.New("boom")); ok {
		t.Errorf("ok = true, want false")
	}
}
