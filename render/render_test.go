// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package render_test

import (
	"context"
	"testing"

	"github.com/mdhender/fragment"
	"github.com/mdhender/fragment/render"
)

func TestRenderer_String(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	for _, tc := range []struct {
		id    int
		input string
		want  string
	}{
		{id: 1, input: "Olá Marcos", want: "Olá Marcos"},
		{id: 2, input: "<h1>Olá <b>Marcos</b></h1>", want: "<h1>Olá <b>Marcos</b></h1>"},
		{id: 3, input: "<form><input/></form>", want: "<form><input /></form>"},
		{id: 4, input: `<input name="q" id="teste" disabled>`, want: `<input disabled id="teste" name="q" />`},
		{id: 5, input: `<p title="a &amp; b">x &lt; y</p>`, want: `<p title="a &amp;amp; b">x &amp;lt; y</p>`},
		{id: 6, input: "<div><h1>A</h1><h2>B</h2></div>", want: "<div><h1>A</h1><h2>B</h2></div>"},
		{id: 7, input: "<div><br>x</div>", want: "<div><br />x</div>"},
		{id: 8, input: "", want: ""},
		{id: 9, input: "<text><b>x</b></text>", want: "<text><b>x</b></text>"},
		{id: 10, input: `<text id="a">x</text>`, want: `<text id="a">x</text>`},
		{id: 11, input: "<text></text>", want: "<text></text>"},
	} {
		got, err := r.String(context.Background(), fragment.Parse(tc.input))
		if err != nil {
			t.Fatalf("%d: render: %v", tc.id, err)
		}
		if got != tc.want {
			t.Errorf("%d: got %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestRenderer_Indent(t *testing.T) {
	r, err := render.New(render.WithIndent("  "))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := r.String(context.Background(), fragment.Parse("<ul><li>one</li><li>two</li><br></ul>"))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := "<ul>\n  <li>\n    one\n  </li>\n  <li>\n    two\n  </li>\n  <br />\n</ul>"
	if got != want {
		t.Errorf("got\n%s\nwant\n%s", got, want)
	}
}

func TestRenderer_Cancelled(t *testing.T) {
	r, err := render.New()
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.String(ctx, fragment.Parse("<p>x</p>")); err == nil {
		t.Errorf("render: want error for cancelled context, got nil")
	}
}
