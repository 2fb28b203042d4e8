// Copyright (c) 2025 Michael D Henderson. All rights reserved.

// Package render writes a parsed fragment back out as markup.
//
// Text and attribute values are escaped on output. The parser does not
// decode character references, so rendering and parsing again is not
// guaranteed to reproduce the original tree.
package render

import (
	"bytes"
	"context"
	"io"
	"sort"
	"strings"

	"github.com/a-h/templ"
	"github.com/mdhender/fragment"
)

type Renderer struct {
	indent         string
	sortAttributes bool
}

func New(options ...Option) (*Renderer, error) {
	r := &Renderer{
		sortAttributes: true,
	}
	for _, option := range options {
		err := option(r)
		if err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Component returns a component that renders the forest.
func (r *Renderer) Component(roots []*fragment.Node) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		for _, root := range roots {
			if err := r.Node(root, 0).Render(ctx, w); err != nil {
				return err
			}
		}
		return nil
	})
}

// Node returns a component that renders n and its children.
func (r *Renderer) Node(n *fragment.Node, depth int) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := io.WriteString(w, r.newline(depth)); err != nil {
			return err
		}
		if n.IsText() {
			_, err := io.WriteString(w, templ.EscapeString(n.Text))
			return err
		}

		var sb strings.Builder
		sb.WriteByte('<')
		sb.WriteString(n.Kind)
		for _, name := range r.attributeNames(n) {
			sb.WriteByte(' ')
			sb.WriteString(name)
			if value := n.Attributes[name]; value != nil {
				sb.WriteString(`="`)
				sb.WriteString(templ.EscapeString(*value))
				sb.WriteByte('"')
			}
		}
		void := fragment.IsVoid(n.Kind)
		if void {
			sb.WriteString(" />")
		} else {
			sb.WriteByte('>')
		}
		if n.Text != "" {
			if r.indent != "" {
				sb.WriteString(r.newline(depth + 1))
			}
			sb.WriteString(templ.EscapeString(n.Text))
		}
		if _, err := io.WriteString(w, sb.String()); err != nil {
			return err
		}

		for _, child := range n.Children {
			if err := r.Node(child, depth+1).Render(ctx, w); err != nil {
				return err
			}
		}
		if void {
			return nil
		}
		if r.indent != "" && (n.Text != "" || len(n.Children) != 0) {
			if _, err := io.WriteString(w, r.newline(depth)); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, "</"+n.Kind+">")
		return err
	})
}

// String renders the forest and returns the markup.
func (r *Renderer) String(ctx context.Context, roots []*fragment.Node) (string, error) {
	var buf bytes.Buffer
	if err := r.Component(roots).Render(ctx, &buf); err != nil {
		return "", err
	}
	return strings.TrimPrefix(buf.String(), "\n"), nil
}

func (r *Renderer) attributeNames(n *fragment.Node) []string {
	names := make([]string, 0, len(n.Attributes))
	for name := range n.Attributes {
		names = append(names, name)
	}
	if r.sortAttributes {
		sort.Strings(names)
	}
	return names
}

func (r *Renderer) newline(depth int) string {
	if r.indent == "" {
		return ""
	}
	return "\n" + strings.Repeat(r.indent, depth)
}
