// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package render

type Option func(r *Renderer) error

// WithIndent puts every element and text run on its own line, indented
// by depth. This changes the text of the document; it is for display.
func WithIndent(indent string) Option {
	return func(r *Renderer) error {
		r.indent = indent
		return nil
	}
}

// WithSortedAttributes writes attributes in name order.
// When false, attribute order follows map iteration order.
func WithSortedAttributes(flag bool) Option {
	return func(r *Renderer) error {
		r.sortAttributes = flag
		return nil
	}
}
