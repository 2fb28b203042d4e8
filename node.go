// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package fragment

// TextKind is the Kind of a node that holds a run of text.
const TextKind = "text"

// Node is a parsed element or text run.
//
// Kind is the literal tag name (e.g. "h1", "input") or TextKind.
//
// Text holds the content of a text node. For an element it holds the
// run of text that appeared first inside the element, before any child
// element or close tag.
//
// Attributes maps names to values. A nil value is a boolean attribute
// written without "=", such as "disabled". Elements always have a
// non-nil map, even when empty. Text nodes never have attributes or
// children.
type Node struct {
	Kind       string             `json:"kind"`
	Text       string             `json:"text,omitempty"`
	Children   []*Node            `json:"children,omitempty"`
	Attributes map[string]*string `json:"attributes,omitzero"`
}

func newElement(kind string) *Node {
	return &Node{Kind: kind, Attributes: map[string]*string{}}
}

func newText(text string) *Node {
	return &Node{Kind: TextKind, Text: text}
}

// IsText reports whether n is a text run. An element whose tag name is
// "text" is not a text run: elements always have an attribute map.
func (n *Node) IsText() bool {
	return n != nil && n.Kind == TextKind && n.Attributes == nil && len(n.Children) == 0
}

// Attr returns the value of the named attribute.
// ok is false if the attribute is not present. hasValue is false
// for a boolean attribute.
func (n *Node) Attr(name string) (value string, hasValue bool, ok bool) {
	if n == nil {
		return "", false, false
	}
	v, ok := n.Attributes[name]
	if !ok {
		return "", false, false
	} else if v == nil {
		return "", false, true
	}
	return *v, true, true
}

// setAttr records a value for name. A nil value marks a boolean
// attribute. An existing value is never replaced by a boolean.
func (n *Node) setAttr(name string, value *string) {
	if n.Attributes == nil {
		n.Attributes = map[string]*string{}
	}
	if prior, ok := n.Attributes[name]; ok && prior != nil && value == nil {
		return
	}
	n.Attributes[name] = value
}

// Walk visits n and its descendants depth first, in source order.
// If fn returns false, the children of that node are skipped.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(n *Node, depth int) bool, depth int) {
	if n == nil || !fn(n, depth) {
		return
	}
	for _, child := range n.Children {
		child.walk(fn, depth+1)
	}
}

// Count returns the number of nodes in the forest.
func Count(roots []*Node) (count int) {
	for _, root := range roots {
		root.Walk(func(*Node, int) bool {
			count++
			return true
		})
	}
	return count
}
