// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package fragment

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// Fprint writes an indented outline of the forest to w, one node per line.
// Text is quoted and attributes are listed in name order. Text runs are
// printed as #text so they cannot be mistaken for a "text" element.
func Fprint(w io.Writer, roots []*Node) error {
	for _, root := range roots {
		var err error
		root.Walk(func(n *Node, depth int) bool {
			if err != nil {
				return false
			}
			_, err = fmt.Fprintln(w, strings.Repeat("  ", depth)+outline(n))
			return err == nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func outline(n *Node) string {
	if n.IsText() {
		return "#" + TextKind + " " + strconv.Quote(n.Text)
	}
	var sb strings.Builder
	sb.WriteString(n.Kind)
	names := make([]string, 0, len(n.Attributes))
	for name := range n.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		sb.WriteByte(' ')
		sb.WriteString(name)
		if v := n.Attributes[name]; v != nil {
			sb.WriteByte('=')
			sb.WriteString(strconv.Quote(*v))
		}
	}
	if n.Text != "" {
		sb.WriteByte(' ')
		sb.WriteString(strconv.Quote(n.Text))
	}
	return sb.String()
}
