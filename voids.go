// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package fragment

func init() {
	for _, tag := range []string{"area", "base", "br", "col", "embed", "hr", "img", "input", "link", "meta", "param", "source", "track", "wbr"} {
		voids[tag] = true
	}
	for _, ch := range []byte{'\t', '\n', '\f', '\r', ' '} {
		whitespace[ch] = true
	}
}

var (
	// voids is the set of elements that never have children.
	// Names are case-sensitive. It must not be modified after init.
	voids = map[string]bool{}

	whitespace = [256]bool{}
)

// IsVoid reports whether tag names a void element.
// The comparison is case-sensitive, so "BR" is not void.
func IsVoid(tag string) bool {
	return voids[tag]
}

// VoidElements returns the void element names in no particular order.
func VoidElements() []string {
	var tags []string
	for tag := range voids {
		tags = append(tags, tag)
	}
	return tags
}

// isspace reports whether ch is TAB, LF, FF, CR, or SPACE.
func isspace(ch rune) bool {
	if 0 <= ch && ch < 256 {
		return whitespace[byte(ch)]
	}
	return false
}
