// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package fragment

// Mode is the scanner's current interpretation context for incoming characters.
type Mode int

const (
	// Idle is pushed before the first character is examined.
	// Characters read in Idle accumulate as text.
	Idle Mode = iota

	OpeningTagName    // capturing the name after "<"
	InsideOpenElement // between an element's ">" and its close tag
	AttributeList     // between the tag name and ">" or "/>"
	AttributeValue    // capturing the value for a pending attribute name
	ClosingTagName    // capturing the name after "</"
)

func (m Mode) String() string {
	switch m {
	case Idle:
		return "Idle"
	case OpeningTagName:
		return "OpeningTagName"
	case InsideOpenElement:
		return "InsideOpenElement"
	case AttributeList:
		return "AttributeList"
	case AttributeValue:
		return "AttributeValue"
	case ClosingTagName:
		return "ClosingTagName"
	}
	return "Mode(?)"
}

// isContent reports whether characters read in this mode are text.
func (m Mode) isContent() bool {
	return m == Idle || m == InsideOpenElement
}

// frame is one entry on the mode stack. Only the top frame matters.
type frame struct {
	mode Mode

	// element is the node the frame applies to. It is set for
	// InsideOpenElement, AttributeList, and AttributeValue.
	element *Node

	// key is the pending attribute name. In AttributeList it holds a
	// name that was ended by whitespace and may still receive a value;
	// in AttributeValue it is the name the value belongs to.
	key string

	// quote is the quote character that opened the value, or 0 when
	// no quote has been seen yet. Only used by AttributeValue.
	quote rune
}

// stack is the scanner's mode stack.
type stack []*frame

func (s *stack) push(f *frame) {
	*s = append(*s, f)
}

func (s *stack) pop() *frame {
	if len(*s) == 0 {
		return nil
	}
	f := (*s)[len(*s)-1]
	*s = (*s)[:len(*s)-1]
	return f
}

func (s stack) top() *frame {
	if len(s) == 0 {
		return nil
	}
	return s[len(s)-1]
}

// open returns the innermost InsideOpenElement frame, or nil.
func (s stack) open() *frame {
	for i := len(s) - 1; i >= 0; i-- {
		if s[i].mode == InsideOpenElement {
			return s[i]
		}
	}
	return nil
}
