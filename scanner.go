// Copyright (c) 2025 Michael D Henderson. All rights reserved.

package fragment

import (
	"context"
	"log/slog"
	"strings"
)

// Scanner invariants
//
// A scan invocation owns its sibling list, its mode stack, and its
// accumulator. Nothing else is shared with the recursive invocations it
// starts: a child scan gets the input and an offset, and hands back the
// siblings it found and the number of characters it consumed.
//
// A scan invocation ends in exactly two ways:
//   - the input is exhausted, or
//   - a close tag is read through its final ">".
//
// The close tag that ends an invocation is not checked against the open
// element. A child scan started for "<b>" ends at the first close tag it
// sees, which is normally "</b>"; for a void child it is the parent's
// close tag.
//
// Text that is pending when a boundary is reached goes to:
//   - "<" starting a child while an element is open: the open element,
//   - "<" starting a tag while idle: a new text sibling,
//   - "</": the open element, or a new text sibling if none is open,
//   - end of input: a new text sibling.
//
// An element receives pending text as its Text only while it has no text
// and no children. Otherwise the run is appended as a text child so that
// source order is kept.
//
// A "<" followed by whitespace, "<", or ">" does not start a tag; it is
// kept as text, so "5 < 6" is a single text run. This departs from a
// strict reading where any "<" not followed by "/" starts a tag name,
// which would turn "5 < 6" into an element with an empty name.

// eof is returned by peek past the end of input.
const eof rune = -1

// Parser runs the scanner with a fixed configuration.
// A Parser is safe for concurrent use; it holds no per-parse state.
type Parser struct {
	config Config
}

// New returns a parser configured with the options.
func New(options ...Option) (*Parser, error) {
	p := &Parser{config: Config{logger: slog.New(slog.DiscardHandler)}}
	for _, option := range options {
		if err := option(&p.config); err != nil {
			return nil, err
		}
	}
	return p, nil
}

var defaultParser = &Parser{config: Config{logger: slog.New(slog.DiscardHandler)}}

// Parse returns the siblings found by scanning the fragment from its
// first character. A close tag at the top level ends the scan.
// It never fails; ill-formed markup yields a best-effort tree.
func Parse(input string) []*Node {
	roots, _ := defaultParser.Parse(context.Background(), input)
	return roots
}

// Parse returns the siblings found by a single scan from the start of
// the input. A close tag at the top level ends the scan, so anything
// after it is not parsed unless WithForest is set, in which case Parse
// keeps scanning from the next character until the input is exhausted.
// The context is checked before each top-level scan.
//
// The only errors are a cancelled context and a *ParseError when the
// configured depth is exceeded. The roots parsed so far are returned
// with the error.
func (p *Parser) Parse(ctx context.Context, input string) ([]*Node, error) {
	runes := []rune(input)
	var roots []*Node
	for pos := 0; pos < len(runes); {
		if err := ctx.Err(); err != nil {
			return roots, err
		}
		siblings, consumed, err := p.scan(runes, pos, 1)
		roots = append(roots, siblings...)
		if err != nil {
			return roots, err
		} else if consumed == 0 || !p.config.forest {
			break
		}
		pos += consumed
	}
	return roots, nil
}

// Scan parses input starting at start. It returns the siblings found at
// that level and the number of characters consumed, which includes the
// ">" of the close tag that ended the scan, if any.
func (p *Parser) Scan(input []rune, start int) ([]*Node, int, error) {
	if start < 0 || start > len(input) {
		start = len(input)
	}
	return p.scan(input, start, 1)
}

type scanner struct {
	config   *Config
	input    []rune
	depth    int
	siblings []*Node
	modes    stack
	buf      strings.Builder
}

func (p *Parser) scan(input []rune, start, depth int) ([]*Node, int, error) {
	if p.config.maxDepth > 0 && depth > p.config.maxDepth {
		return nil, 0, &ParseError{Pos: positionAt(input, start), Depth: depth, Err: ErrMaxDepth}
	}
	s := &scanner{config: &p.config, input: input, depth: depth}

	i := start
	for i < len(input) {
		top := s.modes.top()
		if top == nil {
			s.modes.push(&frame{mode: Idle})
			continue
		}
		n, done, err := s.step(p, top, i)
		i += n
		if err != nil {
			return s.siblings, i - start, err
		} else if done {
			return s.siblings, i - start, nil
		}
	}

	// only text survives end of input; partial tags are dropped
	if top := s.modes.top(); top != nil && top.mode.isContent() && s.buf.Len() > 0 {
		s.siblings = append(s.siblings, newText(s.take()))
	} else if s.buf.Len() > 0 {
		s.config.logger.Debug("scan: dropped partial construct", "mode", top.mode, "text", s.buf.String(), "depth", depth)
	}
	return s.siblings, i - start, nil
}

// step processes the character at i. It returns the number of characters
// consumed and whether a close tag ended the scan. A step that consumes
// nothing must have changed the mode stack.
func (s *scanner) step(p *Parser, top *frame, i int) (int, bool, error) {
	switch top.mode {
	case Idle, InsideOpenElement:
		return s.content(p, top, i)
	case OpeningTagName:
		return s.openingTagName(i), false, nil
	case AttributeList:
		return s.attributeList(top, i), false, nil
	case AttributeValue:
		return s.attributeValue(top, i), false, nil
	case ClosingTagName:
		return s.closingTagName(i)
	}
	panic("assert(mode != unknown)")
}

func (s *scanner) content(p *Parser, top *frame, i int) (int, bool, error) {
	ch, next := s.input[i], s.peek(i)
	if ch != '<' {
		s.buf.WriteRune(ch)
		return 1, false, nil
	}

	switch {
	case next == '/':
		s.flushAtClose()
		s.modes.push(&frame{mode: ClosingTagName})
		return 2, false, nil
	case next == eof:
		// a lone "<" at the end of input is ignored
		return 1, false, nil
	case isspace(next) || next == '<' || next == '>':
		// not a tag, e.g. "5 < 6"
		s.buf.WriteRune(ch)
		return 1, false, nil
	case top.mode == InsideOpenElement:
		s.flushIntoOpen(top.element)
		s.config.logger.Debug("scan: descend", "parent", top.element.Kind, "depth", s.depth+1, "offset", i)
		children, consumed, err := p.scan(s.input, i, s.depth+1)
		top.element.Children = append(top.element.Children, children...)
		return consumed, false, err
	}

	if s.buf.Len() > 0 {
		s.siblings = append(s.siblings, newText(s.take()))
	}
	s.modes.push(&frame{mode: OpeningTagName})
	return 1, false, nil
}

func (s *scanner) openingTagName(i int) int {
	ch, next := s.input[i], s.peek(i)
	switch {
	case ch == '>':
		s.openElement(false)
		return 1
	case ch == '/' && next == '>':
		s.openElement(true)
		return 2
	case isspace(ch):
		s.modes.pop()
		el := newElement(s.take())
		s.siblings = append(s.siblings, el)
		s.modes.push(&frame{mode: AttributeList, element: el})
		return 1
	}
	s.buf.WriteRune(ch)
	return 1
}

// openElement finishes a tag name that was ended by ">" or "/>".
func (s *scanner) openElement(selfClosed bool) {
	s.modes.pop()
	el := newElement(s.take())
	s.siblings = append(s.siblings, el)
	if !selfClosed && !IsVoid(el.Kind) {
		s.modes.push(&frame{mode: InsideOpenElement, element: el})
	}
}

func (s *scanner) attributeList(f *frame, i int) int {
	ch, next := s.input[i], s.peek(i)
	switch {
	case ch == '>':
		s.closeAttributes(f, false)
		return 1
	case ch == '/' && next == '>':
		s.closeAttributes(f, true)
		return 2
	case ch == '=' || ch == '"' || ch == '\'':
		name := s.take()
		if name == "" {
			name = f.key
		} else if f.key != "" {
			f.element.setAttr(f.key, nil)
		}
		f.key = ""
		if name == "" {
			// stray "=" or quote with no name to attach it to
			return 1
		}
		value := &frame{mode: AttributeValue, element: f.element, key: name}
		if ch != '=' {
			value.quote = ch
		}
		s.modes.push(value)
		return 1
	case isspace(ch) || ch == '/':
		if s.buf.Len() > 0 {
			if f.key != "" {
				f.element.setAttr(f.key, nil)
			}
			f.key = s.take()
		}
		return 1
	}
	if f.key != "" && s.buf.Len() == 0 {
		f.element.setAttr(f.key, nil)
		f.key = ""
	}
	s.buf.WriteRune(ch)
	return 1
}

// closeAttributes records any pending boolean attribute and returns to
// the element's content, unless the element is void or self-closed.
func (s *scanner) closeAttributes(f *frame, selfClosed bool) {
	if f.key != "" {
		f.element.setAttr(f.key, nil)
	}
	if name := s.take(); name != "" {
		f.element.setAttr(name, nil)
	}
	s.modes.pop()
	if !selfClosed && !IsVoid(f.element.Kind) {
		s.modes.push(&frame{mode: InsideOpenElement, element: f.element})
	}
}

func (s *scanner) attributeValue(f *frame, i int) int {
	ch, next := s.input[i], s.peek(i)
	if f.quote != 0 {
		if ch == f.quote {
			s.setValue(f)
			return 1
		}
		s.buf.WriteRune(ch)
		return 1
	}

	switch {
	case (ch == '"' || ch == '\'') && s.buf.Len() == 0:
		f.quote = ch
		return 1
	case ch == '"' || ch == '\'' || ch == '=':
		if s.buf.Len() > 0 {
			s.setValue(f)
		}
		return 1
	case isspace(ch):
		if s.buf.Len() > 0 {
			s.setValue(f)
		}
		return 1
	case ch == '>' || (ch == '/' && next == '>'):
		// the attribute list handles the boundary
		s.setValue(f)
		return 0
	}
	s.buf.WriteRune(ch)
	return 1
}

// setValue records the accumulator as the value of the pending attribute
// and returns to the attribute list.
func (s *scanner) setValue(f *frame) {
	value := s.take()
	f.element.setAttr(f.key, &value)
	s.modes.pop()
}

func (s *scanner) closingTagName(i int) (int, bool, error) {
	ch := s.input[i]
	if ch != '>' {
		s.buf.WriteRune(ch)
		return 1, false, nil
	}
	s.modes.pop()
	s.config.logger.Debug("scan: close", "name", s.take(), "depth", s.depth, "siblings", len(s.siblings))
	return 1, true, nil
}

// flushAtClose places pending text when "</" is reached.
func (s *scanner) flushAtClose() {
	if s.buf.Len() == 0 {
		return
	}
	text := s.take()
	if s.config.legacyText {
		if len(s.siblings) != 0 {
			s.siblings[0].Text = text
		} else {
			s.siblings = append(s.siblings, newText(text))
		}
		return
	}
	if open := s.modes.open(); open != nil {
		attachText(open.element, text)
		return
	}
	s.siblings = append(s.siblings, newText(text))
}

// flushIntoOpen places pending text when a child element starts.
func (s *scanner) flushIntoOpen(el *Node) {
	if s.buf.Len() == 0 {
		return
	}
	text := s.take()
	if s.config.legacyText {
		el.Text = text
		return
	}
	attachText(el, text)
}

func attachText(el *Node, text string) {
	if el.Text == "" && len(el.Children) == 0 {
		el.Text = text
		return
	}
	el.Children = append(el.Children, newText(text))
}

// take returns the accumulator and clears it.
func (s *scanner) take() string {
	text := s.buf.String()
	s.buf.Reset()
	return text
}

func (s *scanner) peek(i int) rune {
	if i+1 < len(s.input) {
		return s.input[i+1]
	}
	return eof
}
