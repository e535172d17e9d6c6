package page

import (
	"fmt"
	"strings"
)

// Selector is a compound CSS selector: an optional tag, an optional id,
// and any number of classes, e.g. "li.chat-item.danmaku-item" or
// "#chat-items". Combinators are not supported.
type Selector struct {
	Tag     string
	ID      string
	Classes []string
}

// ParseSelector parses a compound selector.
func ParseSelector(s string) (Selector, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Selector{}, fmt.Errorf("page: empty selector")
	}
	if strings.ContainsAny(s, " \t\n>+~[]:,") {
		return Selector{}, fmt.Errorf("page: unsupported selector %q: only tag#id.class compounds are allowed", s)
	}

	var sel Selector
	rest := s
	// Leading tag (or *).
	if i := strings.IndexAny(rest, "#."); i != 0 {
		if i < 0 {
			i = len(rest)
		}
		if tag := rest[:i]; tag != "*" {
			sel.Tag = strings.ToLower(tag)
		}
		rest = rest[i:]
	}

	for rest != "" {
		kind := rest[0]
		rest = rest[1:]
		end := strings.IndexAny(rest, "#.")
		if end < 0 {
			end = len(rest)
		}
		name := rest[:end]
		rest = rest[end:]
		if name == "" {
			return Selector{}, fmt.Errorf("page: malformed selector %q", s)
		}
		switch kind {
		case '#':
			if sel.ID != "" {
				return Selector{}, fmt.Errorf("page: selector %q has more than one id", s)
			}
			sel.ID = name
		case '.':
			sel.Classes = append(sel.Classes, name)
		}
	}
	return sel, nil
}

// MustSelector is like ParseSelector but panics on error. Use it for
// selectors that are compile-time constants.
func MustSelector(s string) Selector {
	sel, err := ParseSelector(s)
	if err != nil {
		panic(err)
	}
	return sel
}

// Match reports whether n is an element satisfying every part of sel.
func (sel Selector) Match(n *Node) bool {
	if !n.IsElement() {
		return false
	}
	if sel.Tag != "" && sel.Tag != n.Tag {
		return false
	}
	if sel.ID != "" && sel.ID != n.ID() {
		return false
	}
	for _, c := range sel.Classes {
		if !n.HasClass(c) {
			return false
		}
	}
	return true
}

// String renders the selector back to CSS.
func (sel Selector) String() string {
	var b strings.Builder
	b.WriteString(sel.Tag)
	if sel.ID != "" {
		b.WriteByte('#')
		b.WriteString(sel.ID)
	}
	for _, c := range sel.Classes {
		b.WriteByte('.')
		b.WriteString(c)
	}
	if b.Len() == 0 {
		return "*"
	}
	return b.String()
}
