// Package page models the live page the monitor observes: a tree of
// element and text nodes, compound selectors, and a mutation notification
// source that batches structural and text changes per observer.
//
// Node reads are not synchronized on their own. Read the tree from inside
// an observer callback or a Document.View call; mutate it only through
// Document methods.
package page

import (
	"strings"
)

// NodeType distinguishes the kinds of nodes in the tree.
type NodeType int

const (
	DocumentNode NodeType = iota
	ElementNode
	TextNode
)

// Attribute is a single element attribute.
type Attribute struct {
	Key string
	Val string
}

// Node is a document, element, or text node.
type Node struct {
	Type NodeType
	// Tag is the lower-case element name. Empty for text and document nodes.
	Tag string
	// Data is the text of a text node.
	Data string

	Parent   *Node
	Children []*Node

	attrs []Attribute
}

// NewElement creates a detached element node.
func NewElement(tag string, attrs ...Attribute) *Node {
	return &Node{
		Type:  ElementNode,
		Tag:   strings.ToLower(tag),
		attrs: append([]Attribute(nil), attrs...),
	}
}

// NewText creates a detached text node.
func NewText(data string) *Node {
	return &Node{Type: TextNode, Data: data}
}

// IsElement reports whether n is an element node.
func (n *Node) IsElement() bool { return n != nil && n.Type == ElementNode }

// Attrs returns the element's attributes in source order.
func (n *Node) Attrs() []Attribute { return n.attrs }

// Attr returns the value of the named attribute and whether it is present.
func (n *Node) Attr(key string) (string, bool) {
	for _, a := range n.attrs {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

// GetAttr returns the named attribute, or "" when absent.
func (n *Node) GetAttr(key string) string {
	v, _ := n.Attr(key)
	return v
}

// ID returns the element's id attribute.
func (n *Node) ID() string { return n.GetAttr("id") }

// Classes returns the element's class list.
func (n *Node) Classes() []string {
	return strings.Fields(n.GetAttr("class"))
}

// HasClass reports whether the class list contains c.
func (n *Node) HasClass(c string) bool {
	for _, have := range n.Classes() {
		if have == c {
			return true
		}
	}
	return false
}

// TextContent concatenates the data of every descendant text node in
// document order. For a text node it is the node's own data.
func (n *Node) TextContent() string {
	if n == nil {
		return ""
	}
	if n.Type == TextNode {
		return n.Data
	}
	var b strings.Builder
	n.walk(func(d *Node) bool {
		if d.Type == TextNode {
			b.WriteString(d.Data)
		}
		return true
	})
	return b.String()
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for p := other; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// Matches reports whether n is an element matching sel.
func (n *Node) Matches(sel Selector) bool {
	return sel.Match(n)
}

// QuerySelector returns the first descendant element matching sel, or nil.
func (n *Node) QuerySelector(sel Selector) *Node {
	var found *Node
	n.walkDescendants(func(d *Node) bool {
		if sel.Match(d) {
			found = d
			return false
		}
		return true
	})
	return found
}

// QuerySelectorAll returns every descendant element matching sel in
// document order. n itself is never included.
func (n *Node) QuerySelectorAll(sel Selector) []*Node {
	var out []*Node
	n.walkDescendants(func(d *Node) bool {
		if sel.Match(d) {
			out = append(out, d)
		}
		return true
	})
	return out
}

// walk visits n and then its descendants depth-first. Returning false
// from fn stops the walk.
func (n *Node) walk(fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	return n.walkChildren(fn)
}

func (n *Node) walkDescendants(fn func(*Node) bool) {
	n.walkChildren(fn)
}

func (n *Node) walkChildren(fn func(*Node) bool) bool {
	for _, c := range n.Children {
		if !c.walk(fn) {
			return false
		}
	}
	return true
}

func (n *Node) indexOf(child *Node) int {
	for i, c := range n.Children {
		if c == child {
			return i
		}
	}
	return -1
}
