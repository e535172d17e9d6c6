// Package htmlsource feeds saved HTML snapshots of the live page into a
// page.Document. Each new snapshot is diffed against the live tree and
// applied as ordinary mutations, so observers see insertions, removals and
// text changes the same way they would on the real page.
package htmlsource

import (
	"fmt"
	"io"

	"golang.org/x/net/html"

	"github.com/hammamikhairi/livespeaker/internal/page"
)

// Parse reads an HTML document and returns it as a detached page tree
// rooted at a document node. Comments and doctypes are dropped; all text,
// whitespace included, is kept.
func Parse(r io.Reader) (*page.Node, error) {
	src, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	root := &page.Node{Type: page.DocumentNode}
	convertChildren(root, src)
	return root, nil
}

func convertChildren(dst *page.Node, src *html.Node) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		n := convert(c)
		if n == nil {
			continue
		}
		n.Parent = dst
		dst.Children = append(dst.Children, n)
	}
}

func convert(src *html.Node) *page.Node {
	switch src.Type {
	case html.TextNode:
		return page.NewText(src.Data)
	case html.ElementNode:
		attrs := make([]page.Attribute, 0, len(src.Attr))
		for _, a := range src.Attr {
			if a.Namespace != "" {
				continue
			}
			attrs = append(attrs, page.Attribute{Key: a.Key, Val: a.Val})
		}
		n := page.NewElement(src.Data, attrs...)
		convertChildren(n, src)
		return n
	default:
		return nil
	}
}
