package htmlsource

import (
	"strings"

	"github.com/hammamikhairi/livespeaker/internal/page"
)

// Reconcile makes the children of cur, a node attached to doc, match the
// children of next, a node from a detached snapshot. Children whose whole
// subtree is unchanged are left alone. Between unchanged runs, elements of
// the same tag and attributes are reconciled recursively, text nodes are
// updated in place, and anything else is replaced. Elements matching one
// of the atomic selectors are never reconciled recursively: a changed one
// is removed and the new one inserted, so observers see it arrive. Nodes
// taken from next are moved into doc, so next must not be reused.
//
// The caller must be the only writer of doc while Reconcile runs.
// It returns the number of mutations applied.
func Reconcile(doc *page.Document, cur, next *page.Node, atomic ...page.Selector) (int, error) {
	r := &reconciler{doc: doc, atomic: atomic}
	err := r.children(cur, next)
	return r.changes, err
}

type reconciler struct {
	doc     *page.Document
	atomic  []page.Selector
	changes int
}

func (r *reconciler) isAtomic(n *page.Node) bool {
	for _, sel := range r.atomic {
		if sel.Match(n) {
			return true
		}
	}
	return false
}

func (r *reconciler) children(cur, next *page.Node) error {
	have := append([]*page.Node(nil), cur.Children...)
	want := append([]*page.Node(nil), next.Children...)

	pairs := commonRuns(signatures(have), signatures(want))

	hi, wi := 0, 0
	for _, p := range pairs {
		if err := r.gap(cur, have[hi:p.have], want[wi:p.want], have[p.have]); err != nil {
			return err
		}
		hi, wi = p.have+1, p.want+1
	}
	return r.gap(cur, have[hi:], want[wi:], nil)
}

// gap reconciles one unmatched stretch. ref is the kept node that follows
// it, or nil at the end of the child list.
func (r *reconciler) gap(parent *page.Node, have, want []*page.Node, ref *page.Node) error {
	n := min(len(have), len(want))
	for i := 0; i < n; i++ {
		if err := r.pair(parent, have[i], want[i]); err != nil {
			return err
		}
	}
	for _, old := range have[n:] {
		if err := r.doc.RemoveChild(parent, old); err != nil {
			return err
		}
		r.changes++
	}
	for _, add := range want[n:] {
		add.Parent = nil
		if err := r.doc.InsertBefore(parent, add, ref); err != nil {
			return err
		}
		r.changes++
	}
	return nil
}

func (r *reconciler) pair(parent, old, repl *page.Node) error {
	switch {
	case old.Type == page.TextNode && repl.Type == page.TextNode:
		if old.Data != repl.Data {
			r.changes++
		}
		return r.doc.SetText(old, repl.Data)
	case sameShape(old, repl) && !r.isAtomic(old):
		return r.children(old, repl)
	}

	repl.Parent = nil
	if err := r.doc.InsertBefore(parent, repl, old); err != nil {
		return err
	}
	if err := r.doc.RemoveChild(parent, old); err != nil {
		return err
	}
	r.changes += 2
	return nil
}

// sameShape reports whether two elements differ at most in their
// descendants.
func sameShape(a, b *page.Node) bool {
	if !a.IsElement() || !b.IsElement() || a.Tag != b.Tag {
		return false
	}
	aa, ba := a.Attrs(), b.Attrs()
	if len(aa) != len(ba) {
		return false
	}
	for i := range aa {
		if aa[i] != ba[i] {
			return false
		}
	}
	return true
}

type match struct{ have, want int }

// commonRuns returns the index pairs of a longest common subsequence of
// a and b, in increasing order.
func commonRuns(a, b []string) []match {
	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int, len(a)+1)
	for i := range lcs {
		lcs[i] = make([]int, len(b)+1)
	}
	for i := len(a) - 1; i >= 0; i-- {
		for j := len(b) - 1; j >= 0; j-- {
			if a[i] == b[j] {
				lcs[i][j] = lcs[i+1][j+1] + 1
			} else {
				lcs[i][j] = max(lcs[i+1][j], lcs[i][j+1])
			}
		}
	}

	var out []match
	for i, j := 0, 0; i < len(a) && j < len(b); {
		switch {
		case a[i] == b[j]:
			out = append(out, match{i, j})
			i++
			j++
		case lcs[i+1][j] >= lcs[i][j+1]:
			i++
		default:
			j++
		}
	}
	return out
}

func signatures(nodes []*page.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		var b strings.Builder
		writeSignature(&b, n)
		out[i] = b.String()
	}
	return out
}

// writeSignature serializes a subtree so that equal signatures mean equal
// subtrees.
func writeSignature(b *strings.Builder, n *page.Node) {
	if n.Type == page.TextNode {
		b.WriteString("t")
		writeQuoted(b, n.Data)
		return
	}
	b.WriteString("<")
	b.WriteString(n.Tag)
	for _, a := range n.Attrs() {
		b.WriteString(" ")
		b.WriteString(a.Key)
		writeQuoted(b, a.Val)
	}
	b.WriteString(">")
	for _, c := range n.Children {
		writeSignature(b, c)
	}
	b.WriteString("</>")
}

func writeQuoted(b *strings.Builder, s string) {
	b.WriteByte('"')
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(s, `\`, `\\`), `"`, `\"`))
	b.WriteByte('"')
}
