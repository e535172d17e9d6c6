// Package watcher observes the feed and banner regions of the live page
// and turns their changes into announcements.
package watcher

import (
	"github.com/hammamikhairi/livespeaker/internal/page"
)

// Page is the part of the live page a watcher needs: root lookup, a
// consistent read view, and mutation notifications. *page.Document
// satisfies it.
type Page interface {
	View(fn func())
	GetElementByID(id string) *page.Node
	Observe(target *page.Node, opts page.ObserveOptions, fn page.Callback) (*page.Observer, error)
}

var _ Page = (*page.Document)(nil)
