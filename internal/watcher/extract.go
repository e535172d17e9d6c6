package watcher

import (
	"strings"

	"github.com/hammamikhairi/livespeaker/internal/domain"
	"github.com/hammamikhairi/livespeaker/internal/page"
)

// FeedFields says where a feed item keeps its data. Attribute names are
// full names ("data-uname"), not dataset keys.
type FeedFields struct {
	IdentityAttr    string
	NameAttr        string
	ContentAttr     string
	ContentSelector page.Selector
}

// DefaultFeedFields matches the danmaku items of the live-room page.
func DefaultFeedFields() FeedFields {
	return FeedFields{
		IdentityAttr:    "data-timestamp",
		NameAttr:        "data-uname",
		ContentAttr:     "data-danmaku",
		ContentSelector: page.MustSelector(".danmaku-item-right"),
	}
}

// ExtractFeedItem reads one feed node. The body comes from the content
// attribute, then from the trimmed text of the content sub-element.
// Missing or empty values come back empty; fallbacks are the
// normalizer's job.
func ExtractFeedItem(n *page.Node, f FeedFields) domain.RawFeedItem {
	item := domain.RawFeedItem{
		Identity:    n.GetAttr(f.IdentityAttr),
		SpeakerName: n.GetAttr(f.NameAttr),
		Body:        n.GetAttr(f.ContentAttr),
	}
	if item.Body == "" {
		if sub := n.QuerySelector(f.ContentSelector); sub != nil {
			item.Body = strings.TrimSpace(sub.TextContent())
		}
	}
	return item
}
