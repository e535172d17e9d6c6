// Package domain holds the types shared by the watchers, the normalizer,
// and the speech pipeline.
package domain

// Source identifies which page region produced an announcement.
type Source int

const (
	SourceFeed Source = iota
	SourceBanner
)

func (s Source) String() string {
	switch s {
	case SourceFeed:
		return "feed"
	case SourceBanner:
		return "banner"
	default:
		return "unknown"
	}
}

// RawFeedItem is what the feed watcher reads off a single feed node.
// Empty fields mean the node did not carry them.
type RawFeedItem struct {
	Identity    string
	SpeakerName string
	Body        string
}

// HasIdentity reports whether the item carries a stable key.
func (r RawFeedItem) HasIdentity() bool { return r.Identity != "" }

// Announcement is a speakable unit of text. It carries no identity; the
// source is kept only for console labelling.
type Announcement struct {
	Source Source
	Text   string
}
