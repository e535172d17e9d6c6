package watcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hammamikhairi/livespeaker/internal/announce"
	"github.com/hammamikhairi/livespeaker/internal/domain"
	"github.com/hammamikhairi/livespeaker/internal/ledger"
	"github.com/hammamikhairi/livespeaker/internal/logger"
	"github.com/hammamikhairi/livespeaker/internal/page"
)

// Defaults for the live-room danmaku list.
const (
	DefaultFeedRootID   = "chat-items"
	DefaultItemSelector = ".chat-item.danmaku-item"
)

// FeedOption configures the feed watcher.
type FeedOption func(*FeedWatcher)

// WithFeedRoot sets the id of the feed container.
func WithFeedRoot(id string) FeedOption {
	return func(w *FeedWatcher) {
		w.rootID = id
	}
}

// WithItemSelector sets the selector feed items must match.
func WithItemSelector(sel page.Selector) FeedOption {
	return func(w *FeedWatcher) {
		w.itemSel = sel
	}
}

// WithFeedFields sets where item data is read from.
func WithFeedFields(f FeedFields) FeedOption {
	return func(w *FeedWatcher) {
		w.fields = f
	}
}

// FeedWatcher announces every new item that appears in the feed. Items
// with an identity are announced once per session; items without one are
// announced every time a node carrying them is inserted.
type FeedWatcher struct {
	page      Page
	ledger    *ledger.Ledger
	norm      *announce.Normalizer
	announcer domain.Announcer
	log       *logger.Logger

	rootID  string
	itemSel page.Selector
	fields  FeedFields

	mu    sync.Mutex
	state domain.WatcherState
	obs   *page.Observer

	announced atomic.Int64
	skipped   atomic.Int64
}

// NewFeedWatcher creates a feed watcher with the given dependencies.
func NewFeedWatcher(p Page, l *ledger.Ledger, norm *announce.Normalizer, announcer domain.Announcer, log *logger.Logger, opts ...FeedOption) *FeedWatcher {
	w := &FeedWatcher{
		page:      p,
		ledger:    l,
		norm:      norm,
		announcer: announcer,
		log:       log,
		rootID:    DefaultFeedRootID,
		itemSel:   page.MustSelector(DefaultItemSelector),
		fields:    DefaultFeedFields(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name identifies the watcher in logs.
func (w *FeedWatcher) Name() string { return "feed" }

// RootID returns the id of the element the watcher attaches to.
func (w *FeedWatcher) RootID() string { return w.rootID }

// Start announces the items already in the feed and begins observing it.
// If the feed root does not exist the watcher goes straight to stopped
// and returns domain.ErrRootNotFound. ctx is used for every announcement
// made by this watcher.
func (w *FeedWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != domain.WatcherNotStarted {
		return domain.ErrAlreadyStarted
	}

	var err error
	w.page.View(func() {
		root := w.page.GetElementByID(w.rootID)
		if root == nil {
			err = fmt.Errorf("feed root #%s: %w", w.rootID, domain.ErrRootNotFound)
			return
		}

		existing := root.QuerySelectorAll(w.itemSel)
		w.log.Debug("feed: %d items already present", len(existing))
		for _, item := range existing {
			w.process(ctx, item)
		}

		w.obs, err = w.page.Observe(root, page.ObserveOptions{ChildList: true, Subtree: true}, func(records []page.MutationRecord) {
			w.handle(ctx, records)
		})
	})

	if err != nil {
		w.state = domain.WatcherStopped
		return err
	}

	w.state = domain.WatcherObserving
	w.log.Info("feed watcher started (root=#%s, items=%s)", w.rootID, w.itemSel)
	return nil
}

// Stop ends observation. Safe to call more than once, and before Start.
func (w *FeedWatcher) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state == domain.WatcherStopped {
		return
	}
	if w.obs != nil {
		w.obs.Disconnect()
		w.obs = nil
	}
	w.state = domain.WatcherStopped
	w.log.Info("feed watcher stopped (announced=%d, duplicates=%d)", w.announced.Load(), w.skipped.Load())
}

// State returns the watcher's lifecycle state.
func (w *FeedWatcher) State() domain.WatcherState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Announced returns how many feed items were announced.
func (w *FeedWatcher) Announced() int64 { return w.announced.Load() }

// handle processes one batch of insertions in encounter order. A node
// that is itself a feed item is processed as-is; any other inserted
// element is searched for feed items, since groups arrive wrapped.
func (w *FeedWatcher) handle(ctx context.Context, records []page.MutationRecord) {
	for _, rec := range records {
		if rec.Type != page.ChildList {
			continue
		}
		for _, n := range rec.AddedNodes {
			if !n.IsElement() {
				continue
			}
			if n.Matches(w.itemSel) {
				w.process(ctx, n)
				continue
			}
			for _, item := range n.QuerySelectorAll(w.itemSel) {
				w.process(ctx, item)
			}
		}
	}
}

// process runs one item through the ledger gate and announces it.
func (w *FeedWatcher) process(ctx context.Context, n *page.Node) {
	item := ExtractFeedItem(n, w.fields)

	if item.HasIdentity() {
		if w.ledger.HasSeen(item.Identity) {
			w.skipped.Add(1)
			w.log.Debug("feed: skipping seen item %s", item.Identity)
			return
		}
		w.ledger.MarkSeen(item.Identity)
	}

	text := w.norm.FeedItem(item.SpeakerName, item.Body)
	w.announced.Add(1)
	if err := w.announcer.Announce(ctx, domain.Announcement{Source: domain.SourceFeed, Text: text}); err != nil {
		w.log.Error("feed: announce: %v", err)
	}
}
