package watcher

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/hammamikhairi/livespeaker/internal/announce"
	"github.com/hammamikhairi/livespeaker/internal/domain"
	"github.com/hammamikhairi/livespeaker/internal/logger"
	"github.com/hammamikhairi/livespeaker/internal/page"
)

// DefaultBannerRootID is the id of the live-room status prompt.
const DefaultBannerRootID = "brush-prompt"

// BannerOption configures the banner watcher.
type BannerOption func(*BannerWatcher)

// WithBannerRoot sets the id of the banner element.
func WithBannerRoot(id string) BannerOption {
	return func(w *BannerWatcher) {
		w.rootID = id
	}
}

// BannerWatcher announces the status banner whenever its text really
// changes. Any mutation under the banner triggers a re-read; only a
// non-empty value different from the last announced one is spoken.
type BannerWatcher struct {
	page      Page
	norm      *announce.Normalizer
	announcer domain.Announcer
	log       *logger.Logger

	rootID string

	mu    sync.Mutex
	state domain.WatcherState
	obs   *page.Observer

	textMu  sync.Mutex
	current string

	announced atomic.Int64
}

// NewBannerWatcher creates a banner watcher with the given dependencies.
func NewBannerWatcher(p Page, norm *announce.Normalizer, announcer domain.Announcer, log *logger.Logger, opts ...BannerOption) *BannerWatcher {
	w := &BannerWatcher{
		page:      p,
		norm:      norm,
		announcer: announcer,
		log:       log,
		rootID:    DefaultBannerRootID,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Name identifies the watcher in logs.
func (w *BannerWatcher) Name() string { return "banner" }

// RootID returns the id of the element the watcher attaches to.
func (w *BannerWatcher) RootID() string { return w.rootID }

// Start announces the banner's current text, if any, and begins
// observing it. A missing banner returns domain.ErrRootNotFound and
// leaves the watcher stopped.
func (w *BannerWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.state != domain.WatcherNotStarted {
		return domain.ErrAlreadyStarted
	}

	var err error
	w.page.View(func() {
		root := w.page.GetElementByID(w.rootID)
		if root == nil {
			err = fmt.Errorf("banner root #%s: %w", w.rootID, domain.ErrRootNotFound)
			return
		}

		initial := w.norm.Banner(root.TextContent())
		w.setCurrent(initial)
		if initial != "" {
			w.announce(ctx, initial)
		}

		w.obs, err = w.page.Observe(root, page.ObserveOptions{ChildList: true, Subtree: true, CharacterData: true}, func([]page.MutationRecord) {
			w.check(ctx, root)
		})
	})

	if err != nil {
		w.state = domain.WatcherStopped
		return err
	}

	w.state = domain.WatcherObserving
	w.log.Info("banner watcher started (root=#%s)", w.rootID)
	return nil
}

// Stop ends observation. Safe to call more than once, and before Start.
func (w *BannerWatcher) Stop() {
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
	w.log.Info("banner watcher stopped (announced=%d)", w.announced.Load())
}

// State returns the watcher's lifecycle state.
func (w *BannerWatcher) State() domain.WatcherState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Current returns the last announced banner text.
func (w *BannerWatcher) Current() string {
	w.textMu.Lock()
	defer w.textMu.Unlock()
	return w.current
}

// Announced returns how many banner values were announced.
func (w *BannerWatcher) Announced() int64 { return w.announced.Load() }

// check re-reads the whole banner. The mutation shape does not matter;
// several mutations that net out to the same text announce nothing.
func (w *BannerWatcher) check(ctx context.Context, root *page.Node) {
	text := w.norm.Banner(root.TextContent())
	if text == "" || text == w.Current() {
		return
	}
	w.setCurrent(text)
	w.announce(ctx, text)
}

func (w *BannerWatcher) setCurrent(text string) {
	w.textMu.Lock()
	w.current = text
	w.textMu.Unlock()
}

func (w *BannerWatcher) announce(ctx context.Context, text string) {
	w.announced.Add(1)
	if err := w.announcer.Announce(ctx, domain.Announcement{Source: domain.SourceBanner, Text: text}); err != nil {
		w.log.Error("banner: announce: %v", err)
	}
}
