package htmlsource

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hammamikhairi/livespeaker/internal/logger"
	"github.com/hammamikhairi/livespeaker/internal/page"
)

// DefaultSettle is how long the file must stay quiet after a change before
// it is re-read, so a snapshot is not picked up half written.
const DefaultSettle = 150 * time.Millisecond

// Option configures a FileSource.
type Option func(*FileSource)

// WithSettle sets the quiet period before a changed file is re-read.
func WithSettle(d time.Duration) Option {
	return func(s *FileSource) {
		s.settle = d
	}
}

// WithAtomic marks elements that must be replaced as a whole when they
// change, typically feed items. See Reconcile.
func WithAtomic(sels ...page.Selector) Option {
	return func(s *FileSource) {
		s.atomicSels = append(s.atomicSels, sels...)
	}
}

// FileSource keeps a document in sync with an HTML file that some other
// process rewrites whenever the page changes.
type FileSource struct {
	path       string
	doc        *page.Document
	log        *logger.Logger
	settle     time.Duration
	atomicSels []page.Selector

	loads atomic.Int64
}

// NewFileSource creates a source that reconciles path into doc.
func NewFileSource(path string, doc *page.Document, log *logger.Logger, opts ...Option) *FileSource {
	s := &FileSource{
		path:   filepath.Clean(path),
		doc:    doc,
		log:    log,
		settle: DefaultSettle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the watched file.
func (s *FileSource) Path() string { return s.path }

// Loads returns how many snapshots have been applied.
func (s *FileSource) Loads() int64 { return s.loads.Load() }

// Load reads the file once and reconciles it into the document.
func (s *FileSource) Load() error {
	f, err := os.Open(s.path)
	if err != nil {
		return fmt.Errorf("open snapshot: %w", err)
	}
	defer f.Close()

	snapshot, err := Parse(f)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", s.path, err)
	}

	changes, err := Reconcile(s.doc, s.doc.Root(), snapshot, s.atomicSels...)
	if err != nil {
		return fmt.Errorf("reconcile %s: %w", s.path, err)
	}
	n := s.loads.Add(1)
	s.log.Debug("snapshot #%d applied (%d changes)", n, changes)
	return nil
}

// Run watches the file's directory and reloads the file after every write
// or create that targets it, until ctx is cancelled. Reload failures and
// watcher errors are logged and skipped.
func (s *FileSource) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch dir %q: %w", dir, err)
	}
	s.log.Info("watching %s", s.path)

	return s.watch(ctx, watcher.Events, watcher.Errors)
}

// watch is Run's event loop. It returns when ctx is done or either
// channel is closed.
func (s *FileSource) watch(ctx context.Context, events <-chan fsnotify.Event, errs <-chan error) error {
	timer := time.NewTimer(s.settle)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != s.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				timer.Reset(s.settle)
			}
		case <-timer.C:
			if err := s.Load(); err != nil {
				s.log.Warn("reload: %v", err)
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			s.log.Warn("watch %s: %v", s.path, err)
		}
	}
}
