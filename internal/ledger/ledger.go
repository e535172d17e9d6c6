// Package ledger records which feed item identities have already been
// announced during a monitoring session.
package ledger

import (
	"sync"

	"github.com/hammamikhairi/livespeaker/internal/logger"
)

// Ledger is an in-memory set of seen identities. It only grows; entries
// live until the session ends. Safe for concurrent access.
type Ledger struct {
	mu   sync.RWMutex
	seen map[string]struct{}
	log  *logger.Logger
}

// New creates an empty ledger.
func New(log *logger.Logger) *Ledger {
	return &Ledger{
		seen: make(map[string]struct{}),
		log:  log,
	}
}

// HasSeen reports whether id was marked before. Callers treat an empty id
// as always new and should not ask.
func (l *Ledger) HasSeen(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.seen[id]
	return ok
}

// MarkSeen records id. Marking the same id again is a no-op.
func (l *Ledger) MarkSeen(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.seen[id]; ok {
		return
	}
	l.seen[id] = struct{}{}
	l.log.Debug("ledger: marked %s (size=%d)", id, len(l.seen))
}

// Len returns the number of recorded identities.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.seen)
}
