package ledger

import (
	"sync"
	"testing"

	"github.com/hammamikhairi/livespeaker/internal/logger"
)

func TestLedgerMarkAndCheck(t *testing.T) {
	l := New(logger.New(logger.LevelOff, nil))

	if l.HasSeen("42") {
		t.Fatal("fresh ledger should not have seen 42")
	}

	l.MarkSeen("42")
	if !l.HasSeen("42") {
		t.Fatal("expected 42 to be seen after MarkSeen")
	}
	if l.HasSeen("43") {
		t.Fatal("43 was never marked")
	}

	// Idempotent.
	l.MarkSeen("42")
	l.MarkSeen("42")
	if l.Len() != 1 {
		t.Fatalf("expected 1 entry, got %d", l.Len())
	}
}

func TestLedgerConcurrentMarks(t *testing.T) {
	l := New(logger.New(logger.LevelOff, nil))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for _, id := range []string{"a", "b", "c"} {
				l.MarkSeen(id)
				_ = l.HasSeen(id)
			}
		}()
	}
	wg.Wait()

	if l.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", l.Len())
	}
}
