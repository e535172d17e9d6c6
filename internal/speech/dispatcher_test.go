package speech

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hammamikhairi/livespeaker/internal/domain"
	"github.com/hammamikhairi/livespeaker/internal/logger"
)

// fakeOutput models a one-at-a-time engine: Speak makes an utterance
// pending, Cancel discards it, finish completes whatever is pending.
type fakeOutput struct {
	mu       sync.Mutex
	pending  *Utterance
	spoken   []string
	submits  []Utterance
	cancels  int
	speakErr error
}

func (f *fakeOutput) Speak(_ context.Context, u Utterance) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.speakErr != nil {
		return f.speakErr
	}
	f.submits = append(f.submits, u)
	f.pending = &u
	return nil
}

func (f *fakeOutput) Cancel() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancels++
	f.pending = nil
}

func (f *fakeOutput) finish() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pending != nil {
		f.spoken = append(f.spoken, f.pending.Text)
		f.pending = nil
	}
}

func TestDispatcherLatestWins(t *testing.T) {
	out := &fakeOutput{}
	d := NewDispatcher(out, DefaultVoice(), logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	if err := d.Speak(ctx, "A"); err != nil {
		t.Fatalf("speak A: %v", err)
	}
	if err := d.Speak(ctx, "B"); err != nil {
		t.Fatalf("speak B: %v", err)
	}
	out.finish()

	if len(out.spoken) != 1 || out.spoken[0] != "B" {
		t.Fatalf("expected only B to be spoken, got %v", out.spoken)
	}
	if out.cancels != 2 {
		t.Fatalf("expected a cancel before every submit, got %d", out.cancels)
	}
	if out.submits[0].ID == out.submits[1].ID {
		t.Fatal("utterances should get distinct ids")
	}
	if out.submits[1].Voice != DefaultVoice() {
		t.Fatalf("unexpected voice: %+v", out.submits[1].Voice)
	}
	if submitted, dropped := d.Stats(); submitted != 2 || dropped != 0 {
		t.Fatalf("stats = %d/%d", submitted, dropped)
	}
}

func TestDispatcherNoOps(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	ctx := context.Background()

	out := &fakeOutput{}
	d := NewDispatcher(out, DefaultVoice(), log)
	if err := d.Speak(ctx, ""); !errors.Is(err, domain.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}
	if out.cancels != 0 || len(out.submits) != 0 {
		t.Fatal("empty text must not touch the output")
	}

	unavailable := NewDispatcher(nil, DefaultVoice(), log)
	if unavailable.Available() {
		t.Fatal("nil output should be unavailable")
	}
	if err := unavailable.Speak(ctx, "hello"); !errors.Is(err, domain.ErrOutputUnavailable) {
		t.Fatalf("expected ErrOutputUnavailable, got %v", err)
	}
}

func TestDispatcherDropsOnOutputError(t *testing.T) {
	boom := errors.New("device busy")
	out := &fakeOutput{speakErr: boom}
	d := NewDispatcher(out, DefaultVoice(), logger.New(logger.LevelOff, nil))

	err := d.Speak(context.Background(), "hello")
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped output error, got %v", err)
	}
	if submitted, dropped := d.Stats(); submitted != 0 || dropped != 1 {
		t.Fatalf("stats = %d/%d", submitted, dropped)
	}
}

func TestSpeakingNotifier(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	echo := &collectingAnnouncer{}
	out := &fakeOutput{}
	n := NewSpeakingNotifier(echo, NewDispatcher(out, DefaultVoice(), log), log)
	ctx := context.Background()

	if err := n.Announce(ctx, domain.Announcement{Source: domain.SourceBanner, Text: "欢迎"}); err != nil {
		t.Fatalf("announce: %v", err)
	}
	if len(echo.got) != 1 || echo.got[0].Text != "欢迎" {
		t.Fatalf("echo did not see the announcement: %v", echo.got)
	}
	if len(out.submits) != 1 {
		t.Fatalf("expected one submit, got %d", len(out.submits))
	}

	if err := n.Announce(ctx, domain.Announcement{}); !errors.Is(err, domain.ErrEmptyText) {
		t.Fatalf("expected ErrEmptyText, got %v", err)
	}

	silent := NewSpeakingNotifier(echo, NewDispatcher(nil, DefaultVoice(), log), log)
	if err := silent.Announce(ctx, domain.Announcement{Text: "x"}); err != nil {
		t.Fatalf("missing output should not be an error, got %v", err)
	}
	if len(echo.got) != 2 {
		t.Fatal("echo should still run without speech")
	}
}

type collectingAnnouncer struct {
	got []domain.Announcement
}

func (c *collectingAnnouncer) Announce(_ context.Context, a domain.Announcement) error {
	c.got = append(c.got, a)
	return nil
}
