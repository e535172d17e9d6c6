package speech

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/hammamikhairi/livespeaker/internal/domain"
	"github.com/hammamikhairi/livespeaker/internal/logger"
)

// Dispatcher is the only component allowed to talk to the speech output.
// Every Speak interrupts the utterance in flight and submits the new text
// in its place: the most recent announcement always wins, nothing is
// queued, and a failed submission is dropped.
type Dispatcher struct {
	out   Output
	voice Voice
	log   *logger.Logger

	mu        sync.Mutex
	lastID    string
	submitted int
	dropped   int
}

// NewDispatcher creates a dispatcher for out. A nil out means speech is
// unavailable and every Speak is dropped.
func NewDispatcher(out Output, voice Voice, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		out:   out,
		voice: voice,
		log:   log,
	}
}

// Available reports whether an output is attached.
func (d *Dispatcher) Available() bool { return d.out != nil }

// Speak cancels the current utterance and submits text. Empty text and a
// missing output are no-ops reported as domain.ErrEmptyText and
// domain.ErrOutputUnavailable.
func (d *Dispatcher) Speak(ctx context.Context, text string) error {
	if text == "" {
		return domain.ErrEmptyText
	}
	if d.out == nil {
		d.log.Debug("dispatcher: no speech output, dropping: %s", logger.Clip(text, 60))
		return domain.ErrOutputUnavailable
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	d.out.Cancel()

	u := Utterance{
		ID:       xid.New().String(),
		Text:     text,
		Voice:    d.voice,
		QueuedAt: time.Now(),
	}
	if err := d.out.Speak(ctx, u); err != nil {
		d.dropped++
		d.log.Warn("dispatcher: output rejected %s, dropping: %v", u.ID, err)
		return fmt.Errorf("submitting utterance %s: %w", u.ID, err)
	}

	if d.lastID != "" {
		d.log.Debug("dispatcher: %s preempts %s", u.ID, d.lastID)
	}
	d.lastID = u.ID
	d.submitted++
	d.log.Debug("dispatcher: submitted %s: %s", u.ID, logger.Clip(text, 60))
	return nil
}

// Stats returns how many utterances were submitted and how many the
// output rejected.
func (d *Dispatcher) Stats() (submitted, dropped int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitted, d.dropped
}
