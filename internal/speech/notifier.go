package speech

import (
	"context"
	"errors"

	"github.com/hammamikhairi/livespeaker/internal/domain"
	"github.com/hammamikhairi/livespeaker/internal/logger"
)

// Compile-time interface check.
var _ domain.Announcer = (*SpeakingNotifier)(nil)

// SpeakingNotifier echoes announcements through an inner announcer (the
// console) and hands them to the Dispatcher. A missing speech output is
// not an error here: the echo already happened.
type SpeakingNotifier struct {
	echo       domain.Announcer
	dispatcher *Dispatcher
	log        *logger.Logger
}

// NewSpeakingNotifier creates a notifier that both echoes and speaks.
// echo may be nil.
func NewSpeakingNotifier(echo domain.Announcer, dispatcher *Dispatcher, log *logger.Logger) *SpeakingNotifier {
	return &SpeakingNotifier{
		echo:       echo,
		dispatcher: dispatcher,
		log:        log,
	}
}

// Announce echoes a and speaks its text, interrupting anything in flight.
func (n *SpeakingNotifier) Announce(ctx context.Context, a domain.Announcement) error {
	if a.Text == "" {
		return domain.ErrEmptyText
	}
	if n.echo != nil {
		if err := n.echo.Announce(ctx, a); err != nil {
			n.log.Warn("notifier: echo failed: %v", err)
		}
	}
	err := n.dispatcher.Speak(ctx, a.Text)
	if errors.Is(err, domain.ErrOutputUnavailable) {
		return nil
	}
	return err
}
