// Package speech provides the speech dispatcher and the outputs it drives.
package speech

import (
	"context"

	"github.com/hammamikhairi/livespeaker/internal/logger"
)

// Compile-time interface check.
var _ Output = (*NoOp)(nil)

// NoOp is an output that only logs. Used when speech is disabled but the
// console echo should keep running.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a no-op speech output.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Speak logs what would have been said.
func (n *NoOp) Speak(ctx context.Context, u Utterance) error {
	n.log.Debug("speech no-op: would say %q (id=%s)", u.Text, u.ID)
	return nil
}

// Cancel does nothing.
func (n *NoOp) Cancel() {}
