package speech

import "context"

// Output is a one-utterance-at-a-time speech sink.
//
// Speak submits an utterance and returns without waiting for it to be
// spoken. Cancel stops whatever is currently being synthesized or played;
// it is safe to call when idle.
type Output interface {
	Speak(ctx context.Context, u Utterance) error
	Cancel()
}
