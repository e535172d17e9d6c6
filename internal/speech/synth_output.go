package speech

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/hammamikhairi/livespeaker/internal/logger"
)

// Synthesizer turns text into WAV audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error)
}

// Compile-time interface checks.
var (
	_ Synthesizer = (*AzureClient)(nil)
	_ Output      = (*SynthOutput)(nil)
)

// SynthOutputOption configures a SynthOutput.
type SynthOutputOption func(*SynthOutput)

// WithRequestsPerMinute caps synthesis requests. Cache hits are free.
// Zero or less disables the limit.
func WithRequestsPerMinute(n int) SynthOutputOption {
	return func(o *SynthOutput) {
		if n <= 0 {
			o.limiter = rate.NewLimiter(rate.Inf, 0)
			return
		}
		o.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(n)), o.burst)
	}
}

// WithCache sets the audio cache. Without one every utterance is synthesized.
func WithCache(c *AudioCache) SynthOutputOption {
	return func(o *SynthOutput) {
		o.cache = c
	}
}

// SynthOutput speaks by synthesizing audio (cached, rate-limited) and
// playing it. Only one utterance is ever live: submitting or cancelling
// aborts the pending synthesis and stops playback, and an aborted
// utterance never reaches the player.
type SynthOutput struct {
	tts     Synthesizer
	player  AudioPlayer
	cache   *AudioCache
	limiter *rate.Limiter
	burst   int
	log     *logger.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	active Playback

	wg sync.WaitGroup
}

// NewSynthOutput creates an output backed by tts and player.
func NewSynthOutput(tts Synthesizer, player AudioPlayer, log *logger.Logger, opts ...SynthOutputOption) *SynthOutput {
	o := &SynthOutput{
		tts:    tts,
		player: player,
		burst:  5,
		log:    log,
	}
	o.limiter = rate.NewLimiter(rate.Every(time.Second), o.burst)
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Speak replaces whatever is in flight with u. It returns immediately.
func (o *SynthOutput) Speak(ctx context.Context, u Utterance) error {
	o.mu.Lock()
	o.cancelLocked()
	uctx, cancel := context.WithCancel(ctx)
	o.cancel = cancel
	o.mu.Unlock()

	o.wg.Add(1)
	go o.run(uctx, u)
	return nil
}

// Cancel aborts the pending synthesis and stops playback.
func (o *SynthOutput) Cancel() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.cancelLocked()
}

// Close cancels the current utterance and waits for its goroutine.
func (o *SynthOutput) Close() {
	o.Cancel()
	o.wg.Wait()
}

// cancelLocked must be called with o.mu held.
func (o *SynthOutput) cancelLocked() {
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	if o.active != nil {
		o.active.Stop()
		o.active = nil
	}
}

func (o *SynthOutput) run(ctx context.Context, u Utterance) {
	defer o.wg.Done()

	audio, err := o.synthesize(ctx, u)
	if err != nil {
		if ctx.Err() == nil {
			o.log.Error("speech: synthesis failed for %s, dropping: %v", u.ID, err)
		} else {
			o.log.Debug("speech: %s cancelled before playback", u.ID)
		}
		return
	}

	// Cancellation happens under o.mu, so checking ctx here is final: a
	// newer utterance cannot slip in between the check and Start.
	o.mu.Lock()
	if ctx.Err() != nil {
		o.mu.Unlock()
		o.log.Debug("speech: %s superseded before playback", u.ID)
		return
	}
	pb, err := o.player.Start(audio)
	if err != nil {
		o.mu.Unlock()
		o.log.Error("speech: playback failed for %s: %v", u.ID, err)
		return
	}
	o.active = pb
	o.mu.Unlock()

	o.log.Debug("speech: speaking %s (waited=%s): %s",
		u.ID, time.Since(u.QueuedAt).Round(time.Millisecond), logger.Clip(u.Text, 60))
	pb.Wait()

	o.mu.Lock()
	if o.active == pb {
		o.active = nil
	}
	o.mu.Unlock()
}

func (o *SynthOutput) synthesize(ctx context.Context, u Utterance) ([]byte, error) {
	if o.cache != nil {
		if audio, ok := o.cache.Get(u.Voice, u.Text); ok {
			return audio, nil
		}
	}
	if err := o.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	audio, err := o.tts.Synthesize(ctx, u.Text, u.Voice)
	if err != nil {
		return nil, err
	}
	if o.cache != nil {
		o.cache.Put(u.Voice, u.Text, audio)
	}
	return audio, nil
}
