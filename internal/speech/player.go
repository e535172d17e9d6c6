package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ebitengine/oto/v3"

	"github.com/hammamikhairi/livespeaker/internal/logger"
)

// AudioPlayer starts playback of WAV data without blocking.
type AudioPlayer interface {
	Start(wav []byte) (Playback, error)
}

// Playback is one sound being played. Wait blocks until it ends or is
// stopped; Stop interrupts it and may be called more than once.
type Playback interface {
	Wait()
	Stop()
}

// Compile-time interface check.
var _ AudioPlayer = (*Player)(nil)

// Player plays WAV/PCM data through the system audio device via oto.
type Player struct {
	ctx *oto.Context
	log *logger.Logger
}

// NewPlayer initializes the system audio context. Returns an error if the
// audio device is unavailable.
func NewPlayer(log *logger.Logger) (*Player, error) {
	op := &oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	}

	ctx, readyChan, err := oto.NewContext(op)
	if err != nil {
		return nil, err
	}
	<-readyChan

	log.Debug("audio player initialized (rate=%d, channels=%d)", SampleRate, ChannelCount)
	return &Player{ctx: ctx, log: log}, nil
}

// Start begins playing wavData and returns immediately.
func (p *Player) Start(wavData []byte) (Playback, error) {
	pcm, err := extractPCM(wavData)
	if err != nil {
		return nil, err
	}

	player := p.ctx.NewPlayer(bytes.NewReader(pcm))
	player.Play()
	p.log.Debug("audio player: playing %d bytes of PCM", len(pcm))

	return &otoPlayback{player: player, log: p.log}, nil
}

type otoPlayback struct {
	player  *oto.Player
	log     *logger.Logger
	stopped atomic.Bool
	once    sync.Once
}

func (pb *otoPlayback) Wait() {
	for pb.player.IsPlaying() && !pb.stopped.Load() {
		time.Sleep(10 * time.Millisecond)
	}
	pb.once.Do(func() {
		if err := pb.player.Close(); err != nil {
			pb.log.Debug("audio player: close: %v", err)
		}
	})
}

func (pb *otoPlayback) Stop() {
	if pb.stopped.Swap(true) {
		return
	}
	pb.player.Pause()
	pb.log.Debug("audio player: interrupted")
}

// extractPCM strips the WAV/RIFF header and returns raw PCM data.
func extractPCM(wav []byte) ([]byte, error) {
	if len(wav) < 44 {
		return nil, errors.New("wav data too short")
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, errors.New("not a valid WAV file")
	}

	// Walk chunks to find "data". Chunks are word-aligned.
	pos := 12
	for pos < len(wav)-8 {
		chunkID := string(wav[pos : pos+4])
		chunkSize := int(binary.LittleEndian.Uint32(wav[pos+4 : pos+8]))

		if chunkID == "data" {
			start := pos + 8
			end := min(start+chunkSize, len(wav))
			return wav[start:end], nil
		}

		pos += 8 + chunkSize
		if chunkSize%2 != 0 {
			pos++
		}
	}

	return nil, errors.New("data chunk not found in WAV")
}
