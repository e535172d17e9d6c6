package speech

import (
	"fmt"
	"time"
)

// Default voice for Azure TTS. The lang/rate/pitch/volume defaults match
// the browser speechSynthesis settings the monitor replaces.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const (
	DefaultVoiceName = "zh-CN-XiaoxiaoNeural"
	DefaultLang      = "zh-CN"
	DefaultRate      = 1.2
	DefaultPitch     = 1.0
	DefaultVolume    = 1.0
)

// Audio format returned by Azure and expected by the player.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching the default format.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Env var names for Azure Speech credentials.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// Voice holds the fixed parameters every utterance is spoken with.
// Rate, Pitch, and Volume are multipliers where 1 is the engine default.
type Voice struct {
	Name   string
	Lang   string
	Rate   float64
	Pitch  float64
	Volume float64
}

// DefaultVoice returns the voice used when nothing is configured.
func DefaultVoice() Voice {
	return Voice{
		Name:   DefaultVoiceName,
		Lang:   DefaultLang,
		Rate:   DefaultRate,
		Pitch:  DefaultPitch,
		Volume: DefaultVolume,
	}
}

// Key identifies the voice in cache keys. Two voices with the same key
// produce identical audio for the same text.
func (v Voice) Key() string {
	return fmt.Sprintf("%s|%s|%.2f|%.2f|%.2f", v.Name, v.Lang, v.Rate, v.Pitch, v.Volume)
}

// Utterance is one request to the speech output.
type Utterance struct {
	ID       string
	Text     string
	Voice    Voice
	QueuedAt time.Time
}
