package speech

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/hammamikhairi/livespeaker/internal/logger"
)

// AzureCredentials are read from the environment (or a .env file loaded
// beforehand).
type AzureCredentials struct {
	Key    string `env:"AZURE_SPEECH_KEY"`
	Region string `env:"AZURE_SPEECH_REGION"`
}

// LoadAzureCredentials parses the Azure env vars. Missing values are not
// an error; check Complete.
func LoadAzureCredentials() (AzureCredentials, error) {
	return env.ParseAs[AzureCredentials]()
}

// Complete reports whether both key and region are set.
func (c AzureCredentials) Complete() bool {
	return c.Key != "" && c.Region != ""
}

// AzureOption configures the Azure TTS client.
type AzureOption func(*AzureClient)

// WithAudioFormat sets the audio output format.
func WithAudioFormat(format string) AzureOption {
	return func(c *AzureClient) {
		c.format = format
	}
}

// WithHTTPTimeout sets the HTTP client timeout for TTS requests.
func WithHTTPTimeout(d time.Duration) AzureOption {
	return func(c *AzureClient) {
		c.httpClient.Timeout = d
	}
}

// WithEndpoint overrides the synthesis URL. Used by tests.
func WithEndpoint(url string) AzureOption {
	return func(c *AzureClient) {
		c.endpoint = url
	}
}

// AzureClient handles text-to-speech synthesis via Azure Cognitive Services.
type AzureClient struct {
	subscriptionKey string
	endpoint        string
	format          string
	httpClient      *http.Client
	log             *logger.Logger
}

// NewAzureClient creates an Azure TTS client with the given credentials.
func NewAzureClient(creds AzureCredentials, log *logger.Logger, opts ...AzureOption) *AzureClient {
	c := &AzureClient{
		subscriptionKey: creds.Key,
		endpoint:        fmt.Sprintf("https://%s.tts.speech.microsoft.com/cognitiveservices/v1", creds.Region),
		format:          DefaultAudioFormat,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Synthesize converts text to speech audio data (WAV bytes).
func (c *AzureClient) Synthesize(ctx context.Context, text string, voice Voice) ([]byte, error) {
	ssml := buildSSML(text, voice)
	c.log.Debug("azure tts: synthesizing %d chars with voice %s", len([]rune(text)), voice.Name)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(ssml))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Ocp-Apim-Subscription-Key", c.subscriptionKey)
	req.Header.Set("Content-Type", "application/ssml+xml")
	req.Header.Set("X-Microsoft-OutputFormat", c.format)
	req.Header.Set("User-Agent", "livespeaker/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tts request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("azure tts error %d: %s", resp.StatusCode, string(body))
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading audio data: %w", err)
	}

	c.log.Debug("azure tts: got %d bytes of audio", len(audioData))
	return audioData, nil
}

// buildSSML wraps text in a voice and prosody element carrying the
// voice's language, rate, pitch, and volume.
func buildSSML(text string, v Voice) string {
	return fmt.Sprintf(
		`<speak version='1.0' xmlns='http://www.w3.org/2001/10/synthesis' xml:lang='%s'>`+
			`<voice xml:lang='%s' name='%s'><prosody rate='%s' pitch='%s' volume='%s'>%s</prosody></voice></speak>`,
		v.Lang, v.Lang, v.Name,
		relativePercent(v.Rate), relativePercent(v.Pitch), absoluteVolume(v.Volume),
		html.EscapeString(text),
	)
}

// relativePercent renders a multiplier as an SSML relative change: 1.2 is
// "+20%", 0.8 is "-20%".
func relativePercent(m float64) string {
	return fmt.Sprintf("%+.0f%%", (m-1)*100)
}

// absoluteVolume renders a 0..1 multiplier on SSML's 0..100 scale.
func absoluteVolume(m float64) string {
	if m < 0 {
		m = 0
	}
	if m > 1 {
		m = 1
	}
	return fmt.Sprintf("%.0f", m*100)
}
