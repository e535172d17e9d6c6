package speech

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hammamikhairi/livespeaker/internal/logger"
)

func TestBuildSSML(t *testing.T) {
	ssml := buildSSML("a<b & c", DefaultVoice())

	for _, want := range []string{
		"xml:lang='zh-CN'",
		"name='zh-CN-XiaoxiaoNeural'",
		"rate='+20%'",
		"pitch='+0%'",
		"volume='100'",
		"a&lt;b &amp; c",
	} {
		if !strings.Contains(ssml, want) {
			t.Errorf("ssml missing %q:\n%s", want, ssml)
		}
	}
}

func TestRelativePercent(t *testing.T) {
	tests := map[float64]string{1: "+0%", 1.2: "+20%", 0.5: "-50%", 2: "+100%"}
	for in, want := range tests {
		if got := relativePercent(in); got != want {
			t.Errorf("relativePercent(%v) = %q, want %q", in, got, want)
		}
	}
	if got := absoluteVolume(1.5); got != "100" {
		t.Errorf("volume should clamp, got %q", got)
	}
}

func TestAzureClientSynthesize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Ocp-Apim-Subscription-Key") != "secret" {
			http.Error(w, "bad key", http.StatusUnauthorized)
			return
		}
		if r.Header.Get("X-Microsoft-OutputFormat") != DefaultAudioFormat {
			http.Error(w, "bad format", http.StatusBadRequest)
			return
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "你好") {
			http.Error(w, "missing text", http.StatusBadRequest)
			return
		}
		w.Write([]byte("RIFFwav"))
	}))
	defer srv.Close()

	log := logger.New(logger.LevelOff, nil)
	ctx := context.Background()

	c := NewAzureClient(AzureCredentials{Key: "secret", Region: "eastasia"}, log, WithEndpoint(srv.URL))
	audio, err := c.Synthesize(ctx, "你好", DefaultVoice())
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	if string(audio) != "RIFFwav" {
		t.Fatalf("unexpected audio %q", audio)
	}

	bad := NewAzureClient(AzureCredentials{Key: "wrong", Region: "eastasia"}, log, WithEndpoint(srv.URL))
	if _, err := bad.Synthesize(ctx, "你好", DefaultVoice()); err == nil {
		t.Fatal("expected an error for a rejected key")
	}
}

func TestAzureCredentialsFromEnv(t *testing.T) {
	t.Setenv(EnvAzureSpeechKey, "k")
	t.Setenv(EnvAzureSpeechRegion, "")

	creds, err := LoadAzureCredentials()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if creds.Key != "k" || creds.Complete() {
		t.Fatalf("unexpected credentials: %+v", creds)
	}

	t.Setenv(EnvAzureSpeechRegion, "eastasia")
	creds, _ = LoadAzureCredentials()
	if !creds.Complete() {
		t.Fatal("expected complete credentials")
	}
}

func TestExtractPCM(t *testing.T) {
	wav := make([]byte, 44+4)
	copy(wav[0:], "RIFF")
	copy(wav[8:], "WAVE")
	copy(wav[12:], "fmt ")
	wav[16] = 16 // fmt chunk size
	copy(wav[36:], "data")
	wav[40] = 4 // data chunk size
	copy(wav[44:], []byte{1, 2, 3, 4})

	pcm, err := extractPCM(wav)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if len(pcm) != 4 || pcm[0] != 1 || pcm[3] != 4 {
		t.Fatalf("unexpected pcm %v", pcm)
	}

	if _, err := extractPCM([]byte("short")); err == nil {
		t.Fatal("expected error for short data")
	}
}
