package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"

	"github.com/hammamikhairi/livespeaker/internal/announce"
	"github.com/hammamikhairi/livespeaker/internal/speech"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Feed.RootID != "chat-items" || cfg.Banner.RootID != "brush-prompt" {
		t.Errorf("unexpected roots %q %q", cfg.Feed.RootID, cfg.Banner.RootID)
	}
	if cfg.Feed.ItemSelector != ".chat-item.danmaku-item" {
		t.Errorf("item selector = %q", cfg.Feed.ItemSelector)
	}
	if cfg.Feed.ContentSelector != ".danmaku-item-right" {
		t.Errorf("content selector = %q", cfg.Feed.ContentSelector)
	}
	if cfg.Message.MaxNameLength != 10 || cfg.Message.Template != announce.DefaultTemplate {
		t.Errorf("unexpected message config %+v", cfg.Message)
	}
	if cfg.Voice() != speech.DefaultVoice() {
		t.Errorf("voice = %+v", cfg.Voice())
	}
	if cfg.Snapshot.Settle <= 0 || cfg.Speech.Timeout != 15*time.Second {
		t.Errorf("unexpected durations %+v %+v", cfg.Snapshot, cfg.Speech)
	}
	if cfg.Log.Level != "normal" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
	if n := len(cfg.SourceOptions()); n != 2 {
		t.Errorf("source options = %d", n)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "custom.yaml", strings.Join([]string{
		"page: room.html",
		"feed:",
		"  root_id: messages",
		"  item_selector: li.msg",
		"message:",
		"  max_name_length: 4",
		"  template: \"{name}: {body}\"",
		"speech:",
		"  rate: 1.5",
		"  timeout: 3s",
		"",
	}, "\n"))

	t.Setenv("LIVESPEAKER_BANNER_ROOT_ID", "status")
	t.Setenv("LIVESPEAKER_SPEECH_VOICE", "zh-CN-YunxiNeural")

	cfg, err := Load(viper.New(), path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Page != "room.html" || cfg.Feed.RootID != "messages" || cfg.Feed.ItemSelector != "li.msg" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Banner.RootID != "status" || cfg.Speech.Voice != "zh-CN-YunxiNeural" {
		t.Errorf("env values not applied: banner=%q voice=%q", cfg.Banner.RootID, cfg.Speech.Voice)
	}
	if cfg.Speech.Rate != 1.5 || cfg.Speech.Timeout != 3*time.Second {
		t.Errorf("speech = %+v", cfg.Speech)
	}

	norm := announce.New(cfg.NormalizerOptions()...)
	if got := norm.FeedItem("abcdefg", "hi"); got != "abcd: hi" {
		t.Errorf("normalized = %q", got)
	}
	if len(cfg.FeedOptions()) != 3 || len(cfg.BannerOptions()) != 1 {
		t.Error("unexpected option counts")
	}
}

func TestLoadExplicitFileMissing(t *testing.T) {
	if _, err := Load(viper.New(), filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		v := viper.New()
		SetDefaults(v)
		var cfg Config
		if err := v.Unmarshal(&cfg); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return cfg
	}

	if err := base().Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"combinator selector", func(c *Config) { c.Feed.ItemSelector = "#chat-items .item" }},
		{"empty content selector", func(c *Config) { c.Feed.ContentSelector = "" }},
		{"missing root", func(c *Config) { c.Banner.RootID = "" }},
		{"template without placeholders", func(c *Config) { c.Message.Template = "hello" }},
		{"zero rate", func(c *Config) { c.Speech.Rate = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
