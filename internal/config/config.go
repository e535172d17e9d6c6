// Package config loads the monitor's settings from defaults, an optional
// YAML file, LIVESPEAKER_* environment variables and command-line flags,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hammamikhairi/livespeaker/internal/announce"
	"github.com/hammamikhairi/livespeaker/internal/htmlsource"
	"github.com/hammamikhairi/livespeaker/internal/page"
	"github.com/hammamikhairi/livespeaker/internal/speech"
	"github.com/hammamikhairi/livespeaker/internal/watcher"
)

// Name is used for the config file name and the env prefix.
const Name = "livespeaker"

// Config is the full set of tunables.
type Config struct {
	Page     string         `mapstructure:"page"`
	Log      LogConfig      `mapstructure:"log"`
	Feed     FeedConfig     `mapstructure:"feed"`
	Banner   BannerConfig   `mapstructure:"banner"`
	Message  MessageConfig  `mapstructure:"message"`
	Speech   SpeechConfig   `mapstructure:"speech"`
	Snapshot SnapshotConfig `mapstructure:"snapshot"`
}

// LogConfig controls where and how much the monitor logs.
type LogConfig struct {
	Level   string `mapstructure:"level"`
	File    string `mapstructure:"file"`
	Verbose bool   `mapstructure:"verbose"`
	Quiet   bool   `mapstructure:"quiet"`
}

// FeedConfig locates the feed and the fields of each item.
type FeedConfig struct {
	RootID          string `mapstructure:"root_id"`
	ItemSelector    string `mapstructure:"item_selector"`
	IdentityAttr    string `mapstructure:"identity_attr"`
	NameAttr        string `mapstructure:"name_attr"`
	ContentAttr     string `mapstructure:"content_attr"`
	ContentSelector string `mapstructure:"content_selector"`
}

type BannerConfig struct {
	RootID string `mapstructure:"root_id"`
}

type MessageConfig struct {
	MaxNameLength int    `mapstructure:"max_name_length"`
	Template      string `mapstructure:"template"`
	UnknownName   string `mapstructure:"unknown_name"`
	EmptyBody     string `mapstructure:"empty_body"`
}

// SpeechConfig selects the voice and tunes synthesis.
type SpeechConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	Voice             string        `mapstructure:"voice"`
	Lang              string        `mapstructure:"lang"`
	Rate              float64       `mapstructure:"rate"`
	Pitch             float64       `mapstructure:"pitch"`
	Volume            float64       `mapstructure:"volume"`
	CacheDir          string        `mapstructure:"cache_dir"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute"`
	Timeout           time.Duration `mapstructure:"timeout"`
}

type SnapshotConfig struct {
	Settle time.Duration `mapstructure:"settle"`
}

// SetDefaults registers every key with its default value. Keys must be
// registered for environment overrides to be seen by Unmarshal.
func SetDefaults(v *viper.Viper) {
	fields := watcher.DefaultFeedFields()
	voice := speech.DefaultVoice()

	v.SetDefault("page", "")

	v.SetDefault("log.level", "normal")
	v.SetDefault("log.file", ".livespeaker-logs/livespeaker.log")
	v.SetDefault("log.verbose", false)
	v.SetDefault("log.quiet", false)

	v.SetDefault("feed.root_id", watcher.DefaultFeedRootID)
	v.SetDefault("feed.item_selector", watcher.DefaultItemSelector)
	v.SetDefault("feed.identity_attr", fields.IdentityAttr)
	v.SetDefault("feed.name_attr", fields.NameAttr)
	v.SetDefault("feed.content_attr", fields.ContentAttr)
	v.SetDefault("feed.content_selector", fields.ContentSelector.String())

	v.SetDefault("banner.root_id", watcher.DefaultBannerRootID)

	v.SetDefault("message.max_name_length", announce.DefaultMaxNameLength)
	v.SetDefault("message.template", announce.DefaultTemplate)
	v.SetDefault("message.unknown_name", announce.DefaultFallbackName)
	v.SetDefault("message.empty_body", announce.DefaultFallbackBody)

	v.SetDefault("speech.enabled", true)
	v.SetDefault("speech.voice", voice.Name)
	v.SetDefault("speech.lang", voice.Lang)
	v.SetDefault("speech.rate", voice.Rate)
	v.SetDefault("speech.pitch", voice.Pitch)
	v.SetDefault("speech.volume", voice.Volume)
	v.SetDefault("speech.cache_dir", "")
	v.SetDefault("speech.requests_per_minute", 60)
	v.SetDefault("speech.timeout", 15*time.Second)

	v.SetDefault("snapshot.settle", htmlsource.DefaultSettle)
}

// Load reads configuration into a Config. If file is empty the working
// directory and the user config directory are searched for
// livespeaker.yaml; a missing file there is not an error.
func Load(v *viper.Viper, file string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(Name)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName(Name)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, Name))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the values that can be wrong independently of the page.
func (c Config) Validate() error {
	if c.Feed.RootID == "" || c.Banner.RootID == "" {
		return errors.New("config: feed.root_id and banner.root_id must be set")
	}
	if _, err := page.ParseSelector(c.Feed.ItemSelector); err != nil {
		return fmt.Errorf("config: feed.item_selector: %w", err)
	}
	if _, err := page.ParseSelector(c.Feed.ContentSelector); err != nil {
		return fmt.Errorf("config: feed.content_selector: %w", err)
	}
	if !strings.Contains(c.Message.Template, announce.PlaceholderName) && !strings.Contains(c.Message.Template, announce.PlaceholderBody) {
		return fmt.Errorf("config: message.template %q has no placeholders", c.Message.Template)
	}
	if c.Speech.Rate <= 0 || c.Speech.Volume < 0 || c.Speech.Pitch <= 0 {
		return errors.New("config: speech.rate and speech.pitch must be positive, speech.volume non-negative")
	}
	return nil
}

// Voice returns the configured speech voice.
func (c Config) Voice() speech.Voice {
	return speech.Voice{
		Name:   c.Speech.Voice,
		Lang:   c.Speech.Lang,
		Rate:   c.Speech.Rate,
		Pitch:  c.Speech.Pitch,
		Volume: c.Speech.Volume,
	}
}

// NormalizerOptions returns the message settings as normalizer options.
func (c Config) NormalizerOptions() []announce.Option {
	return []announce.Option{
		announce.WithMaxNameLength(c.Message.MaxNameLength),
		announce.WithTemplate(c.Message.Template),
		announce.WithFallbacks(c.Message.UnknownName, c.Message.EmptyBody),
	}
}

// FeedOptions returns the feed settings as watcher options. Call Validate
// first; invalid selectors panic.
func (c Config) FeedOptions() []watcher.FeedOption {
	return []watcher.FeedOption{
		watcher.WithFeedRoot(c.Feed.RootID),
		watcher.WithItemSelector(page.MustSelector(c.Feed.ItemSelector)),
		watcher.WithFeedFields(watcher.FeedFields{
			IdentityAttr:    c.Feed.IdentityAttr,
			NameAttr:        c.Feed.NameAttr,
			ContentAttr:     c.Feed.ContentAttr,
			ContentSelector: page.MustSelector(c.Feed.ContentSelector),
		}),
	}
}

// SourceOptions returns the snapshot settings as file source options.
// Feed items are reconciled atomically so a changed item reads as a new
// insertion. Call Validate first.
func (c Config) SourceOptions() []htmlsource.Option {
	return []htmlsource.Option{
		htmlsource.WithSettle(c.Snapshot.Settle),
		htmlsource.WithAtomic(page.MustSelector(c.Feed.ItemSelector)),
	}
}

// BannerOptions returns the banner settings as watcher options.
func (c Config) BannerOptions() []watcher.BannerOption {
	return []watcher.BannerOption{watcher.WithBannerRoot(c.Banner.RootID)}
}
