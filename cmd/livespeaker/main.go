// livespeaker reads a live room aloud: new danmaku and status-banner
// changes from a page snapshot are echoed to the terminal and spoken.
//
// Usage:
//
//	livespeaker [flags] [page.html]
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hammamikhairi/livespeaker/internal/announce"
	"github.com/hammamikhairi/livespeaker/internal/config"
	"github.com/hammamikhairi/livespeaker/internal/display"
	"github.com/hammamikhairi/livespeaker/internal/htmlsource"
	"github.com/hammamikhairi/livespeaker/internal/ledger"
	"github.com/hammamikhairi/livespeaker/internal/logger"
	"github.com/hammamikhairi/livespeaker/internal/monitor"
	"github.com/hammamikhairi/livespeaker/internal/page"
	"github.com/hammamikhairi/livespeaker/internal/speech"
	"github.com/hammamikhairi/livespeaker/internal/watcher"
)

var (
	configFile string
	noSpeech   bool

	v = viper.New()

	rootCmd = &cobra.Command{
		Use:           "livespeaker [page.html]",
		Short:         "Read a live room's danmaku and status banner aloud",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          execute,
	}
)

func init() {
	flags := rootCmd.Flags()
	flags.StringVar(&configFile, "config", "", "config file (default ./livespeaker.yaml or the user config dir)")
	flags.String("page", "", "HTML snapshot of the live room to watch")
	flags.BoolP("verbose", "v", false, "enable verbose/debug logging")
	flags.BoolP("quiet", "q", false, "disable all logging")
	flags.String("log-file", "", "file to write logs to (use \"stderr\" to log to console)")
	flags.BoolVar(&noSpeech, "no-speech", false, "disable text-to-speech even if Azure keys are set")
	flags.String("cache-dir", "", "directory for persistent TTS audio cache (memory only when empty)")
	flags.String("voice", "", "Azure voice name")

	_ = v.BindPFlag("page", flags.Lookup("page"))
	_ = v.BindPFlag("log.verbose", flags.Lookup("verbose"))
	_ = v.BindPFlag("log.quiet", flags.Lookup("quiet"))
	_ = v.BindPFlag("log.file", flags.Lookup("log-file"))
	_ = v.BindPFlag("speech.cache_dir", flags.Lookup("cache-dir"))
	_ = v.BindPFlag("speech.voice", flags.Lookup("voice"))
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func execute(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		v.Set("page", args[0])
	}

	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}
	if cfg.Page == "" {
		return errors.New("no page snapshot given (pass a file or --page)")
	}
	if noSpeech {
		cfg.Speech.Enabled = false
	}

	logOut, closeLog := openLog(cfg.Log.File)
	defer closeLog()

	logLevel := logger.ParseLevel(cfg.Log.Level)
	if cfg.Log.Verbose {
		logLevel = logger.LevelVerbose
	}
	if cfg.Log.Quiet {
		logLevel = logger.LevelOff
	}
	log := logger.New(logLevel, logOut)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The page.
	doc := page.NewDocument()
	source := htmlsource.NewFileSource(cfg.Page, doc, log.With("source"), cfg.SourceOptions()...)
	if err := source.Load(); err != nil {
		return err
	}

	// Output side: console echo plus speech.
	echo := display.NewEcho(nil, log.With("echo"))
	output, closeOutput := buildOutput(cfg, log.With("speech"))
	defer closeOutput()

	dispatcher := speech.NewDispatcher(output, cfg.Voice(), log.With("dispatch"))
	notifier := speech.NewSpeakingNotifier(echo, dispatcher, log)

	// Watchers.
	norm := announce.New(cfg.NormalizerOptions()...)
	seen := ledger.New(log.With("ledger"))
	feed := watcher.NewFeedWatcher(doc, seen, norm, notifier, log.With("feed"), cfg.FeedOptions()...)
	banner := watcher.NewBannerWatcher(doc, norm, notifier, log.With("banner"), cfg.BannerOptions()...)

	controller := monitor.New(log, []monitor.Watcher{feed, banner},
		monitor.WithService("delivery", func(ctx context.Context) error {
			doc.Serve(ctx)
			return nil
		}),
		monitor.WithService("snapshot", source.Run),
	)

	fmt.Println(display.RenderBanner("watching " + source.Path()))
	if !dispatcher.Available() {
		echo.Hint(fmt.Sprintf("Speech off: set %s and %s to enable.", speech.EnvAzureSpeechKey, speech.EnvAzureSpeechRegion))
	}
	echo.Hint("Press Ctrl+C to stop.")
	fmt.Println()

	if err := controller.Run(ctx); err != nil {
		return err
	}

	submitted, dropped := dispatcher.Stats()
	log.Info("session over: snapshots=%d feed=%d banner=%d unique=%d spoken=%d dropped=%d",
		source.Loads(), feed.Announced(), banner.Announced(), seen.Len(), submitted, dropped)
	for name, state := range controller.States() {
		log.Debug("watcher %s: %s", name, state)
	}
	return nil
}

// buildOutput picks the speech output. A nil output means speech is
// unavailable; announcements are still echoed.
func buildOutput(cfg config.Config, log *logger.Logger) (speech.Output, func()) {
	nothing := func() {}

	if !cfg.Speech.Enabled {
		return speech.NewNoOp(log), nothing
	}

	creds, err := speech.LoadAzureCredentials()
	if err != nil {
		log.Error("reading Azure credentials: %v", err)
		return nil, nothing
	}
	if !creds.Complete() {
		log.Info("TTS disabled: set %s and %s env vars to enable", speech.EnvAzureSpeechKey, speech.EnvAzureSpeechRegion)
		return nil, nothing
	}

	player, err := speech.NewPlayer(log)
	if err != nil {
		log.Error("audio player init failed, speech disabled: %v", err)
		return nil, nothing
	}

	tts := speech.NewAzureClient(creds, log, speech.WithHTTPTimeout(cfg.Speech.Timeout))
	out := speech.NewSynthOutput(tts, player, log,
		speech.WithCache(speech.NewAudioCache(cfg.Speech.CacheDir, log)),
		speech.WithRequestsPerMinute(cfg.Speech.RequestsPerMinute),
	)
	log.Info("TTS enabled (voice=%s, region=%s)", cfg.Speech.Voice, creds.Region)
	return out, out.Close
}

// openLog directs logs to a file by default so the echo stays clean.
func openLog(path string) (io.Writer, func()) {
	if path == "" || path == "stderr" {
		return os.Stderr, func() {}
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		_ = os.MkdirAll(dir, 0o755)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", path, err)
		return os.Stderr, func() {}
	}
	return f, func() { f.Close() }
}
