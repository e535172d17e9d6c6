// Package display renders announcements and the startup splash on the
// terminal.
package display

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/hammamikhairi/livespeaker/internal/domain"
	"github.com/hammamikhairi/livespeaker/internal/logger"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	// BannerStyle is a muted slate for the startup splash.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	tagStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	feedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bae6fd"))

	bannerTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a"))

	hintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))
)

// Tags printed in front of each announcement.
const (
	FeedTag   = "[弹幕]"
	BannerTag = "[提示]"
)

// Compile-time interface check.
var _ domain.Announcer = (*Echo)(nil)

// Echo prints every announcement as one styled line. Safe for concurrent
// use.
type Echo struct {
	mu  sync.Mutex
	out io.Writer
	log *logger.Logger
}

// NewEcho creates a console echo. If out is nil, os.Stdout is used.
func NewEcho(out io.Writer, log *logger.Logger) *Echo {
	if out == nil {
		out = os.Stdout
	}
	return &Echo{out: out, log: log}
}

// Announce prints a.
func (e *Echo) Announce(_ context.Context, a domain.Announcement) error {
	e.log.Debug("echo %s: %s", a.Source, logger.Clip(a.Text, 60))
	return e.println(Format(a))
}

// Hint prints a dimmed status line.
func (e *Echo) Hint(text string) {
	if err := e.println(hintStyle.Render("  " + text)); err != nil {
		e.log.Debug("echo: %v", err)
	}
}

func (e *Echo) println(line string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, err := fmt.Fprintln(e.out, line)
	return err
}

// Format renders an announcement with its source tag.
func Format(a domain.Announcement) string {
	switch a.Source {
	case domain.SourceBanner:
		return tagStyle.Render(BannerTag) + " " + bannerTextStyle.Render(a.Text)
	default:
		return tagStyle.Render(FeedTag) + " " + feedStyle.Render(a.Text)
	}
}
