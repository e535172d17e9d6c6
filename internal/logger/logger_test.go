package logger

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevels(t *testing.T) {
	tests := []struct {
		level     Level
		wantInfo  bool
		wantDebug bool
	}{
		{LevelOff, false, false},
		{LevelNormal, true, false},
		{LevelVerbose, true, true},
	}
	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			var buf bytes.Buffer
			l := New(tt.level, &buf)
			l.Info("info %d", 1)
			l.Debug("debug %d", 2)

			out := buf.String()
			if got := strings.Contains(out, "info 1"); got != tt.wantInfo {
				t.Errorf("info logged = %v, want %v:\n%s", got, tt.wantInfo, out)
			}
			if got := strings.Contains(out, "debug 2"); got != tt.wantDebug {
				t.Errorf("debug logged = %v, want %v:\n%s", got, tt.wantDebug, out)
			}
		})
	}
}

func TestSetLevelAndPrefix(t *testing.T) {
	var buf bytes.Buffer
	l := New(LevelOff, &buf)
	l.Warn("hidden")
	l.SetLevel(LevelNormal)
	l.With("feed").Warn("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("message logged while off:\n%s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "feed") {
		t.Errorf("prefixed warning missing:\n%s", out)
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{
		"off": LevelOff, "quiet": LevelOff,
		"verbose": LevelVerbose, "debug": LevelVerbose,
		"normal": LevelNormal, "": LevelNormal,
	} {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestClip(t *testing.T) {
	if got := Clip("hello", 10); got != "hello" {
		t.Errorf("short string changed: %q", got)
	}
	if got := Clip("欢迎欢迎欢迎欢迎", 7); got != "欢迎..." {
		t.Errorf("clip = %q", got)
	}
}
