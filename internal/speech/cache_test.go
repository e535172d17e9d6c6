package speech

import (
	"testing"

	"github.com/hammamikhairi/livespeaker/internal/logger"
)

func TestAudioCacheMemory(t *testing.T) {
	c := NewAudioCache("", logger.New(logger.LevelOff, nil))
	v := DefaultVoice()

	if _, ok := c.Get(v, "hi"); ok {
		t.Fatal("empty cache should miss")
	}
	c.Put(v, "hi", []byte("audio"))

	data, ok := c.Get(v, "hi")
	if !ok || string(data) != "audio" {
		t.Fatalf("expected hit, got %q %v", data, ok)
	}

	faster := v
	faster.Rate = 1.5
	if _, ok := c.Get(faster, "hi"); ok {
		t.Fatal("a different voice must miss")
	}

	if hits, misses := c.Stats(); hits != 1 || misses != 2 {
		t.Fatalf("stats = %d/%d", hits, misses)
	}
}

func TestAudioCacheDisk(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	dir := t.TempDir()
	v := DefaultVoice()

	NewAudioCache(dir, log).Put(v, "欢迎", []byte("wav"))

	warm := NewAudioCache(dir, log)
	data, ok := warm.Get(v, "欢迎")
	if !ok || string(data) != "wav" {
		t.Fatalf("expected disk hit, got %q %v", data, ok)
	}
	if warm.Len() != 1 {
		t.Fatalf("disk hit should be promoted to memory, len=%d", warm.Len())
	}
}
