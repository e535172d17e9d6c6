package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"

	"github.com/hammamikhairi/livespeaker/internal/logger"
)

// AudioCache is a thread-safe two-tier cache (in-memory + optional
// filesystem) for synthesized audio. Banner text repeats a lot on a live
// page ("xxx 进入直播间"), so a hit skips both the network round trip and
// the rate limiter.
//
// The key is sha256(voice key + ":" + text): changing any voice parameter
// misses until it is switched back.
type AudioCache struct {
	mu       sync.RWMutex
	entries  map[string][]byte // hash -> WAV bytes
	log      *logger.Logger
	cacheDir string // empty = no disk layer
	hits     int64
	misses   int64
}

// NewAudioCache creates an audio cache. An empty cacheDir keeps
// everything in memory.
func NewAudioCache(cacheDir string, log *logger.Logger) *AudioCache {
	c := &AudioCache{
		entries:  make(map[string][]byte),
		log:      log,
		cacheDir: cacheDir,
	}
	if cacheDir != "" {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			log.Error("cache: failed to create cache dir %s, disk layer off: %v", cacheDir, err)
			c.cacheDir = ""
		}
	}
	return c
}

// Get returns cached audio for text spoken with v.
func (c *AudioCache) Get(v Voice, text string) ([]byte, bool) {
	key := hashKey(v, text)

	c.mu.Lock()
	defer c.mu.Unlock()

	if data, ok := c.entries[key]; ok {
		c.hits++
		c.log.Debug("cache hit (mem): %s", logger.Clip(text, 40))
		return data, true
	}

	if c.cacheDir != "" {
		if data, err := os.ReadFile(c.diskPath(key)); err == nil {
			c.entries[key] = data
			c.hits++
			c.log.Debug("cache hit (disk): %s", logger.Clip(text, 40))
			return data, true
		}
	}

	c.misses++
	return nil, false
}

// Put stores audio for text spoken with v.
func (c *AudioCache) Put(v Voice, text string, audio []byte) {
	key := hashKey(v, text)

	c.mu.Lock()
	c.entries[key] = audio
	size := len(c.entries)
	c.mu.Unlock()

	c.log.Debug("cache store: %s (%d bytes, %d entries)", logger.Clip(text, 40), len(audio), size)

	if c.cacheDir != "" {
		path := c.diskPath(key)
		if err := os.WriteFile(path, audio, 0o644); err != nil {
			c.log.Error("cache: disk write failed for %s: %v", path, err)
		}
	}
}

// Len returns the number of in-memory entries.
func (c *AudioCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counts.
func (c *AudioCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

func (c *AudioCache) diskPath(key string) string {
	return filepath.Join(c.cacheDir, key+".wav")
}

func hashKey(v Voice, text string) string {
	h := sha256.Sum256([]byte(v.Key() + ":" + text))
	return hex.EncodeToString(h[:])
}
