package cache

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Entry represents a cached sub-call result.
type Entry struct {
	Key       string    `json:"key"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"createdAt"`
	TTL       int       `json:"ttl"`
}

// Cache provides a two-level cache for checker sub-call results: an
// in-memory LRU front over a TTL'd file store. Retries of an idempotent
// sub-call hit the cache instead of respending budget.
type Cache struct {
	dir        string
	ttlSeconds int
	enabled    bool
	mem        *lru.Cache[string, Entry]
}

// New creates a Cache. If dir is empty, the default cache directory is
// used. maxEntries bounds the in-memory front.
func New(enabled bool, dir string, ttlSeconds, maxEntries int) (*Cache, error) {
	if !enabled {
		return &Cache{enabled: false}, nil
	}
	if dir == "" {
		d, err := defaultCacheDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}
	if maxEntries <= 0 {
		maxEntries = 256
	}
	mem, err := lru.New[string, Entry](maxEntries)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}
	return &Cache{
		dir:        dir,
		ttlSeconds: ttlSeconds,
		enabled:    true,
		mem:        mem,
	}, nil
}

// Get retrieves a cached payload by key. Returns ("", false) on miss.
func (c *Cache) Get(key string) (string, bool) {
	if !c.enabled {
		return "", false
	}
	if entry, ok := c.mem.Get(key); ok {
		if !c.expired(entry) {
			return entry.Payload, true
		}
		c.mem.Remove(key)
	}

	data, err := os.ReadFile(c.entryPath(key))
	if err != nil {
		return "", false
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	if c.expired(entry) {
		os.Remove(c.entryPath(key))
		return "", false
	}
	c.mem.Add(key, entry)
	return entry.Payload, true
}

// Put stores a payload under key in both levels.
func (c *Cache) Put(key, payload string) error {
	if !c.enabled {
		return nil
	}
	entry := Entry{
		Key:       HashKey(key),
		Payload:   payload,
		CreatedAt: time.Now(),
		TTL:       c.ttlSeconds,
	}
	c.mem.Add(key, entry)
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling cache entry: %w", err)
	}
	return os.WriteFile(c.entryPath(key), data, 0o644)
}

// Clear removes all cache entries from both levels.
func (c *Cache) Clear() error {
	if !c.enabled || c.dir == "" {
		return nil
	}
	c.mem.Purge()
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading cache directory: %w", err)
	}
	for _, e := range entries {
		if filepath.Ext(e.Name()) == ".json" {
			os.Remove(filepath.Join(c.dir, e.Name()))
		}
	}
	return nil
}

func (c *Cache) expired(entry Entry) bool {
	return c.ttlSeconds > 0 && time.Since(entry.CreatedAt) > time.Duration(c.ttlSeconds)*time.Second
}

// Dir returns the cache directory path.
func (c *Cache) Dir() string {
	return c.dir
}

// Enabled returns whether caching is enabled.
func (c *Cache) Enabled() bool {
	return c.enabled
}

// HashKey creates a SHA-256 hash of the given key material.
func HashKey(key string) string {
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h)
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.dir, HashKey(key)+".json")
}

func defaultCacheDir() (string, error) {
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, "codereview"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Caches", "codereview"), nil
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, "codereview", "cache"), nil
		}
		return filepath.Join(home, "AppData", "Local", "codereview", "cache"), nil
	default:
		return filepath.Join(home, ".cache", "codereview"), nil
	}
}
