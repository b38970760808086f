// Package cache implements a file-backed response cache with a TTL.
// Each entry is one JSON file named after a hash of the request, so the same
// cache directory can be shared across invocations of the tool.
package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// entry is the on-disk representation of a cached response.
type entry struct {
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Cache maps a (url, params) pair to a previously fetched JSON payload.
// A single mutex guards all file I/O; the cache is safe for concurrent use
// within one process but makes no promises across processes.
type Cache struct {
	dir    string
	ttl    time.Duration
	mu     sync.Mutex
	logger *logrus.Logger
}

// New creates a cache rooted at dir. A non-positive ttl disables the cache
// entirely: Get always misses and Set is a no-op.
func New(dir string, ttl time.Duration, logger *logrus.Logger) *Cache {
	if ttl > 0 {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.WithError(err).Warn("Failed to create cache directory")
		}
	}
	return &Cache{dir: dir, ttl: ttl, logger: logger}
}

// Key derives the cache key for a request. Params are serialized with keys
// in sorted order (encoding/json sorts map keys), so two semantically equal
// requests collide regardless of how the params map was built.
func (c *Cache) Key(url string, params map[string]string) string {
	if params == nil {
		params = map[string]string{}
	}
	encoded, _ := json.Marshal(params)
	sum := md5.Sum([]byte(url + ":" + string(encoded)))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached payload for the request, or ok=false if no entry
// exists, the entry is malformed, or it has outlived the TTL. Read failures
// are downgraded to misses, never surfaced.
func (c *Cache) Get(url string, params map[string]string) (json.RawMessage, bool) {
	if c.ttl <= 0 {
		return nil, false
	}
	path := filepath.Join(c.dir, c.Key(url, params)+".json")

	c.mu.Lock()
	defer c.mu.Unlock()

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		c.logger.WithField("file", path).Debug("Discarding malformed cache entry")
		return nil, false
	}
	if time.Since(e.Timestamp) > c.ttl {
		return nil, false
	}
	return e.Data, true
}

// Set stores the payload for the request, overwriting any existing entry.
// Write failures are logged and otherwise ignored; caching is best effort.
func (c *Cache) Set(url string, params map[string]string, data json.RawMessage) {
	if c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(entry{Timestamp: time.Now(), Data: data})
	if err != nil {
		c.logger.WithError(err).Warn("Failed to encode cache entry")
		return
	}
	path := filepath.Join(c.dir, c.Key(url, params)+".json")

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.WriteFile(path, raw, 0o644); err != nil {
		c.logger.WithError(err).Warn("Failed to write cache entry")
	}
}
