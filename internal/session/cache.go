package session

import (
	"crypto/sha256"
	"encoding/base64"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Link cache defaults
const (
	DefaultLinkCacheSize = 10000
	DefaultLinkCacheTTL  = 24 * time.Hour
	linkKeyLength        = 12
)

// LinkCache maps short keys that fit into callback payloads to normalized
// URLs. It is bounded in size and entries expire. Safe for concurrent use.
type LinkCache struct {
	entries *expirable.LRU[string, string]
}

// NewLinkCache creates a cache. Non-positive arguments select the defaults.
func NewLinkCache(size int, ttl time.Duration) *LinkCache {
	if size <= 0 {
		size = DefaultLinkCacheSize
	}
	if ttl <= 0 {
		ttl = DefaultLinkCacheTTL
	}
	return &LinkCache{
		entries: expirable.NewLRU[string, string](size, nil, ttl),
	}
}

// Put stores url and returns its key. The same url always yields the same key.
func (c *LinkCache) Put(url string) string {
	key := linkKey(url)
	c.entries.Add(key, url)
	return key
}

// Get returns the url stored under key
func (c *LinkCache) Get(key string) (string, bool) {
	return c.entries.Get(key)
}

// Len returns the number of live entries
func (c *LinkCache) Len() int {
	return c.entries.Len()
}

func linkKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return base64.RawURLEncoding.EncodeToString(sum[:])[:linkKeyLength]
}
