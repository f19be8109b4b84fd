package session

import (
	"strings"
	"testing"
	"time"
)

func TestLinkCache_PutGet(t *testing.T) {
	cache := NewLinkCache(10, time.Hour)

	key := cache.Put("https://youtu.be/abc")
	if len(key) != linkKeyLength {
		t.Errorf("Expected key length %d, got %d", linkKeyLength, len(key))
	}
	if strings.Contains(key, selectionSeparator) {
		t.Errorf("Key %q must not contain the payload separator", key)
	}

	url, ok := cache.Get(key)
	if !ok || url != "https://youtu.be/abc" {
		t.Errorf("Expected stored url, got %q (%v)", url, ok)
	}

	if again := cache.Put("https://youtu.be/abc"); again != key {
		t.Errorf("Expected same key for same url, got %s and %s", key, again)
	}
	if other := cache.Put("https://youtu.be/xyz"); other == key {
		t.Error("Expected different keys for different urls")
	}
	if cache.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", cache.Len())
	}
}

func TestLinkCache_MissingKey(t *testing.T) {
	cache := NewLinkCache(0, 0)
	if _, ok := cache.Get("nope"); ok {
		t.Error("Expected miss for unknown key")
	}
}

func TestLinkCache_Expiry(t *testing.T) {
	cache := NewLinkCache(10, 20*time.Millisecond)
	key := cache.Put("https://youtu.be/abc")

	time.Sleep(60 * time.Millisecond)

	if _, ok := cache.Get(key); ok {
		t.Error("Expected entry to expire")
	}
}

func TestLinkCache_Bounded(t *testing.T) {
	cache := NewLinkCache(2, time.Hour)
	first := cache.Put("https://youtu.be/1")
	cache.Put("https://youtu.be/2")
	cache.Put("https://youtu.be/3")

	if cache.Len() != 2 {
		t.Errorf("Expected 2 entries, got %d", cache.Len())
	}
	if _, ok := cache.Get(first); ok {
		t.Error("Expected oldest entry to be evicted")
	}
}
