// Package dedup suppresses reprocessing of the same lead email within a
// configurable time window.
package dedup

import (
	"strings"
	"sync"
	"time"
)

// Cache remembers when each email was last fully processed and which emails
// currently have a run in flight. The in-flight set serializes concurrent
// deliveries for the same email: the check and the hold are taken under one
// lock, so two near-simultaneous duplicates cannot both pass the gate.
type Cache struct {
	mu        sync.Mutex
	window    time.Duration
	processed map[string]time.Time
	inflight  map[string]struct{}
}

// New creates a Cache with the given dedup window.
func New(window time.Duration) *Cache {
	return &Cache{
		window:    window,
		processed: make(map[string]time.Time),
		inflight:  make(map[string]struct{}),
	}
}

// TryAcquire reports whether a run for email may proceed. It returns false
// when the email was processed less than the window ago, or when another run
// for the same email is in flight. On true, the caller holds the key and
// must eventually call MarkProcessed or Release.
func (c *Cache) TryAcquire(email string, now time.Time) bool {
	key := normalize(email)
	if key == "" {
		// No email to key on; the gate does not apply.
		return true
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if ts, ok := c.processed[key]; ok && now.Sub(ts) < c.window {
		return false
	}
	if _, ok := c.inflight[key]; ok {
		return false
	}
	c.inflight[key] = struct{}{}
	return true
}

// MarkProcessed records a completed run and releases the in-flight hold.
// Called for both fully logged and errored terminals, so redelivery loops
// don't immediately re-run a lead that was already acknowledged.
func (c *Cache) MarkProcessed(email string, now time.Time) {
	key := normalize(email)
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.processed[key] = now
	delete(c.inflight, key)
}

// Release drops the in-flight hold without recording completion, so a
// retried delivery for the same lead can still be processed.
func (c *Cache) Release(email string) {
	key := normalize(email)
	if key == "" {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, key)
}

// Evict removes entries older than the window. The gate is time-based, so
// eviction is purely housekeeping; it keeps the map from growing unbounded.
func (c *Cache) Evict(now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	var n int
	for key, ts := range c.processed {
		if now.Sub(ts) >= c.window {
			delete(c.processed, key)
			n++
		}
	}
	return n
}

// Len returns the number of remembered emails.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.processed)
}

func normalize(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
