package events

import (
	"sync"
	"time"
)

const (
	// DefaultCooldown is the suppression window for a repeated
	// (resource, event type) pair.
	DefaultCooldown = 5 * time.Second

	// guardMaxEntries triggers opportunistic eviction. Entries older than
	// twice the cooldown are purged; this bounds growth, it is not an LRU.
	guardMaxEntries = 10
)

// Guard suppresses duplicate outbound notifications fired in rapid
// succession for the same resource and event type. It only sees the local
// process; cross-process duplicates are caught by the integration-log
// recency check.
type Guard struct {
	mu       sync.Mutex
	cooldown time.Duration
	entries  map[string]time.Time
	now      func() time.Time
}

// NewGuard creates a guard with the given cooldown window.
func NewGuard(cooldown time.Duration) *Guard {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	return &Guard{
		cooldown: cooldown,
		entries:  make(map[string]time.Time),
		now:      time.Now,
	}
}

// RecentlySent reports whether the pair was marked within the cooldown.
func (g *Guard) RecentlySent(resourceID string, eventType EventType) bool {
	key := guardKey(resourceID, eventType)
	g.mu.Lock()
	defer g.mu.Unlock()
	ts, ok := g.entries[key]
	if !ok {
		return false
	}
	return g.now().Sub(ts) < g.cooldown
}

// CheckAndMark tests the cooldown and claims the slot in one lock hold, so
// at most one of any number of concurrent callers for the same pair gets
// true. Callers that end up not sending must Release the claim.
func (g *Guard) CheckAndMark(resourceID string, eventType EventType) bool {
	key := guardKey(resourceID, eventType)
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if ts, ok := g.entries[key]; ok && now.Sub(ts) < g.cooldown {
		return false
	}
	g.entries[key] = now
	if len(g.entries) > guardMaxEntries {
		cutoff := now.Add(-2 * g.cooldown)
		for k, ts := range g.entries {
			if ts.Before(cutoff) {
				delete(g.entries, k)
			}
		}
	}
	return true
}

// Release forgets the pair so a retry after a failed or abandoned dispatch
// is not suppressed.
func (g *Guard) Release(resourceID string, eventType EventType) {
	key := guardKey(resourceID, eventType)
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.entries, key)
}

// Len returns the current entry count.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.entries)
}

func guardKey(resourceID string, eventType EventType) string {
	return resourceID + "-" + string(eventType)
}
