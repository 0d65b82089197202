package gateway

import (
	"sync"
	"time"
)

// dedup drops repeated command IDs within a TTL window so a command published
// twice on the bus places at most one order. Safe for concurrent use.
type dedup struct {
	seen map[string]time.Time
	ttl  time.Duration
	mu   sync.Mutex
}

func newDedup(ttl time.Duration) *dedup {
	return &dedup{
		seen: make(map[string]time.Time),
		ttl:  ttl,
	}
}

// isDuplicate reports whether id was seen within the TTL. A fresh or expired
// id is recorded and reported as new.
func (d *dedup) isDuplicate(id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	if lastSeen, ok := d.seen[id]; ok {
		if now.Sub(lastSeen) < d.ttl {
			return true
		}
	}

	d.seen[id] = now
	return false
}

// cleanup evicts expired entries. Called periodically by the listener.
func (d *dedup) cleanup() {
	d.mu.Lock()
	defer d.mu.Unlock()

	now := time.Now()
	for id, ts := range d.seen {
		if now.Sub(ts) >= d.ttl {
			delete(d.seen, id)
		}
	}
}
