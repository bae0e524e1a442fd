// Package cache implements the three-tier store named in spec.md §4.1/§6:
// an in-process hot LRU, a file-backed warm SQLite KV, and an optional
// cold distributed tier. Grounded on the teacher's internal/data/cache
// TTLCache (map + manual LRU eviction), replaced here with
// hashicorp/golang-lru/v2 for the hot tier since the corpus already
// depends on it being the idiomatic choice for byte-budgeted LRU.
package cache

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// hotEntry is what the hot tier actually stores: the raw bytes plus
// enough metadata to answer Stats() without a warm-tier round trip.
type hotEntry struct {
	value      []byte
	expiresAt  int64 // unix nanos; 0 means no expiry tracked here (warm is authoritative)
	compressed bool
}

// hotTier is a byte-budgeted LRU. golang-lru/v2 evicts by entry count, so
// we additionally track resident bytes and evict further via OnEvict
// bookkeeping whenever a Set pushes the budget over, matching spec.md
// §8's "Cache eviction" invariant (resident bytes <= budget, MRU kept).
type hotTier struct {
	mu        sync.Mutex
	lru       *lru.Cache[string, hotEntry]
	budget    int64
	resident  int64
	hits      int64
	misses    int64
	evictions int64
}

func newHotTier(budgetBytes int64) *hotTier {
	h := &hotTier{budget: budgetBytes}
	// golang-lru needs a fixed capacity; we size it generously on entry
	// count and do the real budget enforcement ourselves in set(), since
	// entries vary wildly in size (a single POI blob vs. a scalar metric).
	l, _ := lru.NewWithEvict[string, hotEntry](1<<20, func(key string, v hotEntry) {
		h.resident -= int64(len(v.value))
		h.evictions++
	})
	h.lru = l
	return h
}

func (h *hotTier) get(key string) ([]byte, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	e, ok := h.lru.Get(key)
	if !ok {
		h.misses++
		return nil, false
	}
	h.hits++
	return e.value, true
}

func (h *hotTier) set(key string, value []byte, compressed bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.lru.Peek(key); ok {
		h.resident -= int64(len(old.value))
	}
	h.lru.Add(key, hotEntry{value: value, compressed: compressed})
	h.resident += int64(len(value))
	// Enforce the byte budget by evicting the least-recently-used entry
	// (the golang-lru eviction order) until resident <= budget or only the
	// newest entry is left, per spec.md §8's eviction invariant; a single
	// entry larger than the whole budget stays resident.
	for h.resident > h.budget && h.lru.Len() > 1 {
		h.lru.RemoveOldest()
	}
}

func (h *hotTier) invalidate(key string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.lru.Remove(key)
}

func (h *hotTier) snapshot() (entries, bytes, hits, misses, evictions int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return int64(h.lru.Len()), h.resident, h.hits, h.misses, h.evictions
}
