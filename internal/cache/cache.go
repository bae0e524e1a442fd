package cache

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/paul-heyse/submarket-screen/internal/config"
	"github.com/paul-heyse/submarket-screen/internal/errs"
	"github.com/paul-heyse/submarket-screen/internal/runtime"
)

// compressionThreshold etc. come from config.CompressionConfig; gzip is
// the deterministic codec spec.md §4.1 asks for (stdlib — no pack example
// carries a faster codec like zstd, so this is the one stdlib fallback in
// the cache package, noted in DESIGN.md).

// Store is the tiered cache named in spec.md §4.1/§6: hot LRU, warm
// SQLite KV, optional cold Redis tier. It satisfies runtime.Cache.
type Store struct {
	hot         *hotTier
	warm        *warmTier
	cold        *redis.Client
	coldEnabled bool
	compression config.CompressionConfig
	modelVersion string

	mu         sync.Mutex
	coldHits   int64
	coldMisses int64
}

// Open builds a Store from a CacheConfig. The cold tier is best-effort:
// if cfg.Distributed.Enabled but the endpoint is unreachable at call time,
// operations soft-skip the cold tier rather than failing the run, per
// spec.md §4.1's "distributed tier best-effort" note.
func Open(cfg config.CacheConfig, modelVersion string) (*Store, error) {
	warm, err := openWarmTier(cfg.Warm.Path)
	if err != nil {
		return nil, err
	}
	s := &Store{
		hot:          newHotTier(cfg.Memory.SizeBytes),
		warm:         warm,
		compression:  cfg.Compression,
		modelVersion: modelVersion,
	}
	if cfg.Distributed.Enabled {
		s.cold = redis.NewClient(&redis.Options{Addr: cfg.Distributed.Endpoint, Password: cfg.Distributed.Credentials})
		s.coldEnabled = true
	}
	return s, nil
}

func (s *Store) compress(raw []byte) ([]byte, bool) {
	if !s.compression.Enabled || len(raw) < s.compression.ThresholdBytes {
		return raw, false
	}
	var buf bytes.Buffer
	w, _ := gzip.NewWriterLevel(&buf, s.compression.Level)
	_, _ = w.Write(raw)
	_ = w.Close()
	return buf.Bytes(), true
}

func (s *Store) decompress(payload []byte, compressed bool) ([]byte, error) {
	if !compressed {
		return payload, nil
	}
	r, err := gzip.NewReader(bytes.NewReader(payload))
	if err != nil {
		return nil, &errs.DataSourceError{Source: "warm-cache", Reason: "decompress: " + err.Error()}
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Get implements runtime.Cache. It checks hot, then warm (promoting a
// warm hit into hot per spec.md §4.1), then cold best-effort.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if v, ok := s.hot.get(key); ok {
		return v, true, nil
	}
	row, ok, err := s.warm.get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if ok {
		raw, err := s.decompress(row.Payload, row.Compressed)
		if err != nil {
			return nil, false, err
		}
		s.hot.set(key, raw, false)
		return raw, true, nil
	}
	if s.coldEnabled {
		v, err := s.cold.Get(ctx, key).Bytes()
		if err == nil {
			s.mu.Lock()
			s.coldHits++
			s.mu.Unlock()
			s.hot.set(key, v, false)
			return v, true, nil
		}
		s.mu.Lock()
		s.coldMisses++
		s.mu.Unlock()
	}
	return nil, false, nil
}

// Set implements runtime.Cache: writes hot and warm synchronously, cold
// best-effort (errors there are swallowed, matching the "distributed tier
// best-effort" contract).
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	payload, compressed := s.compress(value)
	now := time.Now()
	row := warmRow{
		Key: key, Payload: payload, CreatedAt: now, ExpiresAt: now.Add(ttl),
		Version: s.modelVersion, Compressed: compressed, Size: len(payload),
	}
	if err := s.warm.set(ctx, row); err != nil {
		return err
	}
	s.hot.set(key, value, compressed)
	if s.coldEnabled {
		_ = s.cold.Set(ctx, key, value, ttl).Err()
	}
	return nil
}

// Invalidate implements runtime.Cache, clearing a single key from every
// tier. Cold invalidation is published so other processes sharing the
// distributed tier observe it too.
func (s *Store) Invalidate(ctx context.Context, key string) error {
	s.hot.invalidate(key)
	if err := s.warm.invalidate(ctx, key); err != nil {
		return err
	}
	if s.coldEnabled {
		_ = s.cold.Del(ctx, key).Err()
		_ = s.cold.Publish(ctx, "cache-invalidate", key).Err()
	}
	return nil
}

// InvalidateFilter deletes every key matching a prefix from the hot and
// warm tiers, the cache admin invalidate(filter) contract from spec.md §6.
// The cold tier is not touched. The count returned is of warm rows removed.
func (s *Store) InvalidateFilter(ctx context.Context, prefix string) (int64, error) {
	s.hot.mu.Lock()
	for _, k := range s.hot.lru.Keys() {
		if strings.HasPrefix(k, prefix) {
			s.hot.lru.Remove(k)
		}
	}
	s.hot.mu.Unlock()
	return s.warm.invalidatePrefix(ctx, prefix)
}

// InvalidateVersion drops warm entries stamped with a stale model
// version, used when a connector bumps its declared version.
func (s *Store) InvalidateVersion(ctx context.Context, current string) (int64, error) {
	return s.warm.invalidateVersion(ctx, current)
}

// Export and Import implement the cache admin export(sink)/restore
// contract from spec.md §6.2, operating on the warm tier (the durable
// source of truth; hot and cold are rebuilt by subsequent Gets).
func (s *Store) Export(ctx context.Context) ([]warmRow, error) { return s.warm.export(ctx) }

func (s *Store) Import(ctx context.Context, rows []warmRow) error { return s.warm.importRows(ctx, rows) }

// Stats implements runtime.Cache, surfacing the side output named in
// spec.md §6's "Run output" — a cache statistics snapshot.
func (s *Store) Stats() runtime.CacheStats {
	entries, bytes_, hits, misses, evictions := s.hot.snapshot()
	s.mu.Lock()
	coldHits, coldMisses := s.coldHits, s.coldMisses
	s.mu.Unlock()
	return runtime.CacheStats{
		HotEntries: entries, HotBytes: bytes_, HotHits: hits, HotMisses: misses,
		WarmHits: s.warm.hits, WarmMisses: s.warm.misses,
		ColdHits: coldHits, ColdMisses: coldMisses, Evictions: evictions,
	}
}

// Close releases the warm tier's file handle and the cold tier's
// connection pool.
func (s *Store) Close() error {
	if s.coldEnabled {
		_ = s.cold.Close()
	}
	return s.warm.close()
}
