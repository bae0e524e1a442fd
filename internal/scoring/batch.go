package scoring

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/paul-heyse/submarket-screen/internal/domain"
	"github.com/paul-heyse/submarket-screen/internal/errs"
	"github.com/paul-heyse/submarket-screen/internal/runtime"
)

// ScoreFunc computes a single submarket's ScoredMarket. It is the task
// body the batch runner fans out over a bounded worker pool (spec.md
// §4.8's "one task per submarket" task tree).
type ScoreFunc func(ctx context.Context, sm domain.Submarket) (domain.ScoredMarket, error)

// ProgressFunc reports per-submarket completion to a caller-supplied
// callback (the CLI collaborator renders it; the core does not format
// progress, per spec.md §4.8).
type ProgressFunc func(submarketID string, status domain.RunStatus)

// AlreadyScored, when non-nil, reports whether a submarket+model_version
// pair is already present in the manifest sink — the resumability check
// from spec.md §4.1/§8: already-scored submarkets are skipped on re-run.
type AlreadyScored func(submarketID, modelVersion string) bool

// Batch fans ScoreFunc out over submarkets with a bounded concurrency cap,
// isolating per-submarket failures (spec.md §7/§8: a failure on one
// submarket never fails the batch) and honoring context cancellation.
func Batch(ctx context.Context, rt *runtime.Runtime, submarkets []domain.Submarket, score ScoreFunc, progress ProgressFunc, alreadyScored AlreadyScored) ([]domain.ScoredMarket, domain.RunManifest) {
	manifest := domain.RunManifest{
		RunID:        uuid.NewString(),
		ModelVersion: rt.Config.ModelVersion,
		Weights:      rt.Config.Weights.AsMap(),
		StartedAt:    rt.Clock.Now(),
		Attempted:    len(submarkets),
	}

	parallelism := rt.Config.Parallelism
	if parallelism <= 0 {
		parallelism = 1
	}
	sem := make(chan struct{}, parallelism)

	var mu sync.Mutex
	var wg sync.WaitGroup
	results := make([]domain.ScoredMarket, 0, len(submarkets))
	timings := make([]domain.SubmarketTiming, 0, len(submarkets))

	for _, sm := range submarkets {
		sm := sm
		if alreadyScored != nil && alreadyScored(sm.ID, manifest.ModelVersion) {
			continue
		}
		if ctx.Err() != nil {
			mu.Lock()
			timings = append(timings, domain.SubmarketTiming{SubmarketID: sm.ID, Status: domain.StatusFailed, Reason: "cancelled before start"})
			mu.Unlock()
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			start := rt.Clock.Now()
			sc, err := score(ctx, sm)
			elapsed := rt.Clock.Now().Sub(start)
			status := domain.StatusSuccess
			reason := ""
			if err != nil {
				status = domain.StatusFailed
				reason = err.Error()
				if errs.IsCancelled(err) {
					status = domain.StatusFailed
					reason = "cancelled"
				}
			} else if sc.Status == domain.StatusPartial {
				status = domain.StatusPartial
			}
			mu.Lock()
			timings = append(timings, domain.SubmarketTiming{SubmarketID: sm.ID, Duration: elapsed, Status: status, Reason: reason})
			if err == nil {
				results = append(results, sc)
			}
			mu.Unlock()
			if progress != nil {
				progress(sm.ID, status)
			}
		}()
	}
	wg.Wait()

	results = Rank(results)

	manifest.Timings = timings
	manifest.CacheStats = toCacheStatsSnapshot(rt.Cache.Stats())
	manifest.FinishedAt = rt.Clock.Now()
	manifest.Cancelled = ctx.Err() != nil
	manifest.Scored = len(results)
	return results, manifest
}

func toCacheStatsSnapshot(s runtime.CacheStats) domain.CacheStatsSnapshot {
	total := s.HotHits + s.HotMisses + s.WarmHits + s.WarmMisses
	ratio := 0.0
	if total > 0 {
		ratio = float64(s.HotHits+s.WarmHits) / float64(total)
	}
	return domain.CacheStatsSnapshot{
		HotEntries: s.HotEntries, HotBytes: s.HotBytes, HotHits: s.HotHits, HotMisses: s.HotMisses,
		WarmHits: s.WarmHits, WarmMisses: s.WarmMisses, ColdHits: s.ColdHits, ColdMisses: s.ColdMisses,
		Evictions: s.Evictions, HitRatio: ratio,
	}
}
