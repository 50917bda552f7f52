package enrich

import (
	"context"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"hhagent-engine/internal/domain"
)

// Outcome is one refreshed row: either full detail freshly fetched from
// upstream, or a degraded fallback built from search-summary fields when the
// fetch failed. Fallbacks are never written to the store.
type Outcome struct {
	Record   domain.VacancyRecord
	Degraded bool
}

// Refresher drives concurrency-bounded, rate-paced detail fetches for the
// stale subset of a search. Chunks of BatchSize are processed strictly in
// order with BatchDelay between them; within a chunk every fetch runs
// concurrently. Chunk size itself caps in-flight work.
type Refresher struct {
	Store      VacancyStore
	Fetch      DetailFetcher
	BatchSize  int
	BatchDelay time.Duration

	// Sleep and Now are seams for tests; nil means real time.
	Sleep func(ctx context.Context, d time.Duration) error
	Now   func() time.Time
}

// Refresh fetches detail for every stale id and upserts successes into the
// store. The returned map covers every requested id: failures map to a
// fallback from the originating search summary. One id's failure never
// aborts its chunk or the request.
func (r *Refresher) Refresh(ctx context.Context, token string, staleIDs []string, summaries map[string]domain.VacancySummary) map[string]Outcome {
	out := make(map[string]Outcome, len(staleIDs))
	if len(staleIDs) == 0 {
		return out
	}

	batch := r.BatchSize
	if batch < 1 {
		batch = 1
	}

	var mu sync.Mutex

chunks:
	for start := 0; start < len(staleIDs); start += batch {
		// Inter-batch pause is the sole throttle against the upstream
		// quota; never before the first chunk.
		if start > 0 {
			if err := r.sleep(ctx, r.BatchDelay); err != nil {
				break chunks
			}
		}

		end := start + batch
		if end > len(staleIDs) {
			end = len(staleIDs)
		}
		chunk := staleIDs[start:end]

		var g errgroup.Group
		for _, id := range chunk {
			id := id
			g.Go(func() error {
				rec, err := r.fetchAndStore(ctx, token, id)
				mu.Lock()
				if err != nil {
					log.Printf("[refresh] vacancy %s fetch failed: %v", id, err)
					out[id] = Outcome{Record: domain.FallbackRecord(summaries[id]), Degraded: true}
				} else {
					out[id] = Outcome{Record: rec}
				}
				mu.Unlock()
				return nil // isolate per-item failure; never cancel siblings
			})
		}
		_ = g.Wait()

		if ctx.Err() != nil {
			break chunks
		}
	}

	// Cancellation can leave trailing ids unprocessed; they still get a
	// fallback row so callers never see a shorter list.
	for _, id := range staleIDs {
		if _, ok := out[id]; !ok {
			out[id] = Outcome{Record: domain.FallbackRecord(summaries[id]), Degraded: true}
		}
	}
	return out
}

func (r *Refresher) fetchAndStore(ctx context.Context, token, id string) (domain.VacancyRecord, error) {
	rec, err := r.Fetch(ctx, token, id)
	if err != nil {
		return domain.VacancyRecord{}, err
	}

	now := r.now()
	rec.CreatedAt = now
	rec.LastFullRefresh = &now
	rec.LastSeenInSearch = now

	// A failed write is logged and the in-memory record still serves this
	// response; the next request simply re-fetches.
	if err := r.Store.Upsert(ctx, rec); err != nil {
		log.Printf("[refresh] store write failed for vacancy %s: %v", id, err)
	}
	return rec, nil
}

func (r *Refresher) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep != nil {
		return r.Sleep(ctx, d)
	}
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (r *Refresher) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}
