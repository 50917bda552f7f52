package enrich

import (
	"context"
	"log"
	"time"

	"hhagent-engine/internal/domain"
)

// Classify partitions candidate ids into fresh (servable from the store) and
// stale (needing an upstream refresh). A record is fresh iff it exists, was
// ever fully refreshed, and its last refresh is younger than the window;
// exactly at the window counts as stale. Stale ids keep the candidate order,
// which becomes the refresh priority order.
//
// The store is read once, in batch. A failed read classifies everything as
// stale: correctness over cache-hit rate.
func Classify(ctx context.Context, store VacancyStore, ids []string, now time.Time, window time.Duration) (map[string]domain.VacancyRecord, []string) {
	recs, err := store.GetBatch(ctx, ids)
	if err != nil {
		log.Printf("[freshness] store read failed, treating %d candidates as stale: %v", len(ids), err)
		recs = nil
	}

	fresh := make(map[string]domain.VacancyRecord, len(recs))
	var stale []string
	for _, id := range ids {
		rec, ok := recs[id]
		if ok && rec.LastFullRefresh != nil && now.Sub(*rec.LastFullRefresh) < window {
			fresh[id] = rec
			continue
		}
		stale = append(stale, id)
	}
	return fresh, stale
}
