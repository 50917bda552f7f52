package enrich

import (
	"hhagent-engine/internal/domain"
)

// Assemble merges fresh-from-store and newly-refreshed records back into the
// original search order and annotates each row with the applied flag. The
// output always has the same length and order as the input: an id missing
// from both maps gets a minimal stub instead of being dropped. No re-sorting
// happens here; ranking is upstream's call.
func Assemble(order []domain.VacancySummary, fresh map[string]domain.VacancyRecord, refreshed map[string]Outcome, applied map[string]struct{}) []domain.EnrichedVacancy {
	out := make([]domain.EnrichedVacancy, 0, len(order))
	for _, sum := range order {
		var rec domain.VacancyRecord
		degraded := false

		if o, ok := refreshed[sum.ID]; ok {
			rec, degraded = o.Record, o.Degraded
		} else if f, ok := fresh[sum.ID]; ok {
			rec = f
		} else {
			rec = domain.FallbackRecord(sum)
			degraded = true
		}

		_, isApplied := applied[sum.ID]
		out = append(out, domain.EnrichedVacancy{
			VacancyRecord: rec,
			Applied:       isApplied,
			Degraded:      degraded,
		})
	}
	return out
}
