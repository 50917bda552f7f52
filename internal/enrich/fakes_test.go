package enrich

import (
	"context"
	"net/url"
	"sync"
	"time"

	"hhagent-engine/internal/domain"
)

// fakeStore is an in-memory VacancyStore with switchable failures.
type fakeStore struct {
	mu      sync.Mutex
	recs    map[string]domain.VacancyRecord
	getErr  error
	putErr  error
	touched [][]string
	upserts []string
}

func newFakeStore(recs ...domain.VacancyRecord) *fakeStore {
	s := &fakeStore{recs: make(map[string]domain.VacancyRecord)}
	for _, r := range recs {
		s.recs[r.ID] = r
	}
	return s
}

func (s *fakeStore) GetBatch(ctx context.Context, ids []string) (map[string]domain.VacancyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.getErr != nil {
		return nil, s.getErr
	}
	out := make(map[string]domain.VacancyRecord)
	for _, id := range ids {
		if r, ok := s.recs[id]; ok {
			out[id] = r
		}
	}
	return out, nil
}

func (s *fakeStore) Upsert(ctx context.Context, rec domain.VacancyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.recs[rec.ID] = rec
	s.upserts = append(s.upserts, rec.ID)
	return nil
}

func (s *fakeStore) TouchLastSeen(ctx context.Context, ids []string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = append(s.touched, ids)
	return nil
}

type fakeApplied struct {
	set map[string]struct{}
	err error
}

func (f fakeApplied) AppliedSet(ctx context.Context, userID string, ids []string) (map[string]struct{}, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.set == nil {
		return map[string]struct{}{}, nil
	}
	return f.set, nil
}

type fakeSearcher struct {
	page domain.SearchPage
	err  error
}

func (f fakeSearcher) Search(ctx context.Context, token string, params url.Values) (domain.SearchPage, error) {
	return f.page, f.err
}

func (f fakeSearcher) SearchByURL(ctx context.Context, token, searchURL string) (domain.SearchPage, error) {
	return f.page, f.err
}

func summaries(ids ...string) []domain.VacancySummary {
	out := make([]domain.VacancySummary, 0, len(ids))
	for _, id := range ids {
		out = append(out, domain.VacancySummary{ID: id, Title: "title " + id})
	}
	return out
}

func recordAt(id string, refreshed time.Time) domain.VacancyRecord {
	return domain.VacancyRecord{
		ID:              id,
		Title:           "stored " + id,
		LastFullRefresh: &refreshed,
	}
}
