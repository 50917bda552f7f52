// Package enrich is the vacancy freshness and batched refresh engine: it
// turns a raw search page into an ordered, fully-detailed, de-duplicated
// vacancy list, refreshing only what the local store holds stale.
package enrich

import (
	"context"
	"log"
	"net/url"
	"time"

	"hhagent-engine/internal/domain"
)

// VacancyStore is the injected posting store; the engine carries no
// process-wide state of its own.
type VacancyStore interface {
	GetBatch(ctx context.Context, ids []string) (map[string]domain.VacancyRecord, error)
	Upsert(ctx context.Context, rec domain.VacancyRecord) error
	TouchLastSeen(ctx context.Context, ids []string, now time.Time) error
}

// AppliedResolver answers which of the candidate ids the user already
// successfully applied to.
type AppliedResolver interface {
	AppliedSet(ctx context.Context, userID string, ids []string) (map[string]struct{}, error)
}

// Searcher is the upstream search capability.
type Searcher interface {
	Search(ctx context.Context, token string, params url.Values) (domain.SearchPage, error)
	SearchByURL(ctx context.Context, token, searchURL string) (domain.SearchPage, error)
}

// DetailFetcher fetches one vacancy's full detail from upstream. Timeout and
// retry policy live below this seam; the engine only sees success or failure.
type DetailFetcher func(ctx context.Context, token, id string) (domain.VacancyRecord, error)

// Options is the engine's per-request tuning, passed in explicitly rather
// than read from ambient state.
type Options struct {
	BatchSize       int
	BatchDelay      time.Duration
	FreshnessWindow time.Duration
}

type Service struct {
	store   VacancyStore
	applied AppliedResolver
	search  Searcher
	fetch   DetailFetcher
	opts    Options

	now func() time.Time // test seam
}

func NewService(store VacancyStore, applied AppliedResolver, search Searcher, fetch DetailFetcher, opts Options) *Service {
	if opts.BatchSize < 1 {
		opts.BatchSize = 1
	}
	if opts.FreshnessWindow <= 0 {
		opts.FreshnessWindow = 12 * time.Hour
	}
	return &Service{
		store:   store,
		applied: applied,
		search:  search,
		fetch:   fetch,
		opts:    opts,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// SearchRequest is one "search and enrich" invocation.
type SearchRequest struct {
	Token  string
	UserID string

	// Params drives a regular search; SearchURL, when set, runs a saved
	// search URL instead.
	Params    url.Values
	SearchURL string

	// FilterApplied removes already-applied vacancies from the result and
	// corrects found accordingly.
	FilterApplied bool
}

// SearchResult is the ordered, enriched, annotated list plus upstream
// pagination metadata. Found reflects the post-filter candidate set; detail
// fetch failures never change it.
type SearchResult struct {
	Items   []domain.EnrichedVacancy `json:"items"`
	Found   int                      `json:"found"`
	Pages   int                      `json:"pages"`
	Page    int                      `json:"page"`
	PerPage int                      `json:"per_page"`
}

// SearchAndEnrich runs the full pipeline: upstream search, last-seen touch,
// applied-set filter, freshness classification, batched refresh, assembly.
// Only the upstream search itself can fail the request; everything after
// degrades per item.
func (s *Service) SearchAndEnrich(ctx context.Context, req SearchRequest) (SearchResult, error) {
	var page domain.SearchPage
	var err error
	if req.SearchURL != "" {
		page, err = s.search.SearchByURL(ctx, req.Token, req.SearchURL)
	} else {
		page, err = s.search.Search(ctx, req.Token, req.Params)
	}
	if err != nil {
		return SearchResult{}, err
	}

	result := SearchResult{
		Found:   page.Found,
		Pages:   page.Pages,
		Page:    page.Page,
		PerPage: page.PerPage,
	}
	if len(page.Items) == 0 {
		result.Items = []domain.EnrichedVacancy{}
		return result, nil
	}

	now := s.now()
	ids := summaryIDs(page.Items)

	// Best-effort side write, decoupled from the freshness decision so
	// housekeeping can tell "recently searched" from "abandoned". The main
	// path never waits on it.
	go s.touchLastSeen(ids, now)

	appliedSet, err := s.applied.AppliedSet(ctx, req.UserID, ids)
	if err != nil {
		log.Printf("[enrich] applied-set lookup failed for user %s: %v", req.UserID, err)
		appliedSet = map[string]struct{}{}
	}

	items := page.Items
	if req.FilterApplied {
		kept := items[:0:0]
		for _, it := range items {
			if _, ok := appliedSet[it.ID]; !ok {
				kept = append(kept, it)
			}
		}
		items = kept
		ids = summaryIDs(items)
		// Count is fixed here, before any detail fetch.
		result.Found = len(items)
	}

	fresh, stale := Classify(ctx, s.store, ids, now, s.opts.FreshnessWindow)

	refresher := &Refresher{
		Store:      s.store,
		Fetch:      s.fetch,
		BatchSize:  s.opts.BatchSize,
		BatchDelay: s.opts.BatchDelay,
	}
	refreshed := refresher.Refresh(ctx, req.Token, stale, summariesByID(items))

	result.Items = Assemble(items, fresh, refreshed, appliedSet)
	return result, nil
}

// Detail serves one vacancy's full record: from the store when fresh,
// refreshed from upstream otherwise. The bool reports whether an upstream
// fetch happened. Unlike the batched path there is no degraded fallback; the
// caller gets the fetch error.
func (s *Service) Detail(ctx context.Context, token, id string) (domain.VacancyRecord, bool, error) {
	now := s.now()
	fresh, _ := Classify(ctx, s.store, []string{id}, now, s.opts.FreshnessWindow)
	if rec, ok := fresh[id]; ok {
		return rec, false, nil
	}

	r := &Refresher{Store: s.store, Fetch: s.fetch}
	rec, err := r.fetchAndStore(ctx, token, id)
	return rec, err == nil, err
}

func (s *Service) touchLastSeen(ids []string, now time.Time) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.store.TouchLastSeen(ctx, ids, now); err != nil {
		log.Printf("[enrich] last-seen touch failed for %d ids: %v", len(ids), err)
	}
}

func summaryIDs(items []domain.VacancySummary) []string {
	ids := make([]string, 0, len(items))
	for _, it := range items {
		ids = append(ids, it.ID)
	}
	return ids
}

func summariesByID(items []domain.VacancySummary) map[string]domain.VacancySummary {
	m := make(map[string]domain.VacancySummary, len(items))
	for _, it := range items {
		m[it.ID] = it
	}
	return m
}
