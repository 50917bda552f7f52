package enrich

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hhagent-engine/internal/domain"
)

func newTestService(st *fakeStore, applied fakeApplied, search fakeSearcher, fetch DetailFetcher) *Service {
	svc := NewService(st, applied, search, fetch, Options{
		BatchSize:       2,
		BatchDelay:      0,
		FreshnessWindow: 12 * time.Hour,
	})
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestSearchAndEnrichUpstreamFailureIsFatal(t *testing.T) {
	svc := newTestService(newFakeStore(), fakeApplied{}, fakeSearcher{err: errors.New("boom")}, okFetcher(0))

	_, err := svc.SearchAndEnrich(context.Background(), SearchRequest{Token: "t", UserID: "u"})
	require.Error(t, err)
}

func TestSearchAndEnrichEmptyPage(t *testing.T) {
	search := fakeSearcher{page: domain.SearchPage{Found: 0, Pages: 0}}
	svc := newTestService(newFakeStore(), fakeApplied{}, search, okFetcher(0))

	res, err := svc.SearchAndEnrich(context.Background(), SearchRequest{Token: "t", UserID: "u"})
	require.NoError(t, err)
	assert.NotNil(t, res.Items)
	assert.Empty(t, res.Items)
}

func TestSearchAndEnrichMixedFreshAndStale(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := newFakeStore(recordAt("fresh1", now.Add(-time.Hour)))

	page := domain.SearchPage{Items: summaries("fresh1", "stale1"), Found: 2, Pages: 1, PerPage: 50}
	svc := newTestService(st, fakeApplied{}, fakeSearcher{page: page}, okFetcher(0))

	res, err := svc.SearchAndEnrich(context.Background(), SearchRequest{Token: "t", UserID: "u"})
	require.NoError(t, err)
	require.Len(t, res.Items, 2)

	assert.Equal(t, "stored fresh1", res.Items[0].Title)
	assert.Equal(t, "fetched stale1", res.Items[1].Title)
	assert.Equal(t, 2, res.Found)
}

func TestSearchAndEnrichFilterAppliedCorrectsFound(t *testing.T) {
	page := domain.SearchPage{Items: summaries("a", "b", "c"), Found: 120, Pages: 3, PerPage: 50}
	applied := fakeApplied{set: map[string]struct{}{"b": {}}}
	svc := newTestService(newFakeStore(), applied, fakeSearcher{page: page}, okFetcher(0))

	res, err := svc.SearchAndEnrich(context.Background(), SearchRequest{
		Token: "t", UserID: "u", FilterApplied: true,
	})
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	assert.Equal(t, "a", res.Items[0].ID)
	assert.Equal(t, "c", res.Items[1].ID)
	// Found reflects the filtered candidate set, not upstream's total.
	assert.Equal(t, 2, res.Found)
}

func TestSearchAndEnrichAnnotatesWithoutFiltering(t *testing.T) {
	page := domain.SearchPage{Items: summaries("a", "b"), Found: 2}
	applied := fakeApplied{set: map[string]struct{}{"b": {}}}
	svc := newTestService(newFakeStore(), applied, fakeSearcher{page: page}, okFetcher(0))

	res, err := svc.SearchAndEnrich(context.Background(), SearchRequest{Token: "t", UserID: "u"})
	require.NoError(t, err)

	require.Len(t, res.Items, 2)
	assert.False(t, res.Items[0].Applied)
	assert.True(t, res.Items[1].Applied)
	assert.Equal(t, 2, res.Found)
}

func TestSearchAndEnrichAppliedLookupFailureDegradesToEmptySet(t *testing.T) {
	page := domain.SearchPage{Items: summaries("a"), Found: 1}
	applied := fakeApplied{err: errors.New("db gone")}
	svc := newTestService(newFakeStore(), applied, fakeSearcher{page: page}, okFetcher(0))

	res, err := svc.SearchAndEnrich(context.Background(), SearchRequest{
		Token: "t", UserID: "u", FilterApplied: true,
	})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.False(t, res.Items[0].Applied)
}

func TestSearchAndEnrichFetchFailureYieldsDegradedRow(t *testing.T) {
	page := domain.SearchPage{Items: summaries("bad"), Found: 1}
	fetch := func(ctx context.Context, token, id string) (domain.VacancyRecord, error) {
		return domain.VacancyRecord{}, errors.New("502")
	}
	svc := newTestService(newFakeStore(), fakeApplied{}, fakeSearcher{page: page}, fetch)

	res, err := svc.SearchAndEnrich(context.Background(), SearchRequest{Token: "t", UserID: "u"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.True(t, res.Items[0].Degraded)
	assert.Equal(t, "title bad", res.Items[0].Title)
}

func TestDetailServesFreshFromStore(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	st := newFakeStore(recordAt("v1", now.Add(-time.Hour)))

	fetchCalled := false
	fetch := func(ctx context.Context, token, id string) (domain.VacancyRecord, error) {
		fetchCalled = true
		return domain.VacancyRecord{ID: id}, nil
	}
	svc := newTestService(st, fakeApplied{}, fakeSearcher{}, fetch)

	rec, refreshed, err := svc.Detail(context.Background(), "t", "v1")
	require.NoError(t, err)
	assert.Equal(t, "stored v1", rec.Title)
	assert.False(t, refreshed)
	assert.False(t, fetchCalled)
}

func TestDetailRefreshesStale(t *testing.T) {
	svc := newTestService(newFakeStore(), fakeApplied{}, fakeSearcher{}, okFetcher(0))

	rec, refreshed, err := svc.Detail(context.Background(), "t", "v2")
	require.NoError(t, err)
	assert.Equal(t, "fetched v2", rec.Title)
	assert.True(t, refreshed)
	require.NotNil(t, rec.LastFullRefresh)
}

func TestDetailPropagatesFetchError(t *testing.T) {
	fetch := func(ctx context.Context, token, id string) (domain.VacancyRecord, error) {
		return domain.VacancyRecord{}, errors.New("404")
	}
	svc := newTestService(newFakeStore(), fakeApplied{}, fakeSearcher{}, fetch)

	_, _, err := svc.Detail(context.Background(), "t", "gone")
	require.Error(t, err)
}
