package enrich

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hhagent-engine/internal/domain"
)

func okFetcher(delay time.Duration) DetailFetcher {
	return func(ctx context.Context, token, id string) (domain.VacancyRecord, error) {
		if delay > 0 {
			select {
			case <-ctx.Done():
				return domain.VacancyRecord{}, ctx.Err()
			case <-time.After(delay):
			}
		}
		return domain.VacancyRecord{ID: id, Title: "fetched " + id, Description: "full text"}, nil
	}
}

func summariesMap(ids ...string) map[string]domain.VacancySummary {
	m := make(map[string]domain.VacancySummary)
	for _, id := range ids {
		m[id] = domain.VacancySummary{ID: id, Title: "title " + id}
	}
	return m
}

func TestRefreshSleepsBetweenChunksOnly(t *testing.T) {
	var sleeps []time.Duration
	r := &Refresher{
		Store:      newFakeStore(),
		Fetch:      okFetcher(0),
		BatchSize:  2,
		BatchDelay: 250 * time.Millisecond,
		Sleep: func(ctx context.Context, d time.Duration) error {
			sleeps = append(sleeps, d)
			return nil
		},
	}

	ids := []string{"1", "2", "3", "4", "5"}
	out := r.Refresh(context.Background(), "tok", ids, summariesMap(ids...))

	require.Len(t, out, 5)
	// Three chunks of [2,2,1]: the pause runs before chunks two and three,
	// never before the first.
	assert.Equal(t, []time.Duration{250 * time.Millisecond, 250 * time.Millisecond}, sleeps)
}

func TestRefreshNoSleepForSingleChunk(t *testing.T) {
	slept := 0
	r := &Refresher{
		Store:     newFakeStore(),
		Fetch:     okFetcher(0),
		BatchSize: 10,
		Sleep: func(ctx context.Context, d time.Duration) error {
			slept++
			return nil
		},
	}

	r.Refresh(context.Background(), "tok", []string{"1", "2", "3"}, summariesMap("1", "2", "3"))
	assert.Zero(t, slept)
}

func TestRefreshChunkRunsConcurrently(t *testing.T) {
	var mu sync.Mutex
	inflight, peak := 0, 0

	fetch := func(ctx context.Context, token, id string) (domain.VacancyRecord, error) {
		mu.Lock()
		inflight++
		if inflight > peak {
			peak = inflight
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		inflight--
		mu.Unlock()
		return domain.VacancyRecord{ID: id}, nil
	}

	r := &Refresher{
		Store:     newFakeStore(),
		Fetch:     fetch,
		BatchSize: 4,
		Sleep:     func(ctx context.Context, d time.Duration) error { return nil },
	}

	ids := []string{"1", "2", "3", "4", "5", "6", "7", "8"}
	r.Refresh(context.Background(), "tok", ids, summariesMap(ids...))

	// Fetches within a chunk overlap, but in-flight work never exceeds the
	// chunk size.
	assert.Greater(t, peak, 1)
	assert.LessOrEqual(t, peak, 4)
}

func TestRefreshIsolatesItemFailure(t *testing.T) {
	st := newFakeStore()
	fetch := func(ctx context.Context, token, id string) (domain.VacancyRecord, error) {
		if id == "C" {
			return domain.VacancyRecord{}, errors.New("upstream 500")
		}
		return domain.VacancyRecord{ID: id, Description: "full"}, nil
	}

	r := &Refresher{
		Store:      st,
		Fetch:      fetch,
		BatchSize:  2,
		BatchDelay: time.Millisecond,
		Sleep:      func(ctx context.Context, d time.Duration) error { return nil },
	}

	ids := []string{"A", "B", "C", "D", "E"}
	out := r.Refresh(context.Background(), "tok", ids, summariesMap(ids...))

	require.Len(t, out, 5)
	for _, id := range []string{"A", "B", "D", "E"} {
		assert.False(t, out[id].Degraded, id)
		assert.Equal(t, "full", out[id].Record.Description)
	}

	// C falls back to its search summary and is not persisted.
	assert.True(t, out["C"].Degraded)
	assert.Equal(t, "title C", out["C"].Record.Title)
	assert.Empty(t, out["C"].Record.Description)
	assert.NotContains(t, st.upserts, "C")
	assert.ElementsMatch(t, []string{"A", "B", "D", "E"}, st.upserts)
}

func TestRefreshSetsTimestampsAndPersists(t *testing.T) {
	st := newFakeStore()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	r := &Refresher{
		Store:     st,
		Fetch:     okFetcher(0),
		BatchSize: 1,
		Now:       func() time.Time { return now },
	}

	out := r.Refresh(context.Background(), "tok", []string{"v1"}, summariesMap("v1"))

	rec := out["v1"].Record
	require.NotNil(t, rec.LastFullRefresh)
	assert.Equal(t, now, *rec.LastFullRefresh)
	assert.Equal(t, now, rec.CreatedAt)
	assert.Equal(t, now, rec.LastSeenInSearch)

	stored, err := st.GetBatch(context.Background(), []string{"v1"})
	require.NoError(t, err)
	assert.Equal(t, rec, stored["v1"])
}

func TestRefreshStoreWriteFailureStillServes(t *testing.T) {
	st := newFakeStore()
	st.putErr = errors.New("db locked")

	r := &Refresher{Store: st, Fetch: okFetcher(0), BatchSize: 1}
	out := r.Refresh(context.Background(), "tok", []string{"v1"}, summariesMap("v1"))

	require.Len(t, out, 1)
	assert.False(t, out["v1"].Degraded)
	assert.Equal(t, "fetched v1", out["v1"].Record.Title)
}

func TestRefreshCancellationFillsFallbacks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	r := &Refresher{
		Store:      newFakeStore(),
		Fetch:      okFetcher(0),
		BatchSize:  1,
		BatchDelay: time.Hour,
		Sleep: func(ctx context.Context, d time.Duration) error {
			cancel()
			return ctx.Err()
		},
	}

	ids := []string{"1", "2", "3"}
	out := r.Refresh(ctx, "tok", ids, summariesMap(ids...))

	// First chunk completed; the sleep before chunk two aborted the rest but
	// every id still has an entry.
	require.Len(t, out, 3)
	assert.False(t, out["1"].Degraded)
	assert.True(t, out["2"].Degraded)
	assert.True(t, out["3"].Degraded)
}

func TestRefreshEmptyInput(t *testing.T) {
	r := &Refresher{Store: newFakeStore(), Fetch: okFetcher(0), BatchSize: 3}
	out := r.Refresh(context.Background(), "tok", nil, nil)
	assert.Empty(t, out)
}
