package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hhagent-engine/internal/domain"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, Migrate(db.Pool))
	return db
}

func sampleRecord(id string, refreshed time.Time) domain.VacancyRecord {
	from := 100000
	return domain.VacancyRecord{
		ID:               id,
		Title:            "Go developer",
		Employer:         "Acme",
		Area:             "Moscow",
		Salary:           &domain.Salary{From: &from, Currency: "RUR"},
		Description:      "Responsibilities:\n- write Go",
		KeySkills:        []string{"Go", "SQL"},
		Experience:       "between1And3",
		Employment:       "full",
		Schedule:         "remote",
		FullData:         []byte(`{"id":"` + id + `"}`),
		CreatedAt:        refreshed,
		LastFullRefresh:  &refreshed,
		LastSeenInSearch: refreshed,
	}
}

func TestVacanciesUpsertAndGetBatch(t *testing.T) {
	db := testDB(t)
	v := Vacancies{DB: db.Pool}
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, v.Upsert(ctx, sampleRecord("101", now)))
	require.NoError(t, v.Upsert(ctx, sampleRecord("102", now)))

	got, err := v.GetBatch(ctx, []string{"101", "102", "103"})
	require.NoError(t, err)
	require.Len(t, got, 2)

	rec := got["101"]
	assert.Equal(t, "Go developer", rec.Title)
	assert.Equal(t, []string{"Go", "SQL"}, rec.KeySkills)
	require.NotNil(t, rec.Salary)
	require.NotNil(t, rec.Salary.From)
	assert.Equal(t, 100000, *rec.Salary.From)
	assert.Nil(t, rec.Salary.To)
	require.NotNil(t, rec.LastFullRefresh)
	assert.True(t, rec.LastFullRefresh.Equal(now))
	assert.JSONEq(t, `{"id":"101"}`, string(rec.FullData))
}

func TestVacanciesUpsertKeepsCreatedAt(t *testing.T) {
	db := testDB(t)
	v := Vacancies{DB: db.Pool}
	ctx := context.Background()

	first := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, v.Upsert(ctx, sampleRecord("101", first)))

	later := first.Add(24 * time.Hour)
	updated := sampleRecord("101", later)
	updated.Title = "Senior Go developer"
	require.NoError(t, v.Upsert(ctx, updated))

	got, err := v.GetBatch(ctx, []string{"101"})
	require.NoError(t, err)
	rec := got["101"]

	assert.Equal(t, "Senior Go developer", rec.Title)
	assert.True(t, rec.CreatedAt.Equal(first), "created_at must survive upsert")
	assert.True(t, rec.LastFullRefresh.Equal(later))
}

func TestVacanciesGetBatchEmptyIDs(t *testing.T) {
	db := testDB(t)
	v := Vacancies{DB: db.Pool}

	got, err := v.GetBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestVacanciesNeverRefreshedRoundTrip(t *testing.T) {
	db := testDB(t)
	v := Vacancies{DB: db.Pool}
	ctx := context.Background()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := sampleRecord("201", now)
	rec.LastFullRefresh = nil
	require.NoError(t, v.Upsert(ctx, rec))

	got, err := v.GetBatch(ctx, []string{"201"})
	require.NoError(t, err)
	assert.Nil(t, got["201"].LastFullRefresh)
}

func TestVacanciesTouchLastSeen(t *testing.T) {
	db := testDB(t)
	v := Vacancies{DB: db.Pool}
	ctx := context.Background()

	old := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, v.Upsert(ctx, sampleRecord("101", old)))

	seen := old.Add(48 * time.Hour)
	require.NoError(t, v.TouchLastSeen(ctx, []string{"101", "missing"}, seen))

	got, err := v.GetBatch(ctx, []string{"101"})
	require.NoError(t, err)
	assert.True(t, got["101"].LastSeenInSearch.Equal(seen))
}

func TestVacanciesDeleteUnseenSparesApplied(t *testing.T) {
	db := testDB(t)
	v := Vacancies{DB: db.Pool}
	a := Applications{DB: db.Pool}
	ctx := context.Background()

	old := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, v.Upsert(ctx, sampleRecord("stale", old)))
	require.NoError(t, v.Upsert(ctx, sampleRecord("applied", old)))
	require.NoError(t, v.Upsert(ctx, sampleRecord("recent", recent)))

	_, err := a.Create(ctx, domain.Application{
		UserID: "u1", VacancyID: "applied", Status: domain.ApplicationSuccess, CreatedAt: old,
	})
	require.NoError(t, err)

	n, err := v.DeleteUnseen(ctx, old.Add(time.Hour))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	got, err := v.GetBatch(ctx, []string{"stale", "applied", "recent"})
	require.NoError(t, err)
	assert.NotContains(t, got, "stale")
	assert.Contains(t, got, "applied")
	assert.Contains(t, got, "recent")
}

func TestApplicationsAppliedSet(t *testing.T) {
	db := testDB(t)
	a := Applications{DB: db.Pool}
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	mk := func(user, vac string, status domain.ApplicationStatus) {
		_, err := a.Create(ctx, domain.Application{
			UserID: user, VacancyID: vac, Status: status, CreatedAt: now,
		})
		require.NoError(t, err)
	}

	mk("u1", "v1", domain.ApplicationSuccess)
	mk("u1", "v2", domain.ApplicationFailed)
	mk("u1", "v3", domain.ApplicationPending)
	mk("u2", "v4", domain.ApplicationSuccess)

	set, err := a.AppliedSet(ctx, "u1", []string{"v1", "v2", "v3", "v4"})
	require.NoError(t, err)

	// Only u1's successful applications count.
	assert.Equal(t, map[string]struct{}{"v1": {}}, set)
}

func TestApplicationsAppliedSetEmptyIDs(t *testing.T) {
	db := testDB(t)
	a := Applications{DB: db.Pool}

	set, err := a.AppliedSet(context.Background(), "u1", nil)
	require.NoError(t, err)
	assert.Empty(t, set)
}

func TestApplicationsSetStatusAndList(t *testing.T) {
	db := testDB(t)
	a := Applications{DB: db.Pool}
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	id, err := a.Create(ctx, domain.Application{
		UserID: "u1", VacancyID: "v1", ResumeID: "r1",
		Message: "hi", Status: domain.ApplicationPending, CreatedAt: now,
	})
	require.NoError(t, err)

	require.NoError(t, a.SetStatus(ctx, id, domain.ApplicationSuccess))

	apps, err := a.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, domain.ApplicationSuccess, apps[0].Status)
	assert.Equal(t, "v1", apps[0].VacancyID)
	assert.Equal(t, "r1", apps[0].ResumeID)
}
