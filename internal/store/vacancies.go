package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"hhagent-engine/internal/domain"
)

// Vacancies is the posting store: last-known full detail per HH vacancy id.
type Vacancies struct {
	DB *sql.DB
}

const vacancyCols = `id, title, employer, area, salary_from, salary_to, salary_currency,
description, key_skills, experience, employment, schedule, full_data,
created_at, last_full_refresh, last_seen_in_search`

// GetBatch looks up all ids in one query. Ids absent from the store are
// simply missing from the returned map.
func (s Vacancies) GetBatch(ctx context.Context, ids []string) (map[string]domain.VacancyRecord, error) {
	out := make(map[string]domain.VacancyRecord, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM vacancies WHERE id IN (%s);`,
		vacancyCols, placeholders(len(ids)))

	rows, err := s.DB.QueryContext(ctx, query, toAny(ids)...)
	if err != nil {
		return nil, fmt.Errorf("select vacancies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		rec, err := scanVacancy(rows)
		if err != nil {
			return nil, err
		}
		out[rec.ID] = rec
	}
	return out, rows.Err()
}

// Upsert replaces prior detail for the vacancy id, keeping the original
// created_at for existing rows.
func (s Vacancies) Upsert(ctx context.Context, rec domain.VacancyRecord) error {
	skills, _ := json.Marshal(rec.KeySkills)
	if rec.KeySkills == nil {
		skills = []byte(`[]`)
	}
	full := rec.FullData
	if len(full) == 0 {
		full = []byte(`{}`)
	}

	var salaryFrom, salaryTo any
	currency := ""
	if rec.Salary != nil {
		if rec.Salary.From != nil {
			salaryFrom = *rec.Salary.From
		}
		if rec.Salary.To != nil {
			salaryTo = *rec.Salary.To
		}
		currency = rec.Salary.Currency
	}

	var refresh any
	if rec.LastFullRefresh != nil {
		refresh = rec.LastFullRefresh.UTC().Format(time.RFC3339)
	}

	_, err := s.DB.ExecContext(ctx, `
INSERT INTO vacancies (`+vacancyCols+`)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT(id) DO UPDATE SET
  title=excluded.title, employer=excluded.employer, area=excluded.area,
  salary_from=excluded.salary_from, salary_to=excluded.salary_to,
  salary_currency=excluded.salary_currency, description=excluded.description,
  key_skills=excluded.key_skills, experience=excluded.experience,
  employment=excluded.employment, schedule=excluded.schedule,
  full_data=excluded.full_data, last_full_refresh=excluded.last_full_refresh,
  last_seen_in_search=excluded.last_seen_in_search;`,
		rec.ID, rec.Title, rec.Employer, rec.Area, salaryFrom, salaryTo, currency,
		rec.Description, string(skills), rec.Experience, rec.Employment, rec.Schedule,
		string(full),
		rec.CreatedAt.UTC().Format(time.RFC3339),
		refresh,
		rec.LastSeenInSearch.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("upsert vacancy %s: %w", rec.ID, err)
	}
	return nil
}

// TouchLastSeen bulk-updates last_seen_in_search for ids already in the
// store. Ids not yet stored get their timestamp when first upserted.
func (s Vacancies) TouchLastSeen(ctx context.Context, ids []string, now time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	args := append([]any{now.UTC().Format(time.RFC3339)}, toAny(ids)...)
	_, err := s.DB.ExecContext(ctx,
		`UPDATE vacancies SET last_seen_in_search = ? WHERE id IN (`+placeholders(len(ids))+`);`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("touch last_seen: %w", err)
	}
	return nil
}

// DeleteUnseen removes vacancies not seen in any search since the cutoff and
// with no application rows. Returns how many were deleted.
func (s Vacancies) DeleteUnseen(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
DELETE FROM vacancies
WHERE last_seen_in_search < ?
  AND id NOT IN (SELECT vacancy_id FROM applications);`,
		cutoff.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("delete unseen vacancies: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func scanVacancy(rows *sql.Rows) (domain.VacancyRecord, error) {
	var rec domain.VacancyRecord
	var salaryFrom, salaryTo sql.NullInt64
	var currency, skillsJSON, fullJSON string
	var createdAt, lastSeen string
	var refresh sql.NullString

	if err := rows.Scan(
		&rec.ID, &rec.Title, &rec.Employer, &rec.Area,
		&salaryFrom, &salaryTo, &currency,
		&rec.Description, &skillsJSON, &rec.Experience, &rec.Employment, &rec.Schedule,
		&fullJSON, &createdAt, &refresh, &lastSeen,
	); err != nil {
		return rec, fmt.Errorf("scan vacancy: %w", err)
	}

	if salaryFrom.Valid || salaryTo.Valid || currency != "" {
		sal := &domain.Salary{Currency: currency}
		if salaryFrom.Valid {
			v := int(salaryFrom.Int64)
			sal.From = &v
		}
		if salaryTo.Valid {
			v := int(salaryTo.Int64)
			sal.To = &v
		}
		rec.Salary = sal
	}

	_ = json.Unmarshal([]byte(skillsJSON), &rec.KeySkills)
	rec.FullData = json.RawMessage(fullJSON)

	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.LastSeenInSearch, _ = time.Parse(time.RFC3339, lastSeen)
	if refresh.Valid {
		if t, err := time.Parse(time.RFC3339, refresh.String); err == nil {
			rec.LastFullRefresh = &t
		}
	}
	return rec, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toAny(ids []string) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}
