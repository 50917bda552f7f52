package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"hhagent-engine/internal/domain"
)

// Applications records apply attempts and answers the "already applied"
// question for search de-duplication.
type Applications struct {
	DB *sql.DB
}

// AppliedSet returns the subset of ids the user has a success-status
// application for. Pending and failed attempts do not count.
func (s Applications) AppliedSet(ctx context.Context, userID string, ids []string) (map[string]struct{}, error) {
	out := make(map[string]struct{})
	if len(ids) == 0 {
		return out, nil
	}

	args := append([]any{userID, string(domain.ApplicationSuccess)}, toAny(ids)...)
	rows, err := s.DB.QueryContext(ctx, `
SELECT DISTINCT vacancy_id FROM applications
WHERE user_id = ? AND status = ? AND vacancy_id IN (`+placeholders(len(ids))+`);`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("select applied set: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan applied id: %w", err)
		}
		out[id] = struct{}{}
	}
	return out, rows.Err()
}

func (s Applications) Create(ctx context.Context, app domain.Application) (int64, error) {
	res, err := s.DB.ExecContext(ctx, `
INSERT INTO applications (user_id, vacancy_id, resume_id, message, status, created_at)
VALUES (?,?,?,?,?,?);`,
		app.UserID, app.VacancyID, app.ResumeID, app.Message, string(app.Status),
		app.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("insert application: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

func (s Applications) SetStatus(ctx context.Context, id int64, status domain.ApplicationStatus) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE applications SET status = ? WHERE id = ?;`, string(status), id)
	if err != nil {
		return fmt.Errorf("update application %d: %w", id, err)
	}
	return nil
}

// ListByUser returns the user's applications, newest first.
func (s Applications) ListByUser(ctx context.Context, userID string) ([]domain.Application, error) {
	rows, err := s.DB.QueryContext(ctx, `
SELECT id, user_id, vacancy_id, resume_id, message, status, created_at
FROM applications WHERE user_id = ? ORDER BY created_at DESC;`, userID)
	if err != nil {
		return nil, fmt.Errorf("select applications: %w", err)
	}
	defer rows.Close()

	var out []domain.Application
	for rows.Next() {
		var app domain.Application
		var status, createdAt string
		if err := rows.Scan(&app.ID, &app.UserID, &app.VacancyID, &app.ResumeID,
			&app.Message, &status, &createdAt); err != nil {
			return nil, fmt.Errorf("scan application: %w", err)
		}
		app.Status = domain.ApplicationStatus(status)
		app.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, app)
	}
	return out, rows.Err()
}
