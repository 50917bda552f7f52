package domain

import "time"

type ApplicationStatus string

const (
	ApplicationPending ApplicationStatus = "pending"
	ApplicationSuccess ApplicationStatus = "success"
	ApplicationFailed  ApplicationStatus = "failed"
)

// Application records one apply attempt. Only success-status rows count as
// "applied" when de-duplicating search results.
type Application struct {
	ID        int64             `json:"id"`
	UserID    string            `json:"user_id"`
	VacancyID string            `json:"vacancy_id"`
	ResumeID  string            `json:"resume_id,omitempty"`
	Message   string            `json:"message,omitempty"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt time.Time         `json:"created_at"`
}
