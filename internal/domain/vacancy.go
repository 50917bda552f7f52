package domain

import (
	"encoding/json"
	"time"
)

// Salary as reported by HH; any bound may be absent.
type Salary struct {
	From     *int   `json:"from,omitempty"`
	To       *int   `json:"to,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// VacancySummary is the minimal per-item shape a search page carries.
// Full detail requires a separate per-vacancy call.
type VacancySummary struct {
	ID       string  `json:"id"`
	Title    string  `json:"name"`
	Employer string  `json:"employer_name,omitempty"`
	Area     string  `json:"area_name,omitempty"`
	Salary   *Salary `json:"salary,omitempty"`
}

// VacancyRecord is the last-known full detail of a vacancy as kept in the
// store. FullData preserves the raw upstream payload for fields not modeled
// explicitly.
type VacancyRecord struct {
	ID          string   `json:"id"`
	Title       string   `json:"name"`
	Employer    string   `json:"employer_name,omitempty"`
	Area        string   `json:"area_name,omitempty"`
	Salary      *Salary  `json:"salary,omitempty"`
	Description string   `json:"description,omitempty"`
	KeySkills   []string `json:"key_skills,omitempty"`
	Experience  string   `json:"experience,omitempty"`
	Employment  string   `json:"employment,omitempty"`
	Schedule    string   `json:"schedule,omitempty"`

	FullData json.RawMessage `json:"full_data,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	// LastFullRefresh is nil only for records that were never successfully
	// enriched from upstream.
	LastFullRefresh  *time.Time `json:"last_full_refresh,omitempty"`
	LastSeenInSearch time.Time  `json:"last_seen_in_search"`
}

// FallbackRecord builds a degraded record from search-summary fields only.
// It is served for the current response when the detail fetch fails and is
// never written to the store.
func FallbackRecord(s VacancySummary) VacancyRecord {
	return VacancyRecord{
		ID:       s.ID,
		Title:    s.Title,
		Employer: s.Employer,
		Area:     s.Area,
		Salary:   s.Salary,
	}
}

// EnrichedVacancy is a single row of the final assembled list.
type EnrichedVacancy struct {
	VacancyRecord
	Applied bool `json:"applied"`
	// Degraded marks rows whose detail fetch failed this request; the
	// description is unavailable but the row is still presented.
	Degraded bool `json:"degraded,omitempty"`
}

// SearchPage is one page of upstream search results with pagination metadata
// passed through unchanged (found is corrected after applied-filtering).
type SearchPage struct {
	Items   []VacancySummary `json:"items"`
	Found   int              `json:"found"`
	Pages   int              `json:"pages"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}
