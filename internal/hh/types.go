package hh

import (
	"encoding/json"

	"hhagent-engine/internal/domain"
	"hhagent-engine/internal/htmltext"
)

// Wire shapes for the HH API. Only the fields the engine models are parsed;
// the raw payload is preserved alongside.

type namedRef struct {
	Name string `json:"name"`
}

type salary struct {
	From     *int   `json:"from"`
	To       *int   `json:"to"`
	Currency string `json:"currency"`
}

type searchItem struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Employer *namedRef `json:"employer"`
	Area     *namedRef `json:"area"`
	Salary   *salary   `json:"salary"`
}

type searchResponse struct {
	Items   []searchItem `json:"items"`
	Found   int          `json:"found"`
	Pages   int          `json:"pages"`
	Page    int          `json:"page"`
	PerPage int          `json:"per_page"`
}

type vacancyPayload struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Employer    *namedRef  `json:"employer"`
	Area        *namedRef  `json:"area"`
	Salary      *salary    `json:"salary"`
	Description string     `json:"description"`
	KeySkills   []namedRef `json:"key_skills"`
	Experience  *namedRef  `json:"experience"`
	Employment  *namedRef  `json:"employment"`
	Schedule    *namedRef  `json:"schedule"`
}

func (s *salary) toDomain() *domain.Salary {
	if s == nil {
		return nil
	}
	return &domain.Salary{From: s.From, To: s.To, Currency: s.Currency}
}

func refName(r *namedRef) string {
	if r == nil {
		return ""
	}
	return r.Name
}

func (i searchItem) toSummary() domain.VacancySummary {
	return domain.VacancySummary{
		ID:       i.ID,
		Title:    i.Name,
		Employer: refName(i.Employer),
		Area:     refName(i.Area),
		Salary:   i.Salary.toDomain(),
	}
}

func (r searchResponse) toPage() domain.SearchPage {
	items := make([]domain.VacancySummary, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, it.toSummary())
	}
	return domain.SearchPage{
		Items:   items,
		Found:   r.Found,
		Pages:   r.Pages,
		Page:    r.Page,
		PerPage: r.PerPage,
	}
}

// toRecord maps a detail payload to the stored shape. The HTML description is
// normalized to plain text; raw is kept verbatim as the opaque full payload.
func (v vacancyPayload) toRecord(raw []byte) domain.VacancyRecord {
	skills := make([]string, 0, len(v.KeySkills))
	for _, s := range v.KeySkills {
		skills = append(skills, s.Name)
	}
	return domain.VacancyRecord{
		ID:          v.ID,
		Title:       v.Name,
		Employer:    refName(v.Employer),
		Area:        refName(v.Area),
		Salary:      v.Salary.toDomain(),
		Description: htmltext.Extract(v.Description),
		KeySkills:   skills,
		Experience:  refName(v.Experience),
		Employment:  refName(v.Employment),
		Schedule:    refName(v.Schedule),
		FullData:    json.RawMessage(raw),
	}
}

// TokenResponse is the OAuth token endpoint's answer.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}
