package httpapi

import (
	"encoding/json"
	"net/http"
	"net/url"

	"hhagent-engine/internal/enrich"
	"hhagent-engine/internal/events"
)

type SearchHandler struct {
	Deps Deps
}

type searchRequest struct {
	HHUserID string `json:"hh_user_id"`
	// Params are passed through to the HH search API (text, area, page,
	// per_page, ...).
	Params map[string]string `json:"params,omitempty"`
	// SearchURL runs a saved-search URL instead of Params.
	SearchURL     string `json:"search_url,omitempty"`
	FilterApplied bool   `json:"filter_applied"`
}

// Search runs the full search-and-enrich pipeline and returns the ordered,
// annotated vacancy list with pagination metadata.
func (h SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	h.run(w, r, req)
}

// SearchByURL runs a saved-search URL through the same pipeline.
func (h SearchHandler) SearchByURL(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.SearchURL == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_url", "search_url is required")
		return
	}
	h.run(w, r, req)
}

func (h SearchHandler) run(w http.ResponseWriter, r *http.Request, req searchRequest) {
	if req.HHUserID == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_user", "hh_user_id is required")
		return
	}

	token, err := h.Deps.TokenFor(req.HHUserID)
	if err != nil {
		WriteError(w, r, http.StatusUnauthorized, "token_expired", err.Error())
		return
	}

	params := url.Values{}
	for k, v := range req.Params {
		params.Set(k, v)
	}

	svc := newEnrichService(h.Deps)
	result, err := svc.SearchAndEnrich(r.Context(), enrich.SearchRequest{
		Token:         token,
		UserID:        req.HHUserID,
		Params:        params,
		SearchURL:     req.SearchURL,
		FilterApplied: req.FilterApplied,
	})
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "upstream_search_failed", err.Error())
		return
	}

	degraded := 0
	for _, it := range result.Items {
		if it.Degraded {
			degraded++
		}
	}
	reqID := RequestIDFrom(r.Context())
	h.Deps.Hub.Publish(events.MakeEvent(reqID, events.TypeSearchEnriched, 1, map[string]any{
		"found":    result.Found,
		"items":    len(result.Items),
		"degraded": degraded,
	}))

	writeJSON(w, result)
}

// newEnrichService builds the engine against the config current at request
// time, so batch tuning changes apply without a restart.
func newEnrichService(d Deps) *enrich.Service {
	cfg := d.cfg()
	return enrich.NewService(
		d.Vacancies,
		d.Applications,
		d.HH,
		d.HH.Vacancy,
		enrich.Options{
			BatchSize:       cfg.Refresh.BatchSize,
			BatchDelay:      cfg.BatchDelay(),
			FreshnessWindow: cfg.FreshnessWindow(),
		},
	)
}
