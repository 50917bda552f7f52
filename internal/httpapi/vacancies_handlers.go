package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"hhagent-engine/internal/domain"
	"hhagent-engine/internal/events"
	"hhagent-engine/internal/hh"
)

type VacanciesHandler struct {
	Deps Deps
}

// DetailByPath serves GET /vacancies/{id}: store-cached full detail,
// refreshed from upstream when stale.
func (h VacanciesHandler) DetailByPath(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/vacancies/")
	if id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, "invalid_id", "expected /vacancies/{id}")
		return
	}

	userID := r.URL.Query().Get("hh_user_id")
	if userID == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_user", "hh_user_id is required")
		return
	}
	token, err := h.Deps.TokenFor(userID)
	if err != nil {
		WriteError(w, r, http.StatusUnauthorized, "token_expired", err.Error())
		return
	}

	rec, refreshed, err := newEnrichService(h.Deps).Detail(r.Context(), token, id)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "detail_fetch_failed", err.Error())
		return
	}
	if refreshed {
		reqID := RequestIDFrom(r.Context())
		h.Deps.Hub.Publish(events.MakeEvent(reqID, events.TypeVacancyRefreshed, 1, map[string]any{
			"vacancy_id": id,
		}))
	}
	writeJSON(w, rec)
}

type applyRequest struct {
	HHUserID string `json:"hh_user_id"`
	ResumeID string `json:"resume_id"`
	Message  string `json:"message"`
}

// ApplyByPath serves POST /vacancies/{id}/apply: sends the negotiation to HH
// and records the attempt so future searches can skip the posting.
func (h VacanciesHandler) ApplyByPath(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/vacancies/")
	id, ok := strings.CutSuffix(rest, "/apply")
	if !ok || id == "" || strings.Contains(id, "/") {
		WriteError(w, r, http.StatusBadRequest, "invalid_path", "expected /vacancies/{id}/apply")
		return
	}

	var req applyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.HHUserID == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_user", "hh_user_id is required")
		return
	}

	token, err := h.Deps.TokenFor(req.HHUserID)
	if err != nil {
		WriteError(w, r, http.StatusUnauthorized, "token_expired", err.Error())
		return
	}

	appID, err := h.Deps.Applications.Create(r.Context(), domain.Application{
		UserID:    req.HHUserID,
		VacancyID: id,
		ResumeID:  req.ResumeID,
		Message:   req.Message,
		Status:    domain.ApplicationPending,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}

	status := domain.ApplicationSuccess
	applyErr := h.Deps.HH.Apply(r.Context(), token, id, req.ResumeID, req.Message)
	if applyErr != nil && !errors.Is(applyErr, hh.ErrAlreadyApplied) {
		status = domain.ApplicationFailed
	}
	if err := h.Deps.Applications.SetStatus(r.Context(), appID, status); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}

	if applyErr != nil && !errors.Is(applyErr, hh.ErrAlreadyApplied) {
		WriteError(w, r, http.StatusBadGateway, "apply_failed", applyErr.Error())
		return
	}

	reqID := RequestIDFrom(r.Context())
	h.Deps.Hub.Publish(events.MakeEvent(reqID, events.TypeApplicationCreated, 1, map[string]any{
		"vacancy_id": id,
		"status":     string(status),
	}))
	writeJSON(w, map[string]any{"id": appID, "status": string(status)})
}

// ListApplications serves GET /applications?hh_user_id=...
func (h VacanciesHandler) ListApplications(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("hh_user_id")
	if userID == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_user", "hh_user_id is required")
		return
	}
	apps, err := h.Deps.Applications.ListByUser(r.Context(), userID)
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "store_error", err.Error())
		return
	}
	if apps == nil {
		apps = []domain.Application{}
	}
	writeJSON(w, apps)
}
