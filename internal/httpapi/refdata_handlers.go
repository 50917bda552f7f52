package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"hhagent-engine/internal/cache"
)

// RefDataHandler serves HH reference data through the Redis cache.
// Dictionaries and areas change rarely and are cached long; resumes and saved
// searches are per-user and cached for a minute to absorb UI refreshes.
type RefDataHandler struct {
	Deps Deps
}

func (h RefDataHandler) Dictionaries(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "dictionaries", cache.TTLReference, func(ctx context.Context) (json.RawMessage, error) {
		return h.Deps.HH.Dictionaries(ctx)
	})
}

func (h RefDataHandler) Areas(w http.ResponseWriter, r *http.Request) {
	h.cached(w, r, "areas", cache.TTLReference, func(ctx context.Context) (json.RawMessage, error) {
		return h.Deps.HH.Areas(ctx)
	})
}

func (h RefDataHandler) Resumes(w http.ResponseWriter, r *http.Request) {
	userID, token, ok := h.userToken(w, r)
	if !ok {
		return
	}
	h.cached(w, r, cache.ResumesKey(userID), cache.TTLPerUser, func(ctx context.Context) (json.RawMessage, error) {
		return h.Deps.HH.Resumes(ctx, token)
	})
}

func (h RefDataHandler) SavedSearches(w http.ResponseWriter, r *http.Request) {
	userID, token, ok := h.userToken(w, r)
	if !ok {
		return
	}
	h.cached(w, r, cache.SavedSearchesKey(userID), cache.TTLPerUser, func(ctx context.Context) (json.RawMessage, error) {
		return h.Deps.HH.SavedSearches(ctx, token)
	})
}

func (h RefDataHandler) userToken(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	userID := r.URL.Query().Get("hh_user_id")
	if userID == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_user", "hh_user_id is required")
		return "", "", false
	}
	token, err := h.Deps.TokenFor(userID)
	if err != nil {
		WriteError(w, r, http.StatusUnauthorized, "token_expired", err.Error())
		return "", "", false
	}
	return userID, token, true
}

// cached serves from Redis when possible; a miss goes upstream and backfills.
// A nil Cache degrades to pass-through.
func (h RefDataHandler) cached(w http.ResponseWriter, r *http.Request, key string, ttl time.Duration, fetch func(context.Context) (json.RawMessage, error)) {
	ctx := r.Context()

	if b := h.Deps.Cache.GetJSON(ctx, key); b != nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(b)
		return
	}

	b, err := fetch(ctx)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "upstream_error", err.Error())
		return
	}
	h.Deps.Cache.SetJSON(ctx, key, b, ttl)

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(b)
}
