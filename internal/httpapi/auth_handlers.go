package httpapi

import (
	"encoding/json"
	"log"
	"net/http"

	"hhagent-engine/internal/secrets"
)

// AuthHandler owns the OAuth token plumbing. Tokens land in the OS keyring
// only; they are never echoed back in responses.
type AuthHandler struct {
	Deps Deps
}

type exchangeRequest struct {
	HHUserID string `json:"hh_user_id"`
	Code     string `json:"code"`
}

// Exchange trades an authorization code for tokens and stores them.
func (h AuthHandler) Exchange(w http.ResponseWriter, r *http.Request) {
	var req exchangeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.HHUserID == "" || req.Code == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_fields", "hh_user_id and code are required")
		return
	}

	cfg := h.Deps.cfg()
	tok, err := h.Deps.HH.ExchangeCode(r.Context(), req.Code, cfg.HH.RedirectURI)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "oauth_exchange_failed", err.Error())
		return
	}

	if err := secrets.SetAccessToken(req.HHUserID, tok.AccessToken); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keyring_error", err.Error())
		return
	}
	if tok.RefreshToken != "" {
		if err := secrets.SetRefreshToken(req.HHUserID, tok.RefreshToken); err != nil {
			WriteError(w, r, http.StatusInternalServerError, "keyring_error", err.Error())
			return
		}
	}
	writeJSON(w, map[string]any{"ok": true, "expires_in": tok.ExpiresIn})
}

type refreshRequest struct {
	HHUserID string `json:"hh_user_id"`
}

// Refresh rotates the token pair using the stored refresh token.
func (h AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.HHUserID == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_user", "hh_user_id is required")
		return
	}

	refresh, err := secrets.GetRefreshToken(req.HHUserID)
	if err != nil {
		WriteError(w, r, http.StatusUnauthorized, "no_refresh_token", err.Error())
		return
	}

	tok, err := h.Deps.HH.RefreshToken(r.Context(), refresh)
	if err != nil {
		WriteError(w, r, http.StatusBadGateway, "oauth_refresh_failed", err.Error())
		return
	}

	if err := secrets.SetAccessToken(req.HHUserID, tok.AccessToken); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keyring_error", err.Error())
		return
	}
	if tok.RefreshToken != "" {
		if err := secrets.SetRefreshToken(req.HHUserID, tok.RefreshToken); err != nil {
			WriteError(w, r, http.StatusInternalServerError, "keyring_error", err.Error())
			return
		}
	}
	writeJSON(w, map[string]any{"ok": true, "expires_in": tok.ExpiresIn})
}

// Revoke invalidates the access token upstream (best effort) and removes the
// stored pair from the keyring.
func (h AuthHandler) Revoke(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.HHUserID == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_user", "hh_user_id is required")
		return
	}

	if token, err := h.Deps.TokenFor(req.HHUserID); err == nil {
		if err := h.Deps.HH.RevokeToken(r.Context(), token); err != nil {
			log.Printf("[auth] upstream revoke failed for %s: %v", req.HHUserID, err)
		}
	}
	if err := secrets.DeleteTokens(req.HHUserID); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keyring_error", err.Error())
		return
	}
	writeJSON(w, map[string]any{"ok": true})
}

type setTokenRequest struct {
	HHUserID     string `json:"hh_user_id"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// SetToken stores tokens obtained out of band (e.g. pasted from a dev
// console) straight into the keyring.
func (h AuthHandler) SetToken(w http.ResponseWriter, r *http.Request) {
	var req setTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}
	if req.HHUserID == "" || req.AccessToken == "" {
		WriteError(w, r, http.StatusBadRequest, "missing_fields", "hh_user_id and access_token are required")
		return
	}

	if err := secrets.SetAccessToken(req.HHUserID, req.AccessToken); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "keyring_error", err.Error())
		return
	}
	if req.RefreshToken != "" {
		if err := secrets.SetRefreshToken(req.HHUserID, req.RefreshToken); err != nil {
			WriteError(w, r, http.StatusInternalServerError, "keyring_error", err.Error())
			return
		}
	}
	writeJSON(w, map[string]any{"ok": true})
}
