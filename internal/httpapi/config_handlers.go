package httpapi

import (
	"encoding/json"
	"net/http"
	"sync/atomic"

	"hhagent-engine/internal/config"
	"hhagent-engine/internal/events"
)

type ConfigHandler struct {
	CfgVal      *atomic.Value
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
	Hub         *events.Hub
}

// Get returns the active config. The OAuth client secret is masked; it can be
// set via PUT but never read back.
func (h ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	cfg := h.CfgVal.Load().(config.Config)
	if cfg.HH.ClientSecret != "" {
		cfg.HH.ClientSecret = "***"
	}
	writeJSON(w, cfg)
}

// Put validates, saves atomically, reloads from disk, and swaps the active
// config so in-flight tuning (batch size, delay, freshness) applies to the
// next request.
func (h ConfigHandler) Put(w http.ResponseWriter, r *http.Request) {
	var incoming config.Config
	if err := json.NewDecoder(r.Body).Decode(&incoming); err != nil {
		WriteError(w, r, http.StatusBadRequest, "invalid_json", err.Error())
		return
	}

	// A masked secret in the payload means "keep the stored one".
	current := h.CfgVal.Load().(config.Config)
	if incoming.HH.ClientSecret == "***" {
		incoming.HH.ClientSecret = current.HH.ClientSecret
	}

	normalized, vr := config.NormalizeAndValidate(incoming)
	if !vr.OK() {
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]any{"validation": vr})
		return
	}

	if err := config.SaveAtomic(h.UserCfgPath, normalized); err != nil {
		WriteError(w, r, http.StatusInternalServerError, "save_failed", err.Error())
		return
	}

	loaded, err := h.LoadCfg()
	if err != nil {
		WriteError(w, r, http.StatusInternalServerError, "reload_failed", err.Error())
		return
	}
	h.CfgVal.Store(loaded)

	reqID := RequestIDFrom(r.Context())
	h.Hub.Publish(events.MakeEvent(reqID, events.TypeConfigUpdated, 1, nil))

	writeJSON(w, map[string]any{"ok": true, "validation": vr})
}

func (h ConfigHandler) Path(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"path": h.UserCfgPath})
}
