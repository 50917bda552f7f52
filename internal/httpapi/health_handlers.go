package httpapi

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"hhagent-engine/internal/events"
)

type HealthHandler struct {
	DB  *sql.DB
	Hub *events.Hub
}

func (h HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	dbOK := h.DB.PingContext(ctx) == nil
	status := http.StatusOK
	if !dbOK {
		status = http.StatusServiceUnavailable
	}
	WriteJSON(w, status, map[string]any{
		"ok":          dbOK,
		"db":          dbOK,
		"subscribers": h.Hub.Subscribers(),
	})
}
