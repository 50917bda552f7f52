package httpapi

import "net/http"

// NewMux wires every endpoint against the shared Deps. Middleware is the
// caller's job (see Chain).
func NewMux(d Deps) *http.ServeMux {
	mux := http.NewServeMux()

	// Search + enrichment
	sh := SearchHandler{Deps: d}
	mux.HandleFunc("/search", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.Search,
	}))
	mux.HandleFunc("/search/by-url", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: sh.SearchByURL,
	}))

	// Vacancies: detail and apply, /vacancies/{id}[/apply]
	vh := VacanciesHandler{Deps: d}
	mux.HandleFunc("/vacancies/", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  vh.DetailByPath,
		http.MethodPost: vh.ApplyByPath,
	}))
	mux.HandleFunc("/applications", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: vh.ListApplications,
	}))

	// Reference data (cached)
	rh := RefDataHandler{Deps: d}
	mux.HandleFunc("/dictionaries", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Dictionaries,
	}))
	mux.HandleFunc("/areas", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Areas,
	}))
	mux.HandleFunc("/resumes", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.Resumes,
	}))
	mux.HandleFunc("/saved-searches", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: rh.SavedSearches,
	}))

	// OAuth token plumbing
	ah := AuthHandler{Deps: d}
	mux.HandleFunc("/auth/token", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Exchange,
	}))
	mux.HandleFunc("/auth/refresh", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Refresh,
	}))
	mux.HandleFunc("/auth/revoke", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.Revoke,
	}))
	mux.HandleFunc("/api/secrets/hh-token", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ah.SetToken,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Hub:         d.Hub,
	}
	mux.HandleFunc("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	mux.HandleFunc("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	mux.HandleFunc("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	// Maintenance
	dh := DBHandler{DB: d.DB}
	mux.HandleFunc("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dh.Checkpoint,
	}))

	hth := HealthHandler{DB: d.DB, Hub: d.Hub}
	mux.HandleFunc("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hth.Health,
	}))

	return mux
}
