package httpapi

import (
	"database/sql"
	"sync/atomic"

	"hhagent-engine/internal/cache"
	"hhagent-engine/internal/config"
	"hhagent-engine/internal/events"
	"hhagent-engine/internal/hh"
	"hhagent-engine/internal/store"
)

type Deps struct {
	DB  *sql.DB
	Hub *events.Hub

	Vacancies    store.Vacancies
	Applications store.Applications

	HH    *hh.Client
	Cache *cache.Cache // may be nil; callers fall through to upstream

	// Atomic store of config.Config; handlers read the current value per
	// request so PUT /config takes effect immediately.
	CfgVal      *atomic.Value
	UserCfgPath string
	LoadCfg     func() (config.Config, error)

	// TokenFor resolves the HH access token for a user (keyring-backed;
	// injected for testability).
	TokenFor func(hhUserID string) (string, error)
}

func (d Deps) cfg() config.Config {
	return d.CfgVal.Load().(config.Config)
}
