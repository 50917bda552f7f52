package config

import (
	"fmt"
	"strings"
)

type Validation struct {
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

func (v *Validation) addErr(format string, args ...any) {
	v.Errors = append(v.Errors, fmt.Sprintf(format, args...))
}
func (v *Validation) addWarn(format string, args ...any) {
	v.Warnings = append(v.Warnings, fmt.Sprintf(format, args...))
}
func (v Validation) OK() bool { return len(v.Errors) == 0 }

// NormalizeAndValidate trims string fields and checks ranges; the returned
// copy is what should be saved.
func NormalizeAndValidate(cfg Config) (Config, Validation) {
	out := cfg
	var res Validation

	out.HH.BaseURL = strings.TrimSpace(out.HH.BaseURL)
	out.HH.OAuthURL = strings.TrimSpace(out.HH.OAuthURL)
	out.HH.ClientID = strings.TrimSpace(out.HH.ClientID)
	out.HH.ClientSecret = strings.TrimSpace(out.HH.ClientSecret)
	out.Cache.RedisURL = strings.TrimSpace(out.Cache.RedisURL)
	out.Housekeeping.Spec = strings.TrimSpace(out.Housekeeping.Spec)

	if out.App.Port <= 0 || out.App.Port > 65535 {
		res.addErr("app.port must be 1..65535")
	}

	if out.HH.RetryCount < 0 {
		res.addErr("hh.retry_count must be >= 0")
	}
	if out.HH.RequestsPerSec <= 0 {
		res.addErr("hh.requests_per_sec must be > 0")
	} else if out.HH.RequestsPerSec > 25 {
		res.addWarn("hh.requests_per_sec is high (%.0f); the HH API may throttle you.", out.HH.RequestsPerSec)
	}
	if out.HH.ClientID == "" || out.HH.ClientSecret == "" {
		res.addWarn("hh.client_id / hh.client_secret are empty; OAuth flows will fail.")
	}

	if out.Refresh.BatchSize < 1 {
		res.addErr("refresh.batch_size must be >= 1")
	} else if out.Refresh.BatchSize > 20 {
		res.addWarn("refresh.batch_size is high (%d); detail fetches may hit rate limits.", out.Refresh.BatchSize)
	}
	if out.Refresh.BatchDelayMS < 0 {
		res.addErr("refresh.batch_delay_ms must be >= 0")
	}
	if out.Refresh.FreshnessHours <= 0 {
		res.addErr("refresh.freshness_hours must be > 0")
	}

	if out.Housekeeping.RetentionDays < 1 {
		res.addErr("housekeeping.retention_days must be >= 1")
	}
	if out.Housekeeping.Spec == "" {
		res.addErr("housekeeping.spec is required (cron spec, e.g. @daily)")
	}

	return out, res
}
