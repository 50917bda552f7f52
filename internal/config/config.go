package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		Port    int    `yaml:"port" json:"port"`
		DataDir string `yaml:"data_dir" json:"data_dir"`
	} `yaml:"app" json:"app"`

	HH struct {
		BaseURL        string  `yaml:"base_url" json:"base_url"`
		OAuthURL       string  `yaml:"oauth_url" json:"oauth_url"`
		ClientID       string  `yaml:"client_id" json:"client_id"`
		ClientSecret   string  `yaml:"client_secret" json:"client_secret"`
		RedirectURI    string  `yaml:"redirect_uri" json:"redirect_uri"`
		UserAgent      string  `yaml:"user_agent" json:"user_agent"`
		RetryCount     int     `yaml:"retry_count" json:"retry_count"`
		RequestsPerSec float64 `yaml:"requests_per_sec" json:"requests_per_sec"`
	} `yaml:"hh" json:"hh"`

	Refresh struct {
		BatchSize      int `yaml:"batch_size" json:"batch_size"`
		BatchDelayMS   int `yaml:"batch_delay_ms" json:"batch_delay_ms"`
		FreshnessHours int `yaml:"freshness_hours" json:"freshness_hours"`
	} `yaml:"refresh" json:"refresh"`

	Cache struct {
		RedisURL string `yaml:"redis_url" json:"redis_url"`
	} `yaml:"cache" json:"cache"`

	Housekeeping struct {
		RetentionDays int    `yaml:"retention_days" json:"retention_days"`
		Spec          string `yaml:"spec" json:"spec"` // robfig/cron spec, e.g. "@daily"
	} `yaml:"housekeeping" json:"housekeeping"`
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return WithDefaults(cfg), nil
}

// WithDefaults fills unset fields so the rest of the engine never has to
// guess.
func WithDefaults(cfg Config) Config {
	if cfg.App.Port == 0 {
		cfg.App.Port = 38471
	}
	if cfg.HH.BaseURL == "" {
		cfg.HH.BaseURL = "https://api.hh.ru"
	}
	if cfg.HH.OAuthURL == "" {
		cfg.HH.OAuthURL = "https://hh.ru"
	}
	if cfg.HH.UserAgent == "" {
		cfg.HH.UserAgent = "hhagent-engine/1.0"
	}
	if cfg.HH.RetryCount == 0 {
		cfg.HH.RetryCount = 3
	}
	if cfg.HH.RequestsPerSec == 0 {
		cfg.HH.RequestsPerSec = 5
	}
	if cfg.Refresh.BatchSize == 0 {
		cfg.Refresh.BatchSize = 5
	}
	if cfg.Refresh.BatchDelayMS == 0 {
		cfg.Refresh.BatchDelayMS = 1000
	}
	if cfg.Refresh.FreshnessHours == 0 {
		cfg.Refresh.FreshnessHours = 12
	}
	if cfg.Housekeeping.RetentionDays == 0 {
		cfg.Housekeeping.RetentionDays = 7
	}
	if cfg.Housekeeping.Spec == "" {
		cfg.Housekeeping.Spec = "@daily"
	}
	return cfg
}

func (c Config) BatchDelay() time.Duration {
	return time.Duration(c.Refresh.BatchDelayMS) * time.Millisecond
}

func (c Config) FreshnessWindow() time.Duration {
	return time.Duration(c.Refresh.FreshnessHours) * time.Hour
}

func (c Config) Retention() time.Duration {
	return time.Duration(c.Housekeeping.RetentionDays) * 24 * time.Hour
}
