package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofrs/flock"

	"hhagent-engine/internal/cache"
	"hhagent-engine/internal/config"
	"hhagent-engine/internal/events"
	"hhagent-engine/internal/hh"
	"hhagent-engine/internal/housekeeping"
	"hhagent-engine/internal/httpapi"
	"hhagent-engine/internal/secrets"
	"hhagent-engine/internal/store"
)

func main() {
	// Engine data dir: use env if provided, else local folder.
	dataDir := os.Getenv("HHAGENT_DATA_DIR")
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatal(err)
	}

	// One engine per data dir; a second instance would fight over sqlite.
	lock := flock.New(filepath.Join(dataDir, "engine.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		log.Fatalf("lock %s: %v", lock.Path(), err)
	}
	if !locked {
		log.Fatalf("another engine instance already holds %s", lock.Path())
	}
	defer lock.Unlock()

	defaultCfgPath := filepath.Join("config", "config.yml")
	userCfgPath, err := config.EnsureUserConfig(dataDir, defaultCfgPath)
	if err != nil {
		log.Fatalf("config bootstrap failed: %v", err)
	}

	// Load config and keep it reloadable.
	var cfgVal atomic.Value // stores config.Config
	loadCfg := func() (config.Config, error) {
		return config.Load(userCfgPath)
	}
	cfg, err := loadCfg()
	if err != nil {
		log.Fatalf("config load failed (%s): %v", userCfgPath, err)
	}
	cfgVal.Store(cfg)

	dbPath := filepath.Join(dataDir, "hhagent.db")
	db, err := store.Open(dbPath)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	if err := store.Migrate(db.Pool); err != nil {
		log.Fatal(err)
	}

	hub := events.NewHub()

	// Redis is optional; without it reference-data lookups just go upstream
	// every time.
	var rc *cache.Cache
	if cfg.Cache.RedisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		rc, err = cache.Connect(ctx, cfg.Cache.RedisURL)
		cancel()
		if err != nil {
			log.Printf("[main] redis unavailable, caching disabled: %v", err)
			rc = nil
		}
	}
	defer rc.Close()

	vacancies := store.Vacancies{DB: db.Pool}
	applications := store.Applications{DB: db.Pool}

	janitor := housekeeping.New(vacancies, cfg.Housekeeping.Spec, cfg.Retention())
	jctx, jcancel := context.WithCancel(context.Background())
	defer jcancel()
	if err := janitor.Start(jctx); err != nil {
		log.Fatalf("housekeeping: %v", err)
	}
	defer janitor.Stop()

	hhClient := hh.New(hh.Config{
		BaseURL:        cfg.HH.BaseURL,
		OAuthURL:       cfg.HH.OAuthURL,
		ClientID:       cfg.HH.ClientID,
		ClientSecret:   cfg.HH.ClientSecret,
		UserAgent:      cfg.HH.UserAgent,
		RetryCount:     cfg.HH.RetryCount,
		RequestsPerSec: cfg.HH.RequestsPerSec,
	})

	deps := httpapi.Deps{
		DB:           db.Pool,
		Hub:          hub,
		Vacancies:    vacancies,
		Applications: applications,
		HH:           hhClient,
		Cache:        rc,
		CfgVal:       &cfgVal,
		UserCfgPath:  userCfgPath,
		LoadCfg:      loadCfg,
		TokenFor:     secrets.GetAccessToken,
	}

	handler := httpapi.Chain(
		httpapi.NewMux(deps),
		httpapi.Cors,
		httpapi.RequestID,
		httpapi.AccessLog,
		httpapi.Recover,
	)

	addr := fmt.Sprintf("127.0.0.1:%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("engine listening on http://%s (db=%s)", addr, dbPath)

	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatal(err)
	case sig := <-sigCh:
		log.Printf("received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
