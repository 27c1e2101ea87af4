package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/contact"
	"leadhunt-engine/internal/detect"
	"leadhunt-engine/internal/discover"
	"leadhunt-engine/internal/events"
	"leadhunt-engine/internal/httpapi"
	"leadhunt-engine/internal/logger"
	"leadhunt-engine/internal/metrics"
	"leadhunt-engine/internal/pipeline"
	"leadhunt-engine/internal/scrape"
	"leadhunt-engine/internal/search"
	"leadhunt-engine/internal/store"
)

const (
	dbFile        = "leadhunt.db"
	blocklistFile = "blocklist.yml"
)

// app holds the process-wide handles shared by every command.
type app struct {
	dataDir     string
	userCfgPath string
	cfgVal      *atomic.Value // stores config.Config

	log      logger.Logger
	db       *store.DB
	metrics  *metrics.Metrics
	hub      *events.Hub
	pipeline *pipeline.Pipeline
}

func newApp(opts *rootOptions) (*app, error) {
	dataDir := opts.dataDir
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	userCfgPath := opts.configPath
	if userCfgPath == "" {
		p, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
		if err != nil {
			return nil, fmt.Errorf("config bootstrap failed: %w", err)
		}
		userCfgPath = p
	}

	a := &app{
		dataDir:     dataDir,
		userCfgPath: userCfgPath,
		cfgVal:      &atomic.Value{},
		metrics:     metrics.New(),
		hub:         events.NewHub(),
	}

	cfg, warnings, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	a.cfgVal.Store(cfg)

	level := cfg.Log.Level
	if opts.debug {
		level = "debug"
	}
	logFile := cfg.Log.File
	if logFile != "" && !filepath.IsAbs(logFile) {
		logFile = filepath.Join(dataDir, logFile)
	}
	a.log, err = logger.New(logger.Config{
		Level:       level,
		Development: opts.debug,
		File:        logFile,
		MaxSizeMB:   cfg.Log.MaxSizeMB,
		MaxBackups:  cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	for _, w := range warnings {
		a.log.Warn("config warning", logger.String("warning", w))
	}

	a.db, err = store.OpenMigrated(filepath.Join(dataDir, dbFile))
	if err != nil {
		return nil, err
	}

	fetcher := scrape.NewHTTPFetcher(scrape.FetcherOptions{
		Timeout:      time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		UserAgent:    cfg.Fetch.UserAgent,
		MaxBodyBytes: cfg.Fetch.MaxBodyBytes,
	})

	a.pipeline = pipeline.New(pipeline.Deps{
		DB:       a.db.Pool,
		Fetcher:  fetcher,
		Detector: detect.New(fetcher, detect.Options{Threshold: cfg.Detection.Threshold, Logger: a.log}),
		Contacts: contact.NewFinder(fetcher, cfg.Contact.Paths, a.log),
		Logger:   a.log,
		Metrics:  a.metrics,
		OnUpdate: func(l store.Lead, created bool) {
			typ := events.TypeLeadUpdated
			if created {
				typ = events.TypeLeadCreated
			}
			a.hub.Emit("", typ, l)
		},
	})

	return a, nil
}

// loadConfig reads the user config, applies the blocklist overlay and
// validates the result.
func (a *app) loadConfig() (config.Config, []string, error) {
	cfg, err := config.Load(a.userCfgPath)
	if err != nil {
		return cfg, nil, fmt.Errorf("config load failed (%s): %w", a.userCfgPath, err)
	}
	if err := config.OverlayBlocklist(&cfg, filepath.Join(a.dataDir, blocklistFile)); err != nil {
		return cfg, nil, fmt.Errorf("blocklist overlay: %w", err)
	}
	cfg, vr := config.NormalizeAndValidate(cfg)
	if !vr.OK() {
		return cfg, nil, config.Validate(cfg)
	}
	return cfg, vr.Warnings, nil
}

func (a *app) reloadConfig() (config.Config, error) {
	cfg, _, err := a.loadConfig()
	return cfg, err
}

func (a *app) newDiscoverer(cfg config.Config) (httpapi.Discoverer, error) {
	p, err := search.New(cfg, a.log)
	if err != nil {
		return nil, err
	}
	return discover.NewService(p, a.pipeline, discover.Options{
		DefaultNum: cfg.Discovery.DefaultNum,
		Blocklist:  cfg.Discovery.Blocklist,
		Logger:     a.log,
		Metrics:    a.metrics,
	}), nil
}

func (a *app) config() config.Config {
	return a.cfgVal.Load().(config.Config)
}

func (a *app) close() {
	if a.db != nil {
		_ = a.db.Close()
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
