package httpapi

import (
	"context"
	"database/sql"
	"sync/atomic"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/detect"
	"leadhunt-engine/internal/discover"
	"leadhunt-engine/internal/events"
	"leadhunt-engine/internal/logger"
	"leadhunt-engine/internal/metrics"
	"leadhunt-engine/internal/store"
)

// LeadService is the lead pipeline as seen by the handlers.
type LeadService interface {
	Process(ctx context.Context, input, discoveredVia string) (store.Lead, error)
	Check(ctx context.Context, rawURL string) (detect.Result, error)
}

type Discoverer interface {
	Discover(ctx context.Context, req discover.Request) (discover.Result, error)
}

type Deps struct {
	DB *sql.DB

	Hub     *events.Hub
	Logger  logger.Logger
	Metrics *metrics.Metrics

	Leads LeadService
	// NewDiscoverer builds discovery for the current config so provider
	// changes made through PUT /config apply to the next request.
	NewDiscoverer func(cfg config.Config) (Discoverer, error)

	// Atomic stores
	CfgVal *atomic.Value // stores config.Config

	// Config persistence
	UserCfgPath string
	LoadCfg     func() (config.Config, error)
}
