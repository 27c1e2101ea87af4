package httpapi

import (
	"net/http"
	"time"

	"leadhunt-engine/internal/logger"
	"leadhunt-engine/internal/metrics"
)

type router struct {
	mux     *http.ServeMux
	metrics *metrics.Metrics
}

func (rt router) handle(pattern string, h http.HandlerFunc) {
	rt.mux.Handle(pattern, instrument(pattern, rt.metrics, h))
}

// NewMux returns the raw mux so main() can still attach /shutdown (needs srv+token).
func NewMux(d Deps) *http.ServeMux {
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	rt := router{mux: http.NewServeMux(), metrics: d.Metrics}

	// Dashboard
	dh := DashboardHandler{DB: d.DB, CfgVal: d.CfgVal, Logger: d.Logger}
	rt.handle("/{$}", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: dh.Index,
	}))

	// Leads
	lh := LeadsHandler{DB: d.DB, Leads: d.Leads, Logger: d.Logger}
	rt.handle("/leads", methodMux(map[string]http.HandlerFunc{
		http.MethodGet:  lh.List,
		http.MethodPost: lh.Create,
	}))

	ckh := CheckHandler{Leads: d.Leads, Logger: d.Logger}
	rt.handle("/check", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: ckh.Check,
	}))

	dsh := DiscoverHandler{
		CfgVal:        d.CfgVal,
		NewDiscoverer: d.NewDiscoverer,
		Hub:           d.Hub,
		Logger:        d.Logger,
	}
	rt.handle("/discover", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dsh.Discover,
	}))

	// Config
	ch := ConfigHandler{
		CfgVal:      d.CfgVal,
		UserCfgPath: d.UserCfgPath,
		LoadCfg:     d.LoadCfg,
		Logger:      d.Logger,
	}
	rt.handle("/config", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Get,
		http.MethodPut: ch.Put,
	}))
	rt.handle("/config/path", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Path,
	}))
	rt.handle("/config/validate", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: ch.Validate,
	}))

	// Secrets
	sh := SecretsHandler{}
	rt.handle("/api/secrets/serpapi", methodMux(map[string]http.HandlerFunc{
		http.MethodPost:   sh.SetSerpAPIKey,
		http.MethodDelete: sh.DeleteSerpAPIKey,
	}))

	// Ops
	hh := HealthHandler{DB: d.DB}
	rt.handle("/health", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: hh.Health,
	}))
	dbh := DBHandler{DB: d.DB}
	rt.handle("/db/checkpoint", methodMux(map[string]http.HandlerFunc{
		http.MethodPost: dbh.Checkpoint,
	}))
	if d.Metrics != nil {
		rt.mux.Handle("/metrics", d.Metrics.Handler())
	}

	// SSE events
	eh := EventsHandler{Hub: d.Hub}
	rt.handle("/events", methodMux(map[string]http.HandlerFunc{
		http.MethodGet: eh.ServeSSE,
	}))

	return rt.mux
}

// NewHandler wraps mux with the standard middleware stack.
func NewHandler(mux http.Handler, log logger.Logger) http.Handler {
	return Chain(mux,
		RequestID,
		Recover(log),
		AccessLog(log),
		Cors,
	)
}

func instrument(route string, m *metrics.Metrics, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w}
		next.ServeHTTP(sw, r)
		m.ObserveHTTP(r.Method, route, sw.code(), time.Since(start))
	})
}
