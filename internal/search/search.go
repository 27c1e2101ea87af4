// Package search turns a free-text query into candidate site URLs.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadhunt-engine/internal/config"
	"leadhunt-engine/internal/logger"
)

var ErrMissingCredential = errors.New("SERPAPI_KEY missing")

type Query struct {
	Text string
	Num  int
}

type Provider interface {
	Name() string
	// Ready reports whether Search can be attempted, without network I/O.
	Ready() error
	Search(ctx context.Context, q Query) ([]string, error)
}

// UpstreamError is a failed or unparseable response from the search backend.
type UpstreamError struct {
	Provider string
	Message  string
	Status   int
	Details  any
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.Status)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// New builds the provider selected by cfg.Search.Provider.
func New(cfg config.Config, log logger.Logger) (Provider, error) {
	timeout := time.Duration(cfg.Search.TimeoutSeconds) * time.Second

	switch strings.ToLower(strings.TrimSpace(cfg.Search.Provider)) {
	case "", "serpapi":
		return NewSerpAPI(SerpAPIOptions{
			Endpoint: cfg.Search.Endpoint,
			Engine:   cfg.Search.Engine,
			Locale:   cfg.Search.Locale,
			APIKey:   cfg.Search.APIKey,
			Timeout:  timeout,
			Logger:   log,
		}), nil
	case "duckduckgo":
		return NewDuckDuckGo(DuckDuckGoOptions{
			UserAgent: cfg.Fetch.UserAgent,
			Timeout:   timeout,
			Logger:    log,
		}), nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Search.Provider)
	}
}

func snippet(b []byte, n int) string {
	if len(b) > n {
		b = b[:n]
	}
	return string(b)
}
