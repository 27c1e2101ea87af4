// Package discover runs a search query through the lead pipeline.
package discover

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadhunt-engine/internal/logger"
	"leadhunt-engine/internal/metrics"
	"leadhunt-engine/internal/scrape/util"
	"leadhunt-engine/internal/search"
	"leadhunt-engine/internal/store"
)

const (
	DefaultNum = 10
	MinNum     = 1
	MaxNum     = 20
)

var ErrQueryRequired = errors.New("query required")

type Processor interface {
	Process(ctx context.Context, input, discoveredVia string) (store.Lead, error)
}

type Request struct {
	Query string
	// Num is the requested result count; nil means DefaultNum.
	Num       *int
	Blocklist []string
}

type Result struct {
	Total         int          `json:"total"`
	PlatformCount int          `json:"platformCount"`
	Leads         []store.Lead `json:"leads"`
}

type Service struct {
	provider   search.Provider
	pipeline   Processor
	defaultNum int
	blocklist  []string
	log        logger.Logger
	metrics    *metrics.Metrics
}

type Options struct {
	DefaultNum int
	Blocklist  []string
	Logger     logger.Logger
	Metrics    *metrics.Metrics
}

func NewService(p search.Provider, pl Processor, opts Options) *Service {
	if opts.DefaultNum == 0 {
		opts.DefaultNum = DefaultNum
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &Service{
		provider:   p,
		pipeline:   pl,
		defaultNum: ClampNum(opts.DefaultNum),
		blocklist:  opts.Blocklist,
		log:        opts.Logger,
		metrics:    opts.Metrics,
	}
}

// ClampNum bounds n to [MinNum, MaxNum].
func ClampNum(n int) int {
	if n < MinNum {
		return MinNum
	}
	if n > MaxNum {
		return MaxNum
	}
	return n
}

// Discover searches for req.Query and enriches every unique origin found.
// Query and credential problems are reported before anything is written.
func (s *Service) Discover(ctx context.Context, req Request) (Result, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		s.metrics.DiscoverRun("bad_request", 0)
		return Result{}, ErrQueryRequired
	}
	if err := s.provider.Ready(); err != nil {
		s.metrics.DiscoverRun("no_credential", 0)
		return Result{}, err
	}

	num := s.defaultNum
	if req.Num != nil {
		num = ClampNum(*req.Num)
	}

	log := s.log.With(
		logger.String("query", query),
		logger.String("provider", s.provider.Name()),
		logger.Int("num", num),
	)
	start := time.Now()

	links, err := s.provider.Search(ctx, search.Query{Text: query, Num: num})
	if err != nil {
		s.metrics.DiscoverRun("upstream_error", 0)
		return Result{}, fmt.Errorf("search %q: %w", query, err)
	}

	blocklist := append(append([]string{}, s.blocklist...), req.Blocklist...)
	origins := UniqueOrigins(links, blocklist)

	res := Result{Leads: []store.Lead{}}
	for i, origin := range origins {
		if ctx.Err() != nil {
			log.Warn("discovery cancelled", logger.Int("remaining", len(origins)-i))
			break
		}
		res.Total++

		lead, err := s.pipeline.Process(ctx, origin, origin)
		if err != nil {
			log.Warn("lead processing failed", logger.String("origin", origin), logger.Error(err))
			continue
		}
		if lead.IsWordPress != nil && *lead.IsWordPress {
			res.Leads = append(res.Leads, lead)
		}
	}
	res.PlatformCount = len(res.Leads)

	log.Info("discovery finished",
		logger.Int("links", len(links)),
		logger.Int("origins", len(origins)),
		logger.Int("processed", res.Total),
		logger.Int("platform", res.PlatformCount),
		logger.Duration("took", time.Since(start)),
	)
	s.metrics.DiscoverRun("ok", res.Total)
	return res, nil
}

// UniqueOrigins normalizes links to origins, dropping unparseable and
// blocklisted ones, and keeps the first occurrence of each origin.
func UniqueOrigins(links, blocklist []string) []string {
	seen := map[string]bool{}
	out := []string{}
	for _, l := range links {
		origin, ok := util.ToOrigin(l)
		if !ok || seen[origin] {
			continue
		}
		if util.IsBlockedHost(util.HostOf(origin), blocklist) {
			continue
		}
		seen[origin] = true
		out = append(out, origin)
	}
	return out
}
