// Package pipeline turns a user- or search-supplied site into an enriched lead.
package pipeline

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"leadhunt-engine/internal/contact"
	"leadhunt-engine/internal/detect"
	"leadhunt-engine/internal/logger"
	"leadhunt-engine/internal/metrics"
	"leadhunt-engine/internal/scrape"
	"leadhunt-engine/internal/scrape/util"
	"leadhunt-engine/internal/store"
)

var (
	ErrInvalidDomain = errors.New("invalid domain")
	ErrInvalidURL    = errors.New("invalid url")
	ErrFetch         = errors.New("fetch failed")
)

const (
	outcomeEnriched    = "enriched"
	outcomeUnreachable = "unreachable"
	outcomeInvalid     = "invalid"
	outcomeError       = "error"
	outcomeCancelled   = "cancelled"
)

type Detector interface {
	Detect(ctx context.Context, html, origin string) detect.Result
}

type ContactFinder interface {
	Find(ctx context.Context, origin string) contact.Result
}

type Deps struct {
	DB       *sql.DB
	Fetcher  scrape.Fetcher
	Detector Detector
	Contacts ContactFinder
	Logger   logger.Logger
	Metrics  *metrics.Metrics

	// OnUpdate runs after every Process that reached the store.
	OnUpdate func(lead store.Lead, created bool)
}

type Pipeline struct {
	db       *sql.DB
	fetcher  scrape.Fetcher
	detector Detector
	contacts ContactFinder
	log      logger.Logger
	metrics  *metrics.Metrics
	onUpdate func(store.Lead, bool)

	group singleflight.Group
}

func New(d Deps) *Pipeline {
	if d.Logger == nil {
		d.Logger = logger.NewNop()
	}
	return &Pipeline{
		db:       d.DB,
		fetcher:  d.Fetcher,
		detector: d.Detector,
		contacts: d.Contacts,
		log:      d.Logger,
		metrics:  d.Metrics,
		onUpdate: d.OnUpdate,
	}
}

type processed struct {
	lead    store.Lead
	created bool
}

// Process normalizes input to an origin, ensures a lead exists for it and
// enriches it. An unreachable homepage is not an error: the lead is
// returned unclassified. A caller whose ctx ends first gets ctx.Err().
func (p *Pipeline) Process(ctx context.Context, input, discoveredVia string) (store.Lead, error) {
	origin, ok := util.ToOrigin(input)
	if !ok {
		p.metrics.LeadProcessed(outcomeInvalid, 0)
		return store.Lead{}, fmt.Errorf("%w: %q", ErrInvalidDomain, input)
	}

	// Concurrent callers for one origin share the first caller's
	// discoveredVia. url_discovered only keeps its first value anyway.
	// The shared run ignores any single caller's cancellation; each caller
	// stops waiting when its own ctx ends.
	shared := context.WithoutCancel(ctx)
	ch := p.group.DoChan(origin, func() (any, error) {
		return p.process(shared, origin, discoveredVia)
	})

	select {
	case <-ctx.Done():
		return store.Lead{}, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return store.Lead{}, r.Err
		}
		return r.Val.(processed).lead, nil
	}
}

func (p *Pipeline) process(ctx context.Context, origin, discoveredVia string) (processed, error) {
	start := time.Now()
	log := logger.FromContext(ctx, p.log).With(logger.String("origin", origin))

	lead, created, err := store.EnsureLead(ctx, p.db, origin, discoveredVia)
	if err != nil {
		p.metrics.LeadProcessed(outcomeError, time.Since(start))
		return processed{}, err
	}

	page, err := p.fetcher.Fetch(ctx, origin)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Warn("enrichment cancelled", logger.Error(ctxErr))
			p.metrics.LeadProcessed(outcomeCancelled, time.Since(start))
			return processed{}, ctxErr
		}
		log.Warn("homepage unreachable, lead left unclassified", logger.Error(err))
		p.metrics.LeadProcessed(outcomeUnreachable, time.Since(start))
		p.notify(lead, created)
		return processed{lead: lead, created: created}, nil
	}
	if !page.OK() {
		log.Info("homepage returned non-success status", logger.Int("status", page.StatusCode))
	}

	det := p.detector.Detect(ctx, page.Body, origin)
	p.metrics.Detection(det.IsPlatform, string(det.Probe))

	found := p.contacts.Find(ctx, origin)

	e := store.Enrichment{
		IsWordPress:   det.IsPlatform,
		WPConfidence:  det.Score,
		Title:         scrape.Title(page.Body),
		DiscoveredVia: discoveredVia,
	}
	if found.Contact != nil {
		e.ContactEmail = found.Contact.Email
		e.ContactSource = found.Contact.URL
		p.metrics.ContactFound()
	}

	lead, err = store.UpdateEnrichment(ctx, p.db, origin, e)
	if err != nil {
		p.metrics.LeadProcessed(outcomeError, time.Since(start))
		return processed{}, err
	}

	log.Info("lead enriched",
		logger.Bool("created", created),
		logger.Bool("is_platform", det.IsPlatform),
		logger.Float64("score", det.Score),
		logger.Strings("signals", det.Signals),
		logger.String("probe", string(det.Probe)),
		logger.Bool("contact", found.Contact != nil),
		logger.Int("contact_attempts", len(found.Attempts)),
		logger.Duration("took", time.Since(start)),
	)
	p.metrics.LeadProcessed(outcomeEnriched, time.Since(start))
	p.notify(lead, created)
	return processed{lead: lead, created: created}, nil
}

func (p *Pipeline) notify(lead store.Lead, created bool) {
	if p.onUpdate != nil {
		p.onUpdate(lead, created)
	}
}

// Check classifies rawURL without persisting anything. Unlike Process it
// fetches the URL as given, path included.
func (p *Pipeline) Check(ctx context.Context, rawURL string) (detect.Result, error) {
	u, ok := util.EnsureURL(rawURL)
	if !ok {
		return detect.Result{}, fmt.Errorf("%w: %q", ErrInvalidURL, rawURL)
	}
	origin, _ := util.ToOrigin(u)

	page, err := p.fetcher.Fetch(ctx, u)
	if err != nil {
		return detect.Result{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	det := p.detector.Detect(ctx, page.Body, origin)
	p.metrics.Detection(det.IsPlatform, string(det.Probe))
	return det, nil
}
