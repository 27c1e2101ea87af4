// Package detect scores how likely a site runs WordPress.
package detect

import (
	"context"
	"math"
	"strings"

	"leadhunt-engine/internal/logger"
	"leadhunt-engine/internal/scrape"
)

const DefaultThreshold = 0.6

type ProbeOutcome string

const (
	ProbeOK         ProbeOutcome = "ok"
	ProbeNotJSON    ProbeOutcome = "not_json"
	ProbeHTTPStatus ProbeOutcome = "http_status"
	ProbeFetchError ProbeOutcome = "fetch_error"
	ProbeSkipped    ProbeOutcome = "skipped"
)

type Result struct {
	IsPlatform bool         `json:"isPlatform"`
	Score      float64      `json:"score"`
	Signals    []string     `json:"signals"`
	Probe      ProbeOutcome `json:"probe"`
}

type Options struct {
	Threshold float64
	Rules     []Rule
	Logger    logger.Logger
}

type Detector struct {
	fetcher   scrape.Fetcher
	threshold int
	rules     []Rule
	log       logger.Logger
}

func New(f scrape.Fetcher, opts Options) *Detector {
	if opts.Threshold <= 0 || opts.Threshold > 1 {
		opts.Threshold = DefaultThreshold
	}
	if len(opts.Rules) == 0 {
		opts.Rules = DefaultRules
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &Detector{
		fetcher:   f,
		threshold: int(math.Round(opts.Threshold * maxScore)),
		rules:     opts.Rules,
		log:       opts.Logger,
	}
}

// Detect scores html and probes origin's REST index. Probe failures only
// withhold the probe weight.
func (d *Detector) Detect(ctx context.Context, html, origin string) Result {
	score, signals := applyRules(html, d.rules)

	probe := d.probe(ctx, origin)
	if probe == ProbeOK {
		score += probeWeight
		signals = append(signals, probeSignal)
	}
	if score > maxScore {
		score = maxScore
	}
	if signals == nil {
		signals = []string{}
	}

	return Result{
		IsPlatform: score >= d.threshold,
		Score:      float64(score) / maxScore,
		Signals:    signals,
		Probe:      probe,
	}
}

func (d *Detector) probe(ctx context.Context, origin string) ProbeOutcome {
	origin = strings.TrimRight(strings.TrimSpace(origin), "/")
	if origin == "" || d.fetcher == nil {
		return ProbeSkipped
	}

	page, err := d.fetcher.Fetch(ctx, origin+probePath)
	if err != nil {
		d.log.Debug("wp-json probe failed", logger.String("origin", origin), logger.Error(err))
		return ProbeFetchError
	}
	if !page.OK() {
		return ProbeHTTPStatus
	}
	if !strings.Contains(strings.ToLower(page.ContentType), "json") {
		return ProbeNotJSON
	}
	return ProbeOK
}
