package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"leadhunt-engine/internal/logger"
)

const DefaultDuckDuckGoEndpoint = "https://html.duckduckgo.com/html/"

type DuckDuckGoOptions struct {
	Endpoint  string
	UserAgent string
	Timeout   time.Duration
	Logger    logger.Logger
}

// DuckDuckGo scrapes the HTML results page. It needs no credential.
type DuckDuckGo struct {
	endpoint  string
	userAgent string
	hc        *http.Client
	log       logger.Logger
}

func NewDuckDuckGo(opts DuckDuckGoOptions) *DuckDuckGo {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultDuckDuckGoEndpoint
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "Mozilla/5.0"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 12 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &DuckDuckGo{
		endpoint:  opts.Endpoint,
		userAgent: opts.UserAgent,
		hc:        &http.Client{Timeout: opts.Timeout},
		log:       opts.Logger,
	}
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) Ready() error { return nil }

func (d *DuckDuckGo) Search(ctx context.Context, q Query) ([]string, error) {
	u := d.endpoint + "?q=" + url.QueryEscape(q.Text)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", d.userAgent)

	res, err := d.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("duckduckgo request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &UpstreamError{Provider: d.Name(), Message: "DuckDuckGo error", Status: res.StatusCode}
	}

	doc, err := goquery.NewDocumentFromReader(res.Body)
	if err != nil {
		return nil, &UpstreamError{Provider: d.Name(), Message: "DuckDuckGo returned unparseable HTML", Status: res.StatusCode}
	}

	var links []string

	// DDG HTML results: <a class="result__a" href="...">
	doc.Find("a.result__a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}
		target := decodeDDGRedirect(href)
		if !strings.HasPrefix(target, "http://") && !strings.HasPrefix(target, "https://") {
			return true
		}
		links = append(links, target)
		return q.Num <= 0 || len(links) < q.Num
	})

	d.log.Debug("duckduckgo results", logger.String("query", q.Text), logger.Int("links", len(links)))
	return links, nil
}

func decodeDDGRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	// DDG sometimes uses /l/?uddg=<urlencoded>
	if uddg := u.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	return href
}
