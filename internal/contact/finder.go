// Package contact looks for a public contact email on a site's well-known pages.
package contact

import (
	"context"
	"regexp"
	"strings"

	"leadhunt-engine/internal/logger"
	"leadhunt-engine/internal/scrape"
	"leadhunt-engine/internal/scrape/util"
)

// DefaultPaths are tried in order; the first page containing an address wins.
var DefaultPaths = []string{
	"/impressum",
	"/kontakt",
	"/contact",
	"/ueber-uns",
	"/about",
	"/unternehmen/impressum",
}

var reEmail = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}\b`)

type Contact struct {
	Email string `json:"email"`
	URL   string `json:"url"`
}

type Outcome string

const (
	OutcomeFound      Outcome = "found"
	OutcomeNoMatch    Outcome = "no_match"
	OutcomeHTTPStatus Outcome = "http_status"
	OutcomeFetchError Outcome = "fetch_error"
	OutcomeBadPath    Outcome = "bad_path"
)

type Attempt struct {
	Path    string  `json:"path"`
	URL     string  `json:"url,omitempty"`
	Outcome Outcome `json:"outcome"`
	Status  int     `json:"status,omitempty"`
}

type Result struct {
	Contact  *Contact  `json:"contact"`
	Attempts []Attempt `json:"attempts"`
}

type Finder struct {
	fetcher scrape.Fetcher
	paths   []string
	log     logger.Logger
}

func NewFinder(f scrape.Fetcher, paths []string, log logger.Logger) *Finder {
	if len(paths) == 0 {
		paths = DefaultPaths
	}
	if log == nil {
		log = logger.NewNop()
	}
	return &Finder{fetcher: f, paths: paths, log: log}
}

// Find never fails; unreachable pages are recorded as attempts and skipped.
func (f *Finder) Find(ctx context.Context, origin string) Result {
	var res Result

	for _, p := range f.paths {
		if ctx.Err() != nil {
			break
		}

		u, err := util.ResolvePath(origin, p)
		if err != nil {
			res.Attempts = append(res.Attempts, Attempt{Path: p, Outcome: OutcomeBadPath})
			continue
		}

		page, err := f.fetcher.Fetch(ctx, u)
		if err != nil {
			f.log.Debug("contact page unreachable", logger.String("url", u), logger.Error(err))
			res.Attempts = append(res.Attempts, Attempt{Path: p, URL: u, Outcome: OutcomeFetchError})
			continue
		}
		if !page.OK() {
			res.Attempts = append(res.Attempts, Attempt{Path: p, URL: u, Outcome: OutcomeHTTPStatus, Status: page.StatusCode})
			continue
		}

		email := ExtractEmail(page.Body)
		if email == "" {
			res.Attempts = append(res.Attempts, Attempt{Path: p, URL: u, Outcome: OutcomeNoMatch, Status: page.StatusCode})
			continue
		}

		res.Attempts = append(res.Attempts, Attempt{Path: p, URL: u, Outcome: OutcomeFound, Status: page.StatusCode})
		res.Contact = &Contact{Email: email, URL: u}
		return res
	}
	return res
}

// ExtractEmail returns the first address-shaped substring of body, lower-cased.
func ExtractEmail(body string) string {
	return strings.ToLower(reEmail.FindString(body))
}
