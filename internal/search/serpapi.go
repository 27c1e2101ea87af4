package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"leadhunt-engine/internal/logger"
	"leadhunt-engine/internal/secrets"
)

const (
	DefaultSerpAPIEndpoint = "https://serpapi.com/search.json"
	maxSerpBody            = 4 << 20
)

type SerpAPIOptions struct {
	Endpoint string
	Engine   string
	Locale   string
	// APIKey wins over the keychain when set.
	APIKey  string
	Timeout time.Duration
	Logger  logger.Logger
}

type SerpAPI struct {
	endpoint string
	engine   string
	locale   string
	apiKey   string
	hc       *http.Client
	log      logger.Logger
}

func NewSerpAPI(opts SerpAPIOptions) *SerpAPI {
	if strings.TrimSpace(opts.Endpoint) == "" {
		opts.Endpoint = DefaultSerpAPIEndpoint
	}
	if opts.Engine == "" {
		opts.Engine = "google"
	}
	if opts.Locale == "" {
		opts.Locale = "de"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = logger.NewNop()
	}
	return &SerpAPI{
		endpoint: opts.Endpoint,
		engine:   opts.Engine,
		locale:   opts.Locale,
		apiKey:   opts.APIKey,
		hc:       &http.Client{Timeout: opts.Timeout},
		log:      opts.Logger,
	}
}

func (s *SerpAPI) Name() string { return "serpapi" }

func (s *SerpAPI) Ready() error {
	if _, ok := secrets.ResolveSerpAPIKey(s.apiKey); !ok {
		return ErrMissingCredential
	}
	return nil
}

type serpResponse struct {
	OrganicResults []struct {
		Link string `json:"link"`
	} `json:"organic_results"`
}

func (s *SerpAPI) Search(ctx context.Context, q Query) ([]string, error) {
	key, ok := secrets.ResolveSerpAPIKey(s.apiKey)
	if !ok {
		return nil, ErrMissingCredential
	}

	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("serpapi endpoint: %w", err)
	}
	params := u.Query()
	params.Set("engine", s.engine)
	params.Set("q", q.Text)
	params.Set("hl", s.locale)
	params.Set("num", strconv.Itoa(q.Num))
	params.Set("api_key", key)
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache")

	res, err := s.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serpapi request: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(io.LimitReader(res.Body, maxSerpBody))
	if err != nil {
		return nil, fmt.Errorf("serpapi read body: %w", err)
	}

	var raw any
	if err := json.Unmarshal(body, &raw); err != nil {
		s.log.Warn("serpapi returned non-JSON",
			logger.Int("status", res.StatusCode),
			logger.String("body", snippet(body, 400)),
		)
		return nil, &UpstreamError{Provider: s.Name(), Message: "SerpAPI returned non-JSON", Status: res.StatusCode}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		details := raw
		if m, ok := raw.(map[string]any); ok {
			if e, ok := m["error"]; ok && e != nil {
				details = e
			}
		}
		return nil, &UpstreamError{Provider: s.Name(), Message: "SerpAPI error", Status: res.StatusCode, Details: details}
	}

	var sr serpResponse
	// organic_results may be absent or oddly shaped; treat that as no results.
	_ = json.Unmarshal(body, &sr)

	links := make([]string, 0, len(sr.OrganicResults))
	for _, r := range sr.OrganicResults {
		if l := strings.TrimSpace(r.Link); l != "" {
			links = append(links, l)
		}
	}
	return links, nil
}
