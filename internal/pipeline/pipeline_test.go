package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhunt-engine/internal/contact"
	"leadhunt-engine/internal/detect"
	"leadhunt-engine/internal/metrics"
	"leadhunt-engine/internal/scrape"
	"leadhunt-engine/internal/store"
)

type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]scrape.Page
	calls map[string]int
	delay time.Duration
}

func newFakeFetcher(pages map[string]scrape.Page) *fakeFetcher {
	return &fakeFetcher{pages: pages, calls: map[string]int{}}
}

func (f *fakeFetcher) Fetch(_ context.Context, u string) (scrape.Page, error) {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[u]++
	p, ok := f.pages[u]
	if !ok {
		return scrape.Page{}, errors.New("no such host")
	}
	return p, nil
}

func (f *fakeFetcher) count(u string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[u]
}

// slowFetcher delays one URL until ctx ends or the delay passes.
type slowFetcher struct {
	*fakeFetcher
	slowURL string
	delay   time.Duration
}

func (f *slowFetcher) Fetch(ctx context.Context, u string) (scrape.Page, error) {
	if u == f.slowURL {
		select {
		case <-ctx.Done():
			return scrape.Page{}, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.fakeFetcher.Fetch(ctx, u)
}

func newTestPipeline(t *testing.T, f scrape.Fetcher, onUpdate func(store.Lead, bool)) (*Pipeline, *store.DB) {
	t.Helper()
	db, err := store.OpenMigrated(filepath.Join(t.TempDir(), "leads.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return New(Deps{
		DB:       db.Pool,
		Fetcher:  f,
		Detector: detect.New(f, detect.Options{}),
		Contacts: contact.NewFinder(f, nil, nil),
		Metrics:  metrics.New(),
		OnUpdate: onUpdate,
	}), db
}

const wpHTML = `<html><head><title>Example Shop</title>
<link rel="stylesheet" href="/wp-content/themes/x/style.css">
<script src="/wp-includes/js/jquery.js"></script></head></html>`

func TestProcess_EnrichesLead(t *testing.T) {
	f := newFakeFetcher(map[string]scrape.Page{
		"https://example.org":         {StatusCode: 200, Body: wpHTML},
		"https://example.org/kontakt": {StatusCode: 200, Body: "Schreiben Sie an Hallo@Example.org"},
	})

	var events []bool
	p, _ := newTestPipeline(t, f, func(_ store.Lead, created bool) { events = append(events, created) })

	lead, err := p.Process(context.Background(), "example.org", "")
	require.NoError(t, err)

	assert.Equal(t, "https://example.org", lead.Domain)
	require.NotNil(t, lead.IsWordPress)
	assert.True(t, *lead.IsWordPress)
	require.NotNil(t, lead.WPConfidence)
	assert.Equal(t, 0.7, *lead.WPConfidence)
	require.NotNil(t, lead.ContactEmail)
	assert.Equal(t, "hallo@example.org", *lead.ContactEmail)
	require.NotNil(t, lead.ContactSource)
	assert.Equal(t, "https://example.org/kontakt", *lead.ContactSource)
	require.NotNil(t, lead.Title)
	assert.Equal(t, "Example Shop", *lead.Title)

	again, err := p.Process(context.Background(), "https://EXAMPLE.org/some/page", "")
	require.NoError(t, err)
	assert.Equal(t, lead.ID, again.ID)
	assert.Equal(t, []bool{true, false}, events)
}

func TestProcess_InvalidInput(t *testing.T) {
	p, db := newTestPipeline(t, newFakeFetcher(nil), nil)

	_, err := p.Process(context.Background(), "not a url", "")
	assert.ErrorIs(t, err, ErrInvalidDomain)

	_, err = p.Process(context.Background(), "   ", "")
	assert.ErrorIs(t, err, ErrInvalidDomain)

	n, err := store.CountLeads(context.Background(), db.Pool)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcess_UnreachableLeavesLeadUnknown(t *testing.T) {
	p, _ := newTestPipeline(t, newFakeFetcher(nil), nil)

	lead, err := p.Process(context.Background(), "down.example", "https://down.example")
	require.NoError(t, err)
	assert.Nil(t, lead.IsWordPress)
	assert.Nil(t, lead.WPConfidence)
	assert.Nil(t, lead.CheckedAt)
	require.NotNil(t, lead.URLDiscovered)
	assert.Equal(t, "https://down.example", *lead.URLDiscovered)
}

func TestProcess_NonSuccessStatusStillClassified(t *testing.T) {
	f := newFakeFetcher(map[string]scrape.Page{
		"https://gone.example": {StatusCode: 503, Body: wpHTML},
	})
	p, _ := newTestPipeline(t, f, nil)

	lead, err := p.Process(context.Background(), "gone.example", "")
	require.NoError(t, err)
	require.NotNil(t, lead.IsWordPress)
	assert.True(t, *lead.IsWordPress)
	assert.Nil(t, lead.ContactEmail)
}

func TestProcess_ConcurrentCallsCollapsed(t *testing.T) {
	f := newFakeFetcher(map[string]scrape.Page{
		"https://busy.example": {StatusCode: 200, Body: "<html></html>"},
	})
	f.delay = 20 * time.Millisecond

	var updates atomic.Int32
	p, _ := newTestPipeline(t, f, func(store.Lead, bool) { updates.Add(1) })

	var wg sync.WaitGroup
	ids := make([]string, 4)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l, err := p.Process(context.Background(), "busy.example", "")
			assert.NoError(t, err)
			ids[i] = l.ID
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.LessOrEqual(t, f.count("https://busy.example"), 4)
	assert.Equal(t, int32(f.count("https://busy.example")), updates.Load())
}

func TestProcess_CancelledCallerDoesNotSpoilSharedRun(t *testing.T) {
	f := &slowFetcher{
		fakeFetcher: newFakeFetcher(map[string]scrape.Page{
			"https://shared.example": {StatusCode: 200, Body: wpHTML},
		}),
		slowURL: "https://shared.example",
		delay:   200 * time.Millisecond,
	}
	p, _ := newTestPipeline(t, f, nil)

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(30*time.Millisecond, cancel)

	var (
		wg        sync.WaitGroup
		cancelErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, cancelErr = p.Process(ctx, "shared.example", "")
	}()

	lead, err := p.Process(context.Background(), "shared.example", "")
	wg.Wait()

	require.NoError(t, err)
	require.NotNil(t, lead.IsWordPress)
	assert.True(t, *lead.IsWordPress)
	assert.ErrorIs(t, cancelErr, context.Canceled)
	assert.Equal(t, 1, f.count("https://shared.example"))
}

func TestProcess_CancelledFetchIsNotUnreachable(t *testing.T) {
	f := &slowFetcher{
		fakeFetcher: newFakeFetcher(nil),
		slowURL:     "https://late.example",
		delay:       time.Second,
	}
	var updates atomic.Int32
	p, _ := newTestPipeline(t, f, func(store.Lead, bool) { updates.Add(1) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(30*time.Millisecond, cancel)

	_, err := p.process(ctx, "https://late.example", "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, updates.Load())
}

func TestCheck(t *testing.T) {
	f := newFakeFetcher(map[string]scrape.Page{
		"https://blog.example/post": {StatusCode: 200, Body: wpHTML},
		"https://blog.example/wp-json": {
			StatusCode:  200,
			ContentType: "application/json",
		},
	})
	p, db := newTestPipeline(t, f, nil)

	res, err := p.Check(context.Background(), "blog.example/post")
	require.NoError(t, err)
	assert.True(t, res.IsPlatform)
	assert.Equal(t, 1.0, res.Score)

	_, err = p.Check(context.Background(), "unreachable.example")
	assert.ErrorIs(t, err, ErrFetch)

	_, err = p.Check(context.Background(), "not a url")
	assert.ErrorIs(t, err, ErrInvalidURL)

	n, err := store.CountLeads(context.Background(), db.Pool)
	require.NoError(t, err)
	assert.Zero(t, n)
}
