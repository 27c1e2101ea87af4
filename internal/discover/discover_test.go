package discover

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhunt-engine/internal/search"
	"leadhunt-engine/internal/store"
)

type fakeProvider struct {
	links   []string
	err     error
	ready   error
	queries []search.Query
}

func (f *fakeProvider) Name() string { return "fake" }
func (f *fakeProvider) Ready() error { return f.ready }
func (f *fakeProvider) Search(_ context.Context, q search.Query) ([]string, error) {
	f.queries = append(f.queries, q)
	return f.links, f.err
}

type fakePipeline struct {
	platform map[string]bool
	fail     map[string]bool
	calls    []string
	after    func(input string)
}

func (f *fakePipeline) Process(_ context.Context, input, via string) (store.Lead, error) {
	f.calls = append(f.calls, input)
	if f.after != nil {
		defer f.after(input)
	}
	if f.fail[input] {
		return store.Lead{}, errors.New("boom")
	}
	l := store.Lead{Domain: input, URLDiscovered: &via}
	if v, ok := f.platform[input]; ok {
		l.IsWordPress = &v
	}
	return l, nil
}

func intPtr(n int) *int { return &n }

func TestDiscover_DedupesAndFilters(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{links: []string{
		"https://a.de/x",
		"https://a.de/y",
		"not a url",
		"https://b.de",
		"https://de.wikipedia.org/wiki/A",
		"https://c.de",
	}}
	pl := &fakePipeline{
		platform: map[string]bool{"https://a.de": true, "https://b.de": false},
		fail:     map[string]bool{"https://c.de": true},
	}
	svc := NewService(p, pl, Options{Blocklist: []string{"wikipedia.org"}})

	res, err := svc.Discover(context.Background(), Request{Query: "  dachdecker  "})
	require.NoError(t, err)

	assert.Equal(t, []string{"https://a.de", "https://b.de", "https://c.de"}, pl.calls)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 1, res.PlatformCount)
	require.Len(t, res.Leads, 1)
	assert.Equal(t, "https://a.de", res.Leads[0].Domain)
	assert.Equal(t, "https://a.de", *res.Leads[0].URLDiscovered)

	require.Len(t, p.queries, 1)
	assert.Equal(t, "dachdecker", p.queries[0].Text)
	assert.Equal(t, DefaultNum, p.queries[0].Num)
}

func TestDiscover_CancelledCountsOnlyProcessed(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &fakeProvider{links: []string{"https://a.de", "https://b.de", "https://c.de"}}
	pl := &fakePipeline{platform: map[string]bool{"https://a.de": true}}
	pl.after = func(input string) {
		if input == "https://a.de" {
			cancel()
		}
	}
	svc := NewService(p, pl, Options{})

	res, err := svc.Discover(ctx, Request{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.de"}, pl.calls)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.PlatformCount)
}

func TestDiscover_NumClamped(t *testing.T) {
	t.Parallel()

	cases := map[int]int{50: 20, 0: 1, -3: 1, 5: 5, 20: 20}
	for in, want := range cases {
		p := &fakeProvider{}
		svc := NewService(p, &fakePipeline{}, Options{})
		_, err := svc.Discover(context.Background(), Request{Query: "q", Num: intPtr(in)})
		require.NoError(t, err)
		assert.Equal(t, want, p.queries[0].Num, "num=%d", in)
	}
}

func TestDiscover_QueryRequiredBeforeCredential(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{ready: search.ErrMissingCredential}
	pl := &fakePipeline{}
	svc := NewService(p, pl, Options{})

	_, err := svc.Discover(context.Background(), Request{Query: "   "})
	assert.ErrorIs(t, err, ErrQueryRequired)

	_, err = svc.Discover(context.Background(), Request{Query: "zahnarzt"})
	assert.ErrorIs(t, err, search.ErrMissingCredential)

	assert.Empty(t, p.queries)
	assert.Empty(t, pl.calls)
}

func TestDiscover_UpstreamErrorIsFatal(t *testing.T) {
	t.Parallel()

	p := &fakeProvider{err: &search.UpstreamError{Provider: "fake", Message: "SerpAPI error", Status: 429}}
	pl := &fakePipeline{}
	svc := NewService(p, pl, Options{})

	_, err := svc.Discover(context.Background(), Request{Query: "q"})
	var ue *search.UpstreamError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, 429, ue.Status)
	assert.Empty(t, pl.calls)
}

func TestDiscover_NoResults(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeProvider{}, &fakePipeline{}, Options{})
	res, err := svc.Discover(context.Background(), Request{Query: "q"})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Total)
	assert.NotNil(t, res.Leads)
	assert.Empty(t, res.Leads)
}

func TestUniqueOrigins(t *testing.T) {
	t.Parallel()

	got := UniqueOrigins([]string{
		"HTTPS://Shop.de/a",
		"https://shop.de/b",
		"https://shop.de:443/c",
		"http://shop.de",
		"http://shop.de:80/d",
		"https://m.facebook.com/page",
	}, []string{"facebook.com"})
	assert.Equal(t, []string{"https://shop.de", "http://shop.de"}, got)
}
