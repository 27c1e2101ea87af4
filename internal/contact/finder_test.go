package contact

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leadhunt-engine/internal/scrape"
)

type stubFetcher struct {
	pages map[string]scrape.Page
	calls []string
}

func (s *stubFetcher) Fetch(_ context.Context, u string) (scrape.Page, error) {
	s.calls = append(s.calls, u)
	p, ok := s.pages[u]
	if !ok {
		return scrape.Page{}, errors.New("dial tcp: no such host")
	}
	return p, nil
}

func TestFind_FirstMatchWins(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{pages: map[string]scrape.Page{
		"https://shop.de/impressum": {StatusCode: 404},
		"https://shop.de/kontakt":   {StatusCode: 200, Body: `<a href="mailto:Info@Shop.DE">Mail</a> or sales@shop.de`},
		"https://shop.de/contact":   {StatusCode: 200, Body: "other@shop.de"},
	}}

	res := NewFinder(f, nil, nil).Find(context.Background(), "https://shop.de")

	require.NotNil(t, res.Contact)
	assert.Equal(t, "info@shop.de", res.Contact.Email)
	assert.Equal(t, "https://shop.de/kontakt", res.Contact.URL)
	assert.Equal(t, []string{"https://shop.de/impressum", "https://shop.de/kontakt"}, f.calls)

	require.Len(t, res.Attempts, 2)
	assert.Equal(t, OutcomeHTTPStatus, res.Attempts[0].Outcome)
	assert.Equal(t, 404, res.Attempts[0].Status)
	assert.Equal(t, OutcomeFound, res.Attempts[1].Outcome)
}

func TestFind_NonSuccessPageIgnored(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{pages: map[string]scrape.Page{
		"https://shop.de/impressum": {StatusCode: 500, Body: "admin@shop.de"},
		"https://shop.de/about":     {StatusCode: 200, Body: "team@shop.de"},
	}}

	res := NewFinder(f, nil, nil).Find(context.Background(), "https://shop.de")
	require.NotNil(t, res.Contact)
	assert.Equal(t, "team@shop.de", res.Contact.Email)
	assert.Equal(t, "https://shop.de/about", res.Contact.URL)
}

func TestFind_Absent(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{pages: map[string]scrape.Page{
		"https://shop.de/kontakt": {StatusCode: 200, Body: "call us"},
	}}

	res := NewFinder(f, nil, nil).Find(context.Background(), "https://shop.de")
	assert.Nil(t, res.Contact)
	assert.Len(t, res.Attempts, len(DefaultPaths))
	assert.Len(t, f.calls, len(DefaultPaths))
	assert.Equal(t, OutcomeNoMatch, res.Attempts[1].Outcome)
	assert.Equal(t, OutcomeFetchError, res.Attempts[0].Outcome)
}

func TestFind_CustomPaths(t *testing.T) {
	t.Parallel()

	f := &stubFetcher{pages: map[string]scrape.Page{
		"https://shop.de/legal": {StatusCode: 200, Body: "legal@shop.de"},
	}}

	res := NewFinder(f, []string{"/legal"}, nil).Find(context.Background(), "https://shop.de")
	require.NotNil(t, res.Contact)
	assert.Equal(t, "legal@shop.de", res.Contact.Email)
}

func TestFind_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := &stubFetcher{}
	res := NewFinder(f, nil, nil).Find(ctx, "https://shop.de")
	assert.Nil(t, res.Contact)
	assert.Empty(t, f.calls)
}

func TestExtractEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "max.mustermann+web@firma-gmbh.de", ExtractEmail("Kontakt: Max.Mustermann+web@Firma-GmbH.de."))
	assert.Equal(t, "", ExtractEmail("no address @ here"))
	assert.Equal(t, "", ExtractEmail("user@localhost"))
}
