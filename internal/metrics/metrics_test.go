package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_IndependentRegistries(t *testing.T) {
	t.Parallel()

	a, b := New(), New()
	a.ContactFound()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.ContactsFound))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.ContactsFound))
}

func TestRecorders(t *testing.T) {
	t.Parallel()

	m := New()
	m.LeadProcessed("enriched", 2*time.Second)
	m.LeadProcessed("unreachable", 0)
	m.Detection(true, "ok")
	m.DiscoverRun("ok", 4)
	m.DiscoverRun("no_credential", 0)
	m.ObserveHTTP(http.MethodGet, "/leads", 200, time.Millisecond)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LeadsProcessed.WithLabelValues("enriched")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Detections.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DiscoverRuns.WithLabelValues("no_credential")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.HTTPRequests.WithLabelValues("GET", "/leads", "200")))

	var nilMetrics *Metrics
	assert.NotPanics(t, func() {
		nilMetrics.ContactFound()
		nilMetrics.DiscoverRun("ok", 1)
	})
}

func TestHandler(t *testing.T) {
	t.Parallel()

	m := New()
	m.ContactFound()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body, _ := io.ReadAll(rec.Body)
	assert.Contains(t, string(body), "leadhunt_contacts_found_total 1")
}
