package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Recorders(t *testing.T) {
	m := New()

	m.ProviderFailed("twelvedata", "quote")
	m.ProviderFailed("twelvedata", "quote")
	m.PlaceholderUsed()
	m.Computed("risk", "ok")
	m.Purged(3)
	m.Purged(0)
	m.Ingested("csv", 10)
	m.SentimentFellBack()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ProviderFailures.WithLabelValues("twelvedata", "quote")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.QuotePlaceholders))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.AnalyticsComputed.WithLabelValues("risk", "ok")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.SessionsPurged))
	assert.Equal(t, 10.0, testutil.ToFloat64(m.IngestedBars.WithLabelValues("csv")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SentimentFallbacks))
}

func TestMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ProviderFailed("yahoo", "search")
		m.PlaceholderUsed()
		m.Computed("insight", "ok")
		m.Purged(1)
		m.Ingested("live", 1)
		m.SentimentFellBack()
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.PlaceholderUsed()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "watchlist_quote_placeholders_total 1")
}
