package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_watchlist/internal/feature/marketdata/domain"
	"stock_watchlist/internal/platform/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	c := NewClient(config.Yahoo{BaseURL: server.URL, Timeout: time.Second})
	c.now = func() time.Time { return time.Date(2024, 3, 8, 12, 0, 0, 0, time.UTC) }
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

const chartBody = `{"chart":{"result":[{
	"meta":{"symbol":"AAPL","currency":"USD","exchangeName":"NMS","fullExchangeName":"NasdaqGS","longName":"Apple Inc.",
		"regularMarketPrice":172.5,"regularMarketTime":1709830800,"regularMarketDayHigh":173,"regularMarketDayLow":170,
		"regularMarketVolume":5000000,"chartPreviousClose":170},
	"timestamp":[1709649000,1709735400,1709821800],
	"indicators":{"quote":[{
		"open":[169,170,null],
		"high":[171,172,173],
		"low":[168,169,170],
		"close":[170,null,172.5],
		"volume":[100,200,null]
	}]}
}],"error":null}}`

func TestClient_Quote(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/AAPL", r.URL.Path)
		assert.Equal(t, "1d", r.URL.Query().Get("range"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		writeJSON(w, http.StatusOK, chartBody)
	})

	q, err := c.Quote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "AAPL", q.Symbol)
	assert.Equal(t, "Apple Inc.", q.Name)
	assert.Equal(t, "NasdaqGS", q.Exchange)
	assert.Equal(t, 172.5, q.Price)
	assert.Equal(t, 170.0, q.PreviousClose)
	assert.Equal(t, int64(5000000), q.Volume)
	assert.Equal(t, time.Unix(1709830800, 0).UTC(), q.UpdatedAt)
	assert.Zero(t, q.Open, "trailing null open is left unset")
}

func TestClient_Quote_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"http 404", http.StatusNotFound, `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`, domain.ErrSymbolNotFound},
		{"empty result", http.StatusOK, `{"chart":{"result":[],"error":null}}`, domain.ErrSymbolNotFound},
		{"zero price", http.StatusOK, `{"chart":{"result":[{"meta":{"symbol":"X","regularMarketPrice":0}}],"error":null}}`, domain.ErrSymbolNotFound},
		{"error envelope", http.StatusOK, `{"chart":{"result":null,"error":{"code":"Internal","description":"boom"}}}`, domain.ErrProviderUnavailable},
		{"rate limited", http.StatusTooManyRequests, `{}`, domain.ErrProviderUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.Quote(context.Background(), "X")
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestClient_History(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		assert.NotEmpty(t, r.URL.Query().Get("period1"))
		assert.NotEmpty(t, r.URL.Query().Get("period2"))
		writeJSON(w, http.StatusOK, chartBody)
	})

	bars, err := c.History(context.Background(), "AAPL", 30)
	require.NoError(t, err)
	require.Len(t, bars, 2, "null close row is dropped")
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), bars[0].Date)
	assert.Equal(t, 170.0, bars[0].Close)
	assert.Equal(t, int64(100), bars[0].Volume)
	assert.Equal(t, 172.5, bars[1].Close)
	assert.Zero(t, bars[1].Open)
	assert.Zero(t, bars[1].Volume)

	bars, err = c.History(context.Background(), "AAPL", 1)
	require.NoError(t, err)
	require.Len(t, bars, 1)
	assert.Equal(t, 172.5, bars[0].Close)
}

func TestClient_SearchAndNews(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/finance/search", r.URL.Path)
		writeJSON(w, http.StatusOK, `{
			"quotes":[
				{"symbol":"aapl","shortname":"Apple","longname":"Apple Inc.","exchange":"NMS","exchDisp":"NASDAQ","quoteType":"EQUITY"},
				{"symbol":"","shortname":"junk"},
				{"symbol":"APLE","shortname":"Apple Hospitality","exchange":"NYQ","quoteType":"EQUITY"}
			],
			"news":[
				{"title":"Apple ships","publisher":"Reuters","link":"https://example.com/a","providerPublishTime":1709830800},
				{"title":""},
				{"title":"Apple again","publisher":"AP","link":"https://example.com/b"}
			]
		}`)
	})

	res, err := c.Search(context.Background(), "apple", 10)
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "AAPL", res[0].Symbol)
	assert.Equal(t, "Apple Inc.", res[0].Name)
	assert.Equal(t, "NASDAQ", res[0].Exchange)
	assert.Equal(t, "yahoo", res[0].Source)
	assert.Equal(t, "NYQ", res[1].Exchange)

	res, err = c.Search(context.Background(), "apple", 1)
	require.NoError(t, err)
	assert.Len(t, res, 1)

	news, err := c.News(context.Background(), "AAPL", 5)
	require.NoError(t, err)
	require.Len(t, news, 2)
	assert.Equal(t, "Apple ships", news[0].Title)
	assert.Equal(t, time.Unix(1709830800, 0).UTC(), news[0].PublishedAt)
	assert.True(t, news[1].PublishedAt.IsZero())
}

func TestClient_Search_HTTPError(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadGateway, `{}`)
	})
	_, err := c.Search(context.Background(), "apple", 5)
	assert.ErrorIs(t, err, domain.ErrProviderUnavailable)
}

func TestClient_ContextCancelled(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, chartBody)
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Quote(ctx, "AAPL")
	assert.Error(t, err)
}
