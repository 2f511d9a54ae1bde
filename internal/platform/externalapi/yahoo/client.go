// Package yahoo provides a keyless client for the public Yahoo Finance chart and search endpoints.
package yahoo

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"stock_watchlist/internal/feature/marketdata/domain"
	"stock_watchlist/internal/feature/marketdata/domain/entity"
	"stock_watchlist/internal/feature/marketdata/usecase"
	seriesentity "stock_watchlist/internal/feature/series/domain/entity"
	"stock_watchlist/internal/platform/config"
	"stock_watchlist/internal/platform/externalapi/yahoo/dto"
	infrahttp "stock_watchlist/internal/platform/http"
	"stock_watchlist/internal/shared/ratelimiter"
)

const (
	providerName   = "yahoo"
	defaultBaseURL = "https://query1.finance.yahoo.com"
	userAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

type Client struct {
	http    *resty.Client
	limiter ratelimiter.Waiter
	now     func() time.Time
}

var (
	_ usecase.QuoteProvider   = (*Client)(nil)
	_ usecase.HistoryProvider = (*Client)(nil)
	_ usecase.SearchProvider  = (*Client)(nil)
	_ usecase.NewsProvider    = (*Client)(nil)
)

// NewClient builds a client paced to cfg.MaxRequestPerMinute.
func NewClient(cfg config.Yahoo) *Client {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		base = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		http: resty.NewWithClient(infrahttp.NewProviderClient(providerName, timeout)).
			SetBaseURL(base).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", userAgent),
		limiter: ratelimiter.NewLogged(providerName, ratelimiter.NewPerMinute(cfg.MaxRequestPerMinute)),
		now:     time.Now,
	}
}

func (c *Client) Name() string { return providerName }

func (c *Client) get(ctx context.Context, endpoint string, params map[string]string, out any) (*resty.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		SetResult(out).
		SetError(out).
		Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("yahoo %s: %w: %w", endpoint, domain.ErrProviderUnavailable, err)
	}
	return resp, nil
}

func (c *Client) chart(ctx context.Context, symbol string, params map[string]string) (dto.ChartResult, error) {
	var body dto.ChartResponse
	resp, err := c.get(ctx, "/v8/finance/chart/"+symbol, params, &body)
	if err != nil {
		return dto.ChartResult{}, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return dto.ChartResult{}, fmt.Errorf("yahoo chart %s: %w", symbol, domain.ErrSymbolNotFound)
	}
	if resp.IsError() {
		return dto.ChartResult{}, fmt.Errorf("yahoo chart http %d: %w", resp.StatusCode(), domain.ErrProviderUnavailable)
	}
	if e := body.Chart.Error; e != nil {
		if strings.EqualFold(e.Code, "Not Found") {
			return dto.ChartResult{}, fmt.Errorf("yahoo chart %s: %s: %w", symbol, e.Description, domain.ErrSymbolNotFound)
		}
		return dto.ChartResult{}, fmt.Errorf("yahoo chart %s: %s: %w", symbol, e.Description, domain.ErrProviderUnavailable)
	}
	if len(body.Chart.Result) == 0 {
		return dto.ChartResult{}, fmt.Errorf("yahoo chart %s: empty result: %w", symbol, domain.ErrSymbolNotFound)
	}
	return body.Chart.Result[0], nil
}

// Quote reads the latest price from the one-day chart metadata.
func (c *Client) Quote(ctx context.Context, symbol string) (entity.Quote, error) {
	res, err := c.chart(ctx, symbol, map[string]string{"range": "1d", "interval": "1d"})
	if err != nil {
		return entity.Quote{}, err
	}
	m := res.Meta
	if m.RegularMarketPrice <= 0 {
		return entity.Quote{}, fmt.Errorf("yahoo: no price for %s: %w", symbol, domain.ErrSymbolNotFound)
	}

	prev := m.ChartPreviousClose
	if prev == 0 {
		prev = m.PreviousClose
	}
	name := m.LongName
	if name == "" {
		name = m.ShortName
	}
	exchange := m.FullExchangeName
	if exchange == "" {
		exchange = m.ExchangeName
	}
	q := entity.Quote{
		Symbol:        strings.ToUpper(m.Symbol),
		Name:          name,
		Exchange:      exchange,
		Currency:      m.Currency,
		Price:         m.RegularMarketPrice,
		High:          m.RegularMarketDayHigh,
		Low:           m.RegularMarketDayLow,
		PreviousClose: prev,
		Volume:        m.RegularMarketVolume,
		UpdatedAt:     c.now().UTC(),
	}
	if m.RegularMarketTime > 0 {
		q.UpdatedAt = time.Unix(m.RegularMarketTime, 0).UTC()
	}
	if quotes := res.Indicators.Quote; len(quotes) > 0 && len(quotes[0].Open) > 0 {
		if o := quotes[0].Open[len(quotes[0].Open)-1]; o != nil {
			q.Open = *o
		}
	}
	return q, nil
}

// History returns up to days daily bars, oldest first. Rows with a null close are dropped.
func (c *Client) History(ctx context.Context, symbol string, days int) ([]seriesentity.Bar, error) {
	if days <= 0 {
		days = 365
	}
	end := c.now().UTC()
	// Calendar span covering days trading sessions plus holidays.
	start := end.AddDate(0, 0, -(days*7/5 + 10))
	res, err := c.chart(ctx, symbol, map[string]string{
		"interval": "1d",
		"period1":  strconv.FormatInt(start.Unix(), 10),
		"period2":  strconv.FormatInt(end.Unix(), 10),
	})
	if err != nil {
		return nil, err
	}
	if len(res.Indicators.Quote) == 0 {
		return nil, nil
	}
	ind := res.Indicators.Quote[0]

	at := func(xs []*float64, i int) float64 {
		if i < len(xs) && xs[i] != nil {
			return *xs[i]
		}
		return 0
	}
	bars := make([]seriesentity.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		cl := at(ind.Close, i)
		if cl <= 0 {
			continue
		}
		var vol int64
		if i < len(ind.Volume) && ind.Volume[i] != nil {
			vol = *ind.Volume[i]
		}
		bars = append(bars, seriesentity.Bar{
			Symbol: symbol,
			Date:   seriesentity.Truncate(time.Unix(ts, 0).UTC()),
			Open:   at(ind.Open, i),
			High:   at(ind.High, i),
			Low:    at(ind.Low, i),
			Close:  cl,
			Volume: vol,
		})
	}
	if len(bars) > days {
		bars = bars[len(bars)-days:]
	}
	return bars, nil
}

func (c *Client) search(ctx context.Context, query string, quotes, news int) (dto.SearchResponse, error) {
	var body dto.SearchResponse
	resp, err := c.get(ctx, "/v1/finance/search", map[string]string{
		"q":           query,
		"quotesCount": strconv.Itoa(quotes),
		"newsCount":   strconv.Itoa(news),
	}, &body)
	if err != nil {
		return body, err
	}
	if resp.IsError() {
		return body, fmt.Errorf("yahoo search http %d: %w", resp.StatusCode(), domain.ErrProviderUnavailable)
	}
	return body, nil
}

// Search looks up equities and funds matching query by symbol or name.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]entity.SearchResult, error) {
	body, err := c.search(ctx, query, limit, 0)
	if err != nil {
		return nil, err
	}
	out := make([]entity.SearchResult, 0, len(body.Quotes))
	for _, q := range body.Quotes {
		if q.Symbol == "" {
			continue
		}
		name := q.LongName
		if name == "" {
			name = q.ShortName
		}
		exchange := q.ExchDisp
		if exchange == "" {
			exchange = q.Exchange
		}
		out = append(out, entity.SearchResult{
			Symbol:   strings.ToUpper(q.Symbol),
			Name:     name,
			Exchange: exchange,
			Type:     q.QuoteType,
			Source:   providerName,
		})
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

// News returns recent headlines mentioning symbol.
func (c *Client) News(ctx context.Context, symbol string, limit int) ([]entity.NewsItem, error) {
	body, err := c.search(ctx, symbol, 0, limit)
	if err != nil {
		return nil, err
	}
	out := make([]entity.NewsItem, 0, len(body.News))
	for _, n := range body.News {
		if n.Title == "" {
			continue
		}
		item := entity.NewsItem{Title: n.Title, Publisher: n.Publisher, Link: n.Link}
		if n.ProviderPublishTime > 0 {
			item.PublishedAt = time.Unix(n.ProviderPublishTime, 0).UTC()
		}
		out = append(out, item)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
