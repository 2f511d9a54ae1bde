package twelvedata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"stock_watchlist/internal/feature/marketdata/domain"
	"stock_watchlist/internal/feature/marketdata/domain/entity"
	"stock_watchlist/internal/feature/marketdata/usecase"
	seriesentity "stock_watchlist/internal/feature/series/domain/entity"
	"stock_watchlist/internal/platform/externalapi/twelvedata/dto"
)

const providerName = "twelvedata"

// Client fetches quotes and daily history from Twelve Data.
type Client struct {
	cfg    Config
	client *http.Client
}

var (
	_ usecase.QuoteProvider   = (*Client)(nil)
	_ usecase.HistoryProvider = (*Client)(nil)
)

func NewClient(cfg Config, client *http.Client) *Client {
	return &Client{cfg: cfg, client: client}
}

func (t *Client) Name() string { return providerName }

// get calls endpoint with q and decodes the body into out. Twelve Data reports most failures
// with HTTP 200 and status "error", so callers still have to check the envelope.
func (t *Client) get(ctx context.Context, endpoint string, q url.Values, out any) error {
	q.Set("apikey", t.cfg.APIKey)
	u := fmt.Sprintf("%s/%s?%s", t.cfg.BaseURL, endpoint, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	res, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("twelvedata %s: %w: %w", endpoint, domain.ErrProviderUnavailable, err)
	}
	defer func() {
		if err := res.Body.Close(); err != nil {
			slog.Warn("failed to close response body", "error", err)
		}
	}()

	if res.StatusCode >= 400 {
		_, _ = io.Copy(io.Discard, res.Body)
		if res.StatusCode == http.StatusNotFound {
			return fmt.Errorf("twelvedata http %d: %w", res.StatusCode, domain.ErrSymbolNotFound)
		}
		return fmt.Errorf("twelvedata http %d: %w", res.StatusCode, domain.ErrProviderUnavailable)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("twelvedata decode: %w: %w", domain.ErrProviderUnavailable, err)
	}
	return nil
}

// apiError converts an error envelope. Unknown and malformed symbols come back as 400 or 404
// with a message naming the symbol parameter.
func apiError(body dto.ErrorBody) error {
	if body.Status != "error" {
		return nil
	}
	msg := strings.ToLower(body.Message)
	if body.Code == http.StatusNotFound ||
		(body.Code == http.StatusBadRequest && strings.Contains(msg, "symbol")) ||
		strings.Contains(msg, "not found") {
		return fmt.Errorf("twelvedata: %s: %w", body.Message, domain.ErrSymbolNotFound)
	}
	return fmt.Errorf("twelvedata: %s: %w", body.Message, domain.ErrProviderUnavailable)
}

func parseFloat(field, s string) (float64, error) {
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, s, err)
	}
	return f, nil
}

func parseTime(s string) (time.Time, error) {
	tm, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		tm, err = time.Parse("2006-01-02", s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
		}
	}
	return tm, nil
}

// Quote returns the latest quote for symbol.
func (t *Client) Quote(ctx context.Context, symbol string) (entity.Quote, error) {
	q := url.Values{}
	q.Set("symbol", symbol)

	var body dto.QuoteResponse
	if err := t.get(ctx, "quote", q, &body); err != nil {
		return entity.Quote{}, err
	}
	if err := apiError(body.ErrorBody); err != nil {
		return entity.Quote{}, err
	}

	out := entity.Quote{
		Symbol:   body.Symbol,
		Name:     body.Name,
		Exchange: body.Exchange,
		Currency: body.Currency,
	}
	fields := []struct {
		name string
		raw  string
		dst  *float64
	}{
		{"close", body.Close, &out.Price},
		{"open", body.Open, &out.Open},
		{"high", body.High, &out.High},
		{"low", body.Low, &out.Low},
		{"previous_close", body.PreviousClose, &out.PreviousClose},
		{"change", body.Change, &out.Change},
		{"percent_change", body.PercentChange, &out.ChangePercent},
	}
	for _, f := range fields {
		v, err := parseFloat(f.name, f.raw)
		if err != nil {
			return entity.Quote{}, fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err)
		}
		*f.dst = v
	}
	if out.Price <= 0 {
		return entity.Quote{}, fmt.Errorf("twelvedata: no price for %s: %w", symbol, domain.ErrSymbolNotFound)
	}
	if body.Volume != "" {
		if v, err := strconv.ParseInt(body.Volume, 10, 64); err == nil {
			out.Volume = v
		}
	}
	switch {
	case body.Timestamp > 0:
		out.UpdatedAt = time.Unix(body.Timestamp, 0).UTC()
	case body.Datetime != "":
		if tm, err := parseTime(body.Datetime); err == nil {
			out.UpdatedAt = tm
		}
	default:
		out.UpdatedAt = time.Now().UTC()
	}
	return out, nil
}

// History returns up to days daily bars, newest first as Twelve Data sends them.
func (t *Client) History(ctx context.Context, symbol string, days int) ([]seriesentity.Bar, error) {
	q := url.Values{}
	q.Set("symbol", symbol)
	q.Set("interval", "1day")
	q.Set("outputsize", strconv.Itoa(days))

	var body dto.TimeSeriesResponse
	if err := t.get(ctx, "time_series", q, &body); err != nil {
		return nil, err
	}
	if err := apiError(body.ErrorBody); err != nil {
		return nil, err
	}

	bars := make([]seriesentity.Bar, 0, len(body.Values))
	for _, v := range body.Values {
		tm, err := parseTime(v.Datetime)
		if err != nil {
			return nil, err
		}
		o, err := parseFloat("open", v.Open)
		if err != nil {
			return nil, err
		}
		h, err := parseFloat("high", v.High)
		if err != nil {
			return nil, err
		}
		l, err := parseFloat("low", v.Low)
		if err != nil {
			return nil, err
		}
		c, err := parseFloat("close", v.Close)
		if err != nil {
			return nil, err
		}
		var vol int64
		if v.Volume != "" {
			vol, err = strconv.ParseInt(v.Volume, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("parse volume %q: %w", v.Volume, err)
			}
		}

		bars = append(bars, seriesentity.Bar{
			Symbol: symbol,
			Date:   seriesentity.Truncate(tm),
			Open:   o,
			High:   h,
			Low:    l,
			Close:  c,
			Volume: vol,
		})
	}
	return bars, nil
}
