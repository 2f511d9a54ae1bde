// Package csvfile reads exchange-style daily history exports into bars.
package csvfile

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"stock_watchlist/internal/feature/series/domain/entity"
	"stock_watchlist/internal/feature/series/usecase"
)

var ErrMissingColumn = errors.New("required column missing")

// Accepted date layouts, tried in order.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"02-Jan-2006",
	"2-Jan-2006",
	"02-01-2006",
	"01/02/2006",
	"2006/01/02",
}

const (
	colDate = iota
	colSeries
	colPrevClose
	colOpen
	colHigh
	colLow
	colLast
	colClose
	colVWAP
	colVolume
	colTurnover
	colTrades
	colDeliverableVolume
	colDeliverablePercent
)

// headerAliases maps normalised header text to a column. Normalising drops case and every
// non-alphanumeric rune, so "Prev Close", "Prev_Close" and "prevClose" all land on prevclose.
var headerAliases = map[string]int{
	"date":               colDate,
	"series":             colSeries,
	"prevclose":          colPrevClose,
	"open":               colOpen,
	"high":               colHigh,
	"low":                colLow,
	"last":               colLast,
	"close":              colClose,
	"vwap":               colVWAP,
	"volume":             colVolume,
	"turnover":           colTurnover,
	"trades":             colTrades,
	"deliverablevolume":  colDeliverableVolume,
	"deliverable":        colDeliverablePercent,
	"deliverble":         colDeliverablePercent,
	"percdeliverable":    colDeliverablePercent,
	"percentdeliverable": colDeliverablePercent,
}

type row struct {
	Date   time.Time `validate:"required"`
	Open   float64   `validate:"gte=0"`
	High   float64   `validate:"gte=0,gtefield=Low"`
	Low    float64   `validate:"gte=0"`
	Close  float64   `validate:"gt=0"`
	Volume int64     `validate:"gte=0"`
}

type Reader struct {
	validate *validator.Validate
}

var _ usecase.BarFileReader = (*Reader)(nil)

func NewReader() *Reader {
	return &Reader{validate: validator.New()}
}

func normalise(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(h) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return entity.Truncate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", s)
}

func parseFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", "")
	if s == "" || s == "-" {
		return 0, nil
	}
	return strconv.ParseFloat(s, 64)
}

func parseInt(s string) (int64, error) {
	f, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	return int64(f), nil
}

// ReadBars opens path and parses it with Parse.
func (r *Reader) ReadBars(ctx context.Context, path, symbol string) ([]entity.Bar, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()
	return r.Parse(ctx, f, symbol)
}

// Parse reads a header row followed by one bar per row. Rows that fail to parse or validate are
// skipped and counted; a missing Date or Close column fails the whole file.
func (r *Reader) Parse(ctx context.Context, in io.Reader, symbol string) ([]entity.Bar, int, error) {
	cr := csv.NewReader(in)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read header: %w", err)
	}
	idx := make(map[int]int)
	for i, h := range header {
		if col, ok := headerAliases[normalise(h)]; ok {
			if _, dup := idx[col]; !dup {
				idx[col] = i
			}
		}
	}
	if _, ok := idx[colDate]; !ok {
		return nil, 0, fmt.Errorf("date: %w", ErrMissingColumn)
	}
	if _, ok := idx[colClose]; !ok {
		return nil, 0, fmt.Errorf("close: %w", ErrMissingColumn)
	}

	var (
		bars    []entity.Bar
		skipped int
		line    = 1
	)
	for {
		if err := ctx.Err(); err != nil {
			return nil, skipped, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			skipped++
			slog.Debug("csv row unreadable", "symbol", symbol, "line", line, "error", err)
			continue
		}
		b, err := r.toBar(rec, idx, symbol)
		if err != nil {
			skipped++
			slog.Debug("csv row skipped", "symbol", symbol, "line", line, "error", err)
			continue
		}
		bars = append(bars, b)
	}
	return bars, skipped, nil
}

func (r *Reader) toBar(rec []string, idx map[int]int, symbol string) (entity.Bar, error) {
	field := func(col int) string {
		i, ok := idx[col]
		if !ok || i >= len(rec) {
			return ""
		}
		return rec[i]
	}
	var errs []error
	num := func(col int) float64 {
		v, err := parseFloat(field(col))
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}
	integer := func(col int) int64 {
		v, err := parseInt(field(col))
		if err != nil {
			errs = append(errs, err)
		}
		return v
	}

	date, err := parseDate(field(colDate))
	if err != nil {
		return entity.Bar{}, err
	}
	b := entity.Bar{
		Symbol:             symbol,
		Date:               date,
		Open:               num(colOpen),
		High:               num(colHigh),
		Low:                num(colLow),
		Close:              num(colClose),
		Volume:             integer(colVolume),
		PrevClose:          num(colPrevClose),
		Last:               num(colLast),
		VWAP:               num(colVWAP),
		Turnover:           num(colTurnover),
		Trades:             integer(colTrades),
		DeliverableVolume:  integer(colDeliverableVolume),
		DeliverablePercent: num(colDeliverablePercent),
		Series:             strings.TrimSpace(field(colSeries)),
	}
	if err := errors.Join(errs...); err != nil {
		return entity.Bar{}, err
	}
	if err := r.validate.Struct(row{Date: b.Date, Open: b.Open, High: b.High, Low: b.Low, Close: b.Close, Volume: b.Volume}); err != nil {
		return entity.Bar{}, err
	}
	return b, nil
}
