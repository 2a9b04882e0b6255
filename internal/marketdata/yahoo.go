// Package marketdata fetches daily prices and dividends from a Yahoo-style
// chart API. The response paths are configurable so self-hosted mirrors with
// a compatible shape can be used instead.
package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mlarrea/folio"
	"github.com/mlarrea/folio/date"
	"github.com/mlarrea/folio/internal/config"
)

type Client struct {
	base         string
	http         *http.Client
	log          *zap.Logger
	closePath    string
	datePath     string
	dividendPath string
}

func New(cfg config.MarketConfig, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		base:         cfg.BaseURL,
		http:         &http.Client{Timeout: cfg.Timeout},
		log:          log,
		closePath:    cfg.ClosePath,
		datePath:     cfg.DatePath,
		dividendPath: cfg.DividendPath,
	}
}

var _ folio.PriceSource = (*Client)(nil)

// Latest returns the most recent daily close for a symbol.
func (c *Client) Latest(ctx context.Context, symbol string) (decimal.Decimal, error) {
	today := date.Today()
	quotes, err := c.series(ctx, symbol, date.Range{From: today.Add(-7), To: today})
	if err != nil {
		return decimal.Decimal{}, err
	}
	if len(quotes) == 0 {
		return decimal.Decimal{}, fmt.Errorf("no recent quote for %q", symbol)
	}
	return quotes[len(quotes)-1].Close, nil
}

// Series returns the daily quotes of every symbol over the range. A failing
// symbol fails the whole call; callers wanting degradation fetch one symbol
// at a time.
func (c *Client) Series(ctx context.Context, symbols []string, r date.Range) ([]folio.Quote, error) {
	var quotes []folio.Quote
	for _, symbol := range symbols {
		part, err := c.series(ctx, symbol, r)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, part...)
	}
	return quotes, nil
}

func (c *Client) series(ctx context.Context, symbol string, r date.Range) ([]folio.Quote, error) {
	addr := fmt.Sprintf("%s/%s?interval=1d&events=div&period1=%d&period2=%d",
		c.base, url.PathEscape(symbol), r.From.Unix(), r.To.Add(1).Unix())

	var jobj any
	if err := c.jwget(ctx, addr, &jobj); err != nil {
		return nil, fmt.Errorf("fetching %q: %w", symbol, err)
	}

	days, err := c.epochs(jobj)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %w", symbol, err)
	}
	closes, err := jsonList(jobj, c.closePath)
	if err != nil {
		return nil, fmt.Errorf("parsing %q: %q %w", symbol, c.closePath, err)
	}

	dividends := c.dividends(jobj)

	var quotes []folio.Quote
	for i, day := range days {
		if i >= len(closes) {
			break
		}
		// a nil close means the market had no print that day
		val, ok := closes[i].(float64)
		if !ok {
			continue
		}
		div := dividends[day]
		delete(dividends, day)
		quotes = append(quotes, folio.Quote{
			Symbol:   symbol,
			On:       day,
			Close:    decimal.NewFromFloat(val),
			Dividend: div,
		})
	}
	// dividends on days without a close still matter
	for day, div := range dividends {
		quotes = append(quotes, folio.Quote{Symbol: symbol, On: day, Dividend: div})
	}

	sort.Slice(quotes, func(i, j int) bool { return quotes[i].On.Before(quotes[j].On) })
	return quotes, nil
}

// epochs extracts the per-day unix timestamps of the series.
func (c *Client) epochs(jobj any) ([]date.Date, error) {
	raw, err := jsonList(jobj, c.datePath)
	if err != nil {
		return nil, err
	}
	days := make([]date.Date, 0, len(raw))
	for _, v := range raw {
		sec, ok := v.(float64)
		if !ok {
			return nil, fmt.Errorf("timestamp is not a number: %v", v)
		}
		days = append(days, date.FromUnix(int64(sec)))
	}
	return days, nil
}

// dividends extracts the events.dividends map, keyed by ex-dividend day.
func (c *Client) dividends(jobj any) map[date.Date]decimal.Decimal {
	out := make(map[date.Date]decimal.Decimal)
	jval, err := jsonpath.Get(c.dividendPath, jobj)
	if err != nil {
		// most series simply have no dividend events
		return out
	}
	events, ok := jval.(map[string]any)
	if !ok {
		return out
	}
	for _, ev := range events {
		entry, ok := ev.(map[string]any)
		if !ok {
			continue
		}
		amount, ok := entry["amount"].(float64)
		if !ok {
			continue
		}
		sec, ok := entry["date"].(float64)
		if !ok {
			continue
		}
		out[date.FromUnix(int64(sec))] = decimal.NewFromFloat(amount)
	}
	return out
}

// jsonList resolves a jsonpath expected to yield a list.
func jsonList(jobj any, path string) ([]any, error) {
	jval, err := jsonpath.Get(path, jobj)
	if err != nil {
		return nil, err
	}
	list, ok := jval.([]any)
	if !ok {
		return nil, fmt.Errorf("not a list: %v", jval)
	}
	return list, nil
}

// jwget fetches a json document into v.
func (c *Client) jwget(ctx context.Context, addr string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", "folio/1.0")
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("http status %s", resp.Status)
	}
	c.log.Debug("fetched", zap.String("url", addr), zap.String("status", resp.Status))
	return json.NewDecoder(resp.Body).Decode(v)
}
