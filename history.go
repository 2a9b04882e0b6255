package folio

import (
	"github.com/shopspring/decimal"

	"github.com/mlarrea/folio/date"
)

// DailyPoint is one day of the reconstructed portfolio series, in the
// display currency.
type DailyPoint struct {
	On            date.Date
	MarketValue   Money
	CostBasis     Money
	ProfitLoss    Money
	Dividends     Money // cumulative since the start of the series
	DegradedValue bool  // at least one held ticker priced at cost that day
}

// MarketTable holds forward-filled per-symbol close and dividend series.
// Symbols cover both tickers and FX pairs in the "{BASE}{QUOTE}=X" form.
type MarketTable struct {
	closes    map[string]*date.History[decimal.Decimal]
	dividends map[string]*date.History[decimal.Decimal]
}

// NewMarketTable indexes quotes by symbol. Quotes may arrive in any order;
// each per-symbol series is kept sorted by date.
func NewMarketTable(quotes []Quote) *MarketTable {
	t := &MarketTable{
		closes:    make(map[string]*date.History[decimal.Decimal]),
		dividends: make(map[string]*date.History[decimal.Decimal]),
	}
	for _, q := range quotes {
		c, ok := t.closes[q.Symbol]
		if !ok {
			c = &date.History[decimal.Decimal]{}
			t.closes[q.Symbol] = c
		}
		c.Append(q.On, q.Close)
		if !q.Dividend.IsZero() {
			d, ok := t.dividends[q.Symbol]
			if !ok {
				d = &date.History[decimal.Decimal]{}
				t.dividends[q.Symbol] = d
			}
			d.Append(q.On, q.Dividend)
		}
	}
	return t
}

// CloseAsOf returns the last known close on or before the given day.
func (t *MarketTable) CloseAsOf(symbol string, on date.Date) (decimal.Decimal, bool) {
	h, ok := t.closes[symbol]
	if !ok {
		return decimal.Decimal{}, false
	}
	return h.ValueAsOf(on)
}

// RateAsOf returns the last known base->quote conversion rate on or before
// the given day. The identity pair is always exactly 1; an unknown pair
// falls back to 1 and reports not found.
func (t *MarketTable) RateAsOf(base, quote string, on date.Date) (decimal.Decimal, bool) {
	if base == quote || base == "" || quote == "" {
		return decimal.NewFromInt(1), true
	}
	rate, ok := t.CloseAsOf(FXPairSymbol(base, quote), on)
	if !ok || rate.IsZero() {
		return decimal.NewFromInt(1), false
	}
	return rate, true
}

// DividendOn returns the per-share dividend paid on exactly that day.
func (t *MarketTable) DividendOn(symbol string, on date.Date) (decimal.Decimal, bool) {
	h, ok := t.dividends[symbol]
	if !ok {
		return decimal.Decimal{}, false
	}
	return h.Get(on)
}

// SeriesRequest describes one historical reconstruction run.
type SeriesRequest struct {
	Records         []Record // the full ledger, any order; rows after Range.To are ignored
	Range           date.Range
	DisplayCurrency string
	Currencies      map[string]string // ticker -> asset currency, display assumed when absent
	Market          *MarketTable
}

// BuildSeries reconstructs the portfolio day by day over the requested
// range. Records dated before the range seed the opening positions, so the
// series starts from the true holdings rather than from zero. For each day
// it replays that day's trades, values every open position at the
// forward-filled close converted to the display currency, and accrues
// dividends going ex that day. A ticker with no price history at all is
// valued at its cost basis and flags the day as degraded.
func BuildSeries(req SeriesRequest) []DailyPoint {
	ordered := make([]Record, len(req.Records))
	copy(ordered, req.Records)
	SortRecords(ordered)

	positions := make(map[string]*positionState)
	next := 0
	for next < len(ordered) && ordered[next].On.Before(req.Range.From) {
		if ordered[next].Category.IsTrade() {
			r := ordered[next]
			p, ok := positions[r.Ticker]
			if !ok {
				p = &positionState{}
				positions[r.Ticker] = p
			}
			p.apply(r)
		}
		next++
	}

	currencyOf := func(ticker string) string {
		if c, ok := req.Currencies[ticker]; ok && c != "" {
			return c
		}
		return req.DisplayCurrency
	}

	var points []DailyPoint
	cumDividends := M(0, req.DisplayCurrency)
	for day := range req.Range.Days() {
		for next < len(ordered) && !ordered[next].On.After(day) {
			if ordered[next].Category.IsTrade() {
				r := ordered[next]
				p, ok := positions[r.Ticker]
				if !ok {
					p = &positionState{}
					positions[r.Ticker] = p
				}
				p.apply(r)
			}
			next++
		}

		value := M(0, req.DisplayCurrency)
		cost := M(0, req.DisplayCurrency)
		degraded := false
		for ticker, p := range positions {
			if !p.qty.GreaterThan(residualTolerance) {
				continue
			}
			cost = cost.Add(p.cost)

			assetCur := currencyOf(ticker)
			close, ok := req.Market.CloseAsOf(ticker, day)
			if !ok {
				value = value.Add(p.cost)
				degraded = true
			} else {
				rate, liveRate := req.Market.RateAsOf(assetCur, req.DisplayCurrency, day)
				if !liveRate {
					degraded = true
				}
				price := M(close, assetCur).MulRate(rate, req.DisplayCurrency)
				value = value.Add(price.Mul(p.qty))
			}

			if div, ok := req.Market.DividendOn(ticker, day); ok {
				rate, _ := req.Market.RateAsOf(assetCur, req.DisplayCurrency, day)
				perShare := M(div, assetCur).MulRate(rate, req.DisplayCurrency)
				cumDividends = cumDividends.Add(perShare.Mul(p.qty))
			}
		}

		points = append(points, DailyPoint{
			On:            day,
			MarketValue:   value,
			CostBasis:     cost,
			ProfitLoss:    value.Sub(cost),
			Dividends:     cumDividends,
			DegradedValue: degraded,
		})
	}
	return points
}
