package folio

import (
	"sort"

	"github.com/mlarrea/folio/date"
)

// PositionView is a single line of a point-in-time portfolio snapshot, in
// the holder's display currency.
type PositionView struct {
	Ticker         string
	Quantity       Quantity
	AvgPrice       Money
	TotalExposure  Money // remaining cost basis
	CurrentPrice   Money
	ProfitLoss     Money
	PerformancePct Percent
	AvgDate        date.Date // date of the latest real trade for this ticker
	IsLivePrice    bool      // false when the price fell back to the cost basis
}

// positionState is the simplified per-ticker replay accumulator used by
// snapshots and the historical series builder. It aggregates across holders
// and intentionally ignores the materialized AvgPrice field, so it stays
// correct even against a stale recompute.
type positionState struct {
	qty       Quantity
	cost      Money
	lastTrade date.Date
}

// apply folds one real-trade row into the state with the running-average
// rule; synthetic rows are ignored.
func (p *positionState) apply(r Record) {
	switch r.Category {
	case CategoryBuy:
		p.cost = p.cost.Add(r.EffectivePrice.Mul(r.SharesCount))
		p.qty = p.qty.Add(r.SharesCount)
	case CategorySell:
		if p.qty.IsPositive() {
			avg := p.cost.Div(p.qty)
			p.cost = p.cost.Sub(avg.Mul(r.SharesCount))
		}
		p.qty = p.qty.Sub(r.SharesCount)
		if p.qty.LessThanOrEqual(residualTolerance) {
			p.qty, p.cost = Q(0), Money{}
		}
	default:
		return
	}
	p.lastTrade = r.On
}

// replayPositions replays real-trade rows up to and including `until`
// (a zero date means no bound) into per-ticker accumulators.
func replayPositions(records []Record, until date.Date) map[string]*positionState {
	ordered := make([]Record, len(records))
	copy(ordered, records)
	SortRecords(ordered)

	positions := make(map[string]*positionState)
	for _, r := range ordered {
		if !r.Category.IsTrade() {
			continue
		}
		if !until.IsZero() && r.On.After(until) {
			continue
		}
		p, ok := positions[r.Ticker]
		if !ok {
			p = &positionState{}
			positions[r.Ticker] = p
		}
		p.apply(r)
	}
	return positions
}

// priceFunc resolves the current market price of a ticker in the display
// currency. The flag is false when no live price is available.
type priceFunc func(ticker string) (Money, bool)

// buildSnapshot turns replayed positions into sorted PositionViews. When no
// live price is available for a held ticker the position's own average cost
// stands in for the price: profit/loss degrades to exactly zero and the view
// is flagged as not live.
func buildSnapshot(positions map[string]*positionState, priceOf priceFunc) []PositionView {
	views := make([]PositionView, 0, len(positions))
	for ticker, p := range positions {
		if !p.qty.GreaterThan(residualTolerance) {
			continue
		}
		avg := p.cost.Div(p.qty)

		price, live := priceOf(ticker)
		if !live {
			price = avg
		}

		marketValue := price.Mul(p.qty)
		pnl := marketValue.Sub(p.cost)

		var perf Percent
		if !p.cost.IsZero() {
			perf = Percent(pnl.Decimal().Div(p.cost.Decimal()).InexactFloat64() * 100)
		}

		views = append(views, PositionView{
			Ticker:         ticker,
			Quantity:       p.qty,
			AvgPrice:       avg,
			TotalExposure:  p.cost,
			CurrentPrice:   price,
			ProfitLoss:     pnl,
			PerformancePct: perf,
			AvgDate:        p.lastTrade,
			IsLivePrice:    live,
		})
	}

	sort.SliceStable(views, func(i, j int) bool {
		return views[i].TotalExposure.GreaterThan(views[j].TotalExposure)
	})
	return views
}
