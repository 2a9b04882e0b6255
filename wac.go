package folio

import (
	"github.com/mlarrea/folio/date"
)

// residualTolerance is the share count under which a position is considered
// flat. Selling down to a residue at or below it hard-resets the whole
// cost-basis state, so floating residue never leaks into the next position.
var residualTolerance = Q(1e-6)

// runningState is the per-(ticker,person) accumulator replayed over the
// canonical row order. Only real trades mutate it.
type runningState struct {
	shares  Quantity
	cost    Money
	effCost Money
	avg     Money
	effAvg  Money
}

// applyBuy folds a buy row into the state.
func (s *runningState) applyBuy(qty Quantity, price, effPrice Money) {
	s.cost = s.cost.Add(price.Mul(qty))
	s.effCost = s.effCost.Add(effPrice.Mul(qty))
	s.shares = s.shares.Add(qty)
	if s.shares.IsPositive() {
		s.avg = s.cost.Div(s.shares)
		s.effAvg = s.effCost.Div(s.shares)
	} else {
		s.avg = Money{}
		s.effAvg = Money{}
	}
}

// applySell removes the sold quantity at the current average cost. When the
// remaining share count falls to the residual tolerance the whole state is
// reset, so a later position restarts its WAC from scratch.
func (s *runningState) applySell(qty Quantity) {
	s.cost = s.cost.Sub(s.avg.Mul(qty))
	s.effCost = s.effCost.Sub(s.effAvg.Mul(qty))
	s.shares = s.shares.Sub(qty)
	if s.shares.LessThanOrEqual(residualTolerance) {
		*s = runningState{}
	}
}

// Recalculate replays the complete row set and returns a copy with the
// computed fields (AvgPrice, EffAvgPrice, FIFOAvgDate) populated on every
// row. Rows from several (ticker,person) scopes may be mixed; each scope is
// replayed independently. The result is in canonical order.
//
// Recalculate is a pure function of the row order and inputs: running it
// twice yields identical computed fields.
func Recalculate(records []Record) []Record {
	out := make([]Record, len(records))
	copy(out, records)
	SortRecords(out)

	states := make(map[Scope]*runningState)
	queues := make(map[Scope]lots)

	for i := range out {
		r := &out[i]
		scope := Scope{Ticker: r.Ticker, Person: r.Person}
		state, ok := states[scope]
		if !ok {
			state = &runningState{}
			states[scope] = state
		}

		switch r.Category {
		case CategoryBuy:
			state.applyBuy(r.SharesCount, r.PricePerShare, r.EffectivePrice)
			queues[scope] = queues[scope].buy(r.On, r.SharesCount)
		case CategorySell:
			state.applySell(r.SharesCount)
			queues[scope] = queues[scope].sell(r.SharesCount)
		case CategoryProfit, CategoryLoss:
			// Synthetic rows do not move the position; they record the
			// WAC snapshot at this point in the replay.
		}

		r.AvgPrice = state.avg
		r.EffAvgPrice = state.effAvg
		if r.Category.IsTrade() {
			r.FIFOAvgDate = queues[scope].averageDate()
		} else {
			r.FIFOAvgDate = nil
		}
	}
	return out
}

// AverageCostAsOf replays the real-trade rows of one (ticker,person) scope
// up to and including the given date and returns the effective weighted
// average cost at that point, fees and taxes amortized in. Realized gains
// are priced against this value. A scope with no prior rows has no cost
// basis yet and returns zero, not an error.
func AverageCostAsOf(records []Record, ticker, person string, on date.Date) Money {
	ticker = NormalizeTicker(ticker)
	scoped := Filter(records, ByTicker(ticker), ByPerson(person))
	SortRecords(scoped)

	var state runningState
	for _, r := range scoped {
		if r.On.After(on) {
			break
		}
		switch r.Category {
		case CategoryBuy:
			state.applyBuy(r.SharesCount, r.PricePerShare, r.EffectivePrice)
		case CategorySell:
			state.applySell(r.SharesCount)
		}
	}
	return state.effAvg
}

// RealizedGain computes the realized profit or loss of selling qty shares at
// the given per-share price, net of fees and taxes, against the average cost
// before the sale. The returned category is Profit when the gain is zero or
// positive, Loss otherwise.
func RealizedGain(wacBeforeSell Money, qty Quantity, price, fees, taxes Money) (Money, Category) {
	proceeds := price.Mul(qty).Sub(fees).Sub(taxes)
	costSold := wacBeforeSell.Mul(qty)
	pnl := proceeds.Sub(costSold)
	if pnl.IsNegative() {
		return pnl, CategoryLoss
	}
	return pnl, CategoryProfit
}
