package folio

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mlarrea/folio/date"
)

// Category identifies the kind of ledger row. Buy and Sell are real trades
// that move the position; Profit and Loss are synthetic realized-gain rows
// recorded alongside a Sell for reporting.
type Category string

const (
	CategoryBuy    Category = "Buy"
	CategorySell   Category = "Sell"
	CategoryProfit Category = "Profit"
	CategoryLoss   Category = "Loss"
)

// IsTrade reports whether rows of this category move the position.
func (c Category) IsTrade() bool { return c == CategoryBuy || c == CategorySell }

// Sign returns +1 for rows that increase the holding (or record a gain)
// and -1 for rows that decrease it (or record a loss).
func (c Category) Sign() int {
	switch c {
	case CategoryBuy, CategoryProfit:
		return +1
	case CategorySell, CategoryLoss:
		return -1
	default:
		return 0
	}
}

// ParseCategory parses a string into a Category.
func ParseCategory(s string) (Category, error) {
	switch Category(s) {
	case CategoryBuy, CategorySell, CategoryProfit, CategoryLoss:
		return Category(s), nil
	default:
		return "", fmt.Errorf("unknown category: %q", s)
	}
}

// Record is the atomic ledger entry for one holder's share of a transaction.
// All monetary fields are expressed in the holder's display currency.
//
// AvgPrice, EffAvgPrice and FIFOAvgDate are computed by the recalculation
// engine, never supplied by callers; they are rewritten for the whole
// (ticker,person) scope whenever any row in that scope changes.
type Record struct {
	ID     int64
	UserID string
	Ticker string
	On     date.Date
	Person string

	Category Category

	SharesCount    Quantity // always >= 0, direction is Category.Sign()
	PricePerShare  Money
	EffectivePrice Money // fees and taxes amortized into the per-share price
	TotalOutlay    Money // signed cash impact
	Fees           Money
	Taxes          Money

	AvgPrice    Money      // computed: running WAC after this row
	EffAvgPrice Money      // computed: running effective WAC after this row
	FIFOAvgDate *date.Date // computed: FIFO-weighted average acquisition date, nil when flat

	TransactionID int64 // shared by all rows produced from one logical submission
}

// NormalizeTicker returns the canonical uppercase form of a ticker.
func NormalizeTicker(ticker string) string {
	return strings.ToUpper(strings.TrimSpace(ticker))
}

// MarshalJSON implements the json.Marshaler interface for Record.
func (r Record) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("ticker", r.Ticker)
	w.Append("date", r.On)
	w.Append("person", r.Person)
	w.Append("category", r.Category)
	w.Append("shares", r.SharesCount)
	w.Append("price", r.PricePerShare)
	w.Append("effective_price", r.EffectivePrice)
	w.Append("outlay", r.TotalOutlay)
	w.Append("fees", r.Fees)
	w.Append("taxes", r.Taxes)
	w.Append("avg_price", r.AvgPrice)
	w.Append("eff_avg_price", r.EffAvgPrice)
	if r.FIFOAvgDate != nil {
		w.Append("fifo_avg_date", r.FIFOAvgDate)
	}
	w.Append("transaction_id", r.TransactionID)
	return w.MarshalJSON()
}

// SortRecords establishes the canonical replay order: operation date
// ascending, real trades before same-day synthetic rows, transaction id as a
// stable tie-break. Running state is replayed exactly once over this order.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.On != b.On {
			return a.On.Before(b.On)
		}
		if a.Category.IsTrade() != b.Category.IsTrade() {
			return a.Category.IsTrade()
		}
		return a.TransactionID < b.TransactionID
	})
}

// ByTicker returns a predicate that filters records by ticker.
func ByTicker(ticker string) func(Record) bool {
	ticker = NormalizeTicker(ticker)
	return func(r Record) bool { return r.Ticker == ticker }
}

// ByPerson returns a predicate that filters records by holder.
func ByPerson(person string) func(Record) bool {
	return func(r Record) bool { return r.Person == person }
}

// Filter returns the records accepted by all predicates, preserving order.
func Filter(records []Record, predicates ...func(Record) bool) []Record {
	out := make([]Record, 0, len(records))
next:
	for _, r := range records {
		for _, p := range predicates {
			if !p(r) {
				continue next
			}
		}
		out = append(out, r)
	}
	return out
}

// Scope identifies one (ticker,person) recomputation unit.
type Scope struct {
	Ticker string
	Person string
}

// Scopes returns the distinct (ticker,person) pairs covered by the records,
// in first-appearance order.
func Scopes(records []Record) []Scope {
	seen := make(map[Scope]struct{})
	out := make([]Scope, 0, 4)
	for _, r := range records {
		s := Scope{Ticker: r.Ticker, Person: r.Person}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
