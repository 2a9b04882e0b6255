package folio

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/mlarrea/folio/date"
)

// day is a test shorthand for building dates.
func day(s string) date.Date { return date.MustParse(s) }

// eur is a test shorthand for amounts in the default test currency.
func eur(v float64) Money { return M(v, "EUR") }

func testBuy(on, ticker, person string, qty, price float64) Record {
	return Record{
		UserID:         "u1",
		Ticker:         ticker,
		On:             day(on),
		Person:         person,
		Category:       CategoryBuy,
		SharesCount:    Q(qty),
		PricePerShare:  eur(price),
		EffectivePrice: eur(price),
		TotalOutlay:    eur(price * qty),
	}
}

func testSell(on, ticker, person string, qty, price float64) Record {
	return Record{
		UserID:         "u1",
		Ticker:         ticker,
		On:             day(on),
		Person:         person,
		Category:       CategorySell,
		SharesCount:    Q(qty),
		PricePerShare:  eur(price),
		EffectivePrice: eur(price),
		TotalOutlay:    eur(price * qty).Neg(),
	}
}

// fakeLedger is an in-memory LedgerStore.
type fakeLedger struct {
	mu     sync.Mutex
	rows   []Record
	lastID int64

	failReplace bool
}

func (f *fakeLedger) Records(_ context.Context, filter RecordFilter) ([]Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Record
	for _, r := range f.rows {
		if filter.UserID != "" && r.UserID != filter.UserID {
			continue
		}
		if len(filter.Tickers) > 0 && !contains(filter.Tickers, r.Ticker) {
			continue
		}
		if len(filter.People) > 0 && !contains(filter.People, r.Person) {
			continue
		}
		if !filter.Until.IsZero() && r.On.After(filter.Until) {
			continue
		}
		if filter.TransactionID != 0 && r.TransactionID != filter.TransactionID {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeLedger) ReplaceScope(_ context.Context, userID, ticker, person string, records []Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failReplace {
		return fmt.Errorf("replace refused")
	}
	kept := f.rows[:0]
	for _, r := range f.rows {
		if r.UserID == userID && r.Ticker == ticker && r.Person == person {
			continue
		}
		kept = append(kept, r)
	}
	f.rows = append(kept, records...)
	return nil
}

func (f *fakeLedger) NextTransactionID(_ context.Context, _ string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastID++
	return f.lastID, nil
}

func (f *fakeLedger) Tickers(context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, r := range f.rows {
		if !contains(out, r.Ticker) {
			out = append(out, r.Ticker)
		}
	}
	return out, nil
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// fakeSource is a canned PriceSource.
type fakeSource struct {
	latest map[string]float64
	series map[string][]Quote
	err    error
}

func (f *fakeSource) Latest(_ context.Context, symbol string) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Decimal{}, f.err
	}
	v, ok := f.latest[symbol]
	if !ok {
		return decimal.Decimal{}, fmt.Errorf("unknown symbol %q", symbol)
	}
	return decimal.NewFromFloat(v), nil
}

func (f *fakeSource) Series(_ context.Context, symbols []string, r date.Range) ([]Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []Quote
	for _, s := range symbols {
		known, ok := f.series[s]
		if !ok {
			return nil, fmt.Errorf("unknown symbol %q", s)
		}
		for _, q := range known {
			if r.Contains(q.On) {
				out = append(out, q)
			}
		}
	}
	return out, nil
}

// fakePrices is an in-memory PriceStore.
type fakePrices struct {
	mu     sync.Mutex
	quotes []Quote
}

func (f *fakePrices) SaveQuotes(_ context.Context, quotes []Quote) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.quotes = append(f.quotes, quotes...)
	return nil
}

func (f *fakePrices) LatestQuoteDate(_ context.Context, symbol string) (date.Date, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var last date.Date
	found := false
	for _, q := range f.quotes {
		if q.Symbol == symbol && (!found || q.On.After(last)) {
			last, found = q.On, true
		}
	}
	return last, found, nil
}

func (f *fakePrices) Quotes(_ context.Context, symbols []string, r date.Range) ([]Quote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Quote
	for _, q := range f.quotes {
		if !contains(symbols, q.Symbol) {
			continue
		}
		if !r.From.IsZero() && q.On.Before(r.From) {
			continue
		}
		if !r.To.IsZero() && q.On.After(r.To) {
			continue
		}
		out = append(out, q)
	}
	return out, nil
}

// fakePrefs is a canned PreferenceStore.
type fakePrefs map[string]string

func (f fakePrefs) DisplayCurrency(_ context.Context, userID string) (string, error) {
	return f[userID], nil
}

// fakeSecurities is a canned SecurityStore.
type fakeSecurities map[string]string

func (f fakeSecurities) AssetCurrency(_ context.Context, ticker string) (string, error) {
	return f[ticker], nil
}
