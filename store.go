package folio

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mlarrea/folio/date"
)

// Quote is one market data point for a symbol: a closing price and an
// optional per-share dividend paid that day. FX rates ride on synthetic
// "{BASE}{QUOTE}=X" symbols.
type Quote struct {
	Symbol   string
	On       date.Date
	Close    decimal.Decimal
	Dividend decimal.Decimal
}

// RecordFilter selects ledger rows. Zero fields mean "no constraint".
// Result sets are unordered; canonical ordering is the engine's job.
type RecordFilter struct {
	UserID        string
	Tickers       []string
	People        []string
	Until         date.Date // inclusive upper bound on the operation date
	TransactionID int64
}

// LedgerStore is the persisted ledger of transaction records. Implementations
// are injected into the accounting system so tests can substitute fakes.
type LedgerStore interface {
	// Records returns the rows matching the filter, in no particular order.
	Records(ctx context.Context, filter RecordFilter) ([]Record, error)

	// ReplaceScope atomically rewrites every row of one (ticker,person)
	// scope for a user. The rewrite is all-or-nothing: on error the previous
	// rows must still be in place.
	ReplaceScope(ctx context.Context, userID, ticker, person string, records []Record) error

	// NextTransactionID reserves the next monotonically increasing
	// transaction id for a user.
	NextTransactionID(ctx context.Context, userID string) (int64, error)

	// Tickers returns the distinct tickers referenced by the ledger.
	Tickers(ctx context.Context) ([]string, error)
}

// PriceSource is the external market price/dividend provider.
type PriceSource interface {
	// Latest returns the most recent known price for a symbol.
	Latest(ctx context.Context, symbol string) (decimal.Decimal, error)

	// Series returns the daily series for the symbols over the range.
	Series(ctx context.Context, symbols []string, r date.Range) ([]Quote, error)
}

// PriceStore caches fetched quotes so snapshots and historical series do not
// depend on the external source being reachable.
type PriceStore interface {
	// SaveQuotes upserts quotes by (symbol, date).
	SaveQuotes(ctx context.Context, quotes []Quote) error

	// LatestQuoteDate returns the most recent stored date for a symbol.
	LatestQuoteDate(ctx context.Context, symbol string) (date.Date, bool, error)

	// Quotes returns stored quotes for the symbols over the range, in no
	// particular order. A zero From is unbounded below, which callers use to
	// pull enough history for forward-filling.
	Quotes(ctx context.Context, symbols []string, r date.Range) ([]Quote, error)
}

// PreferenceStore resolves per-user settings.
type PreferenceStore interface {
	// DisplayCurrency returns the user's preferred currency, or "" when the
	// user has no stored preference.
	DisplayCurrency(ctx context.Context, userID string) (string, error)
}

// SecurityStore maps tickers to their trading currency.
type SecurityStore interface {
	// AssetCurrency returns the trading currency of a ticker, or "" when the
	// ticker is unmapped.
	AssetCurrency(ctx context.Context, ticker string) (string, error)
}
