package folio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mlarrea/folio/date"
)

// refreshLookbackDays bounds the initial backfill of a symbol with no
// stored quotes yet.
const refreshLookbackDays = 5 * 365

// AccountingSystem ties the valuation engine to its collaborators. All of
// them are injected; the zero value is not usable.
type AccountingSystem struct {
	Ledger       LedgerStore
	Prices       PriceStore
	Source       PriceSource
	Currency     *CurrencyResolver
	Log          *zap.Logger
	BaseCurrency string

	mu    sync.Mutex
	locks map[lockKey]*sync.Mutex
}

// lockKey identifies one (ticker,person) scope of one user.
type lockKey struct {
	user, ticker, person string
}

// NewAccountingSystem wires an accounting system from its collaborators.
func NewAccountingSystem(ledger LedgerStore, prices PriceStore, source PriceSource, currency *CurrencyResolver, log *zap.Logger, baseCurrency string) *AccountingSystem {
	if log == nil {
		log = zap.NewNop()
	}
	if baseCurrency == "" {
		baseCurrency = DefaultCurrency
	}
	return &AccountingSystem{
		Ledger:       ledger,
		Prices:       prices,
		Source:       source,
		Currency:     currency,
		Log:          log,
		BaseCurrency: baseCurrency,
		locks:        make(map[lockKey]*sync.Mutex),
	}
}

// scopeLock returns the mutex serializing rewrites of one (ticker,person)
// scope for a user. Different scopes proceed concurrently.
func (a *AccountingSystem) scopeLock(userID, ticker, person string) *sync.Mutex {
	key := lockKey{user: userID, ticker: ticker, person: person}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.locks == nil {
		a.locks = make(map[lockKey]*sync.Mutex)
	}
	l, ok := a.locks[key]
	if !ok {
		l = &sync.Mutex{}
		a.locks[key] = l
	}
	return l
}

// SubmitTransaction records one logical buy or sell: it allocates the
// transaction across holders, merges the new rows into each affected
// (ticker,person) scope, replays the full scope history to refresh the
// computed fields and rewrites the scope atomically. It returns the stored
// rows of the transaction in canonical order.
func (a *AccountingSystem) SubmitTransaction(ctx context.Context, req SubmitRequest) ([]Record, error) {
	display := a.Currency.DisplayCurrency(ctx, req.UserID)

	if req.FXRate.IsZero() {
		assetCur := a.Currency.AssetCurrency(ctx, req.Ticker, display)
		rate, live := a.Currency.Rate(ctx, assetCur, display)
		if !live && assetCur != display {
			a.Log.Warn("fx rate unavailable, defaulting to 1.0",
				zap.String("base", assetCur), zap.String("quote", display))
		}
		req.FXRate = rate
	}

	txID, err := a.Ledger.NextTransactionID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("reserving transaction id: %w", err)
	}

	wacOf := func(ticker, person string, on date.Date) Money {
		rows, err := a.Ledger.Records(ctx, RecordFilter{
			UserID:  req.UserID,
			Tickers: []string{ticker},
			People:  []string{person},
		})
		if err != nil {
			a.Log.Warn("loading scope for cost basis", zap.Error(err))
			return Money{}
		}
		return AverageCostAsOf(rows, ticker, person, on)
	}

	allocated, err := Allocate(req, txID, display, wacOf)
	if err != nil {
		return nil, err
	}

	var stored []Record
	for _, scope := range Scopes(allocated) {
		rows := Filter(allocated, ByTicker(scope.Ticker), ByPerson(scope.Person))
		recomputed, err := a.rewriteScope(ctx, req.UserID, scope, func(existing []Record) []Record {
			return append(existing, rows...)
		})
		if err != nil {
			return nil, err
		}
		stored = append(stored, Filter(recomputed, byTransactionID(txID))...)
	}
	SortRecords(stored)

	a.Log.Info("transaction recorded",
		zap.Int64("transaction_id", txID),
		zap.String("ticker", NormalizeTicker(req.Ticker)),
		zap.String("side", string(req.Side)),
		zap.Int("rows", len(stored)))
	return stored, nil
}

// DeleteTransaction removes every row of a transaction and replays each
// affected scope so the computed fields of all remaining rows stay
// consistent. Deleting an unknown transaction is a no-op.
func (a *AccountingSystem) DeleteTransaction(ctx context.Context, userID string, transactionID int64) error {
	doomed, err := a.Ledger.Records(ctx, RecordFilter{UserID: userID, TransactionID: transactionID})
	if err != nil {
		return fmt.Errorf("loading transaction %d: %w", transactionID, err)
	}
	if len(doomed) == 0 {
		return nil
	}

	for _, scope := range Scopes(doomed) {
		_, err := a.rewriteScope(ctx, userID, scope, func(existing []Record) []Record {
			kept := existing[:0]
			for _, r := range existing {
				if r.TransactionID != transactionID {
					kept = append(kept, r)
				}
			}
			return kept
		})
		if err != nil {
			return err
		}
	}

	a.Log.Info("transaction deleted",
		zap.Int64("transaction_id", transactionID),
		zap.Int("rows", len(doomed)))
	return nil
}

// rewriteScope applies edit to the current rows of one scope, replays the
// result and stores it atomically, all under the scope lock.
func (a *AccountingSystem) rewriteScope(ctx context.Context, userID string, scope Scope, edit func([]Record) []Record) ([]Record, error) {
	lock := a.scopeLock(userID, scope.Ticker, scope.Person)
	lock.Lock()
	defer lock.Unlock()

	existing, err := a.Ledger.Records(ctx, RecordFilter{
		UserID:  userID,
		Tickers: []string{scope.Ticker},
		People:  []string{scope.Person},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: loading scope %s/%s: %v", ErrRecompute, scope.Ticker, scope.Person, err)
	}

	recomputed := Recalculate(edit(existing))
	if err := a.Ledger.ReplaceScope(ctx, userID, scope.Ticker, scope.Person, recomputed); err != nil {
		return nil, fmt.Errorf("%w: rewriting scope %s/%s: %v", ErrRecompute, scope.Ticker, scope.Person, err)
	}
	return recomputed, nil
}

func byTransactionID(id int64) func(Record) bool {
	return func(r Record) bool { return r.TransactionID == id }
}

// ReportFilter narrows a snapshot or history to a subset of tickers or
// holders. The zero value keeps the whole portfolio.
type ReportFilter struct {
	Tickers []string
	People  []string
}

func (f ReportFilter) normalized() ReportFilter {
	tickers := make([]string, len(f.Tickers))
	for i, t := range f.Tickers {
		tickers[i] = NormalizeTicker(t)
	}
	return ReportFilter{Tickers: tickers, People: f.People}
}

// Snapshot values the user's open positions as of a date (a zero date means
// today), in the display currency, optionally restricted to some tickers or
// holders. Positions flat at that date are omitted. Tickers without a usable
// cached price, or whose currency conversion has no cached rate, are valued
// at cost and flagged.
func (a *AccountingSystem) Snapshot(ctx context.Context, userID string, on date.Date, filter ReportFilter) ([]PositionView, error) {
	if on.IsZero() {
		on = date.Today()
	}
	display := a.Currency.DisplayCurrency(ctx, userID)
	filter = filter.normalized()

	records, err := a.Ledger.Records(ctx, RecordFilter{
		UserID:  userID,
		Tickers: filter.Tickers,
		People:  filter.People,
		Until:   on,
	})
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	positions := replayPositions(records, on)
	if len(positions) == 0 {
		return nil, nil
	}

	currencies := make(map[string]string, len(positions))
	symbols := make([]string, 0, 2*len(positions))
	for ticker := range positions {
		cur := a.Currency.AssetCurrency(ctx, ticker, display)
		currencies[ticker] = cur
		symbols = append(symbols, ticker)
		if cur != display {
			symbols = append(symbols, FXPairSymbol(cur, display))
		}
	}

	quotes, err := a.Prices.Quotes(ctx, symbols, date.Range{To: on})
	if err != nil {
		a.Log.Warn("loading cached quotes", zap.Error(err))
	}
	market := NewMarketTable(quotes)

	priceOf := func(ticker string) (Money, bool) {
		close, ok := market.CloseAsOf(ticker, on)
		if !ok {
			return Money{}, false
		}
		rate, live := market.RateAsOf(currencies[ticker], display, on)
		return M(close, currencies[ticker]).MulRate(rate, display), live
	}
	return buildSnapshot(positions, priceOf), nil
}

// History reconstructs the user's portfolio day by day over the range, in
// the display currency, optionally restricted to some tickers or holders.
func (a *AccountingSystem) History(ctx context.Context, userID string, r date.Range, filter ReportFilter) ([]DailyPoint, error) {
	if r.From.IsZero() || r.To.IsZero() || r.To.Before(r.From) {
		return nil, validationf("invalid date range %s..%s", r.From, r.To)
	}
	display := a.Currency.DisplayCurrency(ctx, userID)
	filter = filter.normalized()

	records, err := a.Ledger.Records(ctx, RecordFilter{
		UserID:  userID,
		Tickers: filter.Tickers,
		People:  filter.People,
		Until:   r.To,
	})
	if err != nil {
		return nil, fmt.Errorf("loading ledger: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	currencies := make(map[string]string)
	var symbols []string
	for _, scope := range Scopes(records) {
		if _, seen := currencies[scope.Ticker]; seen {
			continue
		}
		cur := a.Currency.AssetCurrency(ctx, scope.Ticker, display)
		currencies[scope.Ticker] = cur
		symbols = append(symbols, scope.Ticker)
		if cur != display {
			symbols = append(symbols, FXPairSymbol(cur, display))
		}
	}

	quotes, err := a.Prices.Quotes(ctx, symbols, date.Range{To: r.To})
	if err != nil {
		a.Log.Warn("loading cached quotes", zap.Error(err))
	}

	return BuildSeries(SeriesRequest{
		Records:         records,
		Range:           r,
		DisplayCurrency: display,
		Currencies:      currencies,
		Market:          NewMarketTable(quotes),
	}), nil
}

// RefreshMarketData pulls daily quotes for every ledger ticker and for the
// FX pairs converting their trading currencies into the base currency, and
// caches them. Each symbol resumes from its last stored date. Per-symbol
// failures degrade the refresh instead of aborting it; the joined error
// reports every symbol that failed.
func (a *AccountingSystem) RefreshMarketData(ctx context.Context) error {
	tickers, err := a.Ledger.Tickers(ctx)
	if err != nil {
		return fmt.Errorf("listing tickers: %w", err)
	}

	symbols := make([]string, 0, 2*len(tickers))
	seen := make(map[string]bool)
	for _, ticker := range tickers {
		symbols = append(symbols, ticker)
		cur := a.Currency.AssetCurrency(ctx, ticker, a.BaseCurrency)
		if cur != a.BaseCurrency {
			pair := FXPairSymbol(cur, a.BaseCurrency)
			if !seen[pair] {
				seen[pair] = true
				symbols = append(symbols, pair)
			}
		}
	}

	today := date.Today()
	var errs []error
	for _, symbol := range symbols {
		from := today.Add(-refreshLookbackDays)
		if last, ok, err := a.Prices.LatestQuoteDate(ctx, symbol); err != nil {
			errs = append(errs, fmt.Errorf("%s: last stored date: %w", symbol, err))
			continue
		} else if ok {
			if !last.Before(today) {
				continue
			}
			from = last.Add(1)
		}

		quotes, err := a.Source.Series(ctx, []string{symbol}, date.Range{From: from, To: today})
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: fetching series: %w", symbol, err))
			continue
		}
		if len(quotes) == 0 {
			continue
		}
		if err := a.Prices.SaveQuotes(ctx, quotes); err != nil {
			errs = append(errs, fmt.Errorf("%s: caching quotes: %w", symbol, err))
			continue
		}
		a.Log.Debug("quotes refreshed", zap.String("symbol", symbol), zap.Int("count", len(quotes)))
	}
	if len(errs) > 0 {
		a.Log.Warn("market data refresh degraded", zap.Int("failures", len(errs)))
	}
	return errors.Join(errs...)
}
