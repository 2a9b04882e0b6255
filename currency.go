package folio

import (
	"context"

	"github.com/shopspring/decimal"
)

// DefaultCurrency is the display currency assumed when a user has no stored
// preference or the preference lookup fails.
const DefaultCurrency = "EUR"

// FXPairSymbol constructs the synthetic symbol used to query the price
// source for a currency pair, e.g. FXPairSymbol("USD","EUR") == "USDEUR=X".
func FXPairSymbol(base, quote string) string {
	return base + quote + "=X"
}

// CurrencyResolver maps tickers to their trading currency and users to their
// display currency, and resolves FX rates through the price source.
type CurrencyResolver struct {
	Prefs      PreferenceStore
	Securities SecurityStore
	Source     PriceSource
}

// DisplayCurrency returns the user's preferred currency, falling back to
// DefaultCurrency when no preference is found or the lookup fails.
func (c *CurrencyResolver) DisplayCurrency(ctx context.Context, userID string) string {
	if c.Prefs == nil {
		return DefaultCurrency
	}
	cur, err := c.Prefs.DisplayCurrency(ctx, userID)
	if err != nil || cur == "" {
		return DefaultCurrency
	}
	return cur
}

// AssetCurrency returns the trading currency of a ticker, falling back to
// the given display currency when the ticker is unmapped.
func (c *CurrencyResolver) AssetCurrency(ctx context.Context, ticker, display string) string {
	if c.Securities == nil {
		return display
	}
	cur, err := c.Securities.AssetCurrency(ctx, NormalizeTicker(ticker))
	if err != nil || cur == "" {
		return display
	}
	return cur
}

// Rate returns the conversion rate from base to quote. An identity pair is
// exactly 1 without any lookup. A failed or empty lookup falls back to 1.0,
// a documented approximation: the returned flag is false so callers can mark
// the result as degraded rather than silently wrong.
func (c *CurrencyResolver) Rate(ctx context.Context, base, quote string) (decimal.Decimal, bool) {
	if base == quote {
		return decimal.NewFromInt(1), true
	}
	if c.Source == nil {
		return decimal.NewFromInt(1), false
	}
	rate, err := c.Source.Latest(ctx, FXPairSymbol(base, quote))
	if err != nil || rate.IsZero() {
		return decimal.NewFromInt(1), false
	}
	return rate, true
}
