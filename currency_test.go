package folio

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
)

func TestFXPairSymbol(t *testing.T) {
	if got := FXPairSymbol("USD", "EUR"); got != "USDEUR=X" {
		t.Errorf("FXPairSymbol = %q, want USDEUR=X", got)
	}
}

func TestCurrencyResolver_Rate(t *testing.T) {
	resolver := &CurrencyResolver{
		Source: &fakeSource{latest: map[string]float64{"USDEUR=X": 0.9}},
	}
	ctx := context.Background()

	// identity is exactly 1, no lookup involved
	rate, live := resolver.Rate(ctx, "EUR", "EUR")
	if !live || !rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("identity Rate = %s,%v, want exactly 1,true", rate, live)
	}

	rate, live = resolver.Rate(ctx, "USD", "EUR")
	if !live || !rate.Equal(decimal.NewFromFloat(0.9)) {
		t.Errorf("Rate(USD,EUR) = %s,%v, want 0.9,true", rate, live)
	}

	// unknown pair falls back to 1 flagged as not live
	rate, live = resolver.Rate(ctx, "GBP", "EUR")
	if live || !rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Rate(GBP,EUR) = %s,%v, want 1,false", rate, live)
	}
}

func TestCurrencyResolver_RateWithoutSource(t *testing.T) {
	resolver := &CurrencyResolver{}
	rate, live := resolver.Rate(context.Background(), "USD", "EUR")
	if live || !rate.Equal(decimal.NewFromInt(1)) {
		t.Errorf("Rate = %s,%v, want 1,false without a source", rate, live)
	}
}

func TestCurrencyResolver_DisplayCurrency(t *testing.T) {
	resolver := &CurrencyResolver{Prefs: fakePrefs{"u1": "USD"}}
	ctx := context.Background()

	if got := resolver.DisplayCurrency(ctx, "u1"); got != "USD" {
		t.Errorf("DisplayCurrency(u1) = %q, want USD", got)
	}
	if got := resolver.DisplayCurrency(ctx, "unknown"); got != DefaultCurrency {
		t.Errorf("DisplayCurrency(unknown) = %q, want %q", got, DefaultCurrency)
	}
}

func TestCurrencyResolver_AssetCurrency(t *testing.T) {
	resolver := &CurrencyResolver{Securities: fakeSecurities{"ACME": "USD"}}
	ctx := context.Background()

	if got := resolver.AssetCurrency(ctx, "acme", "EUR"); got != "USD" {
		t.Errorf("AssetCurrency(acme) = %q, want USD (normalized lookup)", got)
	}
	if got := resolver.AssetCurrency(ctx, "ZEN", "EUR"); got != "EUR" {
		t.Errorf("AssetCurrency(ZEN) = %q, want the display fallback", got)
	}
}
