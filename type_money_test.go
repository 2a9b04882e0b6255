package folio

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMoney_WeakEmptyCurrency(t *testing.T) {
	sum := Money{}.Add(eur(10))
	if sum.Currency() != "EUR" || !sum.Equal(eur(10)) {
		t.Errorf("zero + 10 EUR = %s %s", sum, sum.Currency())
	}
}

func TestMoney_MismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("adding EUR and USD did not panic")
		}
	}()
	eur(1).Add(M(1, "USD"))
}

func TestMoney_MulRateChangesCurrency(t *testing.T) {
	got := M(100, "USD").MulRate(decimal.NewFromFloat(0.9), "EUR")
	if got.Currency() != "EUR" || !got.Equal(eur(90)) {
		t.Errorf("MulRate = %s %s, want 90 EUR", got, got.Currency())
	}
}

func TestMoney_SignedString(t *testing.T) {
	tests := []struct {
		in   Money
		want string
	}{
		{eur(0), "-"},
		{eur(1), "+€1.00"},
		{eur(-1), "-€1.00"},
	}
	for _, tt := range tests {
		if got := tt.in.SignedString(); got != tt.want {
			t.Errorf("SignedString(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuantity_DivExact(t *testing.T) {
	ratio := Q(60).Div(Q(100))
	if !ratio.Equal(Q(0.6)) {
		t.Errorf("60/100 = %s, want 0.6", ratio)
	}
}
