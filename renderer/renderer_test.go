package renderer

import (
	"strings"
	"testing"

	"github.com/mlarrea/folio"
	"github.com/mlarrea/folio/date"
)

func TestSnapshot_MarksNonLivePrices(t *testing.T) {
	md := Snapshot(date.MustParse("2025-01-31"), []folio.PositionView{
		{
			Ticker:        "ACME",
			Quantity:      folio.Q(10),
			AvgPrice:      folio.M(100, "EUR"),
			TotalExposure: folio.M(1000, "EUR"),
			CurrentPrice:  folio.M(100, "EUR"),
			AvgDate:       date.MustParse("2025-01-10"),
			IsLivePrice:   false,
		},
	})

	if !strings.Contains(md, "| ACME |") {
		t.Errorf("missing position row:\n%s", md)
	}
	if !strings.Contains(md, "valued at cost") {
		t.Errorf("missing degraded footnote:\n%s", md)
	}
}

func TestSnapshot_Empty(t *testing.T) {
	md := Snapshot(date.MustParse("2025-01-31"), nil)
	if !strings.Contains(md, "No open position.") {
		t.Errorf("unexpected output:\n%s", md)
	}
}

func TestHistory_RendersEveryDay(t *testing.T) {
	md := History([]folio.DailyPoint{
		{On: date.MustParse("2025-01-06"), MarketValue: folio.M(100, "EUR"), CostBasis: folio.M(90, "EUR"), ProfitLoss: folio.M(10, "EUR"), Dividends: folio.M(0, "EUR")},
		{On: date.MustParse("2025-01-07"), MarketValue: folio.M(110, "EUR"), CostBasis: folio.M(90, "EUR"), ProfitLoss: folio.M(20, "EUR"), Dividends: folio.M(0, "EUR"), DegradedValue: true},
	})

	for _, want := range []string{"| 2025-01-06 |", "| 2025-01-07 |", "valued at cost"} {
		if !strings.Contains(md, want) {
			t.Errorf("missing %q in:\n%s", want, md)
		}
	}
}
