package folio

import (
	"testing"
)

func TestReplayPositions_AggregatesHolders(t *testing.T) {
	positions := replayPositions([]Record{
		testBuy("2025-01-10", "ACME", "alice", 10, 100),
		testBuy("2025-01-11", "ACME", "bob", 5, 100),
		testBuy("2025-01-12", "ZEN", "alice", 3, 50),
	}, day("2025-01-11"))

	acme := positions["ACME"]
	if acme == nil || !acme.qty.Equal(Q(15)) {
		t.Fatalf("ACME position = %+v, want 15 shares across holders", acme)
	}
	// ZEN was bought after the cutoff
	if zen := positions["ZEN"]; zen != nil && zen.qty.IsPositive() {
		t.Errorf("ZEN position = %+v, want none before its buy date", zen)
	}
}

func TestReplayPositions_IgnoresSyntheticRows(t *testing.T) {
	positions := replayPositions([]Record{
		testBuy("2025-01-10", "ACME", "alice", 10, 100),
		{
			UserID: "u1", Ticker: "ACME", On: day("2025-01-11"), Person: "alice",
			Category: CategoryProfit, SharesCount: Q(10), TotalOutlay: eur(500),
		},
	}, day("2025-01-31"))

	if got := positions["ACME"].qty; !got.Equal(Q(10)) {
		t.Errorf("quantity = %s, want 10 (profit row must not move the position)", got)
	}
}

func TestBuildSnapshot_ValuesAndSorts(t *testing.T) {
	positions := replayPositions([]Record{
		testBuy("2025-01-10", "SMALL", "alice", 1, 10),
		testBuy("2025-01-10", "BIG", "alice", 10, 100),
	}, day("2025-01-31"))

	views := buildSnapshot(positions, func(ticker string) (Money, bool) {
		if ticker == "BIG" {
			return eur(150), true
		}
		return eur(20), true
	})

	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}
	// sorted by exposure, largest first
	if views[0].Ticker != "BIG" || views[1].Ticker != "SMALL" {
		t.Errorf("order = %s,%s, want BIG,SMALL", views[0].Ticker, views[1].Ticker)
	}

	big := views[0]
	if !big.ProfitLoss.Equal(eur(500)) {
		t.Errorf("BIG ProfitLoss = %s, want %s", big.ProfitLoss, eur(500))
	}
	if !big.PerformancePct.Equal(Percent(50)) {
		t.Errorf("BIG PerformancePct = %s, want +50%%", big.PerformancePct)
	}
	if !big.IsLivePrice {
		t.Error("BIG IsLivePrice = false, want true")
	}
	if big.AvgDate != day("2025-01-10") {
		t.Errorf("BIG AvgDate = %s, want the trade date", big.AvgDate)
	}
}

func TestBuildSnapshot_FallsBackToCost(t *testing.T) {
	positions := replayPositions([]Record{
		testBuy("2025-01-10", "ACME", "alice", 10, 100),
	}, day("2025-01-31"))

	views := buildSnapshot(positions, func(string) (Money, bool) {
		return Money{}, false
	})

	v := views[0]
	if v.IsLivePrice {
		t.Error("IsLivePrice = true, want false without market data")
	}
	if !v.CurrentPrice.Equal(eur(100)) {
		t.Errorf("CurrentPrice = %s, want the average cost %s", v.CurrentPrice, eur(100))
	}
	// priced at cost, profit and loss degrades to exactly zero
	if !v.ProfitLoss.IsZero() {
		t.Errorf("ProfitLoss = %s, want zero", v.ProfitLoss)
	}
}

func TestBuildSnapshot_ExcludesFlatPositions(t *testing.T) {
	positions := replayPositions([]Record{
		testBuy("2025-01-10", "ACME", "alice", 10, 100),
		testSell("2025-01-20", "ACME", "alice", 10, 120),
	}, day("2025-01-31"))

	views := buildSnapshot(positions, func(string) (Money, bool) { return eur(120), true })
	if len(views) != 0 {
		t.Errorf("got %d views, want 0 for a fully sold position", len(views))
	}
}
