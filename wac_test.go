package folio

import (
	"testing"
)

func TestRecalculate_RunningAverage(t *testing.T) {
	records := Recalculate([]Record{
		testBuy("2025-01-10", "ACME", "alice", 10, 100),
		testBuy("2025-02-10", "ACME", "alice", 10, 200),
	})

	if got := records[0].AvgPrice; !got.Equal(eur(100)) {
		t.Errorf("first buy AvgPrice = %s, want %s", got, eur(100))
	}
	if got := records[1].AvgPrice; !got.Equal(eur(150)) {
		t.Errorf("second buy AvgPrice = %s, want %s", got, eur(150))
	}
}

func TestRecalculate_SellKeepsAverage(t *testing.T) {
	records := Recalculate([]Record{
		testBuy("2025-01-10", "ACME", "alice", 10, 100),
		testSell("2025-02-10", "ACME", "alice", 4, 300),
	})

	// selling does not change the average cost of what remains
	if got := records[1].AvgPrice; !got.Equal(eur(100)) {
		t.Errorf("AvgPrice after sell = %s, want %s", got, eur(100))
	}
}

func TestRecalculate_ResetOnFullExit(t *testing.T) {
	records := Recalculate([]Record{
		testBuy("2025-01-10", "ACME", "alice", 10, 100),
		testSell("2025-02-10", "ACME", "alice", 10, 300),
		testBuy("2025-03-10", "ACME", "alice", 5, 500),
	})

	// the full exit resets the state, the new position starts from scratch
	if got := records[1].AvgPrice; !got.IsZero() {
		t.Errorf("AvgPrice after full exit = %s, want zero", got)
	}
	if got := records[2].AvgPrice; !got.Equal(eur(500)) {
		t.Errorf("AvgPrice of restarted position = %s, want %s", got, eur(500))
	}
}

func TestRecalculate_ResidualTriggersReset(t *testing.T) {
	records := Recalculate([]Record{
		testBuy("2025-01-10", "ACME", "alice", 10, 100),
		testSell("2025-02-10", "ACME", "alice", 10-1e-7, 300),
		testBuy("2025-03-10", "ACME", "alice", 1, 40),
	})

	// 1e-7 shares left is below the tolerance: treated as a full exit
	if got := records[2].AvgPrice; !got.Equal(eur(40)) {
		t.Errorf("AvgPrice after residual reset = %s, want %s", got, eur(40))
	}
}

func TestRecalculate_Idempotent(t *testing.T) {
	input := []Record{
		testBuy("2025-01-10", "ACME", "alice", 10, 100),
		testSell("2025-02-10", "ACME", "alice", 4, 300),
		testBuy("2025-03-10", "ACME", "alice", 6, 250),
	}

	once := Recalculate(input)
	twice := Recalculate(once)
	for i := range once {
		if !once[i].AvgPrice.Equal(twice[i].AvgPrice) || !once[i].EffAvgPrice.Equal(twice[i].EffAvgPrice) {
			t.Errorf("row %d not stable: %s vs %s", i, once[i].AvgPrice, twice[i].AvgPrice)
		}
	}
}

func TestRecalculate_ScopesAreIndependent(t *testing.T) {
	records := Recalculate([]Record{
		testBuy("2025-01-10", "ACME", "alice", 10, 100),
		testBuy("2025-01-10", "ACME", "bob", 10, 300),
	})

	for _, r := range records {
		want := eur(100)
		if r.Person == "bob" {
			want = eur(300)
		}
		if !r.AvgPrice.Equal(want) {
			t.Errorf("%s AvgPrice = %s, want %s", r.Person, r.AvgPrice, want)
		}
	}
}

func TestRecalculate_SyntheticRowsCarryStateNotLots(t *testing.T) {
	synthetic := Record{
		UserID:      "u1",
		Ticker:      "ACME",
		On:          day("2025-02-10"),
		Person:      "alice",
		Category:    CategoryProfit,
		SharesCount: Q(4),
		TotalOutlay: eur(800),
	}
	records := Recalculate([]Record{
		testBuy("2025-01-10", "ACME", "alice", 10, 100),
		synthetic,
		testSell("2025-02-10", "ACME", "alice", 4, 300),
	})

	for _, r := range records {
		switch r.Category {
		case CategoryProfit:
			if !r.AvgPrice.Equal(eur(100)) {
				t.Errorf("synthetic AvgPrice = %s, want %s", r.AvgPrice, eur(100))
			}
			if r.FIFOAvgDate != nil {
				t.Errorf("synthetic FIFOAvgDate = %s, want nil", r.FIFOAvgDate)
			}
		case CategoryBuy:
			if r.FIFOAvgDate == nil || *r.FIFOAvgDate != day("2025-01-10") {
				t.Errorf("buy FIFOAvgDate = %v, want 2025-01-10", r.FIFOAvgDate)
			}
		}
	}
}

func TestAverageCostAsOf(t *testing.T) {
	records := []Record{
		testBuy("2025-03-10", "ACME", "alice", 10, 200),
		testBuy("2025-01-10", "ACME", "alice", 10, 100),
	}

	tests := []struct {
		on   string
		want Money
	}{
		{"2024-12-31", Money{}}, // no history yet
		{"2025-01-10", eur(100)},
		{"2025-02-01", eur(100)},
		{"2025-03-10", eur(150)},
	}
	for _, tt := range tests {
		if got := AverageCostAsOf(records, "ACME", "alice", day(tt.on)); !got.Equal(tt.want) {
			t.Errorf("AverageCostAsOf(%s) = %s, want %s", tt.on, got, tt.want)
		}
	}
}

func TestRealizedGain(t *testing.T) {
	pnl, cat := RealizedGain(eur(100), Q(10), eur(120), eur(10), eur(0))
	if !pnl.Equal(eur(190)) || cat != CategoryProfit {
		t.Errorf("RealizedGain = %s,%s, want %s,%s", pnl, cat, eur(190), CategoryProfit)
	}

	pnl, cat = RealizedGain(eur(100), Q(10), eur(90), eur(10), eur(5))
	if !pnl.Equal(eur(-115)) || cat != CategoryLoss {
		t.Errorf("RealizedGain = %s,%s, want %s,%s", pnl, cat, eur(-115), CategoryLoss)
	}
}
