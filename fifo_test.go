package folio

import (
	"testing"

	"github.com/mlarrea/folio/date"
)

func TestLots_SellConsumesOldestFirst(t *testing.T) {
	var l lots
	l = l.buy(day("2025-01-01"), Q(10))
	l = l.buy(day("2025-02-01"), Q(10))

	l = l.sell(Q(15))

	if len(l) != 1 {
		t.Fatalf("got %d lots, want 1: %v", len(l), l)
	}
	if l[0].Date != day("2025-02-01") || !l[0].Quantity.Equal(Q(5)) {
		t.Errorf("remaining lot = %v, want 5 shares of 2025-02-01", l[0])
	}
}

func TestLots_BuySkipsNonPositive(t *testing.T) {
	var l lots
	l = l.buy(day("2025-01-01"), Q(0))
	l = l.buy(day("2025-01-01"), Q(-3))
	if len(l) != 0 {
		t.Errorf("got %d lots, want 0", len(l))
	}
}

func TestLots_AverageDate(t *testing.T) {
	var l lots
	// 10 shares on day 1, 30 shares on day 5: the average leans to day 5
	l = l.buy(day("2025-01-01"), Q(10))
	l = l.buy(day("2025-01-05"), Q(30))

	got := l.averageDate()
	if got == nil {
		t.Fatal("averageDate() = nil, want a date")
	}
	want := date.FromUnix((day("2025-01-01").Unix()*10 + day("2025-01-05").Unix()*30) / 40)
	if *got != want {
		t.Errorf("averageDate() = %s, want %s", got, want)
	}
}

func TestLots_AverageDateNilWhenFlat(t *testing.T) {
	var l lots
	l = l.buy(day("2025-01-01"), Q(10))
	l = l.sell(Q(10))
	if got := l.averageDate(); got != nil {
		t.Errorf("averageDate() = %s, want nil", got)
	}
}

func TestLots_SellAgainRestoresOldestRemaining(t *testing.T) {
	var l lots
	l = l.buy(day("2025-01-01"), Q(10))
	l = l.buy(day("2025-02-01"), Q(10))
	l = l.sell(Q(10))

	got := l.averageDate()
	if got == nil || *got != day("2025-02-01") {
		t.Errorf("averageDate() = %v, want 2025-02-01", got)
	}
}
