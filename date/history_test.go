package date

import (
	"testing"
	"time"
)

func TestHistoryAppend_KeepsChronologicalOrder(t *testing.T) {
	h := &History[float64]{}
	h.Append(New(2025, time.March, 3), 3)
	h.Append(New(2025, time.March, 1), 1)
	h.Append(New(2025, time.March, 2), 2)

	var prev Date
	for day, val := range h.Values() {
		if !prev.IsZero() && !prev.Before(day) {
			t.Errorf("history out of order: %s after %s", day, prev)
		}
		if float64(day.Day()) != val {
			t.Errorf("value mismatch on %s: got %v", day, val)
		}
		prev = day
	}
}

func TestHistoryAppend_OverwritesSameDay(t *testing.T) {
	h := &History[string]{}
	day := New(2025, time.March, 1)
	h.Append(day, "old").Append(day, "new")

	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", h.Len())
	}
	if v, _ := h.Get(day); v != "new" {
		t.Errorf("Get() = %q, want %q", v, "new")
	}
}

func TestHistoryValueAsOf(t *testing.T) {
	h := &History[float64]{}
	h.Append(New(2025, time.March, 1), 10)
	h.Append(New(2025, time.March, 5), 50)

	tests := []struct {
		day   Date
		want  float64
		found bool
	}{
		{New(2025, time.February, 28), 0, false}, // before any data
		{New(2025, time.March, 1), 10, true},     // exact hit
		{New(2025, time.March, 3), 10, true},     // forward-filled
		{New(2025, time.March, 5), 50, true},
		{New(2025, time.March, 9), 50, true}, // after last point
	}
	for _, tt := range tests {
		got, found := h.ValueAsOf(tt.day)
		if found != tt.found || got != tt.want {
			t.Errorf("ValueAsOf(%s) = %v,%v, want %v,%v", tt.day, got, found, tt.want, tt.found)
		}
	}
}
