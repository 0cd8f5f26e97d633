package recurrence

import "testing"

func TestNext(t *testing.T) {
	tests := []struct {
		name     string
		from     string
		unit     string
		interval int
		want     string
	}{
		{"one day", "2025-04-01", "DAY", 1, "2025-04-02"},
		{"three days across month", "2025-04-29", "DAY", 3, "2025-05-02"},
		{"two weeks", "2025-04-01", "WEEK", 2, "2025-04-15"},
		{"one month", "2025-04-15", "MONTH", 1, "2025-05-15"},
		{"month end clamps to february", "2025-01-31", "MONTH", 1, "2025-02-28"},
		{"month end clamps to leap february", "2024-01-31", "MONTH", 1, "2024-02-29"},
		{"six months", "2025-01-31", "MONTH", 6, "2025-07-31"},
		{"one year", "2025-04-01", "YEAR", 1, "2026-04-01"},
		{"leap day plus one year", "2024-02-29", "YEAR", 1, "2025-02-28"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Next(tt.from, tt.unit, tt.interval)
			if err != nil {
				t.Fatalf("Next(%s, %s, %d): %v", tt.from, tt.unit, tt.interval, err)
			}
			if got != tt.want {
				t.Errorf("Next(%s, %s, %d) = %s, want %s", tt.from, tt.unit, tt.interval, got, tt.want)
			}
		})
	}
}

func TestNextErrors(t *testing.T) {
	if _, err := Next("2025-04-01", "FORTNIGHT", 1); err == nil {
		t.Error("expected error for unknown unit")
	}
	if _, err := Next("not-a-date", "DAY", 1); err == nil {
		t.Error("expected error for malformed date")
	}
	if _, err := Next("2025-04-01", "DAY", 0); err == nil {
		t.Error("expected error for zero interval")
	}
}
