package util

import (
	"testing"
	"time"
)

func TestParseDay(t *testing.T) {
	got, err := ParseDay("2025-01-09")
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	want := time.Date(2025, 1, 9, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("ParseDay = %v, want %v", got, want)
	}

	if _, err := ParseDay("09/01/2025"); err == nil {
		t.Fatal("expected error for non-ISO date")
	}
	if _, err := ParseDay(""); err == nil {
		t.Fatal("expected error for empty date")
	}
}

func TestFormatDay(t *testing.T) {
	d := time.Date(2025, 1, 9, 13, 45, 0, 0, time.UTC)
	if got := FormatDay(d); got != "2025-01-09" {
		t.Fatalf("FormatDay = %q", got)
	}
}

func TestNextRunAt(t *testing.T) {
	loc := time.UTC
	now := time.Date(2025, 1, 9, 5, 0, 0, 0, loc)

	next, err := NextRunAt(now, "06:30", loc)
	if err != nil {
		t.Fatalf("NextRunAt: %v", err)
	}
	if want := time.Date(2025, 1, 9, 6, 30, 0, 0, loc); !next.Equal(want) {
		t.Fatalf("NextRunAt = %v, want %v", next, want)
	}

	// Already past today's slot: roll to tomorrow.
	next, err = NextRunAt(now, "04:00", loc)
	if err != nil {
		t.Fatalf("NextRunAt: %v", err)
	}
	if want := time.Date(2025, 1, 10, 4, 0, 0, 0, loc); !next.Equal(want) {
		t.Fatalf("NextRunAt = %v, want %v", next, want)
	}

	if _, err := NextRunAt(now, "6am", loc); err == nil {
		t.Fatal("expected error for bad run_at")
	}
}
