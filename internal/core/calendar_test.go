package core

import (
	"testing"
	"time"
)

func TestPeriodContainsBoundaries(t *testing.T) {
	p := Period{Year: 2024, Month: time.January}
	cases := []struct {
		at   time.Time
		want bool
	}{
		{time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), true},
		{time.Date(2024, 1, 31, 23, 59, 59, 0, time.UTC), true},
		{time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), false},
		{time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), false},
		{time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC), false},
	}
	for i, tc := range cases {
		if got := p.Contains(tc.at, time.UTC); got != tc.want {
			t.Errorf("case %d: Contains(%v) = %v", i, tc.at, got)
		}
	}
}

func TestPeriodContainsUsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	// 02:00 UTC on Feb 1st is still January 31st in Brasília.
	at := time.Date(2024, 2, 1, 2, 0, 0, 0, time.UTC)
	if !(Period{Year: 2024, Month: time.January}).Contains(at, loc) {
		t.Fatal("expected January in local time")
	}
	if got := FormatDayMonth(at, loc); got != "31 de janeiro" {
		t.Fatalf("FormatDayMonth = %q", got)
	}
}

func TestPeriodNavigation(t *testing.T) {
	p := Period{Year: 2024, Month: time.January}
	if prev := p.Prev(); prev != (Period{Year: 2023, Month: time.December}) {
		t.Fatalf("Prev = %+v", prev)
	}
	if next := (Period{Year: 2024, Month: time.December}).Next(); next != (Period{Year: 2025, Month: time.January}) {
		t.Fatalf("Next = %+v", next)
	}
	if got := (Period{Year: 2024, Month: time.March}).Label(); got != "março de 2024" {
		t.Fatalf("Label = %q", got)
	}
	if err := (Period{Year: 2024, Month: 13}).Validate(); err != ErrInvalidMonth {
		t.Fatalf("expected ErrInvalidMonth, got %v", err)
	}
}

func TestFormatShortDate(t *testing.T) {
	at := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	if got := FormatShortDate(at, nil); got != "05/01/24" {
		t.Fatalf("FormatShortDate = %q", got)
	}
}
