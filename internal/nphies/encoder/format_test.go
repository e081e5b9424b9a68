package encoder

import (
	"testing"
	"time"
)

func TestDateOnly(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"2026-03-09", "2026-03-09"},
		{"2026-03-09T22:15:00+03:00", "2026-03-09"},
		{"2026-03-09T23:59:00Z", "2026-03-09"}, // sliced, never shifted
		{"not a date", ""},
		{"2026/03/09", ""},
		{"", ""},
		{time.Date(2026, 3, 9, 1, 0, 0, 0, time.UTC), "2026-03-09"},
		{time.Time{}, ""},
	}
	for _, tt := range tests {
		if got := DateOnly(tt.in); got != tt.want {
			t.Errorf("DateOnly(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDateTime(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"2026-03-09", "2026-03-09T00:00:00Z"},
		{"2026-03-09T22:15:00+03:00", "2026-03-09T22:15:00+03:00"},
		{"2026-03-09T22:15:00Z", "2026-03-09T22:15:00Z"},
		{"2026-03-09T22:15:00", "2026-03-09T22:15:00Z"}, // zone-less input gets the UTC marker
		{"badT", ""},
		{"T", ""},
		{"", ""},
		{time.Date(2026, 3, 9, 22, 15, 0, 0, time.FixedZone("AST", 3*3600)), "2026-03-09T19:15:00Z"},
	}
	for _, tt := range tests {
		if got := DateTime(tt.in); got != tt.want {
			t.Errorf("DateTime(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDateTimeOffset(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"2026-03-09", "2026-03-09T00:00:00+03:00"},
		{"2026-03-09T22:15:00", "2026-03-09T22:15:00+03:00"},
		{"2026-03-09T22:15:00+03:00", "2026-03-09T22:15:00+03:00"},
		{"2026-03-09T19:15:00Z", "2026-03-09T19:15:00Z"}, // explicit zone preserved
		{time.Date(2026, 3, 9, 19, 15, 0, 0, time.UTC), "2026-03-09T22:15:00+03:00"},
		{"3T", ""},
		{"badT", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := DateTimeOffset(tt.in); got != tt.want {
			t.Errorf("DateTimeOffset(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAccountingPeriodDate(t *testing.T) {
	tests := []struct{ in, want string }{
		{"2026-03", "2026-03-01"},
		{"2026-03-15", "2026-03-01"},
		{"2026", "2026"},
	}
	for _, tt := range tests {
		if got := accountingPeriodDate(tt.in); got != tt.want {
			t.Errorf("accountingPeriodDate(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
