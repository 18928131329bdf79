package utils

import (
	"strings"
	"testing"
	"time"
)

func TestParseFeedTime(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Mon, 06 Jan 2025 15:04:05 GMT", "2025-01-06 15:04:05"},
		{"Mon, 06 Jan 2025 10:04:05 -0500", "2025-01-06 15:04:05"},
		{"2025-01-06T15:04:05Z", "2025-01-06 15:04:05"},
		{"2025-01-06T10:04:05-05:00", "2025-01-06 15:04:05"},
		{"2025-01-06 15:04:05", "2025-01-06 15:04:05"},
		{"2025-01-06", "2025-01-06 00:00:00"},
		{"January 6, 2025", "2025-01-06 00:00:00"},
	}
	for _, tc := range cases {
		got, err := ParseFeedTime(tc.in)
		if err != nil {
			t.Errorf("ParseFeedTime(%q): %v", tc.in, err)
			continue
		}
		if got.Format(DBTimeLayout) != tc.want {
			t.Errorf("ParseFeedTime(%q) = %s, want %s", tc.in, got.Format(DBTimeLayout), tc.want)
		}
		if got.Location() != time.UTC {
			t.Errorf("ParseFeedTime(%q) not UTC", tc.in)
		}
	}
}

func TestParseFeedTimeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "   ", "not a date", "32/13/2025"} {
		if _, err := ParseFeedTime(in); err == nil {
			t.Errorf("ParseFeedTime(%q): expected error", in)
		}
	}
}

func TestUnifyDateFallsBackToNow(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	got, err := time.Parse(DBTimeLayout, UnifyDate("complete nonsense"))
	if err != nil {
		t.Fatalf("UnifyDate fallback produced unparseable output: %v", err)
	}
	after := time.Now().UTC().Add(time.Second)
	if got.Before(before) || got.After(after) {
		t.Errorf("UnifyDate fallback %s outside [%s, %s]", got, before, after)
	}
}

func TestHumanDate(t *testing.T) {
	d := time.Date(2025, 3, 9, 23, 30, 0, 0, time.UTC)
	if got := HumanDate(d); got != "March 9, 2025" {
		t.Errorf("HumanDate = %q", got)
	}
}

func TestRandomBrowserHeaders(t *testing.T) {
	h := RandomBrowserHeaders()
	if !strings.HasPrefix(h["User-Agent"], "Mozilla/5.0") {
		t.Errorf("unexpected User-Agent %q", h["User-Agent"])
	}
	for _, k := range []string{"Accept", "Accept-Language", "Cache-Control"} {
		if h[k] == "" {
			t.Errorf("missing header %s", k)
		}
	}
}
