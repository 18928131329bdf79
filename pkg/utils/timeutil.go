// Package utils provides small shared helpers: flexible feed-date parsing,
// UTC date unification, and randomized browser headers for polite fetching.
package utils

import (
	"fmt"
	"strings"
	"time"
)

// DBTimeLayout is the unified timestamp format stored in the database,
// always in UTC.
const DBTimeLayout = "2006-01-02 15:04:05"

// DBDateLayout is the date-only format used for analysis dates.
const DBDateLayout = "2006-01-02"

// feedTimeLayouts covers the date dialects seen across RSS/RDF/Atom feeds.
// Layouts without a zone designator are interpreted as UTC.
var feedTimeLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC822Z,
	time.RFC822,
	time.RFC3339,
	time.RFC3339Nano,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2 Jan 2006 15:04:05 -0700",
	"2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"January 2, 2006",
}

// ParseFeedTime parses a feed date string in any of the supported dialects
// and returns it in UTC. Naive timestamps (no zone) are coerced to UTC.
func ParseFeedTime(value string) (time.Time, error) {
	s := strings.TrimSpace(value)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date string")
	}
	for _, layout := range feedTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", s)
}

// UnifyDate converts any parseable feed date string to the unified
// "2006-01-02 15:04:05" UTC format. An unparseable string falls back to the
// current UTC time rather than failing; callers that need to distinguish the
// fallback should use ParseFeedTime directly.
func UnifyDate(value string) string {
	t, err := ParseFeedTime(value)
	if err != nil {
		t = time.Now().UTC()
	}
	return t.Format(DBTimeLayout)
}

// HumanDate formats a UTC day as "January 2, 2006" for prompts and logs.
func HumanDate(t time.Time) string {
	return t.UTC().Format("January 2, 2006")
}
