// Package feed fetches and parses publisher RSS/RDF/Atom feeds into
// normalized articles. Each publisher gets a parser built from BaseParser
// with hooks for the quirks of its feed dialect: category schemes, date
// fallbacks, and encoding tolerance.
package feed

import (
	"errors"
	"time"
)

// Common errors returned by parsers.
var (
	ErrUnsupportedFeed = errors.New("feed: unsupported feed type")
	ErrInvalidEntry    = errors.New("feed: entry missing title or link")
)

// Tag is a single category tag on a feed entry. Scheme carries the RSS
// category domain (or Atom scheme) when the feed provides one.
type Tag struct {
	Term   string
	Scheme string
}

// Entry is a feed item reduced to the fields the pipeline cares about,
// with dates kept as raw strings so each publisher's fallback rules can
// run before normalization.
type Entry struct {
	Title       string
	Description string
	Link        string
	Published   string   // raw date string from the feed
	Updated     string   // updated / dc:date, used as a fallback by some publishers
	Category    string   // first plain category value, for single-category feeds
	Subjects    []string // dc:subject terms (RDF feeds)
	Tags        []Tag
}

// Config configures a publisher parser.
type Config struct {
	// Feeds maps feed names to URLs, e.g. {"politics": "https://..."}.
	Feeds map[string]string

	// MinDelay and MaxDelay bound the randomized pause between
	// consecutive feed fetches for the same publisher.
	MinDelay time.Duration
	MaxDelay time.Duration

	// LookbackHours is the collection window: entries older than this
	// many hours are skipped. Zero means the default of 20.
	LookbackHours int
}

// DefaultLookbackHours is the collection window applied when the
// configuration does not set one.
const DefaultLookbackHours = 20

func (c *Config) lookback() time.Duration {
	h := c.LookbackHours
	if h <= 0 {
		h = DefaultLookbackHours
	}
	return time.Duration(h) * time.Hour
}
