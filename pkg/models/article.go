// Package models defines the shared data structures for the MediaLens
// pipeline: collected articles, publisher metadata, and per-day analysis
// reports.
package models

import "time"

// Article is a single normalized news item collected from an RSS feed.
// ID is an md5 hex digest of the raw title+description, so re-collecting
// the same item is an insert-or-ignore no-op.
type Article struct {
	ID              string    `json:"id"`
	SourceID        int64     `json:"source_id"`
	Source          string    `json:"source"` // publisher slug, e.g. "fox_news"
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	CleanContent    string    `json:"clean_content,omitempty"`
	Categories      []string  `json:"categories,omitempty"`
	Link            string    `json:"link"`
	Published       string    `json:"published,omitempty"` // raw feed date string
	PublicationDate string    `json:"publication_date"`    // "2006-01-02 15:04:05" UTC
	FeedURL         string    `json:"feed_url,omitempty"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// Source is a publisher row in the sources table, created lazily on the
// first successful collection for that publisher.
type Source struct {
	ID        int64     `json:"source_id"`
	Name      string    `json:"name"` // stable slug: lowercase + underscore
	CreatedAt time.Time `json:"created_at,omitempty"`
}
