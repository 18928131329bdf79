package feed

import (
	"bytes"
	"fmt"

	"github.com/mmcdole/gofeed"
	"github.com/mmcdole/gofeed/atom"
	"github.com/mmcdole/gofeed/rss"
)

// decodeFeed parses raw feed bytes into entries. It uses the dialect
// parsers directly rather than the universal one because the universal
// translation drops category domains, which several publishers use as
// taxonomy schemes.
func decodeFeed(data []byte) ([]Entry, error) {
	switch gofeed.DetectFeedType(bytes.NewReader(data)) {
	case gofeed.FeedTypeAtom:
		return decodeAtom(data)
	case gofeed.FeedTypeRSS:
		return decodeRSS(data)
	default:
		return nil, ErrUnsupportedFeed
	}
}

func decodeRSS(data []byte) ([]Entry, error) {
	f, err := (&rss.Parser{}).Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("feed: parse rss: %w", err)
	}
	entries := make([]Entry, 0, len(f.Items))
	for _, item := range f.Items {
		e := Entry{
			Title:       item.Title,
			Description: item.Description,
			Link:        item.Link,
			Published:   item.PubDate,
		}
		for _, c := range item.Categories {
			if c == nil || c.Value == "" {
				continue
			}
			if e.Category == "" {
				e.Category = c.Value
			}
			e.Tags = append(e.Tags, Tag{Term: c.Value, Scheme: c.Domain})
		}
		if dc := item.DublinCoreExt; dc != nil {
			e.Subjects = append(e.Subjects, dc.Subject...)
			// RDF 1.0 feeds carry dc:date instead of pubDate.
			if len(dc.Date) > 0 {
				e.Updated = dc.Date[0]
			}
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func decodeAtom(data []byte) ([]Entry, error) {
	f, err := (&atom.Parser{}).Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("feed: parse atom: %w", err)
	}
	entries := make([]Entry, 0, len(f.Entries))
	for _, item := range f.Entries {
		e := Entry{
			Title:     item.Title,
			Published: item.Published,
			Updated:   item.Updated,
		}
		if item.Summary != "" {
			e.Description = item.Summary
		} else if item.Content != nil {
			e.Description = item.Content.Value
		}
		for _, l := range item.Links {
			if l != nil && l.Href != "" {
				e.Link = l.Href
				break
			}
		}
		for _, c := range item.Categories {
			if c == nil || c.Term == "" {
				continue
			}
			if e.Category == "" {
				e.Category = c.Term
			}
			e.Tags = append(e.Tags, Tag{Term: c.Term, Scheme: c.Scheme})
		}
		entries = append(entries, e)
	}
	return entries, nil
}
