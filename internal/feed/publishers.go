package feed

import (
	"log/slog"
	"strings"
	"time"
)

// schemeTail returns a category extractor that keeps only tags whose
// scheme contains the given marker, taking the last path segment of the
// term. Fox and NBC encode taxonomy paths like "news/category/politics"
// in their category domains.
func schemeTail(marker string) func(Entry) []string {
	return func(e Entry) []string {
		var terms []string
		for _, t := range e.Tags {
			if !strings.Contains(t.Scheme, marker) {
				continue
			}
			parts := strings.Split(t.Term, "/")
			terms = append(terms, parts[len(parts)-1])
		}
		return terms
	}
}

// NewFoxParser parses Fox News feeds; categories come from taxonomy-scheme
// tags.
func NewFoxParser(cfg Config, log *slog.Logger) *BaseParser {
	p := newBase("fox_news", cfg, log)
	p.extractTags = schemeTail("taxonomy")
	return p
}

// NewNBCParser parses NBC feeds; categories come from category-scheme tags.
func NewNBCParser(cfg Config, log *slog.Logger) *BaseParser {
	p := newBase("nbc", cfg, log)
	p.extractTags = schemeTail("category")
	return p
}

// NewBBCParser parses BBC feeds with standard tag terms.
func NewBBCParser(cfg Config, log *slog.Logger) *BaseParser {
	return newBase("bbc", cfg, log)
}

// NewDWParser parses Deutsche Welle's RDF feeds. Categories come from
// dc:subject, and entries missing a pubDate fall back to dc:date, then to
// the current time so DW's sparsely-dated items are not silently dropped.
func NewDWParser(cfg Config, log *slog.Logger) *BaseParser {
	p := newBase("dw", cfg, log)
	p.extractTags = func(e Entry) []string {
		if len(e.Subjects) > 0 {
			return e.Subjects[:1]
		}
		terms := make([]string, 0, len(e.Tags))
		for _, t := range e.Tags {
			if t.Term != "" {
				terms = append(terms, t.Term)
			}
		}
		return terms
	}
	p.resolveDate = func(e Entry) string {
		if e.Published != "" {
			return e.Published
		}
		if e.Updated != "" {
			return e.Updated
		}
		p.log.Warn("missing publication date, using current time", "title", e.Title)
		return p.now().UTC().Format(time.RFC3339)
	}
	return p
}

// NewFrance24Parser parses France 24 feeds, which put a single category
// element on each entry.
func NewFrance24Parser(cfg Config, log *slog.Logger) *BaseParser {
	p := newBase("france", cfg, log)
	p.extractTags = func(e Entry) []string {
		if e.Category != "" {
			return []string{e.Category}
		}
		terms := make([]string, 0, len(e.Tags))
		for _, t := range e.Tags {
			if t.Term != "" {
				terms = append(terms, t.Term)
			}
		}
		return terms
	}
	return p
}

// NewDailyWireParser parses The Daily Wire's feed, which occasionally
// serves invalid UTF-8 and needs a lenient decode before parsing.
func NewDailyWireParser(cfg Config, log *slog.Logger) *BaseParser {
	p := newBase("daily_wire", cfg, log)
	p.lenientDecode = true
	return p
}

// NewDefaultParser parses a standards-conforming feed for the named
// source. NYT, WSJ, FT and The Christian Post all work with the defaults.
func NewDefaultParser(name string, cfg Config, log *slog.Logger) *BaseParser {
	return newBase(name, cfg, log)
}
