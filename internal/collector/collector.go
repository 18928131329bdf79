package collector

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"log/slog"
	"time"

	"github.com/medialens/medialens/internal/feed"
	"github.com/medialens/medialens/internal/store"
	"github.com/medialens/medialens/pkg/models"
)

// SourceSpec configures collection for one publisher.
type SourceSpec struct {
	Name string

	// Variant selects the parser implementation when it differs from the
	// source name. Empty means the name doubles as the variant.
	Variant string

	Feeds         map[string]string
	MinDelay      time.Duration
	MaxDelay      time.Duration
	LookbackHours int
}

func (s SourceSpec) variant() string {
	if s.Variant != "" {
		return s.Variant
	}
	return s.Name
}

// parserRunner is what the collector needs from a feed parser.
type parserRunner interface {
	Name() string
	Run(ctx context.Context) error
	Articles() []models.Article
}

// Collector fetches, cleans, and stores articles for registered publishers.
type Collector struct {
	store *store.Store
	log   *slog.Logger

	newParser func(name string, cfg feed.Config, log *slog.Logger) parserRunner
}

// New creates a collector backed by the given store.
func New(st *store.Store, log *slog.Logger) *Collector {
	if log == nil {
		log = slog.Default()
	}
	return &Collector{
		store: st,
		log:   log.With("component", "collector"),
		newParser: func(name string, cfg feed.Config, log *slog.Logger) parserRunner {
			return feed.New(name, cfg, log)
		},
	}
}

// ArticleID derives the stable article id from the raw title and
// description, so re-collecting the same item is a no-op.
func ArticleID(title, description string) string {
	sum := md5.Sum([]byte(title + description))
	return hex.EncodeToString(sum[:])
}

// dedupe drops articles whose title+description was already seen, keeping
// the first occurrence.
func dedupe(articles []models.Article) []models.Article {
	seen := make(map[string]struct{}, len(articles))
	out := articles[:0:0]
	for _, a := range articles {
		key := a.Title + a.Description
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, a)
	}
	return out
}

// Collect runs collection for every spec in order and returns the number
// of newly stored articles per publisher. Publishers missing from the
// media-source registry are skipped; a publisher's failure never stops the
// others.
func (c *Collector) Collect(ctx context.Context, specs []SourceSpec) (map[string]int, error) {
	saved := make(map[string]int, len(specs))
	var stats CleaningStats

	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return saved, err
		}
		registered, err := c.store.HasMediaSource(ctx, spec.Name)
		if err != nil {
			return saved, err
		}
		if !registered {
			c.log.Warn("source not in media registry, skipping", "source", spec.Name)
			continue
		}
		n, srcStats, err := c.collectSource(ctx, spec)
		if err != nil {
			c.log.Error("collection failed", "source", spec.Name, "err", err)
			continue
		}
		stats.add(srcStats)
		saved[spec.Name] = n
	}

	c.log.Info("collection complete",
		"articles", total(saved),
		"html_entities", stats.HTMLEntities,
		"html_tags", stats.HTMLTags,
		"whitespace_fixes", stats.WhitespaceFixes)
	return saved, nil
}

func (c *Collector) collectSource(ctx context.Context, spec SourceSpec) (int, CleaningStats, error) {
	var stats CleaningStats
	parser := c.newParser(spec.variant(), feed.Config{
		Feeds:         spec.Feeds,
		MinDelay:      spec.MinDelay,
		MaxDelay:      spec.MaxDelay,
		LookbackHours: spec.LookbackHours,
	}, c.log)

	if err := parser.Run(ctx); err != nil {
		return 0, stats, err
	}

	raw := parser.Articles()
	articles := dedupe(raw)
	if d := len(raw) - len(articles); d > 0 {
		c.log.Info("removed duplicates", "source", spec.Name, "count", d)
	}

	sourceID, err := c.store.LookupOrCreateSource(ctx, spec.Name)
	if err != nil {
		return 0, stats, err
	}

	saved := 0
	for _, a := range articles {
		clean, cs := CleanArticle(a.Title, a.Description)
		stats.add(cs)

		a.SourceID = sourceID
		a.ID = ArticleID(a.Title, a.Description)
		a.CleanContent = clean
		if len(a.Categories) == 0 {
			a.Categories = []string{fallbackCategory(spec.Feeds, a.FeedURL)}
		}

		inserted, err := c.store.InsertArticle(ctx, a)
		if err != nil {
			return saved, stats, err
		}
		if inserted {
			saved++
		}
	}
	c.log.Info("articles saved", "source", spec.Name, "count", saved)
	return saved, stats, nil
}

// fallbackCategory names an uncategorized article after the feed it came
// from.
func fallbackCategory(feeds map[string]string, feedURL string) string {
	for name, url := range feeds {
		if url == feedURL {
			return name
		}
	}
	return "unknown"
}

func total(m map[string]int) int {
	sum := 0
	for _, n := range m {
		sum += n
	}
	return sum
}
