package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/medialens/medialens/internal/retry"
	"github.com/medialens/medialens/pkg/models"
	"github.com/medialens/medialens/pkg/utils"
)

// maxFeedBytes caps how much of a feed response is read.
const maxFeedBytes = 8 << 20

// BaseParser fetches a publisher's feeds and turns their entries into
// articles. Publisher differences are expressed through the hook fields,
// set by the constructors in publishers.go; the zero hooks give standard
// RSS 2.0 behavior.
type BaseParser struct {
	name   string
	cfg    Config
	client *http.Client
	log    *slog.Logger

	// extractTags selects category terms for an entry. Defaults to all
	// plain tag terms.
	extractTags func(Entry) []string

	// resolveDate picks the raw date string used for window filtering
	// and normalization. Defaults to the entry's published date.
	resolveDate func(Entry) string

	// lenientDecode strips invalid UTF-8 from the response body before
	// parsing, for publishers that serve malformed encodings.
	lenientDecode bool

	now       func() time.Time
	lastFetch time.Time
	articles  []models.Article
}

// newBase builds a parser with default hooks for the given source name.
func newBase(name string, cfg Config, log *slog.Logger) *BaseParser {
	if log == nil {
		log = slog.Default()
	}
	p := &BaseParser{
		name:   name,
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
		log:    log.With("source", name),
		now:    time.Now,
	}
	p.extractTags = func(e Entry) []string {
		terms := make([]string, 0, len(e.Tags))
		for _, t := range e.Tags {
			if t.Term != "" {
				terms = append(terms, t.Term)
			}
		}
		return terms
	}
	p.resolveDate = func(e Entry) string { return e.Published }
	return p
}

// Name returns the publisher's source name.
func (p *BaseParser) Name() string { return p.name }

// Articles returns the articles collected by the last Run.
func (p *BaseParser) Articles() []models.Article { return p.articles }

// Validate checks that an entry carries the fields required downstream.
func (p *BaseParser) Validate(e Entry) error {
	if e.Title == "" || e.Link == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEntry, e.Title)
	}
	return nil
}

// ExtractCategories returns the entry's category terms using the
// publisher's extraction rule.
func (p *BaseParser) ExtractCategories(e Entry) []string {
	return p.extractTags(e)
}

// WithinWindow reports whether a raw date string falls inside the
// collection window. Unparseable dates are excluded rather than guessed
// at, so a feed with broken dates cannot flood the pipeline with stale
// entries.
func (p *BaseParser) WithinWindow(raw string) bool {
	t, err := utils.ParseFeedTime(raw)
	if err != nil {
		p.log.Error("date parsing failed", "date", raw, "err", err)
		return false
	}
	cutoff := p.now().UTC().Add(-p.cfg.lookback())
	return !t.Before(cutoff)
}

// IsYesterday reports whether a raw date string falls on yesterday's UTC
// calendar day. This is the strict day filter; WithinWindow is the
// rolling-hours variant used by Run.
func (p *BaseParser) IsYesterday(raw string) bool {
	t, err := utils.ParseFeedTime(raw)
	if err != nil {
		p.log.Error("date parsing failed", "date", raw, "err", err)
		return false
	}
	yesterday := p.now().UTC().AddDate(0, 0, -1)
	return t.Year() == yesterday.Year() && t.YearDay() == yesterday.YearDay()
}

// ParseEntry converts a feed entry into an article for the given feed URL.
func (p *BaseParser) ParseEntry(e Entry, feedURL string) models.Article {
	return models.Article{
		Title:           e.Title,
		Description:     strings.TrimSpace(e.Description),
		Link:            e.Link,
		Published:       e.Published,
		PublicationDate: utils.UnifyDate(e.Published),
		Categories:      p.ExtractCategories(e),
		Source:          p.name,
		FeedURL:         feedURL,
	}
}

// Fetch downloads and decodes one feed. Only the download is retried;
// a feed that downloads fine but fails to parse surfaces its error
// immediately, since refetching malformed XML just yields the same bytes.
// A randomized pause keeps consecutive fetches against the same publisher
// from looking like a burst.
func (p *BaseParser) Fetch(ctx context.Context, url string) ([]Entry, error) {
	var data []byte
	err := retry.Do(ctx, retry.FeedFetch, func(ctx context.Context) error {
		if err := p.throttle(ctx); err != nil {
			return err
		}
		var err error
		data, err = p.download(ctx, url)
		p.lastFetch = time.Now()
		return err
	})
	if err != nil {
		return nil, err
	}
	return decodeFeed(data)
}

func (p *BaseParser) throttle(ctx context.Context) error {
	if p.cfg.MaxDelay <= 0 {
		return nil
	}
	delay := p.cfg.MinDelay
	if spread := p.cfg.MaxDelay - p.cfg.MinDelay; spread > 0 {
		delay += time.Duration(rand.Int63n(int64(spread)))
	}
	if elapsed := time.Since(p.lastFetch); elapsed < delay {
		select {
		case <-time.After(delay - elapsed):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (p *BaseParser) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range utils.RandomBrowserHeaders() {
		req.Header.Set(k, v)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed: fetch %s: status %d", url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBytes))
	if err != nil {
		return nil, err
	}
	if p.lenientDecode {
		data = []byte(strings.ToValidUTF8(string(data), ""))
	}
	return data, nil
}

// Run fetches every configured feed and collects the entries that pass
// validation and the window filter. Feed failures are isolated: one bad
// feed never blocks the publisher's remaining feeds.
func (p *BaseParser) Run(ctx context.Context) error {
	p.articles = p.articles[:0]

	names := make([]string, 0, len(p.cfg.Feeds))
	for name := range p.cfg.Feeds {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, feedName := range names {
		url := p.cfg.Feeds[feedName]
		entries, err := p.Fetch(ctx, url)
		if err != nil {
			p.log.Error("failed to process feed", "feed", feedName, "url", url, "err", err)
			continue
		}
		kept := 0
		for _, e := range entries {
			if err := p.Validate(e); err != nil {
				p.log.Warn("skipping entry", "feed", feedName, "err", err)
				continue
			}
			e.Published = p.resolveDate(e)
			if !p.WithinWindow(e.Published) {
				continue
			}
			p.articles = append(p.articles, p.ParseEntry(e, url))
			kept++
		}
		p.log.Info("feed processed", "feed", feedName, "entries", len(entries), "kept", kept)
	}
	return ctx.Err()
}
