// Package collector runs the article collection pass: it fetches every
// registered publisher's feeds, cleans and deduplicates the entries, and
// stores them for later analysis.
package collector

import (
	"html"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CleaningStats counts the normalization operations applied to articles,
// reported at the end of a collection run.
type CleaningStats struct {
	HTMLEntities    int
	HTMLTags        int
	WhitespaceFixes int
}

func (s *CleaningStats) add(o CleaningStats) {
	s.HTMLEntities += o.HTMLEntities
	s.HTMLTags += o.HTMLTags
	s.WhitespaceFixes += o.WhitespaceFixes
}

var (
	entityRe     = regexp.MustCompile(`&\w+;`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// CleanArticle joins an article's title and description into one plain-text
// blob for the model: HTML entities decoded, tags stripped, whitespace
// collapsed.
func CleanArticle(title, description string) (string, CleaningStats) {
	var stats CleaningStats
	content := title + ". " + description
	stats.HTMLEntities = len(entityRe.FindAllString(content, -1))

	decoded := html.UnescapeString(content)
	text := decoded
	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(decoded)); err == nil {
		// Subtract the html/head/body wrapper nodes the parser adds.
		if n := doc.Find("*").Length() - 3; n > 0 {
			stats.HTMLTags = n
		}
		text = doc.Text()
	}

	cleaned := strings.TrimSpace(whitespaceRe.ReplaceAllString(text, " "))
	stats.WhitespaceFixes = len(strings.Fields(text)) - len(strings.Fields(cleaned))
	return cleaned, stats
}
