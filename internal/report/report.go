// Package report renders a day's analysis reports into a human-readable
// digest, either HTML or plain text.
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/medialens/medialens/pkg/models"
	"github.com/medialens/medialens/pkg/utils"
)

// Format specifies the output format.
type Format string

const (
	FormatHTML Format = "html"
	FormatText Format = "text"
)

// Config controls digest generation.
type Config struct {
	Format Format // default: HTML
	Title  string // custom title (optional)
}

// now is a test seam for the generation timestamp.
var now = time.Now

// ── Digest data — flattened for template rendering ──

// DigestData is the template model for a daily digest.
type DigestData struct {
	Title       string
	Day         string // "2006-01-02"
	HumanDay    string // "January 2, 2006"
	GeneratedAt string
	Sources     []SourceSection
}

// SourceSection is one publisher's report, formatted for display.
type SourceSection struct {
	Name         string
	Flag         string
	Slug         string
	Articles     int
	BiasScore    string
	Leaning      string
	LeaningClass string // CSS class: left, right, neutral
	BiasEvidence string
	RatedBias    string // third-party consensus, empty when unrated

	SentimentPositive string
	SentimentNegative string
	SentimentNeutral  string

	Narratives []NarrativeRow
	Values     []ValueRow
}

// NarrativeRow is a flattened narrative theme for template rendering.
type NarrativeRow struct {
	Theme    string
	Coverage string
	Examples string
}

// ValueRow is a flattened promoted value for template rendering.
type ValueRow struct {
	Value    string
	Examples string
}

// Build assembles the digest model from stored reports. The media registry
// supplies display metadata and third-party ratings; reports for sources
// missing from it still render, just without the extras.
func Build(day string, reports []models.AnalysisReport, media map[string]models.MediaSource, cfg Config) DigestData {
	title := cfg.Title
	if title == "" {
		title = "MediaLens Daily Digest"
	}

	humanDay := day
	if d, err := time.Parse(utils.DBDateLayout, day); err == nil {
		humanDay = utils.HumanDate(d)
	}

	data := DigestData{
		Title:       title,
		Day:         day,
		HumanDay:    humanDay,
		GeneratedAt: now().UTC().Format(utils.DBTimeLayout),
	}

	for _, r := range reports {
		sec := SourceSection{
			Name:              r.Source,
			Slug:              r.Source,
			Articles:          r.NumArticles,
			BiasScore:         fmt.Sprintf("%+.1f", r.BiasScore),
			Leaning:           leaning(r),
			LeaningClass:      leaningClass(r.BiasScore),
			SentimentPositive: fmt.Sprintf("%.0f%%", r.SentimentPositive),
			SentimentNegative: fmt.Sprintf("%.0f%%", r.SentimentNegative),
			SentimentNeutral:  fmt.Sprintf("%.0f%%", r.SentimentNeutral),
		}
		if r.BiasEvidence != nil {
			sec.BiasEvidence = *r.BiasEvidence
		}

		if m, ok := media[r.Source]; ok {
			sec.Name = m.Name
			sec.Flag = m.FlagEmoji
			if b := m.CalculatedBias(); b != nil {
				sec.RatedBias = fmt.Sprintf("%s (%+.2f)", b.Label, b.Score)
			}
		}

		for _, n := range r.Narratives {
			if n.Theme == nil {
				continue
			}
			row := NarrativeRow{
				Theme:    *n.Theme,
				Coverage: fmt.Sprintf("%.0f%%", n.Coverage),
			}
			if n.Examples != nil {
				row.Examples = *n.Examples
			}
			sec.Narratives = append(sec.Narratives, row)
		}
		for _, v := range r.Values {
			if v.Value == nil {
				continue
			}
			row := ValueRow{Value: *v.Value}
			if v.Examples != nil {
				row.Examples = *v.Examples
			}
			sec.Values = append(sec.Values, row)
		}

		data.Sources = append(data.Sources, sec)
	}
	return data
}

func leaning(r models.AnalysisReport) string {
	if r.BiasLeaning != nil && *r.BiasLeaning != "" {
		return *r.BiasLeaning
	}
	return models.LeaningLabel(r.BiasScore)
}

func leaningClass(score float64) string {
	switch {
	case score <= -0.5:
		return "left"
	case score >= 0.5:
		return "right"
	default:
		return "neutral"
	}
}

// ── Generation ──

// Generate renders the digest in the configured format.
func Generate(day string, reports []models.AnalysisReport, media map[string]models.MediaSource, cfg Config) (string, error) {
	if cfg.Format == FormatText {
		return GenerateText(day, reports, media, cfg)
	}
	return GenerateHTML(day, reports, media, cfg)
}

// GenerateHTML renders the digest as a standalone HTML page.
func GenerateHTML(day string, reports []models.AnalysisReport, media map[string]models.MediaSource, cfg Config) (string, error) {
	data := Build(day, reports, media, cfg)

	tmpl, err := template.New("digest").Parse(DigestTemplate)
	if err != nil {
		return "", fmt.Errorf("parsing template: %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering digest: %w", err)
	}
	return buf.String(), nil
}

// GenerateText renders the digest as plain text for terminal output.
func GenerateText(day string, reports []models.AnalysisReport, media map[string]models.MediaSource, cfg Config) (string, error) {
	data := Build(day, reports, media, cfg)

	var b strings.Builder
	fmt.Fprintf(&b, "%s — %s\n", data.Title, data.HumanDay)
	fmt.Fprintf(&b, "Generated %s UTC\n", data.GeneratedAt)

	if len(data.Sources) == 0 {
		b.WriteString("\nNo analysis reports for this day.\n")
		return b.String(), nil
	}

	for _, s := range data.Sources {
		fmt.Fprintf(&b, "\n%s %s (%d articles)\n", s.Flag, s.Name, s.Articles)
		fmt.Fprintf(&b, "  Bias:      %s %s", s.BiasScore, s.Leaning)
		if s.RatedBias != "" {
			fmt.Fprintf(&b, " — third-party: %s", s.RatedBias)
		}
		b.WriteByte('\n')
		fmt.Fprintf(&b, "  Sentiment: %s positive / %s negative / %s neutral\n",
			s.SentimentPositive, s.SentimentNegative, s.SentimentNeutral)
		for i, n := range s.Narratives {
			fmt.Fprintf(&b, "  Narrative %d: %s (%s)\n", i+1, n.Theme, n.Coverage)
		}
		for _, v := range s.Values {
			fmt.Fprintf(&b, "  Value: %s\n", v.Value)
		}
	}
	return b.String(), nil
}
