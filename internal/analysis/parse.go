package analysis

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/medialens/medialens/pkg/models"
)

// ParseReport turns the model's key-value response into a report. The
// result is always structurally complete: unknown keys are ignored,
// missing text stays nil, and malformed numbers default to zero. The bias
// score is clamped to [-5, 5] whatever the model claims.
func ParseReport(response string, log *slog.Logger) models.AnalysisReport {
	if log == nil {
		log = slog.Default()
	}
	var r models.AnalysisReport
	for _, line := range strings.Split(strings.TrimSpace(response), "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		assignField(&r, key, value, log)
	}
	return r
}

func assignField(r *models.AnalysisReport, key, value string, log *slog.Logger) {
	switch key {
	case "numbers_of_articles":
		if n, err := strconv.Atoi(value); err == nil {
			r.NumArticles = n
		}
	case "main_narrative_confidence":
		r.NarrativeConfidence = parseNumber(key, value, log)
	case "sentiment_positive_percentage":
		r.SentimentPositive = parseNumber(key, value, log)
	case "sentiment_negative_percentage":
		r.SentimentNegative = parseNumber(key, value, log)
	case "sentiment_neutral_percentage":
		r.SentimentNeutral = parseNumber(key, value, log)
	case "sentiment_confidence":
		r.SentimentConfidence = parseNumber(key, value, log)
	case "bias_political_score":
		r.BiasScore = clamp(parseNumber(key, value, log), -5, 5)
	case "bias_political_leaning":
		r.BiasLeaning = textOrNil(value)
	case "bias_supporting_evidence":
		r.BiasEvidence = textOrNil(value)
	case "bias_confidence":
		r.BiasConfidence = parseNumber(key, value, log)
	case "values_promoted_confidence":
		r.ValuesConfidence = parseNumber(key, value, log)
	default:
		assignSlotField(r, key, value, log)
	}
}

// assignSlotField handles the numbered narrative and value keys.
func assignSlotField(r *models.AnalysisReport, key, value string, log *slog.Logger) {
	for i := 1; i <= models.NarrativeSlots; i++ {
		switch key {
		case fmt.Sprintf("main_narrative_theme_%d", i):
			r.Narratives[i-1].Theme = textOrNil(value)
			return
		case fmt.Sprintf("main_narrative_coverage_%d", i):
			r.Narratives[i-1].Coverage = parseNumber(key, value, log)
			return
		case fmt.Sprintf("main_narrative_examples_%d", i):
			r.Narratives[i-1].Examples = textOrNil(value)
			return
		}
	}
	for i := 1; i <= models.ValueSlots; i++ {
		switch key {
		case fmt.Sprintf("values_promoted_value_%d", i):
			r.Values[i-1].Value = textOrNil(value)
			return
		case fmt.Sprintf("values_promoted_examples_%d", i):
			r.Values[i-1].Examples = textOrNil(value)
			return
		}
	}
}

// parseNumber parses a float field, tolerating a trailing percent sign.
// Malformed values default to zero rather than failing the whole report.
func parseNumber(key, value string, log *slog.Logger) float64 {
	value = strings.TrimSpace(strings.TrimSuffix(value, "%"))
	if value == "" {
		return 0
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Error("invalid numeric field in model response", "key", key, "value", value)
		return 0
	}
	return f
}

func textOrNil(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
