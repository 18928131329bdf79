package models

import "time"

// Report field counts fixed by the analysis contract.
const (
	NarrativeSlots = 5 // exactly 5 narrative themes per report
	ValueSlots     = 3 // exactly 3 promoted values per report
)

// NarrativeTheme is one dominant topic identified in a publisher's daily
// coverage. Theme and Examples stay nil when the model omitted the slot.
type NarrativeTheme struct {
	Theme    *string `json:"theme"`
	Coverage float64 `json:"coverage"` // percentage of articles
	Examples *string `json:"examples"` // comma-separated full titles
}

// PromotedValue is one cultural value the coverage promotes, with example
// article titles as evidence.
type PromotedValue struct {
	Value    *string `json:"value"`
	Examples *string `json:"examples"`
}

// AnalysisReport is the full structured result of analyzing one publisher's
// articles for one UTC day. Exactly one row exists per (source, date);
// re-analysis replaces the previous row.
//
// The shape is always complete: unrecognized or missing response fields are
// defaulted (nil for text, 0.0 for numbers) rather than omitted.
type AnalysisReport struct {
	ID           string `json:"id,omitempty"`
	SourceID     int64  `json:"source_id"`
	Source       string `json:"source"`
	AnalysisDate string `json:"analysis_date"` // "2006-01-02"
	NumArticles  int    `json:"numbers_of_articles"`

	Narratives          [NarrativeSlots]NarrativeTheme `json:"narratives"`
	NarrativeConfidence float64                        `json:"narrative_confidence"`

	SentimentPositive   float64 `json:"sentiment_positive_percentage"`
	SentimentNegative   float64 `json:"sentiment_negative_percentage"`
	SentimentNeutral    float64 `json:"sentiment_neutral_percentage"`
	SentimentConfidence float64 `json:"sentiment_confidence"`

	BiasScore      float64 `json:"bias_political_score"` // clamped to [-5, 5]
	BiasLeaning    *string `json:"bias_political_leaning"`
	BiasEvidence   *string `json:"bias_supporting_evidence"`
	BiasConfidence float64 `json:"bias_confidence"`

	Values           [ValueSlots]PromotedValue `json:"values_promoted"`
	ValuesConfidence float64                   `json:"values_promoted_confidence"`

	CreatedAt time.Time `json:"created_at,omitempty"`

	// Err is set instead of the analytic fields when the AI analysis for
	// this source failed after all retries. Reports with Err set are never
	// persisted.
	Err string `json:"error,omitempty"`
}

// Failed reports whether the analysis produced an error result.
func (r *AnalysisReport) Failed() bool { return r.Err != "" }

// LeaningLabel maps a political bias score to its textual label on the
// 11-point scale used in analysis prompts and publisher ratings.
func LeaningLabel(score float64) string {
	switch {
	case score <= -4.5:
		return "Far Left"
	case score <= -3.5:
		return "Left"
	case score <= -2.5:
		return "Center-Left"
	case score <= -1.5:
		return "Lean Left"
	case score <= -0.5:
		return "Slight Left"
	case score < 0.5:
		return "Neutral"
	case score < 1.5:
		return "Slight Right"
	case score < 2.5:
		return "Lean Right"
	case score < 3.5:
		return "Center-Right"
	case score < 4.5:
		return "Right"
	default:
		return "Far Right"
	}
}
