package models

import "math"

// BiasAssessment is the reliability-weighted consensus of a publisher's
// third-party bias ratings.
type BiasAssessment struct {
	Label      string  `json:"calculated_bias"`
	Score      float64 `json:"calculated_bias_score"` // -5..+5, rounded to 2 decimals
	Confidence float64 `json:"bias_confidence"`       // 0..1
}

// biasLabels maps integer points on the -5..+5 scale to leaning labels.
var biasLabels = map[int]string{
	-5: "Far Left",
	-4: "Left",
	-3: "Center-Left",
	-2: "Lean Left",
	-1: "Slight Left",
	0:  "Neutral",
	1:  "Slight Right",
	2:  "Lean Right",
	3:  "Center-Right",
	4:  "Right",
	5:  "Far Right",
}

// CalculatedBias averages the publisher's third-party ratings, weighting
// each agency's bias score by its reliability. Ratings missing either
// value are skipped. Returns nil when no complete rating exists.
func (m MediaSource) CalculatedBias() *BiasAssessment {
	type rated struct{ bias, reliability float64 }

	var ratings []rated
	for _, r := range []ThirdPartyRating{m.AdFontes, m.AllSides, m.MBFC} {
		if r.Bias == nil || r.Reliability == nil {
			continue
		}
		ratings = append(ratings, rated{*r.Bias, *r.Reliability})
	}
	if len(ratings) == 0 {
		return nil
	}

	var weightedSum, totalWeight float64
	for _, r := range ratings {
		weightedSum += r.bias * r.reliability
		totalWeight += r.reliability
	}
	if totalWeight == 0 {
		return nil
	}

	avg := weightedSum / totalWeight
	confidence := math.Min(totalWeight/float64(len(ratings)), 1.0)

	// Snap to the nearest labeled point on the scale.
	closest := -5
	for point := -5; point <= 5; point++ {
		if math.Abs(float64(point)-avg) < math.Abs(float64(closest)-avg) {
			closest = point
		}
	}

	return &BiasAssessment{
		Label:      biasLabels[closest],
		Score:      round2(avg),
		Confidence: round2(confidence),
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
