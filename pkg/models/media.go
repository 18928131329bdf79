package models

import "time"

// ThirdPartyRating holds one external media-rating agency's assessment of a
// publisher (e.g. Ad Fontes, AllSides, MBFC). Bias is on the same -5..+5
// scale as AnalysisReport.BiasScore; Reliability is 0..1.
type ThirdPartyRating struct {
	Bias        *float64 `json:"bias"        yaml:"bias"`
	Reliability *float64 `json:"reliability" yaml:"reliability"`
	RatingURL   string   `json:"rating_url,omitempty" yaml:"rating_url"`
	DateRated   string   `json:"date_rated,omitempty" yaml:"date_rated"`
}

// MediaSource describes a known publisher: metadata plus third-party bias
// ratings. Collection only runs for publishers present in this registry.
type MediaSource struct {
	Name        string `json:"name"    yaml:"name"`
	Slug        string `json:"source"  yaml:"slug"` // matches Source.Name
	Country     string `json:"country" yaml:"country"`
	FlagEmoji   string `json:"flag_emoji,omitempty"   yaml:"flag_emoji"`
	LogoURL     string `json:"logo_url,omitempty"     yaml:"logo_url"`
	FoundedYear int    `json:"founded_year,omitempty" yaml:"founded_year"`
	Website     string `json:"website,omitempty"      yaml:"website"`
	Description string `json:"description,omitempty"  yaml:"description"`

	Owner             string `json:"owner,omitempty"              yaml:"owner"`
	OwnershipCategory string `json:"ownership_category,omitempty" yaml:"ownership_category"`

	AdFontes ThirdPartyRating `json:"ad_fontes" yaml:"ad_fontes"`
	AllSides ThirdPartyRating `json:"allsides"  yaml:"allsides"`
	MBFC     ThirdPartyRating `json:"media_bias_fact_check" yaml:"media_bias_fact_check"`

	LastUpdated time.Time `json:"last_updated,omitempty" yaml:"-"`
}
