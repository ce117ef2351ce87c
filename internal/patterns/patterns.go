// Package patterns reshapes the backend's pre-bucketed PatternData into
// orderable, chart-ready series and grades the exposure ratios.
package patterns

import (
	"sort"

	"github.com/amlwatch/dashboard/internal/domain"
)

// Display thresholds past which a ratio gets visual emphasis. Display
// policy, not statistics.
const (
	roundAmountThreshold      = 0.5
	highRiskExposureThreshold = 0.1
)

// UnknownLabel replaces empty type labels so distribution totals stay
// reconcilable instead of silently dropping a bucket.
const UnknownLabel = "Unknown"

// MonthlyVolume is one bar of the monthly volume chart.
type MonthlyVolume struct {
	Month  string  `json:"month"`
	Volume float64 `json:"volume"`
}

// LabeledValue is one slice of a distribution chart.
type LabeledValue struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// RatioSummary carries the pass-through ratios plus their emphasis flags.
type RatioSummary struct {
	AvgTransactionSize   float64 `json:"avg_transaction_size"`
	RoundAmountRatio     float64 `json:"round_amount_ratio"`
	RoundAmountNotable   bool    `json:"round_amount_notable"`
	HighRiskExposure     float64 `json:"high_risk_country_exposure"`
	HighRiskExposureNote bool    `json:"high_risk_exposure_notable"`
}

// Monthly orders the by-month buckets ascending by their "YYYY-MM" key;
// lexicographic order coincides with chronological order for that format.
func Monthly(p domain.PatternData) []MonthlyVolume {
	out := make([]MonthlyVolume, 0, len(p.ByMonth))
	for month, volume := range p.ByMonth {
		out = append(out, MonthlyVolume{Month: month, Volume: volume})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// ByType converts the type buckets into a label-ordered series. Empty
// labels render as UnknownLabel.
func ByType(p domain.PatternData) []LabeledValue {
	return labeled(p.ByType)
}

// ByCurrency converts the currency buckets into a label-ordered series.
func ByCurrency(p domain.PatternData) []LabeledValue {
	return labeled(p.ByCurrency)
}

func labeled(buckets map[string]float64) []LabeledValue {
	out := make([]LabeledValue, 0, len(buckets))
	for label, value := range buckets {
		if label == "" {
			label = UnknownLabel
		}
		out = append(out, LabeledValue{Label: label, Value: value})
	}
	// Map iteration order is random; fix a deterministic label order.
	sort.Slice(out, func(i, j int) bool { return out[i].Label < out[j].Label })
	return out
}

// Ratios passes the exposure ratios through and marks the noteworthy ones.
func Ratios(p domain.PatternData) RatioSummary {
	return RatioSummary{
		AvgTransactionSize:   p.AvgTransactionSize,
		RoundAmountRatio:     p.RoundAmountRatio,
		RoundAmountNotable:   p.RoundAmountRatio > roundAmountThreshold,
		HighRiskExposure:     p.HighRiskCountryExposure,
		HighRiskExposureNote: p.HighRiskCountryExposure > highRiskExposureThreshold,
	}
}
