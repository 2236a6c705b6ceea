// internal/matching/task/result.go
package task

import (
	"time"

	"agrimatch/internal/matching/feature"
)

// MatchResultItem is one ranked candidate in a completed result.
type MatchResultItem struct {
	Rank           int     `json:"rank"` // 1-based
	ProductID      string  `json:"productId"`
	VarietyScore   float64 `json:"varietyScore"`
	RegionScore    float64 `json:"regionScore"`
	ClimateScore   float64 `json:"climateScore"`
	SeasonScore    float64 `json:"seasonScore"`
	QualityScore   float64 `json:"qualityScore"`
	IntentScore    float64 `json:"intentScore"`
	TotalScore     float64 `json:"totalScore"`
	Grade          string  `json:"grade"`
	Recommendation string  `json:"recommendation"`
}

// MatchResult is the outcome of a completed task. It is built once and never
// mutated afterwards.
type MatchResult struct {
	PlanID         string            `json:"planId"`
	TotalEvaluated int               `json:"totalEvaluated"`
	Items          []MatchResultItem `json:"items"`
	DurationMillis int64             `json:"durationMillis"`
	CompletedAt    time.Time         `json:"completedAt"`
}

// BestMatch returns the top-ranked item, or nil for an empty result.
func (r *MatchResult) BestMatch() *MatchResultItem {
	if len(r.Items) == 0 {
		return nil
	}
	return &r.Items[0]
}

// BuildResult assembles a result from ranked features, keeping the top N and
// assigning 1-based ranks. The features must already be sorted descending by
// total score.
func BuildResult(planID string, totalEvaluated int, ranked []feature.MatchFeature, topN int, duration time.Duration) *MatchResult {
	if topN > 0 && len(ranked) > topN {
		ranked = ranked[:topN]
	}
	items := make([]MatchResultItem, 0, len(ranked))
	for i, f := range ranked {
		items = append(items, MatchResultItem{
			Rank:           i + 1,
			ProductID:      f.ProductID,
			VarietyScore:   f.VarietyScore,
			RegionScore:    f.RegionScore,
			ClimateScore:   f.ClimateScore,
			SeasonScore:    f.SeasonScore,
			QualityScore:   f.QualityScore,
			IntentScore:    f.IntentScore,
			TotalScore:     f.TotalScore,
			Grade:          f.Grade,
			Recommendation: f.Recommendation,
		})
	}
	return &MatchResult{
		PlanID:         planID,
		TotalEvaluated: totalEvaluated,
		Items:          items,
		DurationMillis: duration.Milliseconds(),
		CompletedAt:    time.Now().UTC(),
	}
}
