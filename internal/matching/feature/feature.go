// internal/matching/feature/feature.go
package feature

// Match grades, coarse buckets over the aggregate score.
const (
	GradeA = "A"
	GradeB = "B"
	GradeC = "C"
	GradeD = "D"
)

// MatchFeature holds the six dimension scores for one (plan, product) pair
// plus the aggregate produced by the rule engine. TotalScore, Grade and
// Recommendation are only meaningful after scoring; dimension scores alone
// describe raw extraction output.
type MatchFeature struct {
	PlanID    string `json:"planId"`
	ProductID string `json:"productId"`

	VarietyScore float64 `json:"varietyScore"`
	RegionScore  float64 `json:"regionScore"`
	ClimateScore float64 `json:"climateScore"`
	SeasonScore  float64 `json:"seasonScore"`
	QualityScore float64 `json:"qualityScore"`
	IntentScore  float64 `json:"intentScore"`

	TotalScore     float64 `json:"totalScore"`
	Grade          string  `json:"grade,omitempty"`
	Recommendation string  `json:"recommendation,omitempty"`
}

// GradeFor buckets an aggregate score into A/B/C/D.
func GradeFor(total float64) string {
	switch {
	case total >= 80:
		return GradeA
	case total >= 60:
		return GradeB
	case total >= 40:
		return GradeC
	default:
		return GradeD
	}
}

// Clamp bounds a score to the [0,100] range every dimension must stay in.
func Clamp(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
