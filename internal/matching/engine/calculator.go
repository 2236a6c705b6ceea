// internal/matching/engine/calculator.go
package engine

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"agrimatch/internal/matching/feature"
	"agrimatch/internal/models"
)

// DefaultHardMismatchThreshold rejects candidates whose variety, region or
// season score falls below it. Exposed as configuration, this is the baseline.
const DefaultHardMismatchThreshold = 40

// HardMismatchMessage is the fixed recommendation attached to rejected candidates.
const HardMismatchMessage = "品种、适种区域或种植季节不满足基本要求，不建议匹配"

// Calculator is the deterministic rule engine: hard-mismatch filter, weighted
// aggregation, grading and recommendation text.
type Calculator struct {
	extractor *feature.Extractor
	weights   feature.Weights
	threshold float64
}

func NewCalculator(weights feature.Weights, threshold float64) *Calculator {
	if threshold <= 0 {
		threshold = DefaultHardMismatchThreshold
	}
	return &Calculator{
		extractor: feature.NewExtractor(),
		weights:   weights.Normalize(),
		threshold: threshold,
	}
}

// Weights returns the normalized weight vector in use.
func (c *Calculator) Weights() feature.Weights {
	return c.weights
}

// Threshold returns the hard-mismatch threshold in use.
func (c *Calculator) Threshold() float64 {
	return c.threshold
}

// IsHardMismatch reports whether a scored feature was rejected by the
// hard-mismatch rule.
func (c *Calculator) IsHardMismatch(f *feature.MatchFeature) bool {
	return f.VarietyScore < c.threshold || f.RegionScore < c.threshold || f.SeasonScore < c.threshold
}

// Explain produces the strengths/weaknesses recommendation text for a feature
// whose dimension scores and grade are populated.
func (c *Calculator) Explain(f *feature.MatchFeature) string {
	return c.recommendation(f)
}

// Score extracts the dimension scores for one pair and populates TotalScore,
// Grade and Recommendation. A candidate failing the hard-mismatch rule is
// rejected without consulting the remaining dimensions.
func (c *Calculator) Score(plan *models.PlantingPlan, product *models.Product) feature.MatchFeature {
	f := c.extractor.ExtractGate(plan, product)
	if f.VarietyScore < c.threshold || f.RegionScore < c.threshold || f.SeasonScore < c.threshold {
		f.TotalScore = 0
		f.Grade = feature.GradeD
		f.Recommendation = HardMismatchMessage
		return f
	}

	c.extractor.Complete(&f, plan, product)
	total := f.VarietyScore*c.weights.Variety +
		f.RegionScore*c.weights.Region +
		f.ClimateScore*c.weights.Climate +
		f.SeasonScore*c.weights.Season +
		f.QualityScore*c.weights.Quality +
		f.IntentScore*c.weights.Intent
	f.TotalScore = round2(total)
	f.Grade = feature.GradeFor(f.TotalScore)
	f.Recommendation = c.recommendation(&f)
	return f
}

// Rank returns the features sorted descending by TotalScore. The sort is
// stable: equal scores keep their input order.
func (c *Calculator) Rank(features []feature.MatchFeature) []feature.MatchFeature {
	ranked := make([]feature.MatchFeature, len(features))
	copy(ranked, features)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].TotalScore > ranked[j].TotalScore
	})
	return ranked
}

// BestMatch scores all products and returns the top-ranked feature, or nil
// for an empty candidate set.
func (c *Calculator) BestMatch(plan *models.PlantingPlan, products []models.Product) *feature.MatchFeature {
	if len(products) == 0 {
		return nil
	}
	features := make([]feature.MatchFeature, 0, len(products))
	for i := range products {
		features = append(features, c.Score(plan, &products[i]))
	}
	ranked := c.Rank(features)
	return &ranked[0]
}

// Recommend scores all products and returns the ranked features with
// TotalScore >= 60, truncated to limit.
func (c *Calculator) Recommend(plan *models.PlantingPlan, products []models.Product, limit int) []feature.MatchFeature {
	features := make([]feature.MatchFeature, 0, len(products))
	for i := range products {
		features = append(features, c.Score(plan, &products[i]))
	}
	ranked := c.Rank(features)
	out := make([]feature.MatchFeature, 0, limit)
	for _, f := range ranked {
		if f.TotalScore < 60 {
			continue
		}
		out = append(out, f)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}

type dimension struct {
	name  string
	score float64
}

func (c *Calculator) recommendation(f *feature.MatchFeature) string {
	dims := []dimension{
		{"品种", f.VarietyScore},
		{"适种区域", f.RegionScore},
		{"气候条件", f.ClimateScore},
		{"种植季节", f.SeasonScore},
		{"种子质量", f.QualityScore},
		{"用途契合", f.IntentScore},
	}

	var strengths, weaknesses []string
	for _, d := range dims {
		if d.score >= 80 {
			strengths = append(strengths, d.name)
		} else if d.score < 50 {
			weaknesses = append(weaknesses, d.name)
		}
	}

	var b strings.Builder
	if len(strengths) > 0 {
		b.WriteString(fmt.Sprintf("优势维度：%s。", strings.Join(strengths, "、")))
	}
	if len(weaknesses) > 0 {
		b.WriteString(fmt.Sprintf("薄弱维度：%s。", strings.Join(weaknesses, "、")))
	}
	b.WriteString(closingLine(f.Grade))
	return b.String()
}

func closingLine(grade string) string {
	switch grade {
	case feature.GradeA:
		return "综合评级A，高度匹配，强烈推荐。"
	case feature.GradeB:
		return "综合评级B，匹配良好，值得考虑。"
	case feature.GradeC:
		return "综合评级C，匹配一般，请谨慎选择。"
	default:
		return "综合评级D，匹配度低，不建议选择。"
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
