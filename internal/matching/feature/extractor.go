// internal/matching/feature/extractor.go
package feature

import (
	"strings"
	"time"

	"agrimatch/internal/matching/climate"
	"agrimatch/internal/models"
)

// Seasons in cyclic order; adjacency wraps around the year.
var seasonCycle = []string{"春季", "夏季", "秋季", "冬季"}

// usageClusters maps a target-usage cluster to the keywords that identify it
// both in the plan's stated usage and in product descriptions.
var usageClusters = map[string][]string{
	"食用":   {"食用", "口感", "营养", "食味", "鲜食"},
	"饲料":   {"饲料", "养殖", "青贮", "牧草"},
	"加工":   {"加工", "面粉", "淀粉", "榨油", "酿造"},
	"商品销售": {"销售", "商品", "市场", "出售", "批发"},
	"制种繁育": {"制种", "繁育", "育种", "留种"},
}

// usageClusterOrder fixes the match precedence when a target usage names more
// than one cluster (e.g. "饲料加工"). Scores must not depend on map iteration
// order.
var usageClusterOrder = []string{"食用", "饲料", "加工", "商品销售", "制种繁育"}

// Extractor computes the six raw dimension scores for a (plan, product) pair.
// It is pure and deterministic; all scores are clamped to [0,100].
type Extractor struct{}

func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract computes all six raw dimension scores. Aggregate fields are left
// zero; the rule engine fills them in.
func (e *Extractor) Extract(plan *models.PlantingPlan, product *models.Product) MatchFeature {
	f := e.ExtractGate(plan, product)
	e.Complete(&f, plan, product)
	return f
}

// ExtractGate computes only the gating dimensions (variety, region, season)
// that the hard-mismatch rule consults. The remaining dimensions stay zero
// until Complete is called.
func (e *Extractor) ExtractGate(plan *models.PlantingPlan, product *models.Product) MatchFeature {
	return MatchFeature{
		PlanID:       plan.ID,
		ProductID:    product.ID,
		VarietyScore: Clamp(e.varietyScore(plan.Variety, product.Variety)),
		RegionScore:  Clamp(e.regionScore(plan.Region, product.Regions)),
		SeasonScore:  Clamp(e.seasonScore(plan.PlantingDate, product.PlantingSeasons)),
	}
}

// Complete fills in the climate, quality and intent dimensions on a feature
// produced by ExtractGate.
func (e *Extractor) Complete(f *MatchFeature, plan *models.PlantingPlan, product *models.Product) {
	f.ClimateScore = Clamp(e.climateScore(plan.Region, product))
	f.QualityScore = Clamp(e.qualityScore(product))
	f.IntentScore = Clamp(e.intentScore(plan.TargetUsage, product.Description))
}

func (e *Extractor) varietyScore(planVariety, productVariety string) float64 {
	planVariety = strings.TrimSpace(planVariety)
	productVariety = strings.TrimSpace(productVariety)
	if planVariety == "" || productVariety == "" {
		return 0
	}
	if planVariety == productVariety {
		return 100
	}
	if strings.Contains(planVariety, productVariety) || strings.Contains(productVariety, planVariety) {
		return 85
	}
	return editSimilarity(planVariety, productVariety) * 100
}

func (e *Extractor) regionScore(planRegion string, productRegions []string) float64 {
	if len(productRegions) == 0 {
		// No region data from the supplier is treated as neutral.
		return 50
	}
	planRegion = strings.TrimSpace(planRegion)
	for _, r := range productRegions {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		if strings.Contains(planRegion, r) || strings.Contains(r, planRegion) {
			return 100
		}
	}
	for _, r := range productRegions {
		if climate.SameZone(planRegion, r) {
			return 80
		}
	}
	return 30
}

func (e *Extractor) climateScore(planRegion string, product *models.Product) float64 {
	score := 100.0
	profile := climate.Lookup(planRegion)

	if product.MinTemperature != nil || product.MaxTemperature != nil {
		overshoot := 0.0
		if product.MinTemperature != nil && profile.AvgTemperature < *product.MinTemperature {
			overshoot = *product.MinTemperature - profile.AvgTemperature
		}
		if product.MaxTemperature != nil && profile.AvgTemperature > *product.MaxTemperature {
			overshoot = profile.AvgTemperature - *product.MaxTemperature
		}
		penalty := overshoot * 5
		if penalty > 30 {
			penalty = 30
		}
		score -= penalty
	}

	if product.MinHumidity != nil && profile.AvgHumidity < *product.MinHumidity {
		score -= 15
	} else if product.MaxHumidity != nil && profile.AvgHumidity > *product.MaxHumidity {
		score -= 15
	}

	if need := strings.TrimSpace(product.LightNeed); need != "" {
		if !climate.LightSatisfied(profile.Light, need) {
			if climate.LightCompatible(profile.Light, need) {
				score -= 10
			} else {
				score -= 25
			}
		}
	}

	if score < 0 {
		score = 0
	}
	return score
}

func (e *Extractor) seasonScore(plantingDate *time.Time, productSeasons []string) float64 {
	if plantingDate == nil {
		return 50
	}
	if len(productSeasons) == 0 {
		return 60
	}
	planSeason := SeasonOf(*plantingDate)
	planIdx := seasonIndex(planSeason)
	adjacent := false
	for _, s := range productSeasons {
		idx := seasonIndex(strings.TrimSpace(s))
		if idx < 0 {
			continue
		}
		if idx == planIdx {
			return 100
		}
		diff := planIdx - idx
		if diff < 0 {
			diff = -diff
		}
		if diff == 1 || diff == 3 {
			adjacent = true
		}
	}
	if adjacent {
		return 70
	}
	return 40
}

func (e *Extractor) qualityScore(product *models.Product) float64 {
	sum := 0.0
	weightSum := 0.0
	if product.GerminationRate != nil {
		sum += 0.4 * Clamp(*product.GerminationRate)
		weightSum += 0.4
	}
	if product.Purity != nil {
		sum += 0.3 * Clamp(*product.Purity)
		weightSum += 0.3
	}
	if d := strings.TrimSpace(product.Difficulty); d != "" {
		sum += 0.3 * difficultyScore(d)
		weightSum += 0.3
	}
	if weightSum == 0 {
		return 60
	}
	return sum / weightSum
}

func (e *Extractor) intentScore(targetUsage, description string) float64 {
	keywords := clusterFor(targetUsage)
	if keywords == nil {
		return 50
	}
	description = strings.TrimSpace(description)
	if description == "" {
		return 60
	}
	hits := 0
	for _, kw := range keywords {
		if strings.Contains(description, kw) {
			hits++
		}
	}
	switch {
	case hits >= 2:
		return 100
	case hits == 1:
		return 80
	default:
		return 50
	}
}

// SeasonOf maps a planting date to its season: Mar-May spring, Jun-Aug summer,
// Sep-Nov autumn, the rest winter.
func SeasonOf(t time.Time) string {
	switch m := t.Month(); {
	case m >= time.March && m <= time.May:
		return "春季"
	case m >= time.June && m <= time.August:
		return "夏季"
	case m >= time.September && m <= time.November:
		return "秋季"
	default:
		return "冬季"
	}
}

func seasonIndex(season string) int {
	for i, s := range seasonCycle {
		if s == season {
			return i
		}
	}
	return -1
}

func difficultyScore(difficulty string) float64 {
	switch strings.ToUpper(difficulty) {
	case models.DifficultyEasy:
		return 100
	case models.DifficultyMedium:
		return 70
	case models.DifficultyHard:
		return 50
	default:
		return 60
	}
}

func clusterFor(targetUsage string) []string {
	targetUsage = strings.TrimSpace(targetUsage)
	if targetUsage == "" {
		return nil
	}
	for _, name := range usageClusterOrder {
		keywords := usageClusters[name]
		if strings.Contains(targetUsage, name) {
			return keywords
		}
		for _, kw := range keywords {
			if strings.Contains(targetUsage, kw) {
				return keywords
			}
		}
	}
	return nil
}

// editSimilarity returns 1 - normalized Levenshtein distance over runes.
func editSimilarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	la, lb := len(ra), len(rb)
	if la == 0 || lb == 0 {
		return 0
	}
	prev := make([]int, lb+1)
	curr := make([]int, lb+1)
	for j := 0; j <= lb; j++ {
		prev[j] = j
	}
	for i := 1; i <= la; i++ {
		curr[0] = i
		for j := 1; j <= lb; j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	dist := prev[lb]
	maxLen := la
	if lb > maxLen {
		maxLen = lb
	}
	return 1 - float64(dist)/float64(maxLen)
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
