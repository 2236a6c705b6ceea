// internal/matching/feature/weight.go
package feature

// Weights holds the relative importance of each match dimension. Values are
// non-negative and normalized to sum to 1 before aggregation.
type Weights struct {
	Variety float64 `json:"variety" mapstructure:"variety"`
	Region  float64 `json:"region" mapstructure:"region"`
	Climate float64 `json:"climate" mapstructure:"climate"`
	Season  float64 `json:"season" mapstructure:"season"`
	Quality float64 `json:"quality" mapstructure:"quality"`
	Intent  float64 `json:"intent" mapstructure:"intent"`
}

// DefaultWeights returns the baseline weighting used when none is configured.
func DefaultWeights() Weights {
	return Weights{
		Variety: 0.25,
		Region:  0.20,
		Climate: 0.15,
		Season:  0.15,
		Quality: 0.15,
		Intent:  0.10,
	}
}

// Normalize scales the weights so they sum to 1. Negative entries are clamped
// to zero first. An all-zero vector falls back to equal weights so aggregation
// never divides by zero. Normalizing an already-normalized vector is a no-op.
func (w Weights) Normalize() Weights {
	vals := []float64{w.Variety, w.Region, w.Climate, w.Season, w.Quality, w.Intent}
	sum := 0.0
	for i, v := range vals {
		if v < 0 {
			vals[i] = 0
			v = 0
		}
		sum += v
	}
	if sum == 0 {
		equal := 1.0 / float64(len(vals))
		return Weights{equal, equal, equal, equal, equal, equal}
	}
	return Weights{
		Variety: vals[0] / sum,
		Region:  vals[1] / sum,
		Climate: vals[2] / sum,
		Season:  vals[3] / sum,
		Quality: vals[4] / sum,
		Intent:  vals[5] / sum,
	}
}
