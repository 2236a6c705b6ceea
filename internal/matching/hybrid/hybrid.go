// internal/matching/hybrid/hybrid.go
package hybrid

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"agrimatch/internal/common/config"
	"agrimatch/internal/common/logger"
	"agrimatch/internal/common/metrics"
	"agrimatch/internal/matching/engine"
	"agrimatch/internal/matching/feature"
	"agrimatch/internal/models"
)

// Predictor is the contract of the external scoring model.
type Predictor interface {
	Predict(ctx context.Context, req PredictRequest) (*PredictResponse, error)
}

// Service routes scoring between the external model and the rule engine.
// A configurable fraction of requests attempts the model; every failure
// degrades transparently to the rule-engine result, so callers always receive
// a usable MatchFeature.
type Service struct {
	rules     *engine.Calculator
	predictor Predictor
	enabled   bool
	ratio     int
	logger    logger.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

type Option func(*Service)

// WithRand injects a seedable random source so traffic-split routing is
// deterministic in tests.
func WithRand(rnd *rand.Rand) Option {
	return func(s *Service) { s.rnd = rnd }
}

func NewService(rules *engine.Calculator, predictor Predictor, cfg config.MLConfig, log logger.Logger, opts ...Option) *Service {
	ratio := cfg.TrafficRatio
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 100 {
		ratio = 100
	}
	s := &Service{
		rules:     rules,
		predictor: predictor,
		enabled:   cfg.Enabled,
		ratio:     ratio,
		logger:    log.WithFields(map[string]interface{}{"component": "hybrid-scorer"}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score produces a fully populated MatchFeature for one (plan, product) pair.
func (s *Service) Score(ctx context.Context, plan *models.PlantingPlan, product *models.Product) feature.MatchFeature {
	if s.enabled && s.predictor != nil && s.roll() < s.ratio {
		return s.scoreExternal(ctx, plan, product)
	}
	return s.rules.Score(plan, product)
}

// scoreExternal runs the rule engine first (for the hard-mismatch gate and the
// model's request payload), then overlays the model's aggregate on success.
func (s *Service) scoreExternal(ctx context.Context, plan *models.PlantingPlan, product *models.Product) feature.MatchFeature {
	f := s.rules.Score(plan, product)
	if s.rules.IsHardMismatch(&f) {
		// Already rejected; the model never sees hard-mismatched candidates.
		return f
	}

	resp, err := s.predictor.Predict(ctx, PredictRequest{
		VarietyScore: f.VarietyScore,
		RegionScore:  f.RegionScore,
		ClimateScore: f.ClimateScore,
		SeasonScore:  f.SeasonScore,
		QualityScore: f.QualityScore,
		IntentScore:  f.IntentScore,
	})
	if err != nil {
		metrics.MLRequests.WithLabelValues("fallback").Inc()
		s.logger.Warn("ml scoring failed, using rule engine result", map[string]interface{}{
			"planId":    plan.ID,
			"productId": product.ID,
			"error":     err.Error(),
		})
		return f
	}

	metrics.MLRequests.WithLabelValues("applied").Inc()
	f.TotalScore = feature.Clamp(resp.Score)
	f.Grade = resp.Grade
	f.Recommendation = fmt.Sprintf("模型评分：%.2f，置信度：%.2f。%s", f.TotalScore, resp.Confidence, s.rules.Explain(&f))
	return f
}

func (s *Service) roll() int {
	if s.rnd == nil {
		return rand.Intn(100)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rnd.Intn(100)
}
