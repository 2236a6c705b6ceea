// internal/catalog/catalog.go
package catalog

import (
	"context"

	"agrimatch/internal/models"
)

// PlanRepository loads planting plans from the catalog service's storage.
// Plans are read-only from the engine's point of view.
type PlanRepository interface {
	GetPlan(ctx context.Context, id string) (*models.PlantingPlan, error)
}

// CandidateSearcher fetches a bounded candidate set for a plan. An empty
// result is a valid, non-error response.
type CandidateSearcher interface {
	SearchCandidates(ctx context.Context, variety, region string, limit int) ([]models.Product, error)
}
