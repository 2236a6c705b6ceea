// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	apperrors "agrimatch/internal/common/errors"
	"agrimatch/internal/models"
)

// PostgresCatalog implements PlanRepository and CandidateSearcher against the
// catalog database.
type PostgresCatalog struct {
	db *sql.DB
}

func NewPostgresCatalog(db *sql.DB) *PostgresCatalog {
	return &PostgresCatalog{db: db}
}

func (c *PostgresCatalog) GetPlan(ctx context.Context, id string) (*models.PlantingPlan, error) {
	row := c.db.QueryRowContext(ctx, `
		SELECT id, user_id, variety, region, planting_date, target_usage, area_mu, expected_yield
		FROM planting_plans WHERE id = $1`, id)

	var plan models.PlantingPlan
	var plantingDate sql.NullTime
	var targetUsage sql.NullString
	var areaMu, expectedYield sql.NullFloat64
	err := row.Scan(&plan.ID, &plan.UserID, &plan.Variety, &plan.Region,
		&plantingDate, &targetUsage, &areaMu, &expectedYield)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewPlanNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("query plan %s: %w", id, err)
	}

	if plantingDate.Valid {
		t := plantingDate.Time
		plan.PlantingDate = &t
	}
	if targetUsage.Valid {
		plan.TargetUsage = targetUsage.String
	}
	if areaMu.Valid {
		plan.AreaMu = areaMu.Float64
	}
	if expectedYield.Valid {
		plan.ExpectedYield = expectedYield.Float64
	}
	return &plan, nil
}

// SearchCandidates keys only on variety and region; target usage and season
// affect ranking, not retrieval.
func (c *PostgresCatalog) SearchCandidates(ctx context.Context, variety, region string, limit int) ([]models.Product, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, supplier_id, variety, regions, planting_seasons, germination_rate, purity,
		       difficulty, min_temperature, max_temperature, min_humidity, max_humidity,
		       light_need, description, price, stock
		FROM products
		WHERE stock > 0
		  AND (variety LIKE '%' || $1 || '%' OR $1 LIKE '%' || variety || '%'
		       OR regions::text LIKE '%' || $2 || '%')
		ORDER BY created_at DESC
		LIMIT $3`, variety, region, limit)
	if err != nil {
		return nil, fmt.Errorf("search candidates: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan candidate: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candidates: %w", err)
	}
	return products, nil
}

func scanProduct(rows *sql.Rows) (models.Product, error) {
	var p models.Product
	var regions, seasons []byte
	var germination, purity, minTemp, maxTemp, minHum, maxHum sql.NullFloat64
	var difficulty, lightNeed, description sql.NullString

	err := rows.Scan(&p.ID, &p.SupplierID, &p.Variety, &regions, &seasons,
		&germination, &purity, &difficulty, &minTemp, &maxTemp, &minHum, &maxHum,
		&lightNeed, &description, &p.Price, &p.Stock)
	if err != nil {
		return p, err
	}

	if err := json.Unmarshal(regions, &p.Regions); err != nil {
		p.Regions = nil
	}
	if err := json.Unmarshal(seasons, &p.PlantingSeasons); err != nil {
		p.PlantingSeasons = nil
	}
	p.GerminationRate = nullFloat(germination)
	p.Purity = nullFloat(purity)
	p.MinTemperature = nullFloat(minTemp)
	p.MaxTemperature = nullFloat(maxTemp)
	p.MinHumidity = nullFloat(minHum)
	p.MaxHumidity = nullFloat(maxHum)
	if difficulty.Valid {
		p.Difficulty = difficulty.String
	}
	if lightNeed.Valid {
		p.LightNeed = lightNeed.String
	}
	if description.Valid {
		p.Description = description.String
	}
	return p, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
