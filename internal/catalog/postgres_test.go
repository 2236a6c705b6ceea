// internal/catalog/postgres_test.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	apperrors "agrimatch/internal/common/errors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func setupMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var planColumns = []string{"id", "user_id", "variety", "region", "planting_date", "target_usage", "area_mu", "expected_yield"}

var productColumns = []string{
	"id", "supplier_id", "variety", "regions", "planting_seasons", "germination_rate", "purity",
	"difficulty", "min_temperature", "max_temperature", "min_humidity", "max_humidity",
	"light_need", "description", "price", "stock",
}

func TestPostgresCatalog_GetPlan(t *testing.T) {
	db, mock := setupMockDB(t)
	catalog := NewPostgresCatalog(db)

	plantingDate := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, user_id, variety, region").
		WithArgs("plan-1").
		WillReturnRows(sqlmock.NewRows(planColumns).
			AddRow("plan-1", "user-1", "济麦22", "山东菏泽", plantingDate, "食用", 12.5, 6000.0))

	plan, err := catalog.GetPlan(context.Background(), "plan-1")

	assert.NoError(t, err)
	assert.Equal(t, "plan-1", plan.ID)
	assert.Equal(t, "user-1", plan.UserID)
	assert.Equal(t, "济麦22", plan.Variety)
	assert.Equal(t, "山东菏泽", plan.Region)
	assert.NotNil(t, plan.PlantingDate)
	assert.Equal(t, plantingDate, *plan.PlantingDate)
	assert.Equal(t, "食用", plan.TargetUsage)
	assert.Equal(t, 12.5, plan.AreaMu)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_GetPlan_NullableFields(t *testing.T) {
	db, mock := setupMockDB(t)
	catalog := NewPostgresCatalog(db)

	mock.ExpectQuery("SELECT id, user_id, variety, region").
		WithArgs("plan-2").
		WillReturnRows(sqlmock.NewRows(planColumns).
			AddRow("plan-2", "user-1", "玉米", "吉林", nil, nil, nil, nil))

	plan, err := catalog.GetPlan(context.Background(), "plan-2")

	assert.NoError(t, err)
	assert.Nil(t, plan.PlantingDate)
	assert.Empty(t, plan.TargetUsage)
	assert.Zero(t, plan.AreaMu)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_GetPlan_NotFound(t *testing.T) {
	db, mock := setupMockDB(t)
	catalog := NewPostgresCatalog(db)

	mock.ExpectQuery("SELECT id, user_id, variety, region").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	plan, err := catalog.GetPlan(context.Background(), "missing")

	assert.Nil(t, plan)
	assert.Equal(t, apperrors.ErrCodePlanNotFound, apperrors.CodeOf(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_GetPlan_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	catalog := NewPostgresCatalog(db)

	mock.ExpectQuery("SELECT id, user_id, variety, region").
		WithArgs("plan-1").
		WillReturnError(errors.New("connection reset"))

	plan, err := catalog.GetPlan(context.Background(), "plan-1")

	assert.Nil(t, plan)
	assert.Error(t, err)
	assert.NotEqual(t, apperrors.ErrCodePlanNotFound, apperrors.CodeOf(err))
}

func TestPostgresCatalog_SearchCandidates(t *testing.T) {
	db, mock := setupMockDB(t)
	catalog := NewPostgresCatalog(db)

	regions, _ := json.Marshal([]string{"山东", "河北"})
	seasons, _ := json.Marshal([]string{"春季", "秋季"})

	mock.ExpectQuery("SELECT id, supplier_id, variety, regions").
		WithArgs("济麦22", "山东菏泽", 100).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow("prod-1", "supplier-1", "济麦22", regions, seasons, 95.0, 99.0,
				"EASY", nil, nil, nil, nil, "full", "口感好", 45.0, 200).
			AddRow("prod-2", "supplier-2", "济麦20", regions, seasons, nil, nil,
				nil, 5.0, 30.0, nil, nil, nil, nil, 40.0, 150))

	products, err := catalog.SearchCandidates(context.Background(), "济麦22", "山东菏泽", 100)

	assert.NoError(t, err)
	assert.Len(t, products, 2)

	assert.Equal(t, "prod-1", products[0].ID)
	assert.Equal(t, []string{"山东", "河北"}, products[0].Regions)
	assert.Equal(t, []string{"春季", "秋季"}, products[0].PlantingSeasons)
	assert.NotNil(t, products[0].GerminationRate)
	assert.Equal(t, 95.0, *products[0].GerminationRate)
	assert.Equal(t, "EASY", products[0].Difficulty)
	assert.Equal(t, "full", products[0].LightNeed)
	assert.Equal(t, 200, products[0].Stock)

	assert.Nil(t, products[1].GerminationRate)
	assert.Empty(t, products[1].Difficulty)
	assert.NotNil(t, products[1].MinTemperature)
	assert.Equal(t, 5.0, *products[1].MinTemperature)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_SearchCandidates_Empty(t *testing.T) {
	db, mock := setupMockDB(t)
	catalog := NewPostgresCatalog(db)

	mock.ExpectQuery("SELECT id, supplier_id, variety, regions").
		WithArgs("济麦22", "山东", 50).
		WillReturnRows(sqlmock.NewRows(productColumns))

	products, err := catalog.SearchCandidates(context.Background(), "济麦22", "山东", 50)

	assert.NoError(t, err)
	assert.Empty(t, products)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_SearchCandidates_MalformedRegionJSON(t *testing.T) {
	db, mock := setupMockDB(t)
	catalog := NewPostgresCatalog(db)

	mock.ExpectQuery("SELECT id, supplier_id, variety, regions").
		WithArgs("济麦22", "山东", 10).
		WillReturnRows(sqlmock.NewRows(productColumns).
			AddRow("prod-1", "supplier-1", "济麦22", []byte("not json"), []byte("[]"), nil, nil,
				nil, nil, nil, nil, nil, nil, nil, 45.0, 10))

	products, err := catalog.SearchCandidates(context.Background(), "济麦22", "山东", 10)

	assert.NoError(t, err)
	assert.Len(t, products, 1)
	assert.Nil(t, products[0].Regions)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresCatalog_SearchCandidates_QueryError(t *testing.T) {
	db, mock := setupMockDB(t)
	catalog := NewPostgresCatalog(db)

	mock.ExpectQuery("SELECT id, supplier_id, variety, regions").
		WithArgs("济麦22", "山东", 10).
		WillReturnError(errors.New("db down"))

	products, err := catalog.SearchCandidates(context.Background(), "济麦22", "山东", 10)

	assert.Nil(t, products)
	assert.Error(t, err)
}
