// internal/models/product.go
package models

// Difficulty levels reported by suppliers for their seed products.
const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

// Product is a supplier listing evaluated as a match candidate. Like plans,
// products are owned by the catalog service and referenced read-only.
type Product struct {
	ID              string   `json:"id"`
	SupplierID      string   `json:"supplierId"`
	Variety         string   `json:"variety"`
	Regions         []string `json:"regions,omitempty"`
	PlantingSeasons []string `json:"plantingSeasons,omitempty"`
	GerminationRate *float64 `json:"germinationRate,omitempty"` // percent, 0-100
	Purity          *float64 `json:"purity,omitempty"`          // percent, 0-100
	Difficulty      string   `json:"difficulty,omitempty"`
	MinTemperature  *float64 `json:"minTemperature,omitempty"` // celsius
	MaxTemperature  *float64 `json:"maxTemperature,omitempty"`
	MinHumidity     *float64 `json:"minHumidity,omitempty"` // percent
	MaxHumidity     *float64 `json:"maxHumidity,omitempty"`
	LightNeed       string   `json:"lightNeed,omitempty"` // full/partial/shade
	Description     string   `json:"description,omitempty"`
	Price           float64  `json:"price,omitempty"`
	Stock           int      `json:"stock,omitempty"`
}
