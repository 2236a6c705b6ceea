// internal/models/plan.go
package models

import "time"

// PlantingPlan is a farmer's stated production intent. Plans are owned by the
// catalog service and treated as read-only inputs to matching.
type PlantingPlan struct {
	ID            string     `json:"id"`
	UserID        string     `json:"userId"`
	Variety       string     `json:"variety"`
	Region        string     `json:"region"`
	PlantingDate  *time.Time `json:"plantingDate,omitempty"`
	TargetUsage   string     `json:"targetUsage,omitempty"`
	AreaMu        float64    `json:"areaMu,omitempty"`
	ExpectedYield float64    `json:"expectedYield,omitempty"`
}
