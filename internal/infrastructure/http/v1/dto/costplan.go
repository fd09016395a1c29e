package dto

import "github.com/shopspring/decimal"

// CostPlanLineRequest selects the BOM for one sub-product. A line without a
// BOM marks the sub-product as purchased.
type CostPlanLineRequest struct {
	ProductID string `json:"productId" binding:"required,uuid"`
	BOMID     string `json:"bomId" binding:"omitempty,uuid"`
}

// CreateCostPlanRequest describes a cost plan to create.
type CreateCostPlanRequest struct {
	ProductID string          `json:"productId" binding:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`

	BOMID     string `json:"bomId" binding:"omitempty,uuid"`
	RouteID   string `json:"routeId" binding:"omitempty,uuid"`
	ProcessID string `json:"processId" binding:"omitempty,uuid"`

	Number string `json:"number"`

	Lines []CostPlanLineRequest `json:"lines" binding:"dive"`
}
