package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleLineRequest describes one sale line to create.
type SaleLineRequest struct {
	ProductID string          `json:"productId" binding:"required,uuid"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required"`

	// UnitID defaults to the product's default unit.
	UnitID string `json:"unitId" binding:"omitempty,uuid"`

	// SupplyProduction defaults from the product configuration when nil.
	SupplyProduction *bool `json:"supplyProduction"`

	CostPlanID   string     `json:"costPlanId" binding:"omitempty,uuid"`
	ShippingDate *time.Time `json:"shippingDate"`
}

// CreateSaleRequest describes a sale to create.
type CreateSaleRequest struct {
	CustomerID  string            `json:"customerId" binding:"required,uuid"`
	WarehouseID string            `json:"warehouseId" binding:"required,uuid"`
	Number      string            `json:"number"`
	Reference   string            `json:"reference"`
	Comment     string            `json:"comment"`
	Lines       []SaleLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// SaleListQuery filters the sale list.
type SaleListQuery struct {
	ListQuery

	CustomerID string   `form:"customerId" binding:"omitempty,uuid"`
	States     []string `form:"state"`
}

// ChangeQuantityRequest carries the new quantity for a sale line or a
// production.
type ChangeQuantityRequest struct {
	Quantity decimal.Decimal `json:"quantity" binding:"required"`
}

// AcknowledgeWarningRequest accepts a pending warning key.
type AcknowledgeWarningRequest struct {
	Key string `json:"key" binding:"required"`
}
