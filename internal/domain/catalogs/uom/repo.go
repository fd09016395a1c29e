package uom

import (
	"context"

	"github.com/shopspring/decimal"

	"prodsupply/internal/core/id"
)

// Repository defines read operations needed by the manufacturing domain.
// Full CRUD is provided by the generic catalog repository in infrastructure.
type Repository interface {
	GetByID(ctx context.Context, unitID id.ID) (*Unit, error)
}

// Converter converts quantities between units resolved by ID.
// It is the single quantity-conversion entry point for document services.
type Converter struct {
	units Repository
}

// NewConverter creates a unit converter over the given repository.
func NewConverter(units Repository) *Converter {
	return &Converter{units: units}
}

// ComputeQty converts value from one unit to another with target rounding.
func (c *Converter) ComputeQty(ctx context.Context, value decimal.Decimal, fromID, toID id.ID) (decimal.Decimal, error) {
	if fromID == toID {
		return value, nil
	}
	from, err := c.units.GetByID(ctx, fromID)
	if err != nil {
		return decimal.Zero, err
	}
	to, err := c.units.GetByID(ctx, toID)
	if err != nil {
		return decimal.Zero, err
	}
	return from.ComputeQty(value, to)
}
