package bom

import (
	"context"

	"github.com/shopspring/decimal"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/catalogs/uom"
)

// Calculator performs BOM quantity arithmetic with unit resolution.
type Calculator struct {
	units uom.Repository
}

// NewCalculator creates a BOM calculator over the unit repository.
func NewCalculator(units uom.Repository) *Calculator {
	return &Calculator{units: units}
}

// ComputeFactor returns the scale factor to apply to BOM line quantities
// in order to yield `quantity` (expressed in `unitID`) of `productID`.
//
// The factor is always computed against the BOM output line for the target
// product; nested walks re-anchor on each component's own quantity, which
// is what keeps multi-level plan quantities correct.
func (c *Calculator) ComputeFactor(ctx context.Context, b *BOM, productID id.ID, quantity decimal.Decimal, unitID id.ID) (decimal.Decimal, error) {
	out := b.OutputFor(productID)
	if out == nil {
		return decimal.Zero, apperror.NewValidation("product is not an output of the BOM").
			WithDetail("bom_id", b.ID.String()).
			WithDetail("product_id", productID.String())
	}

	unit, err := c.units.GetByID(ctx, unitID)
	if err != nil {
		return decimal.Zero, err
	}
	outUnit, err := c.units.GetByID(ctx, out.UnitID)
	if err != nil {
		return decimal.Zero, err
	}

	qty, err := unit.ComputeQtyExact(quantity, outUnit)
	if err != nil {
		return decimal.Zero, err
	}

	if out.Quantity.IsZero() {
		return decimal.Zero, nil
	}
	return qty.Div(out.Quantity), nil
}

// ComputeInputQuantity scales an input line by factor, rounded up to the
// input unit precision so consumption is never understated.
func (c *Calculator) ComputeInputQuantity(ctx context.Context, in Input, factor decimal.Decimal) (decimal.Decimal, error) {
	unit, err := c.units.GetByID(ctx, in.UnitID)
	if err != nil {
		return decimal.Zero, err
	}
	return unit.Ceil(in.Quantity.Mul(factor)), nil
}

// ComputeOutputQuantity scales an output line by factor, rounded down to
// the output unit precision.
func (c *Calculator) ComputeOutputQuantity(ctx context.Context, out Output, factor decimal.Decimal) (decimal.Decimal, error) {
	unit, err := c.units.GetByID(ctx, out.UnitID)
	if err != nil {
		return decimal.Zero, err
	}
	return unit.Floor(out.Quantity.Mul(factor)), nil
}
