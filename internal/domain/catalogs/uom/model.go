// Package uom provides the unit-of-measure catalog.
// Units carry a conversion factor to their category base unit and a
// rounding precision used when converting document quantities.
package uom

import (
	"context"

	"github.com/shopspring/decimal"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/entity"
)

// Category defines the unit category. Conversion is only possible between
// units of the same category.
type Category string

const (
	CategoryUnits  Category = "units"
	CategoryWeight Category = "weight"
	CategoryLength Category = "length"
	CategoryVolume Category = "volume"
	CategoryTime   Category = "time"
)

// Unit represents a measurement unit.
type Unit struct {
	entity.Catalog

	// Category defines the unit family
	Category Category `db:"category" json:"category"`

	// Symbol is the short symbol (e.g., "kg", "m", "u")
	Symbol string `db:"symbol" json:"symbol"`

	// Factor is the multiplier to convert to the category base unit
	// e.g., for "cm" with base "m": factor = 0.01
	Factor decimal.Decimal `db:"factor" json:"factor"`

	// Rounding is the smallest representable quantity increment for this
	// unit (e.g. 0.01). Converted quantities are rounded to a multiple of it.
	Rounding decimal.Decimal `db:"rounding" json:"rounding"`

	// Digits is the display precision
	Digits int32 `db:"digits" json:"digits"`
}

// NewUnit creates a new base Unit of the given category.
func NewUnit(code, name, symbol string, category Category) *Unit {
	return &Unit{
		Catalog:  entity.NewCatalog(code, name),
		Category: category,
		Symbol:   symbol,
		Factor:   decimal.NewFromInt(1),
		Rounding: decimal.New(1, -2),
		Digits:   2,
	}
}

// Validate implements entity.Validatable interface.
func (u *Unit) Validate(ctx context.Context) error {
	if err := u.Catalog.Validate(ctx); err != nil {
		return err
	}

	if u.Symbol == "" {
		return apperror.NewValidation("symbol is required").
			WithDetail("field", "symbol")
	}

	if !isValidCategory(u.Category) {
		return apperror.NewValidation("invalid unit category").
			WithDetail("field", "category").
			WithDetail("value", string(u.Category))
	}

	if !u.Factor.IsPositive() {
		return apperror.NewValidation("factor must be positive").
			WithDetail("field", "factor")
	}

	if !u.Rounding.IsPositive() {
		return apperror.NewValidation("rounding must be positive").
			WithDetail("field", "rounding")
	}

	return nil
}

// ComputeQty converts a quantity from this unit to the target unit,
// rounding the result to the target unit precision.
func (u *Unit) ComputeQty(qty decimal.Decimal, target *Unit) (decimal.Decimal, error) {
	return u.convert(qty, target, true)
}

// ComputeQtyExact converts without rounding. Used for intermediate factor
// arithmetic where rounding would accumulate errors.
func (u *Unit) ComputeQtyExact(qty decimal.Decimal, target *Unit) (decimal.Decimal, error) {
	return u.convert(qty, target, false)
}

func (u *Unit) convert(qty decimal.Decimal, target *Unit, round bool) (decimal.Decimal, error) {
	if u.Category != target.Category {
		return decimal.Zero, apperror.NewValidation("cannot convert between different unit categories").
			WithDetail("source", string(u.Category)).
			WithDetail("target", string(target.Category))
	}

	// Convert to base unit first, then to target:
	// qty * source.factor / target.factor
	result := qty.Mul(u.Factor).Div(target.Factor)
	if round {
		result = target.Round(result)
	}
	return result, nil
}

// Round snaps a quantity to the nearest multiple of the unit rounding.
func (u *Unit) Round(qty decimal.Decimal) decimal.Decimal {
	if !u.Rounding.IsPositive() {
		return qty
	}
	return qty.Div(u.Rounding).Round(0).Mul(u.Rounding)
}

// Ceil snaps a quantity up to the next multiple of the unit rounding.
// Used for BOM input quantities: consumption is never understated.
func (u *Unit) Ceil(qty decimal.Decimal) decimal.Decimal {
	if !u.Rounding.IsPositive() {
		return qty
	}
	return qty.Div(u.Rounding).Ceil().Mul(u.Rounding)
}

// Floor snaps a quantity down to the previous multiple of the unit rounding.
// Used for BOM output quantities.
func (u *Unit) Floor(qty decimal.Decimal) decimal.Decimal {
	if !u.Rounding.IsPositive() {
		return qty
	}
	return qty.Div(u.Rounding).Floor().Mul(u.Rounding)
}

// IsZeroQty reports whether the quantity is below the unit rounding, i.e.
// indistinguishable from zero at this unit's precision.
func (u *Unit) IsZeroQty(qty decimal.Decimal) bool {
	return qty.Abs().LessThan(u.Rounding)
}

func isValidCategory(c Category) bool {
	switch c {
	case CategoryUnits, CategoryWeight, CategoryLength, CategoryVolume, CategoryTime:
		return true
	}
	return false
}
