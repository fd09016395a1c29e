// Package bom provides the Bill of Materials catalog.
// A BOM maps output products to the component quantities consumed to
// produce them.
package bom

import (
	"context"

	"github.com/shopspring/decimal"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/entity"
	"prodsupply/internal/core/id"
)

// Input is one component consumed by the BOM.
type Input struct {
	LineID    id.ID           `db:"line_id" json:"lineId"`
	ProductID id.ID           `db:"product_id" json:"productId"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	UnitID    id.ID           `db:"unit_id" json:"unitId"`
	Sequence  int             `db:"sequence" json:"sequence"`
}

// Output is one product yielded by the BOM.
type Output struct {
	LineID    id.ID           `db:"line_id" json:"lineId"`
	ProductID id.ID           `db:"product_id" json:"productId"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	UnitID    id.ID           `db:"unit_id" json:"unitId"`
	Sequence  int             `db:"sequence" json:"sequence"`
}

// BOM represents a bill of materials recipe.
type BOM struct {
	entity.Catalog

	Active bool `db:"active" json:"active"`

	// Inputs in declaration order; walk order of dependent productions
	// follows this order.
	Inputs []Input `db:"-" json:"inputs"`

	// Outputs, usually a single line for the produced product.
	Outputs []Output `db:"-" json:"outputs"`
}

// NewBOM creates a new active BOM.
func NewBOM(code, name string) *BOM {
	return &BOM{
		Catalog: entity.NewCatalog(code, name),
		Active:  true,
	}
}

// Validate implements entity.Validatable interface.
func (b *BOM) Validate(ctx context.Context) error {
	if err := b.Catalog.Validate(ctx); err != nil {
		return err
	}

	if len(b.Outputs) == 0 {
		return apperror.NewValidation("at least one output is required").
			WithDetail("field", "outputs")
	}

	for i, in := range b.Inputs {
		if id.IsNil(in.ProductID) {
			return apperror.NewValidation("input product is required").
				WithDetail("field", "inputs").
				WithDetail("lineNo", i+1)
		}
		if !in.Quantity.IsPositive() {
			return apperror.NewValidation("input quantity must be positive").
				WithDetail("field", "inputs").
				WithDetail("lineNo", i+1)
		}
	}

	for i, out := range b.Outputs {
		if id.IsNil(out.ProductID) {
			return apperror.NewValidation("output product is required").
				WithDetail("field", "outputs").
				WithDetail("lineNo", i+1)
		}
		if !out.Quantity.IsPositive() {
			return apperror.NewValidation("output quantity must be positive").
				WithDetail("field", "outputs").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// OutputFor returns the output line yielding the given product, or nil.
func (b *BOM) OutputFor(productID id.ID) *Output {
	for i := range b.Outputs {
		if b.Outputs[i].ProductID == productID {
			return &b.Outputs[i]
		}
	}
	return nil
}

// AddInput appends an input line.
func (b *BOM) AddInput(productID id.ID, quantity decimal.Decimal, unitID id.ID) {
	b.Inputs = append(b.Inputs, Input{
		LineID:    id.New(),
		ProductID: productID,
		Quantity:  quantity,
		UnitID:    unitID,
		Sequence:  len(b.Inputs) + 1,
	})
}

// AddOutput appends an output line.
func (b *BOM) AddOutput(productID id.ID, quantity decimal.Decimal, unitID id.ID) {
	b.Outputs = append(b.Outputs, Output{
		LineID:    id.New(),
		ProductID: productID,
		Quantity:  quantity,
		UnitID:    unitID,
		Sequence:  len(b.Outputs) + 1,
	})
}
