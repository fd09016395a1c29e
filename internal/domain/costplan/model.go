// Package costplan provides the Cost Plan: a planning record that selects
// the specific BOMs to use for a product and its sub-components, and later
// drives production generation from sales.
package costplan

import (
	"context"

	"github.com/shopspring/decimal"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/entity"
	"prodsupply/internal/core/id"
)

// BOMLine selects which BOM to use for one sub-product within the plan's
// BOM tree. A line with a nil BOM marks the sub-product as purchased, not
// produced: it is excluded from recursive explosion.
type BOMLine struct {
	LineID    id.ID  `db:"line_id" json:"lineId"`
	ProductID id.ID  `db:"product_id" json:"productId"`
	BOMID     *id.ID `db:"bom_id" json:"bomId,omitempty"`
}

// Plan represents a cost plan for one product.
type Plan struct {
	entity.Document

	ProductID id.ID           `db:"product_id" json:"productId"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`

	// BOMID is the root BOM. A plan without a BOM cannot generate any
	// production.
	BOMID *id.ID `db:"bom_id" json:"bomId,omitempty"`

	// RouteID and ProcessID annotate the main (root) production when set.
	RouteID   *id.ID `db:"route_id" json:"routeId,omitempty"`
	ProcessID *id.ID `db:"process_id" json:"processId,omitempty"`

	// Lines are the plan BOM lines for sub-products.
	Lines []BOMLine `db:"-" json:"lines"`
}

// NewPlan creates a new cost plan for the product.
func NewPlan(productID id.ID, quantity decimal.Decimal) *Plan {
	return &Plan{
		Document:  entity.NewDocument(),
		ProductID: productID,
		Quantity:  quantity,
	}
}

// Validate implements entity.Validatable interface.
func (p *Plan) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}

	if !p.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	for i, line := range p.Lines {
		if id.IsNil(line.ProductID) {
			return apperror.NewValidation("line product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// AddLine appends a plan BOM line. Pass a nil bomID for purchased
// sub-products.
func (p *Plan) AddLine(productID id.ID, bomID *id.ID) {
	p.Lines = append(p.Lines, BOMLine{
		LineID:    id.New(),
		ProductID: productID,
		BOMID:     bomID,
	})
}

// SubPlansByProduct builds the lookup of plan BOM lines that participate
// in recursive explosion (only lines with a BOM).
func (p *Plan) SubPlansByProduct() map[id.ID]BOMLine {
	subPlans := make(map[id.ID]BOMLine, len(p.Lines))
	for _, line := range p.Lines {
		if line.BOMID != nil {
			subPlans[line.ProductID] = line
		}
	}
	return subPlans
}
