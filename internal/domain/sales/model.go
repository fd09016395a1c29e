// Package sales provides the Sale document: a customer order whose lines
// can request automatic production supply.
package sales

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/entity"
	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/catalogs/product"
)

// State is the sale lifecycle state.
type State string

const (
	StateDraft      State = "draft"
	StateQuotation  State = "quotation"
	StateConfirmed  State = "confirmed"
	StateProcessing State = "processing"
	StateDone       State = "done"
	StateCancelled  State = "cancelled"
)

// LineType discriminates sale line kinds. Only product lines carry
// quantities and can request production supply.
type LineType string

const (
	LineTypeLine     LineType = "line"
	LineTypeComment  LineType = "comment"
	LineTypeSubtotal LineType = "subtotal"
)

// Line is one sale line.
type Line struct {
	LineID id.ID    `db:"line_id" json:"lineId"`
	Type   LineType `db:"type" json:"type"`

	ProductID *id.ID          `db:"product_id" json:"productId,omitempty"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	UnitID    id.ID           `db:"unit_id" json:"unitId"`

	// SupplyProduction requests that the line's demand is covered by
	// manufacturing instead of stock.
	SupplyProduction bool `db:"supply_production" json:"supplyProduction"`

	// CostPlanID selects the cost plan whose BOM tree drives production
	// generation. Without it a single production from the product's
	// default BOM is created.
	CostPlanID *id.ID `db:"cost_plan_id" json:"costPlanId,omitempty"`

	ShippingDate *time.Time `db:"shipping_date" json:"shippingDate,omitempty"`

	Sequence int `db:"sequence" json:"sequence"`
}

// IsProductLine reports whether the line is a product line with a product.
func (l *Line) IsProductLine() bool {
	return l.Type == LineTypeLine && l.ProductID != nil && !id.IsNil(*l.ProductID)
}

// Copy returns a duplicate of the line with a fresh identity. Productions
// reference lines by identity, so a copy never inherits the original
// line's productions.
func (l *Line) Copy() Line {
	cp := *l
	cp.LineID = id.New()
	return cp
}

// Sale represents a customer order.
type Sale struct {
	entity.Document

	CustomerID  id.ID `db:"customer_id" json:"customerId"`
	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	State State `db:"state" json:"state"`

	Lines []Line `db:"-" json:"lines"`
}

// NewSale creates a draft sale.
func NewSale(customerID, warehouseID id.ID) *Sale {
	return &Sale{
		Document:    entity.NewDocument(),
		CustomerID:  customerID,
		WarehouseID: warehouseID,
		State:       StateDraft,
	}
}

// Validate implements entity.Validatable interface.
func (s *Sale) Validate(ctx context.Context) error {
	if err := s.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(s.CustomerID) {
		return apperror.NewValidation("customer is required").
			WithDetail("field", "customerId")
	}

	if id.IsNil(s.WarehouseID) {
		return apperror.NewValidation("warehouse is required").
			WithDetail("field", "warehouseId")
	}

	if !isValidState(s.State) {
		return apperror.NewValidation("invalid sale state").
			WithDetail("field", "state").
			WithDetail("value", string(s.State))
	}

	for i, line := range s.Lines {
		if line.Type != LineTypeLine {
			continue
		}
		if line.ProductID == nil || id.IsNil(*line.ProductID) {
			return apperror.NewValidation("line product is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
		if id.IsNil(line.UnitID) {
			return apperror.NewValidation("line unit is required").
				WithDetail("field", "lines").
				WithDetail("lineNo", i+1)
		}
	}

	return nil
}

// AddLine appends a product line, defaulting the supply flag and unit from
// the product the way a form's on-change would.
func (s *Sale) AddLine(p *product.Product, quantity decimal.Decimal) *Line {
	s.Lines = append(s.Lines, Line{
		LineID:           id.New(),
		Type:             LineTypeLine,
		ProductID:        id.Ptr(p.ID),
		Quantity:         quantity,
		UnitID:           p.DefaultUomID,
		SupplyProduction: p.SupplyProductionOnSale && p.Producible,
		Sequence:         len(s.Lines) + 1,
	})
	return &s.Lines[len(s.Lines)-1]
}

// Line returns the sale line with the given identity, or nil.
func (s *Sale) Line(lineID id.ID) *Line {
	for i := range s.Lines {
		if s.Lines[i].LineID == lineID {
			return &s.Lines[i]
		}
	}
	return nil
}

// Copy duplicates the sale as a new draft. Line copies carry the supply
// configuration but never the generated productions.
func (s *Sale) Copy() *Sale {
	cp := NewSale(s.CustomerID, s.WarehouseID)
	cp.Reference = s.Reference
	cp.Comment = s.Comment
	cp.Lines = make([]Line, 0, len(s.Lines))
	for i := range s.Lines {
		cp.Lines = append(cp.Lines, s.Lines[i].Copy())
	}
	return cp
}

// IsFinished reports whether supply processing must skip the sale.
func (s *Sale) IsFinished() bool {
	return s.State == StateDone || s.State == StateCancelled
}

func isValidState(s State) bool {
	switch s {
	case StateDraft, StateQuotation, StateConfirmed, StateProcessing, StateDone, StateCancelled:
		return true
	}
	return false
}
