// Package production provides the Production document: a manufacturing
// order consuming inputs and yielding outputs per a BOM and route.
package production

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/entity"
	"prodsupply/internal/core/id"
)

// State is the production order lifecycle state.
type State string

const (
	StateRequest   State = "request"
	StateDraft     State = "draft"
	StateWaiting   State = "waiting"
	StateAssigned  State = "assigned"
	StateRunning   State = "running"
	StateDone      State = "done"
	StateCancelled State = "cancelled"
)

// OriginKind discriminates the demand source of a production order.
type OriginKind string

const (
	OriginNone     OriginKind = ""
	OriginSaleLine OriginKind = "sale.line"
)

// Origin is a tagged reference to the demand source that caused the
// production's creation.
type Origin struct {
	Kind OriginKind `db:"origin_kind" json:"originKind,omitempty"`
	ID   id.ID      `db:"origin_id" json:"originId,omitempty"`
}

// SaleLineOrigin builds an origin pointing at a sale line.
func SaleLineOrigin(lineID id.ID) Origin {
	return Origin{Kind: OriginSaleLine, ID: lineID}
}

// IsSaleLine reports whether the origin points at a sale line.
func (o Origin) IsSaleLine() bool {
	return o.Kind == OriginSaleLine && !id.IsNil(o.ID)
}

// IsZero reports whether the production has no origin.
func (o Origin) IsZero() bool {
	return o.Kind == OriginNone
}

// Move is a planned stock movement (input consumption or output yield).
type Move struct {
	MoveID    id.ID           `db:"move_id" json:"moveId"`
	ProductID id.ID           `db:"product_id" json:"productId"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	UnitID    id.ID           `db:"unit_id" json:"unitId"`
	Sequence  int             `db:"sequence" json:"sequence"`
}

// Operation is one route step instantiated on a production order.
type Operation struct {
	OperationID id.ID  `db:"operation_id" json:"operationId"`
	Name        string `db:"name" json:"name"`
	Sequence    int    `db:"sequence" json:"sequence"`
	WorkCenter  string `db:"work_center" json:"workCenter,omitempty"`
}

// Production represents a manufacturing order.
type Production struct {
	entity.Document

	ProductID id.ID           `db:"product_id" json:"productId"`
	Quantity  decimal.Decimal `db:"quantity" json:"quantity"`
	UnitID    id.ID           `db:"unit_id" json:"unitId"`

	State State `db:"state" json:"state"`

	// Origin links the production back to its demand source.
	Origin Origin `db:"-" json:"origin"`

	WarehouseID id.ID `db:"warehouse_id" json:"warehouseId"`

	// LocationID is the warehouse production location.
	LocationID id.ID `db:"location_id" json:"locationId"`

	BOMID      *id.ID `db:"bom_id" json:"bomId,omitempty"`
	RouteID    *id.ID `db:"route_id" json:"routeId,omitempty"`
	ProcessID  *id.ID `db:"process_id" json:"processId,omitempty"`
	CostPlanID *id.ID `db:"cost_plan_id" json:"costPlanId,omitempty"`

	// QualityTemplateID is carried from the product when quality control
	// is configured.
	QualityTemplateID *id.ID `db:"quality_template_id" json:"qualityTemplateId,omitempty"`

	PlannedDate      *time.Time `db:"planned_date" json:"plannedDate,omitempty"`
	PlannedStartDate *time.Time `db:"planned_start_date" json:"plannedStartDate,omitempty"`

	Inputs     []Move      `db:"-" json:"inputs"`
	Outputs    []Move      `db:"-" json:"outputs"`
	Operations []Operation `db:"-" json:"operations,omitempty"`
}

// NewProduction creates an empty draft production.
func NewProduction() *Production {
	return &Production{
		Document: entity.NewDocument(),
		State:    StateDraft,
	}
}

// Validate implements entity.Validatable interface.
func (p *Production) Validate(ctx context.Context) error {
	if err := p.Document.Validate(ctx); err != nil {
		return err
	}

	if id.IsNil(p.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}

	if id.IsNil(p.UnitID) {
		return apperror.NewValidation("unit is required").
			WithDetail("field", "unitId")
	}

	if !p.Quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	if !isValidState(p.State) {
		return apperror.NewValidation("invalid production state").
			WithDetail("field", "state").
			WithDetail("value", string(p.State))
	}

	return nil
}

// IsCommitted reports whether the production counts toward already-produced
// quantity. Committed productions are never resized or deleted by the
// reconciliation engine.
func (p *Production) IsCommitted() bool {
	switch p.State {
	case StateAssigned, StateRunning, StateDone, StateCancelled:
		return true
	}
	return false
}

// IsUpdateable reports whether the production may absorb quantity changes.
func (p *Production) IsUpdateable() bool {
	return p.State == StateDraft || p.State == StateWaiting
}

// SetPlannedStartDate derives the planned start from the planned date.
// Without route timing data the start date equals the planned date.
func (p *Production) SetPlannedStartDate() {
	if p.PlannedDate == nil {
		return
	}
	start := *p.PlannedDate
	p.PlannedStartDate = &start
}

func isValidState(s State) bool {
	switch s {
	case StateRequest, StateDraft, StateWaiting, StateAssigned, StateRunning, StateDone, StateCancelled:
		return true
	}
	return false
}
