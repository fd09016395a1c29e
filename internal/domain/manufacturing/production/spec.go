package production

import (
	"github.com/shopspring/decimal"

	"prodsupply/internal/core/id"
)

// Spec describes one production order to be materialized: the product, the
// BOM to explode, and the target quantity. Specs are produced by the cost
// plan walker (or directly from a sale line) and consumed by the
// Materializer.
type Spec struct {
	ProductID id.ID
	Quantity  decimal.Decimal

	// UnitID defaults to the product's default unit when nil.
	UnitID *id.ID

	BOMID      *id.ID
	RouteID    *id.ID
	ProcessID  *id.ID
	CostPlanID *id.ID
}
