package costplan

import (
	"context"

	"github.com/shopspring/decimal"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/manufacturing/bom"
	"prodsupply/internal/domain/manufacturing/production"
)

// Walker walks a cost plan's BOM graph and emits the ordered list of
// production specs that must exist to supply the plan's product.
//
// Ordering is meaningful: the first spec is the main production (it carries
// the plan route/process); siblings follow BOM input declaration order,
// depth-first.
type Walker struct {
	boms bom.Repository
	calc *bom.Calculator
}

// NewWalker creates a plan tree walker.
func NewWalker(boms bom.Repository, calc *bom.Calculator) *Walker {
	return &Walker{boms: boms, calc: calc}
}

// EligibleProductions returns one spec per plan node with a component
// production, for the given target quantity expressed in unitID.
//
// Fails with MISSING_BOM when the plan has no root BOM and with
// CYCLIC_PLAN when the plan BOM lines form a cycle.
func (w *Walker) EligibleProductions(ctx context.Context, plan *Plan, unitID id.ID, quantity decimal.Decimal) ([]production.Spec, error) {
	if plan.BOMID == nil {
		return nil, apperror.NewMissingBOM(plan.ID.String())
	}

	subPlans := plan.SubPlansByProduct()

	specs := []production.Spec{{
		ProductID:  plan.ProductID,
		Quantity:   quantity,
		UnitID:     id.Ptr(unitID),
		BOMID:      plan.BOMID,
		RouteID:    plan.RouteID,
		ProcessID:  plan.ProcessID,
		CostPlanID: id.Ptr(plan.ID),
	}}

	visited := map[id.ID]bool{plan.ProductID: true}
	chained, err := w.chainedSpecs(ctx, plan, *plan.BOMID, plan.ProductID, quantity, unitID, subPlans, visited)
	if err != nil {
		return nil, err
	}

	return append(specs, chained...), nil
}

// chainedSpecs walks one BOM level. productID/quantity/unitID identify the
// production this BOM belongs to; each emitted component quantity is
// derived from that anchor, so factors compose correctly across levels
// without an accumulated multiplier.
func (w *Walker) chainedSpecs(
	ctx context.Context,
	plan *Plan,
	bomID id.ID,
	productID id.ID,
	quantity decimal.Decimal,
	unitID id.ID,
	subPlans map[id.ID]BOMLine,
	visited map[id.ID]bool,
) ([]production.Spec, error) {
	b, err := w.boms.GetByID(ctx, bomID)
	if err != nil {
		return nil, err
	}

	factor, err := w.calc.ComputeFactor(ctx, b, productID, quantity, unitID)
	if err != nil {
		return nil, err
	}

	var specs []production.Spec
	for _, input := range b.Inputs {
		line, ok := subPlans[input.ProductID]
		if !ok {
			// No plan BOM line: purchased sub-component, no production.
			continue
		}
		if visited[input.ProductID] {
			return nil, apperror.NewCyclicPlan(plan.ID.String(), input.ProductID.String())
		}

		componentQty, err := w.calc.ComputeInputQuantity(ctx, input, factor)
		if err != nil {
			return nil, err
		}

		specs = append(specs, production.Spec{
			ProductID:  input.ProductID,
			Quantity:   componentQty,
			UnitID:     id.Ptr(input.UnitID),
			BOMID:      line.BOMID,
			CostPlanID: id.Ptr(plan.ID),
		})

		visited[input.ProductID] = true
		nested, err := w.chainedSpecs(ctx, plan, *line.BOMID, input.ProductID, componentQty, input.UnitID, subPlans, visited)
		if err != nil {
			return nil, err
		}
		delete(visited, input.ProductID)

		specs = append(specs, nested...)
	}

	return specs, nil
}
