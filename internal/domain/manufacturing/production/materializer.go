package production

import (
	"context"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/catalogs/product"
	"prodsupply/internal/domain/catalogs/warehouse"
	"prodsupply/internal/domain/manufacturing/bom"
	"prodsupply/internal/domain/manufacturing/routing"
)

// Materializer turns production specs into fully populated production
// documents: quantity and unit settled, BOM exploded into input/output
// moves, route expanded into operations. Construction is pure; the caller
// persists.
type Materializer struct {
	products product.Repository
	boms     bom.Repository
	routes   routing.Repository
	calc     *bom.Calculator
}

// NewMaterializer creates a materializer over the catalog repositories.
func NewMaterializer(
	products product.Repository,
	boms bom.Repository,
	routes routing.Repository,
	calc *bom.Calculator,
) *Materializer {
	return &Materializer{
		products: products,
		boms:     boms,
		routes:   routes,
		calc:     calc,
	}
}

// Build constructs an unsaved production document from a spec.
func (m *Materializer) Build(ctx context.Context, spec Spec, wh *warehouse.Warehouse) (*Production, error) {
	prod, err := m.products.GetByID(ctx, spec.ProductID)
	if err != nil {
		return nil, err
	}

	if wh.ProductionLocationID == nil {
		return nil, apperror.NewValidation("warehouse has no production location").
			WithDetail("warehouse_id", wh.ID.String())
	}

	p := NewProduction()
	p.ProductID = prod.ID
	p.Quantity = spec.Quantity
	p.WarehouseID = wh.ID
	p.LocationID = *wh.ProductionLocationID
	p.BOMID = spec.BOMID
	p.RouteID = spec.RouteID
	p.ProcessID = spec.ProcessID
	p.CostPlanID = spec.CostPlanID
	p.QualityTemplateID = prod.QualityTemplateID

	if spec.UnitID != nil {
		p.UnitID = *spec.UnitID
	} else {
		p.UnitID = prod.DefaultUomID
	}

	if p.RouteID != nil {
		if err := m.UpdateOperations(ctx, p); err != nil {
			return nil, err
		}
	}

	if p.BOMID != nil {
		if err := m.ExplodeBOM(ctx, p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// ExplodeBOM replaces the production's input and output moves with the BOM
// lines scaled to the production quantity.
func (m *Materializer) ExplodeBOM(ctx context.Context, p *Production) error {
	if p.BOMID == nil {
		return apperror.NewValidation("production has no BOM").
			WithDetail("production_id", p.ID.String())
	}

	b, err := m.boms.GetByID(ctx, *p.BOMID)
	if err != nil {
		return err
	}

	factor, err := m.calc.ComputeFactor(ctx, b, p.ProductID, p.Quantity, p.UnitID)
	if err != nil {
		return err
	}

	p.Inputs = p.Inputs[:0]
	p.Outputs = p.Outputs[:0]

	for _, in := range b.Inputs {
		qty, err := m.calc.ComputeInputQuantity(ctx, in, factor)
		if err != nil {
			return err
		}
		p.Inputs = append(p.Inputs, Move{
			MoveID:    id.New(),
			ProductID: in.ProductID,
			Quantity:  qty,
			UnitID:    in.UnitID,
			Sequence:  len(p.Inputs) + 1,
		})
	}

	for _, out := range b.Outputs {
		qty, err := m.calc.ComputeOutputQuantity(ctx, out, factor)
		if err != nil {
			return err
		}
		// The output for the produced product carries the production
		// quantity itself; rounding must not drift it.
		unitID := out.UnitID
		if out.ProductID == p.ProductID {
			qty = p.Quantity
			unitID = p.UnitID
		}
		p.Outputs = append(p.Outputs, Move{
			MoveID:    id.New(),
			ProductID: out.ProductID,
			Quantity:  qty,
			UnitID:    unitID,
			Sequence:  len(p.Outputs) + 1,
		})
	}

	return nil
}

// UpdateOperations replaces the production's operations with the route
// steps.
func (m *Materializer) UpdateOperations(ctx context.Context, p *Production) error {
	if p.RouteID == nil {
		return apperror.NewValidation("production has no route").
			WithDetail("production_id", p.ID.String())
	}

	route, err := m.routes.GetByID(ctx, *p.RouteID)
	if err != nil {
		return err
	}

	p.Operations = p.Operations[:0]
	for _, step := range route.Steps {
		p.Operations = append(p.Operations, Operation{
			OperationID: id.New(),
			Name:        step.Name,
			Sequence:    step.Sequence,
			WorkCenter:  step.WorkCenter,
		})
	}

	return nil
}
