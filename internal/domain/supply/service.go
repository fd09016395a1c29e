package supply

import (
	"context"
	"fmt"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/core/security"
	"prodsupply/internal/core/tx"
	"prodsupply/internal/domain/catalogs/product"
	"prodsupply/internal/domain/catalogs/uom"
	"prodsupply/internal/domain/catalogs/warehouse"
	"prodsupply/internal/domain/costplan"
	"prodsupply/internal/domain/manufacturing/production"
	"prodsupply/internal/domain/sales"
	"prodsupply/pkg/logger"
)

// Service derives production orders from sale lines and reconciles them
// when sale quantities change.
type Service struct {
	sales       sales.Repository
	productions production.Repository
	plans       costplan.Repository
	products    product.Repository
	warehouses  warehouse.Repository
	units       uom.Repository

	walker       *costplan.Walker
	materializer *production.Materializer
	converter    *uom.Converter

	txManager tx.Manager
	audit     AuditTrail
	cfg       Config
}

// NewService wires the supply service. Pass a nil audit trail to disable
// event recording.
func NewService(
	salesRepo sales.Repository,
	productions production.Repository,
	plans costplan.Repository,
	products product.Repository,
	warehouses warehouse.Repository,
	units uom.Repository,
	walker *costplan.Walker,
	materializer *production.Materializer,
	converter *uom.Converter,
	txManager tx.Manager,
	audit AuditTrail,
	cfg Config,
) *Service {
	if audit == nil {
		audit = NopAuditTrail{}
	}
	return &Service{
		sales:        salesRepo,
		productions:  productions,
		plans:        plans,
		products:     products,
		warehouses:   warehouses,
		units:        units,
		walker:       walker,
		materializer: materializer,
		converter:    converter,
		txManager:    txManager,
		audit:        audit,
		cfg:          cfg,
	}
}

// DefaultSupplyProduction returns the supply flag a new sale line for the
// product defaults to: the product's own setting, or the configured
// default for producible products that leave it unset.
func (s *Service) DefaultSupplyProduction(p *product.Product) bool {
	if !p.Producible {
		return false
	}
	return p.SupplyProductionOnSale || s.cfg.SupplyProductionDefault
}

// ProcessSale moves a confirmed sale to processing and creates the
// productions its supply lines request. Reprocessing an already processing
// sale is allowed and idempotent: lines that already have productions are
// left alone.
//
// Done and cancelled sales are skipped without error.
func (s *Service) ProcessSale(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if sale.IsFinished() {
		logger.Info(ctx, "sale is finished, supply skipped", "id", sale.ID, "state", sale.State)
		return sale, nil
	}

	if sale.State != sales.StateConfirmed && sale.State != sales.StateProcessing {
		return nil, apperror.NewBusinessRule(apperror.CodeInvalidSaleState,
			"only confirmed sales can be processed").
			WithDetail("sale_id", sale.ID.String()).
			WithDetail("state", string(sale.State))
	}

	// Derivation is system-triggered, not user-initiated; it runs with
	// elevated privileges so record rules on productions do not apply.
	elevated := security.WithElevated(ctx)

	err = s.txManager.RunInTransaction(elevated, func(ctx context.Context) error {
		for i := range sale.Lines {
			if err := s.deriveLine(ctx, sale, &sale.Lines[i]); err != nil {
				return err
			}
		}

		if sale.State == sales.StateConfirmed {
			sale.State = sales.StateProcessing
			if err := s.sales.Update(ctx, sale); err != nil {
				return fmt.Errorf("update sale: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale processed", "id", sale.ID, "number", sale.Number)
	return sale, nil
}

// deriveLine creates the productions one sale line requests. All specs of a
// line are persisted atomically: either every production of the line's plan
// tree exists afterwards or none does.
func (s *Service) deriveLine(ctx context.Context, sale *sales.Sale, line *sales.Line) error {
	if !line.IsProductLine() || !line.SupplyProduction {
		return nil
	}
	if !line.Quantity.IsPositive() {
		return nil
	}

	prod, err := s.products.GetByID(ctx, *line.ProductID)
	if err != nil {
		return err
	}
	if !prod.Producible {
		logger.Warn(ctx, "supply line product is not producible, skipped",
			"sale_id", sale.ID, "line_id", line.LineID, "product_id", prod.ID)
		return nil
	}
	if s.cfg.CostPlanRequired && line.CostPlanID == nil {
		logger.Warn(ctx, "supply line has no cost plan, skipped",
			"sale_id", sale.ID, "line_id", line.LineID, "product_id", prod.ID)
		return nil
	}

	origin := production.SaleLineOrigin(line.LineID)
	existing, err := s.productions.GetByOrigin(ctx, origin)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	specs, err := s.lineSpecs(ctx, line, prod)
	if err != nil {
		return err
	}

	wh, err := s.warehouses.GetByID(ctx, sale.WarehouseID)
	if err != nil {
		return err
	}

	created := make([]id.ID, 0, len(specs))
	for _, spec := range specs {
		p, err := s.materializer.Build(ctx, spec, wh)
		if err != nil {
			return err
		}
		p.Origin = origin
		p.Reference = sale.Number
		if line.ShippingDate != nil {
			date := *line.ShippingDate
			p.PlannedDate = &date
			p.SetPlannedStartDate()
		}
		if err := s.productions.Create(ctx, p); err != nil {
			return fmt.Errorf("create production: %w", err)
		}
		created = append(created, p.ID)
	}

	logger.Info(ctx, "productions derived",
		"sale_id", sale.ID, "line_id", line.LineID, "count", len(created))
	return s.audit.Record(ctx, AuditEvent{
		Kind:          AuditDerived,
		SaleID:        sale.ID,
		LineID:        line.LineID,
		ProductionIDs: created,
	})
}

// lineSpecs builds the production specs for a supply line: the cost plan
// tree when the line has a plan, a single production from the product's
// default BOM otherwise.
func (s *Service) lineSpecs(ctx context.Context, line *sales.Line, prod *product.Product) ([]production.Spec, error) {
	if line.CostPlanID != nil {
		plan, err := s.plans.GetByID(ctx, *line.CostPlanID)
		if err != nil {
			return nil, err
		}
		return s.walker.EligibleProductions(ctx, plan, line.UnitID, line.Quantity)
	}

	spec := production.Spec{
		ProductID: prod.ID,
		Quantity:  line.Quantity,
		UnitID:    id.Ptr(line.UnitID),
	}
	if assoc := prod.DefaultBOM(); assoc != nil {
		spec.BOMID = id.Ptr(assoc.BOMID)
		spec.RouteID = assoc.RouteID
		spec.ProcessID = assoc.ProcessID
	}
	return []production.Spec{spec}, nil
}

// SaleProductions returns every production derived from the sale's lines,
// in line then creation order.
func (s *Service) SaleProductions(ctx context.Context, saleID id.ID) ([]*production.Production, error) {
	sale, err := s.sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	var prods []*production.Production
	for i := range sale.Lines {
		line := &sale.Lines[i]
		if !line.IsProductLine() {
			continue
		}
		lineProds, err := s.productions.GetByOrigin(ctx, production.SaleLineOrigin(line.LineID))
		if err != nil {
			return nil, err
		}
		prods = append(prods, lineProds...)
	}
	return prods, nil
}

// DeleteProductions removes productions and reprocesses the sales whose
// lines originated them, so demand that is still open gets fresh orders.
func (s *Service) DeleteProductions(ctx context.Context, prodIDs []id.ID) error {
	if len(prodIDs) == 0 {
		return nil
	}

	affected := make(map[id.ID]bool)

	elevated := security.WithElevated(ctx)
	err := s.txManager.RunInTransaction(elevated, func(ctx context.Context) error {
		for _, prodID := range prodIDs {
			p, err := s.productions.GetByID(ctx, prodID)
			if err != nil {
				return err
			}
			if p.Origin.IsSaleLine() {
				sale, err := s.sales.GetByLineID(ctx, p.Origin.ID)
				if err != nil {
					return err
				}
				if !sale.IsFinished() {
					affected[sale.ID] = true
				}
				if err := s.audit.Record(ctx, AuditEvent{
					Kind:          AuditDeleted,
					SaleID:        sale.ID,
					LineID:        p.Origin.ID,
					ProductionIDs: []id.ID{p.ID},
				}); err != nil {
					return err
				}
			}
		}
		return s.productions.Delete(ctx, prodIDs)
	})
	if err != nil {
		return err
	}

	for saleID := range affected {
		if _, err := s.ProcessSale(ctx, saleID); err != nil {
			return err
		}
	}
	return nil
}
