package supply

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/core/security"
	"prodsupply/internal/domain/manufacturing/production"
	"prodsupply/internal/domain/sales"
	"prodsupply/pkg/logger"
)

// ChangeLineQuantity updates a sale line quantity on a processing sale and
// reconciles the line's productions so open manufacturing demand matches
// the new quantity.
func (s *Service) ChangeLineQuantity(ctx context.Context, lineID id.ID, quantity decimal.Decimal) error {
	sale, err := s.sales.GetByLineID(ctx, lineID)
	if err != nil {
		return err
	}

	if sale.State != sales.StateProcessing {
		return apperror.NewBusinessRule(apperror.CodeInvalidSaleState,
			"quantity can only be changed on processing sales").
			WithDetail("sale_id", sale.ID.String()).
			WithDetail("state", string(sale.State))
	}

	line := sale.Line(lineID)
	if line == nil {
		return apperror.NewNotFound("sale line", lineID)
	}
	if !quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}
	if line.Quantity.Equal(quantity) {
		return nil
	}

	elevated := security.WithElevated(ctx)
	return s.txManager.RunInTransaction(elevated, func(ctx context.Context) error {
		line.Quantity = quantity
		if err := s.sales.Update(ctx, sale); err != nil {
			return fmt.Errorf("update sale: %w", err)
		}
		return s.reconcileLine(ctx, sale, line)
	})
}

// ChangeProductionQuantity updates a production quantity through its sale
// line: the line quantity is shifted by the same delta and the normal
// reconciliation resizes the production. Only draft and waiting productions
// that are the single production of their sale line can be changed this way.
func (s *Service) ChangeProductionQuantity(ctx context.Context, prodID id.ID, quantity decimal.Decimal) error {
	p, err := s.productions.GetByID(ctx, prodID)
	if err != nil {
		return err
	}

	if !p.IsUpdateable() {
		return apperror.NewBusinessRule(apperror.CodeInvalidProductionState,
			"only draft or waiting productions can change quantity").
			WithDetail("production_id", p.ID.String()).
			WithDetail("state", string(p.State))
	}

	if !p.Origin.IsSaleLine() {
		return apperror.NewBusinessRule(apperror.CodeNoSaleOrigin,
			"production was not generated from a sale line").
			WithDetail("production_id", p.ID.String())
	}

	siblings, err := s.productions.GetByOrigin(ctx, p.Origin)
	if err != nil {
		return err
	}
	if len(siblings) != 1 {
		return apperror.NewBusinessRule(apperror.CodeAmbiguousOrigin,
			"the sale line has more than one production").
			WithDetail("production_id", p.ID.String()).
			WithDetail("count", len(siblings))
	}

	if !quantity.IsPositive() {
		return apperror.NewValidation("quantity must be positive").
			WithDetail("field", "quantity")
	}

	sale, err := s.sales.GetByLineID(ctx, p.Origin.ID)
	if err != nil {
		return err
	}
	line := sale.Line(p.Origin.ID)
	if line == nil {
		return apperror.NewNotFound("sale line", p.Origin.ID)
	}

	delta, err := s.converter.ComputeQty(ctx, quantity.Sub(p.Quantity), p.UnitID, line.UnitID)
	if err != nil {
		return err
	}

	return s.ChangeLineQuantity(ctx, line.LineID, line.Quantity.Add(delta))
}

// MinimalLineQuantity returns the floor below which the line quantity can
// no longer be lowered: the quantity already covered by committed
// productions, expressed in the line unit.
func (s *Service) MinimalLineQuantity(ctx context.Context, lineID id.ID) (decimal.Decimal, error) {
	sale, err := s.sales.GetByLineID(ctx, lineID)
	if err != nil {
		return decimal.Zero, err
	}
	line := sale.Line(lineID)
	if line == nil {
		return decimal.Zero, apperror.NewNotFound("sale line", lineID)
	}

	prods, err := s.productions.GetByOrigin(ctx, production.SaleLineOrigin(lineID))
	if err != nil {
		return decimal.Zero, err
	}

	committed, _, err := s.splitByState(ctx, line, prods)
	return committed, err
}

// reconcileLine makes the line's open productions cover exactly the line
// quantity minus what committed productions already produce. The largest
// updateable production absorbs the whole remainder; the others are
// deleted, so the sum of production quantities stays equal to the line
// quantity.
func (s *Service) reconcileLine(ctx context.Context, sale *sales.Sale, line *sales.Line) error {
	prods, err := s.productions.GetByOrigin(ctx, production.SaleLineOrigin(line.LineID))
	if err != nil {
		return err
	}
	if len(prods) == 0 {
		return nil
	}

	committed, updateable, err := s.splitByState(ctx, line, prods)
	if err != nil {
		return err
	}

	remaining := line.Quantity.Sub(committed)
	if remaining.IsNegative() {
		return apperror.NewAlreadyProduced().
			WithDetail("line_id", line.LineID.String()).
			WithDetail("produced", committed.String())
	}

	unit, err := s.units.GetByID(ctx, line.UnitID)
	if err != nil {
		return err
	}

	if len(updateable) == 0 {
		if unit.IsZeroQty(remaining) {
			return nil
		}
		return apperror.NewNoUpdateableProductions().
			WithDetail("line_id", line.LineID.String())
	}

	var resized, deleted []id.ID
	if unit.IsZeroQty(remaining) {
		// Committed productions already cover the full line quantity.
		for _, p := range updateable {
			deleted = append(deleted, p.ID)
		}
	} else {
		absorber := updateable[0]
		qty, err := s.converter.ComputeQty(ctx, remaining, line.UnitID, absorber.UnitID)
		if err != nil {
			return err
		}
		absorber.Quantity = qty
		if absorber.BOMID != nil {
			if err := s.materializer.ExplodeBOM(ctx, absorber); err != nil {
				return err
			}
		}
		if absorber.RouteID != nil {
			if err := s.materializer.UpdateOperations(ctx, absorber); err != nil {
				return err
			}
		}
		if err := s.productions.Update(ctx, absorber); err != nil {
			return fmt.Errorf("update production: %w", err)
		}
		resized = append(resized, absorber.ID)

		for _, p := range updateable[1:] {
			deleted = append(deleted, p.ID)
		}
	}

	if len(deleted) > 0 {
		if err := s.productions.Delete(ctx, deleted); err != nil {
			return fmt.Errorf("delete productions: %w", err)
		}
	}

	logger.Info(ctx, "productions reconciled",
		"sale_id", sale.ID, "line_id", line.LineID,
		"resized", len(resized), "deleted", len(deleted))
	return s.audit.Record(ctx, AuditEvent{
		Kind:          AuditReconciled,
		SaleID:        sale.ID,
		LineID:        line.LineID,
		ProductionIDs: append(resized, deleted...),
		Detail:        fmt.Sprintf("quantity=%s", line.Quantity),
	})
}

// splitByState sums committed production quantities in the line unit and
// collects updateable productions sorted by quantity, largest first.
func (s *Service) splitByState(ctx context.Context, line *sales.Line, prods []*production.Production) (decimal.Decimal, []*production.Production, error) {
	committed := decimal.Zero
	var updateable []*production.Production
	lineQty := make(map[id.ID]decimal.Decimal, len(prods))

	for _, p := range prods {
		qty, err := s.converter.ComputeQty(ctx, p.Quantity, p.UnitID, line.UnitID)
		if err != nil {
			return decimal.Zero, nil, err
		}
		switch {
		case p.IsCommitted():
			committed = committed.Add(qty)
		case p.IsUpdateable():
			lineQty[p.ID] = qty
			updateable = append(updateable, p)
		}
	}

	sort.SliceStable(updateable, func(i, j int) bool {
		return lineQty[updateable[i].ID].GreaterThan(lineQty[updateable[j].ID])
	})

	return committed, updateable, nil
}
