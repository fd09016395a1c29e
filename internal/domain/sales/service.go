package sales

import (
	"context"
	"fmt"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/core/tx"
	"prodsupply/internal/core/warning"
	"prodsupply/internal/domain"
	"prodsupply/pkg/logger"
)

// Service provides business operations for sale documents.
type Service struct {
	repo      Repository
	warnings  warning.Store
	txManager tx.Manager
}

// NewService creates a new sale service.
func NewService(repo Repository, warnings warning.Store, txManager tx.Manager) *Service {
	return &Service{
		repo:      repo,
		warnings:  warnings,
		txManager: txManager,
	}
}

// MissingCostPlanWarningKey is the acknowledgeable warning key raised when
// a sale is confirmed with supply lines that have no cost plan.
func MissingCostPlanWarningKey(saleID id.ID) string {
	return fmt.Sprintf("missing_cost_plan_%s", saleID)
}

// Create creates a new sale document.
func (s *Service) Create(ctx context.Context, sale *Sale) error {
	if err := sale.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, sale)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "sale created", "id", sale.ID, "number", sale.Number)
	return nil
}

// GetByID retrieves a sale with lines.
func (s *Service) GetByID(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.repo.GetByID(ctx, saleID)
}

// List returns sales matching the filter.
func (s *Service) List(ctx context.Context, filter ListFilter) (domain.ListResult[*Sale], error) {
	return s.repo.List(ctx, filter)
}

// Update updates a draft sale.
func (s *Service) Update(ctx context.Context, sale *Sale) error {
	if sale.State != StateDraft {
		return apperror.NewBusinessRule(apperror.CodeInvalidSaleState,
			"only draft sales can be edited").
			WithDetail("state", string(sale.State))
	}

	if err := sale.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, sale)
	})
}

// Quote moves a draft sale to quotation.
func (s *Service) Quote(ctx context.Context, saleID id.ID) (*Sale, error) {
	return s.transition(ctx, saleID, StateDraft, StateQuotation)
}

// Confirm moves a quotation to confirmed.
//
// When a line requests production supply without a cost plan the first call
// fails with an acknowledgeable warning; once the key is acknowledged the
// confirmation proceeds on retry.
func (s *Service) Confirm(ctx context.Context, saleID id.ID) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if sale.State != StateQuotation {
		return nil, apperror.NewBusinessRule(apperror.CodeInvalidSaleState,
			"only quotation sales can be confirmed").
			WithDetail("sale_id", sale.ID.String()).
			WithDetail("state", string(sale.State))
	}

	if err := s.checkCostPlans(ctx, sale); err != nil {
		return nil, err
	}

	sale.State = StateConfirmed
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale confirmed", "id", sale.ID, "number", sale.Number)
	return sale, nil
}

// AcknowledgeWarning records that the user accepted an acknowledgeable
// warning, so the next retry of the guarded operation proceeds.
func (s *Service) AcknowledgeWarning(ctx context.Context, key string) error {
	return s.warnings.Acknowledge(ctx, key)
}

// Copy duplicates a sale as a new draft and persists it.
func (s *Service) Copy(ctx context.Context, saleID id.ID) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	cp := sale.Copy()
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, cp)
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "sale copied", "source_id", sale.ID, "id", cp.ID)
	return cp, nil
}

func (s *Service) checkCostPlans(ctx context.Context, sale *Sale) error {
	var missing bool
	for i := range sale.Lines {
		line := &sale.Lines[i]
		if line.IsProductLine() && line.SupplyProduction && line.CostPlanID == nil {
			missing = true
			break
		}
	}
	if !missing {
		return nil
	}

	key := MissingCostPlanWarningKey(sale.ID)
	pending, err := s.warnings.Check(ctx, key)
	if err != nil {
		return err
	}
	if pending {
		return apperror.NewPendingWarning(key,
			"Some lines of this sale will generate productions but have no cost plan assigned")
	}
	return nil
}

func (s *Service) transition(ctx context.Context, saleID id.ID, from, to State) (*Sale, error) {
	sale, err := s.repo.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}

	if sale.State != from {
		return nil, apperror.NewBusinessRule(apperror.CodeInvalidSaleState,
			fmt.Sprintf("sale must be %s", from)).
			WithDetail("sale_id", sale.ID.String()).
			WithDetail("state", string(sale.State))
	}

	sale.State = to
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, sale)
	})
	if err != nil {
		return nil, err
	}

	return sale, nil
}
