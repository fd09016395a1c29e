package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/costplan"
	"prodsupply/internal/infrastructure/storage/postgres"
)

const (
	costPlanTable     = "doc_cost_plans"
	costPlanLineTable = "cost_plan_lines"
)

// CostPlanRepo implements costplan.Repository.
type CostPlanRepo struct {
	*BaseDocumentRepo[*costplan.Plan]
}

// NewCostPlanRepo creates a new cost plan repository.
func NewCostPlanRepo(txManager *postgres.TxManager) *CostPlanRepo {
	return &CostPlanRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			costPlanTable,
			postgres.ExtractDBColumns[costplan.Plan](),
			func() *costplan.Plan { return &costplan.Plan{} },
		),
	}
}

// Create inserts the plan and its BOM lines.
func (r *CostPlanRepo) Create(ctx context.Context, plan *costplan.Plan) error {
	if err := r.insertRow(ctx, plan); err != nil {
		return err
	}
	return r.saveLines(ctx, plan)
}

// GetByID retrieves a plan with its BOM lines.
func (r *CostPlanRepo) GetByID(ctx context.Context, planID id.ID) (*costplan.Plan, error) {
	plan, err := r.getRow(ctx, planID)
	if err != nil {
		return nil, err
	}

	sql, args, err := r.Builder().
		Select("line_id", "product_id", "bom_id").
		From(costPlanLineTable).
		Where(squirrel.Eq{"plan_id": planID}).
		OrderBy("sequence").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, r.Querier(ctx), &plan.Lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get cost plan lines: %w", err)
	}
	return plan, nil
}

// Update modifies the plan and replaces its BOM lines.
func (r *CostPlanRepo) Update(ctx context.Context, plan *costplan.Plan) error {
	if err := r.updateRow(ctx, plan); err != nil {
		return err
	}
	if err := r.deleteChildRows(ctx, costPlanLineTable, "plan_id", []id.ID{plan.ID}); err != nil {
		return err
	}
	return r.saveLines(ctx, plan)
}

// Delete removes the plan and its lines.
func (r *CostPlanRepo) Delete(ctx context.Context, planID id.ID) error {
	if err := r.deleteChildRows(ctx, costPlanLineTable, "plan_id", []id.ID{planID}); err != nil {
		return err
	}

	sql, args, err := r.Builder().
		Delete(costPlanTable).
		Where(squirrel.Eq{"id": planID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete cost plan: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("cost plan", planID.String())
	}
	return nil
}

func (r *CostPlanRepo) saveLines(ctx context.Context, plan *costplan.Plan) error {
	if len(plan.Lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(costPlanLineTable).
		Columns("plan_id", "line_id", "product_id", "bom_id", "sequence")
	for i, line := range plan.Lines {
		q = q.Values(plan.ID, line.LineID, line.ProductID, line.BOMID, i+1)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert cost plan lines: %w", err)
	}
	return nil
}
