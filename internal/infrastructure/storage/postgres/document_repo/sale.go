package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/domain"
	"prodsupply/internal/domain/sales"
	"prodsupply/internal/infrastructure/storage/postgres"
)

const (
	saleTable     = "doc_sales"
	saleLineTable = "sale_lines"
)

// SaleRepo implements sales.Repository.
type SaleRepo struct {
	*BaseDocumentRepo[*sales.Sale]
}

// NewSaleRepo creates a new sale repository.
func NewSaleRepo(txManager *postgres.TxManager) *SaleRepo {
	return &SaleRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			saleTable,
			postgres.ExtractDBColumns[sales.Sale](),
			func() *sales.Sale { return &sales.Sale{} },
		),
	}
}

// Create inserts the sale and its lines.
func (r *SaleRepo) Create(ctx context.Context, sale *sales.Sale) error {
	if err := r.insertRow(ctx, sale); err != nil {
		return err
	}
	return r.saveLines(ctx, sale)
}

// GetByID retrieves a sale with lines.
func (r *SaleRepo) GetByID(ctx context.Context, saleID id.ID) (*sales.Sale, error) {
	sale, err := r.getRow(ctx, saleID)
	if err != nil {
		return nil, err
	}

	lines, err := r.getLines(ctx, saleID)
	if err != nil {
		return nil, err
	}
	sale.Lines = lines
	return sale, nil
}

// GetByLineID returns the sale owning the given line.
func (r *SaleRepo) GetByLineID(ctx context.Context, lineID id.ID) (*sales.Sale, error) {
	sql, args, err := r.Builder().
		Select("sale_id").
		From(saleLineTable).
		Where(squirrel.Eq{"line_id": lineID}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var saleID id.ID
	if err := r.Querier(ctx).QueryRow(ctx, sql, args...).Scan(&saleID); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("sale line", lineID.String())
		}
		return nil, fmt.Errorf("get by line id: %w", err)
	}

	return r.GetByID(ctx, saleID)
}

// Update modifies the sale and replaces its lines.
func (r *SaleRepo) Update(ctx context.Context, sale *sales.Sale) error {
	if err := r.updateRow(ctx, sale); err != nil {
		return err
	}
	if err := r.deleteChildRows(ctx, saleLineTable, "sale_id", []id.ID{sale.ID}); err != nil {
		return err
	}
	return r.saveLines(ctx, sale)
}

// Delete removes the sale and its lines.
func (r *SaleRepo) Delete(ctx context.Context, saleID id.ID) error {
	if err := r.deleteChildRows(ctx, saleLineTable, "sale_id", []id.ID{saleID}); err != nil {
		return err
	}

	sql, args, err := r.Builder().
		Delete(saleTable).
		Where(squirrel.Eq{"id": saleID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}

	result, err := r.Querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("delete sale: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewNotFound("sale", saleID.String())
	}
	return nil
}

// List retrieves sales with filtering and pagination.
func (r *SaleRepo) List(ctx context.Context, filter sales.ListFilter) (domain.ListResult[*sales.Sale], error) {
	result := domain.ListResult[*sales.Sale]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()
	if filter.CustomerID != nil {
		q = q.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if len(filter.States) > 0 {
		q = q.Where(squirrel.Eq{"state": filter.States})
	}
	if filter.Search != "" {
		q = q.Where(squirrel.ILike{"number": "%" + filter.Search + "%"})
	}

	countSQL, countArgs, err := r.Builder().
		Select("COUNT(*)").
		FromSelect(q, "sub").
		ToSql()
	if err != nil {
		return result, fmt.Errorf("build count query: %w", err)
	}

	querier := r.Querier(ctx)
	if err := querier.QueryRow(ctx, countSQL, countArgs...).Scan(&result.TotalCount); err != nil {
		return result, fmt.Errorf("count: %w", err)
	}

	q = q.OrderBy("date DESC", "number DESC")
	if filter.Limit > 0 {
		q = q.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		q = q.Offset(uint64(filter.Offset))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return result, fmt.Errorf("build query: %w", err)
	}

	if err := pgxscan.Select(ctx, querier, &result.Items, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}
	return result, nil
}

func (r *SaleRepo) getLines(ctx context.Context, saleID id.ID) ([]sales.Line, error) {
	sql, args, err := r.Builder().
		Select("line_id", "type", "product_id", "quantity", "unit_id",
			"supply_production", "cost_plan_id", "shipping_date", "sequence").
		From(saleLineTable).
		Where(squirrel.Eq{"sale_id": saleID}).
		OrderBy("sequence").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var lines []sales.Line
	if err := pgxscan.Select(ctx, r.Querier(ctx), &lines, sql, args...); err != nil {
		return nil, fmt.Errorf("get sale lines: %w", err)
	}
	return lines, nil
}

func (r *SaleRepo) saveLines(ctx context.Context, sale *sales.Sale) error {
	if len(sale.Lines) == 0 {
		return nil
	}

	q := r.Builder().
		Insert(saleLineTable).
		Columns("sale_id", "line_id", "type", "product_id", "quantity", "unit_id",
			"supply_production", "cost_plan_id", "shipping_date", "sequence")
	for _, line := range sale.Lines {
		q = q.Values(sale.ID, line.LineID, line.Type, line.ProductID, line.Quantity,
			line.UnitID, line.SupplyProduction, line.CostPlanID, line.ShippingDate, line.Sequence)
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert sale lines: %w", err)
	}
	return nil
}
