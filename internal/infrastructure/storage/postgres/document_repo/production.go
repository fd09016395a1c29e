package document_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/core/id"
	"prodsupply/internal/domain"
	"prodsupply/internal/domain/manufacturing/production"
	"prodsupply/internal/infrastructure/storage/postgres"
)

const (
	productionTable          = "doc_productions"
	productionMoveTable      = "production_moves"
	productionOperationTable = "production_operations"
)

// productionRow flattens the production header for scanning; the origin is
// a nested value in the model but two plain columns in the table.
type productionRow struct {
	production.Production

	OriginKind production.OriginKind `db:"origin_kind"`
	OriginID   id.ID                 `db:"origin_id"`
}

func (r *productionRow) toModel() *production.Production {
	p := r.Production
	p.Origin = production.Origin{Kind: r.OriginKind, ID: r.OriginID}
	return &p
}

func fromModel(p *production.Production) *productionRow {
	return &productionRow{
		Production: *p,
		OriginKind: p.Origin.Kind,
		OriginID:   p.Origin.ID,
	}
}

// ProductionRepo implements production.Repository.
type ProductionRepo struct {
	*BaseDocumentRepo[*productionRow]
}

// NewProductionRepo creates a new production repository.
func NewProductionRepo(txManager *postgres.TxManager) *ProductionRepo {
	return &ProductionRepo{
		BaseDocumentRepo: NewBaseDocumentRepo(
			txManager,
			productionTable,
			postgres.ExtractDBColumns[productionRow](),
			func() *productionRow { return &productionRow{} },
		),
	}
}

// Create inserts the production with its moves and operations.
func (r *ProductionRepo) Create(ctx context.Context, p *production.Production) error {
	if err := r.insertRow(ctx, fromModel(p)); err != nil {
		return err
	}
	return r.saveChildren(ctx, p)
}

// GetByID retrieves a production with moves and operations.
func (r *ProductionRepo) GetByID(ctx context.Context, prodID id.ID) (*production.Production, error) {
	row, err := r.getRow(ctx, prodID)
	if err != nil {
		return nil, err
	}

	p := row.toModel()
	if err := r.loadChildren(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Update modifies the production and replaces its moves and operations.
func (r *ProductionRepo) Update(ctx context.Context, p *production.Production) error {
	if err := r.updateRow(ctx, fromModel(p)); err != nil {
		return err
	}
	if err := r.deleteChildRows(ctx, productionMoveTable, "production_id", []id.ID{p.ID}); err != nil {
		return err
	}
	if err := r.deleteChildRows(ctx, productionOperationTable, "production_id", []id.ID{p.ID}); err != nil {
		return err
	}
	return r.saveChildren(ctx, p)
}

// Delete removes productions outright together with their children.
func (r *ProductionRepo) Delete(ctx context.Context, prodIDs []id.ID) error {
	if len(prodIDs) == 0 {
		return nil
	}

	if err := r.deleteChildRows(ctx, productionMoveTable, "production_id", prodIDs); err != nil {
		return err
	}
	if err := r.deleteChildRows(ctx, productionOperationTable, "production_id", prodIDs); err != nil {
		return err
	}

	sql, args, err := r.Builder().
		Delete(productionTable).
		Where(squirrel.Eq{"id": prodIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete: %w", err)
	}
	if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("delete productions: %w", err)
	}
	return nil
}

// GetByOrigin returns all productions whose origin matches.
func (r *ProductionRepo) GetByOrigin(ctx context.Context, origin production.Origin) ([]*production.Production, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"origin_kind": origin.Kind}).
		Where(squirrel.Eq{"origin_id": origin.ID}).
		OrderBy("created_at").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []*productionRow
	if err := pgxscan.Select(ctx, r.Querier(ctx), &rows, sql, args...); err != nil {
		return nil, fmt.Errorf("get by origin: %w", err)
	}

	prods := make([]*production.Production, 0, len(rows))
	for _, row := range rows {
		p := row.toModel()
		if err := r.loadChildren(ctx, p); err != nil {
			return nil, err
		}
		prods = append(prods, p)
	}
	return prods, nil
}

// List retrieves productions with filtering and pagination.
func (r *ProductionRepo) List(ctx context.Context, filter production.ListFilter) (domain.ListResult[*production.Production], error) {
	result := domain.ListResult[*production.Production]{
		Limit:  filter.Limit,
		Offset: filter.Offset,
	}

	q := r.baseSelect()
	if filter.ProductID != nil {
		q = q.Where(squirrel.Eq{"product_id": *filter.ProductID})
	}
	if filter.WarehouseID != nil {
		q = q.Where(squirrel.Eq{"warehouse_id": *filter.WarehouseID})
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

	var rows []*productionRow
	if err := pgxscan.Select(ctx, querier, &rows, sql, args...); err != nil {
		return result, fmt.Errorf("list: %w", err)
	}

	result.Items = make([]*production.Production, 0, len(rows))
	for _, row := range rows {
		result.Items = append(result.Items, row.toModel())
	}
	return result, nil
}

func (r *ProductionRepo) loadChildren(ctx context.Context, p *production.Production) error {
	type moveRow struct {
		production.Move
		Direction string `db:"direction"`
	}

	sql, args, err := r.Builder().
		Select("move_id", "direction", "product_id", "quantity", "unit_id", "sequence").
		From(productionMoveTable).
		Where(squirrel.Eq{"production_id": p.ID}).
		OrderBy("direction", "sequence").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	querier := r.Querier(ctx)
	var moves []moveRow
	if err := pgxscan.Select(ctx, querier, &moves, sql, args...); err != nil {
		return fmt.Errorf("get production moves: %w", err)
	}

	p.Inputs = p.Inputs[:0]
	p.Outputs = p.Outputs[:0]
	for _, m := range moves {
		switch m.Direction {
		case "in":
			p.Inputs = append(p.Inputs, m.Move)
		case "out":
			p.Outputs = append(p.Outputs, m.Move)
		default:
			return apperror.NewInternal(fmt.Errorf("unknown move direction %q", m.Direction))
		}
	}

	opSQL, opArgs, err := r.Builder().
		Select("operation_id", "name", "sequence", "work_center").
		From(productionOperationTable).
		Where(squirrel.Eq{"production_id": p.ID}).
		OrderBy("sequence").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	p.Operations = p.Operations[:0]
	if err := pgxscan.Select(ctx, querier, &p.Operations, opSQL, opArgs...); err != nil {
		return fmt.Errorf("get production operations: %w", err)
	}
	return nil
}

func (r *ProductionRepo) saveChildren(ctx context.Context, p *production.Production) error {
	if len(p.Inputs)+len(p.Outputs) > 0 {
		q := r.Builder().
			Insert(productionMoveTable).
			Columns("production_id", "move_id", "direction", "product_id", "quantity", "unit_id", "sequence")
		for _, m := range p.Inputs {
			q = q.Values(p.ID, m.MoveID, "in", m.ProductID, m.Quantity, m.UnitID, m.Sequence)
		}
		for _, m := range p.Outputs {
			q = q.Values(p.ID, m.MoveID, "out", m.ProductID, m.Quantity, m.UnitID, m.Sequence)
		}

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert production moves: %w", err)
		}
	}

	if len(p.Operations) > 0 {
		q := r.Builder().
			Insert(productionOperationTable).
			Columns("production_id", "operation_id", "name", "sequence", "work_center")
		for _, op := range p.Operations {
			q = q.Values(p.ID, op.OperationID, op.Name, op.Sequence, op.WorkCenter)
		}

		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert production operations: %w", err)
		}
	}
	return nil
}
