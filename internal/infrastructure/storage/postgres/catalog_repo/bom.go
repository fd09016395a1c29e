package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"prodsupply/internal/core/id"
	"prodsupply/internal/domain/manufacturing/bom"
	"prodsupply/internal/infrastructure/storage/postgres"
)

const (
	bomTable       = "cat_boms"
	bomInputTable  = "bom_inputs"
	bomOutputTable = "bom_outputs"
)

// BOMRepo implements bom.Repository.
type BOMRepo struct {
	*BaseCatalogRepo[*bom.BOM]
}

// NewBOMRepo creates a new BOM repository.
func NewBOMRepo(txManager *postgres.TxManager) *BOMRepo {
	return &BOMRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			bomTable,
			postgres.ExtractDBColumns[bom.BOM](),
			func() *bom.BOM { return &bom.BOM{} },
		),
	}
}

// GetByID retrieves a BOM with inputs and outputs loaded.
func (r *BOMRepo) GetByID(ctx context.Context, bomID id.ID) (*bom.BOM, error) {
	b, err := r.BaseCatalogRepo.GetByID(ctx, bomID)
	if err != nil {
		return nil, err
	}

	inputs, outputs, err := r.GetLines(ctx, bomID)
	if err != nil {
		return nil, err
	}
	b.Inputs = inputs
	b.Outputs = outputs
	return b, nil
}

// GetLines loads input and output lines for a BOM.
func (r *BOMRepo) GetLines(ctx context.Context, bomID id.ID) ([]bom.Input, []bom.Output, error) {
	inSQL, inArgs, err := r.Builder().
		Select("line_id", "product_id", "quantity", "unit_id", "sequence").
		From(bomInputTable).
		Where(squirrel.Eq{"bom_id": bomID}).
		OrderBy("sequence").
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("build query: %w", err)
	}

	querier := r.Querier(ctx)
	var inputs []bom.Input
	if err := pgxscan.Select(ctx, querier, &inputs, inSQL, inArgs...); err != nil {
		return nil, nil, fmt.Errorf("get bom inputs: %w", err)
	}

	outSQL, outArgs, err := r.Builder().
		Select("line_id", "product_id", "quantity", "unit_id", "sequence").
		From(bomOutputTable).
		Where(squirrel.Eq{"bom_id": bomID}).
		OrderBy("sequence").
		ToSql()
	if err != nil {
		return nil, nil, fmt.Errorf("build query: %w", err)
	}

	var outputs []bom.Output
	if err := pgxscan.Select(ctx, querier, &outputs, outSQL, outArgs...); err != nil {
		return nil, nil, fmt.Errorf("get bom outputs: %w", err)
	}

	return inputs, outputs, nil
}

// Create inserts the BOM and its lines.
func (r *BOMRepo) Create(ctx context.Context, b *bom.BOM) error {
	if err := r.BaseCatalogRepo.Create(ctx, b); err != nil {
		return err
	}
	return r.saveLines(ctx, b)
}

// Update modifies the BOM and replaces its lines.
func (r *BOMRepo) Update(ctx context.Context, b *bom.BOM) error {
	if err := r.BaseCatalogRepo.Update(ctx, b); err != nil {
		return err
	}

	for _, table := range []string{bomInputTable, bomOutputTable} {
		sql, args, err := r.Builder().
			Delete(table).
			Where(squirrel.Eq{"bom_id": b.ID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}

	return r.saveLines(ctx, b)
}

func (r *BOMRepo) saveLines(ctx context.Context, b *bom.BOM) error {
	if len(b.Inputs) > 0 {
		q := r.Builder().
			Insert(bomInputTable).
			Columns("bom_id", "line_id", "product_id", "quantity", "unit_id", "sequence")
		for _, in := range b.Inputs {
			q = q.Values(b.ID, in.LineID, in.ProductID, in.Quantity, in.UnitID, in.Sequence)
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert bom inputs: %w", err)
		}
	}

	if len(b.Outputs) > 0 {
		q := r.Builder().
			Insert(bomOutputTable).
			Columns("bom_id", "line_id", "product_id", "quantity", "unit_id", "sequence")
		for _, out := range b.Outputs {
			q = q.Values(b.ID, out.LineID, out.ProductID, out.Quantity, out.UnitID, out.Sequence)
		}
		sql, args, err := q.ToSql()
		if err != nil {
			return fmt.Errorf("build insert: %w", err)
		}
		if _, err := r.Querier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("insert bom outputs: %w", err)
		}
	}

	return nil
}
