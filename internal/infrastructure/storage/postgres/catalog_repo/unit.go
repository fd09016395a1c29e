package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"prodsupply/internal/core/apperror"
	"prodsupply/internal/domain/catalogs/uom"
	"prodsupply/internal/infrastructure/storage/postgres"
)

const unitTable = "cat_units"

// UnitRepo implements uom repositories over cat_units.
type UnitRepo struct {
	*BaseCatalogRepo[*uom.Unit]
}

// NewUnitRepo creates a new unit repository.
func NewUnitRepo(txManager *postgres.TxManager) *UnitRepo {
	return &UnitRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			unitTable,
			postgres.ExtractDBColumns[uom.Unit](),
			func() *uom.Unit { return &uom.Unit{} },
		),
	}
}

// FindBySymbol retrieves unit by symbol.
func (r *UnitRepo) FindBySymbol(ctx context.Context, symbol string) (*uom.Unit, error) {
	sql, args, err := r.baseSelect().
		Where(squirrel.Eq{"symbol": symbol}).
		Where(squirrel.Eq{"deletion_mark": false}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var u uom.Unit
	if err := pgxscan.Get(ctx, r.Querier(ctx), &u, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("unit", symbol)
		}
		return nil, fmt.Errorf("find by symbol: %w", err)
	}
	return &u, nil
}
